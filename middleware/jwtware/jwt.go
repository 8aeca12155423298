package jwtware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")

// TokenValidator interface for validating tokens without import cycles
// This mirrors the TokenService.Validate method from the auth package
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	return f(tokenString)
}

// AuthClaims interface for structured claims without import cycles
// This mirrors the AuthClaims interface from the auth package
type AuthClaims interface {
	UserID() string
	Email() string
	Role() string
}

// JWTExtractor pulls the raw token out of the request. It returns
// ErrJWTMissingOrMalformed when the request carries none.
type JWTExtractor func(c *fiber.Ctx) (string, error)

type Config struct {
	// ErrorHandler receives extraction and validation failures. Required.
	ErrorHandler func(*fiber.Ctx, error) error
	ContextKey   string
	// Extractors are tried in order, the first non empty token wins. Required.
	Extractors []JWTExtractor
	// TokenValidator is required for token validation
	TokenValidator TokenValidator
	// LocalsSerializer maps verified claims to the value stored under ContextKey.
	// Defaults to storing the claims.
	LocalsSerializer func(AuthClaims) any
	// ContextEnricher propagates claims to the user context of the request.
	ContextEnricher func(c *fiber.Ctx, claims AuthClaims)
}

func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)

	return func(c *fiber.Ctx) error {
		raw, err := ExtractRawTokenFromContext(c, cfg.Extractors)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, cfg.LocalsSerializer(claims))

		if cfg.ContextEnricher != nil {
			cfg.ContextEnricher(c, claims)
		}

		return c.Next()
	}
}

func ExtractRawTokenFromContext(c *fiber.Ctx, extractors []JWTExtractor) (string, error) {
	var raw string
	err := ErrJWTMissingOrMalformed

	for _, extractor := range extractors {
		raw, err = extractor(c)
		if raw != "" && err == nil {
			break
		}
	}

	if raw == "" && err == nil {
		err = ErrJWTMissingOrMalformed
	}

	return raw, err
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.TokenValidator == nil {
		panic("AUTH: JWT middleware configuration: TokenValidator is required.")
	}

	if cfg.ErrorHandler == nil {
		panic("AUTH: JWT middleware configuration: ErrorHandler is required.")
	}

	if len(cfg.Extractors) == 0 {
		panic("AUTH: JWT middleware configuration: at least one extractor is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.LocalsSerializer == nil {
		cfg.LocalsSerializer = func(claims AuthClaims) any {
			return claims
		}
	}

	return cfg
}
