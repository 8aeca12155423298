package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-authd/middleware/jwtware"
)

// RouteAuthenticator builds the per request gates: authentication from the
// session carrier and role based authorization layered after it.
type RouteAuthenticator struct {
	tokens     TokenValidator
	carrier    SessionCarrier
	contextKey string
	logger     Logger
}

// NewRouteAuthenticator creates the gates around a token validator and carrier
func NewRouteAuthenticator(tokens TokenValidator, carrier SessionCarrier, logger Logger) *RouteAuthenticator {
	return &RouteAuthenticator{
		tokens:     tokens,
		carrier:    carrier,
		contextKey: DefaultContextKey,
		logger:     normalizeLogger(logger),
	}
}

// ContextKey returns the locals key identities are stored under
func (a *RouteAuthenticator) ContextKey() string {
	return a.contextKey
}

// ProtectedRoute rejects requests without a valid session with Unauthenticated
// and attaches the RequestIdentity otherwise.
func (a *RouteAuthenticator) ProtectedRoute() fiber.Handler {
	return jwtware.New(a.jwtConfig(a.rejectHandler))
}

// OptionalAuth attaches the RequestIdentity when a valid session is present
// and lets every request through.
func (a *RouteAuthenticator) OptionalAuth() fiber.Handler {
	return jwtware.New(a.jwtConfig(func(c *fiber.Ctx, err error) error {
		if !errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
			a.logger.Warn("optional auth - invalid token", "error", err, "path", c.Path())
		}
		return c.Next()
	}))
}

// Authorize returns a gate that admits identities whose role is in roles.
// No roles means any authenticated identity. It must run after ProtectedRoute.
func (a *RouteAuthenticator) Authorize(roles ...UserRole) fiber.Handler {
	return Authorize(a.contextKey, roles...)
}

// Authorize checks the RequestIdentity stored under key against roles.
func Authorize(key string, roles ...UserRole) fiber.Handler {
	allowed := RoleAllowList(roles)
	return func(c *fiber.Ctx) error {
		identity, ok := GetRequestIdentity(c, key)
		if !ok {
			return ErrIdentityMissing
		}
		if !allowed.Permits(identity.Role) {
			return withMetadata(ErrForbidden, map[string]any{
				"user_id": identity.ID,
				"role":    string(identity.Role),
			})
		}
		return c.Next()
	}
}

func (a *RouteAuthenticator) jwtConfig(onError func(*fiber.Ctx, error) error) jwtware.Config {
	return jwtware.Config{
		ContextKey:   a.contextKey,
		ErrorHandler: onError,
		Extractors: []jwtware.JWTExtractor{
			func(c *fiber.Ctx) (string, error) {
				token, ok := a.carrier.Extract(c)
				if !ok {
					return "", jwtware.ErrJWTMissingOrMalformed
				}
				return token, nil
			},
		},
		TokenValidator: jwtware.TokenValidatorFunc(func(token string) (jwtware.AuthClaims, error) {
			claims, err := a.tokens.Validate(token)
			if err != nil {
				return nil, err
			}
			return claims, nil
		}),
		LocalsSerializer: func(claims jwtware.AuthClaims) any {
			return IdentityFromClaims(claims)
		},
		ContextEnricher: func(c *fiber.Ctx, _ jwtware.AuthClaims) {
			if identity, ok := GetRequestIdentity(c, a.contextKey); ok {
				c.SetUserContext(WithIdentityContext(c.UserContext(), identity))
			}
		},
	}
}

func (a *RouteAuthenticator) rejectHandler(c *fiber.Ctx, err error) error {
	if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
		return ErrNoToken
	}

	a.logger.Info("authentication rejected",
		"reason", TextCodeOf(err),
		"path", c.Path(),
	)

	if IsTokenExpiredError(err) || IsMalformedError(err) {
		return withSource(ErrUnauthenticated, err)
	}
	return err
}
