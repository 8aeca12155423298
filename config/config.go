package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	auth "github.com/goliatone/go-authd"
)

// EnvPrefix is stripped from environment variables. Nested keys use a
// double underscore, e.g. AUTHD_AUTH__SIGNING_KEY.
const EnvPrefix = "AUTHD_"

// MinSigningKeyLength is the shortest HS256 secret accepted at startup
const MinSigningKeyLength = 32

// Config holds the application configuration
type Config struct {
	Environment string         `koanf:"environment"`
	Server      ServerConfig   `koanf:"server"`
	Database    DatabaseConfig `koanf:"database"`
	Auth        AuthConfig     `koanf:"auth"`
	Log         LogConfig      `koanf:"log"`
	CORS        CORSConfig     `koanf:"cors"`
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

type DatabaseConfig struct {
	// DSN selects the driver: postgres:// URLs use PostgreSQL, anything else SQLite
	DSN string `koanf:"dsn"`
}

type AuthConfig struct {
	SigningKey string `koanf:"signing_key"`
	// TokenExpiration is the token and cookie lifetime in hours
	TokenExpiration int    `koanf:"token_expiration"`
	Issuer          string `koanf:"issuer"`
	CookieName      string `koanf:"cookie_name"`
	// CookieSecure forces the Secure cookie attribute even on plain HTTP
	CookieSecure bool `koanf:"cookie_secure"`
	BcryptCost   int  `koanf:"bcrypt_cost"`
	HashWorkers  int  `koanf:"hash_workers"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type CORSConfig struct {
	AllowOrigins []string `koanf:"allow_origins"`
}

var _ auth.Config = (*Config)(nil)

// Defaults returns the values used when neither file nor environment set a key.
// There is no default signing key.
func Defaults() map[string]any {
	return map[string]any{
		"environment":           "development",
		"server.addr":           ":3000",
		"database.dsn":          "file:authd.db?cache=shared",
		"auth.token_expiration": int(auth.DefaultTokenExpiration / time.Hour),
		"auth.issuer":           "authd",
		"auth.cookie_name":      auth.DefaultCookieName,
		"auth.cookie_secure":    false,
		"auth.bcrypt_cost":      auth.DefaultBcryptCost,
		"auth.hash_workers":     runtime.GOMAXPROCS(0),
		"log.level":             "info",
		"log.format":            "text",
		"cors.allow_origins":    []string{"*"},
	}
}

// Load reads defaults, then the optional YAML file at path, then AUTHD_
// environment variables. Later sources win. The result is validated.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnv,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// transformEnv maps AUTHD_AUTH__SIGNING_KEY to auth.signing_key
func transformEnv(k, v string) (string, any) {
	key := strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if key == "cors.allow_origins" {
		return key, splitList(v)
	}
	return key, v
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate fails when a required setting is missing or unsafe
func (c *Config) Validate() error {
	if c.Auth.SigningKey == "" {
		return fmt.Errorf("auth.signing_key is required (set %sAUTH__SIGNING_KEY)", EnvPrefix)
	}
	if len(c.Auth.SigningKey) < MinSigningKeyLength {
		return fmt.Errorf("auth.signing_key must be at least %d bytes", MinSigningKeyLength)
	}
	if c.Auth.TokenExpiration <= 0 {
		return fmt.Errorf("auth.token_expiration must be positive, got %d", c.Auth.TokenExpiration)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", c.Log.Format)
	}
	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) GetSigningKey() string {
	return c.Auth.SigningKey
}

func (c *Config) GetTokenExpiration() time.Duration {
	return time.Duration(c.Auth.TokenExpiration) * time.Hour
}

func (c *Config) GetIssuer() string {
	return c.Auth.Issuer
}

func (c *Config) GetCookieName() string {
	return c.Auth.CookieName
}

// GetCookieSecure forces Secure in production or when configured
func (c *Config) GetCookieSecure() bool {
	return c.Auth.CookieSecure || c.IsProduction()
}

func (c *Config) GetBcryptCost() int {
	return c.Auth.BcryptCost
}

func (c *Config) GetHashWorkers() int {
	return c.Auth.HashWorkers
}
