package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// DefaultCookieName is the session cookie name
const DefaultCookieName = "token"

// SessionCarrier binds a session token to HTTP requests and responses
type SessionCarrier interface {
	Attach(c *fiber.Ctx, token string)
	Extract(c *fiber.Ctx) (string, bool)
	Clear(c *fiber.Ctx)
}

// CookieSessionCarrier stores the token in an HTTP only, SameSite=Strict
// cookie whose lifetime matches the token lifetime.
type CookieSessionCarrier struct {
	name     string
	duration time.Duration
	secure   bool
	now      func() time.Time
}

var _ SessionCarrier = (*CookieSessionCarrier)(nil)

// NewCookieSessionCarrier creates a carrier. When secure is false the
// Secure attribute is still set for requests served over TLS.
func NewCookieSessionCarrier(name string, duration time.Duration, secure bool) *CookieSessionCarrier {
	if name == "" {
		name = DefaultCookieName
	}
	if duration <= 0 {
		duration = DefaultTokenExpiration
	}
	return &CookieSessionCarrier{
		name:     name,
		duration: duration,
		secure:   secure,
		now:      time.Now,
	}
}

// NewCookieSessionCarrierFromConfig creates a carrier from the auth Config
func NewCookieSessionCarrierFromConfig(cfg Config) *CookieSessionCarrier {
	return NewCookieSessionCarrier(cfg.GetCookieName(), cfg.GetTokenExpiration(), cfg.GetCookieSecure())
}

// Attach stores token in the response cookie
func (s *CookieSessionCarrier) Attach(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     s.name,
		Value:    token,
		Path:     "/",
		Expires:  s.now().Add(s.duration),
		MaxAge:   int(s.duration.Seconds()),
		HTTPOnly: true,
		Secure:   s.isSecure(c),
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

// Extract reads the token from the request. A missing cookie is not an error.
func (s *CookieSessionCarrier) Extract(c *fiber.Ctx) (string, bool) {
	token := c.Cookies(s.name)
	if token == "" {
		return "", false
	}
	return token, true
}

// Clear expires the cookie. Safe to call when no cookie was set.
func (s *CookieSessionCarrier) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		Expires:  s.now().Add(-time.Hour * (24 * 365)),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.isSecure(c),
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func (s *CookieSessionCarrier) isSecure(c *fiber.Ctx) bool {
	return s.secure || c.Secure()
}
