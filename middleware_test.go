package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-authd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateApp(gate *auth.RouteAuthenticator, roles ...auth.UserRole) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: auth.NewErrorHandler(nopLogger{})})
	app.Get("/", gate.ProtectedRoute(), gate.Authorize(roles...), func(c *fiber.Ctx) error {
		identity, ok := auth.GetRequestIdentity(c, gate.ContextKey())
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		fromCtx, ok := auth.IdentityFromContext(c.UserContext())
		if !ok || fromCtx.ID != identity.ID {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendString(identity.ID + ":" + string(identity.Role))
	})
	return app
}

func get(t *testing.T, app *fiber.App, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func tokenCookie(t *testing.T, tokens auth.TokenService, role auth.UserRole) *http.Cookie {
	t.Helper()
	token, err := tokens.Generate(newMockIdentity("user-1", "a@x.com", role))
	require.NoError(t, err)
	return &http.Cookie{Name: auth.DefaultCookieName, Value: token}
}

func newGate(tokens auth.TokenValidator) *auth.RouteAuthenticator {
	carrier := auth.NewCookieSessionCarrier("", 0, false)
	return auth.NewRouteAuthenticator(tokens, carrier, nopLogger{})
}

func TestProtectedRoute(t *testing.T) {
	tokens := auth.NewTokenService(testSigningKey, time.Hour, "test-issuer", nopLogger{})
	app := newGateApp(newGate(tokens))

	t.Run("no cookie", func(t *testing.T) {
		resp := get(t, app)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.JSONEq(t, `{"error":"access denied, no token provided"}`, rawBody(t, resp))
	})

	t.Run("forged token", func(t *testing.T) {
		resp := get(t, app, &http.Cookie{Name: auth.DefaultCookieName, Value: "not.a.token"})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.JSONEq(t, `{"error":"invalid token"}`, rawBody(t, resp))
	})

	t.Run("token signed with another key", func(t *testing.T) {
		other := auth.NewTokenService([]byte("another-signing-key-with-enough-bytes"), time.Hour, "test-issuer", nopLogger{})
		resp := get(t, app, tokenCookie(t, other, auth.RoleUser))
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("expired token", func(t *testing.T) {
		past := auth.NewTokenService(testSigningKey, time.Hour, "test-issuer", nopLogger{}).
			WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
		resp := get(t, app, tokenCookie(t, past, auth.RoleUser))
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.JSONEq(t, `{"error":"invalid token"}`, rawBody(t, resp))
	})

	t.Run("valid token", func(t *testing.T) {
		resp := get(t, app, tokenCookie(t, tokens, auth.RoleUser))
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "user-1:user", rawBody(t, resp))
	})
}

func TestAuthorize(t *testing.T) {
	tokens := auth.NewTokenService(testSigningKey, time.Hour, "test-issuer", nopLogger{})
	gate := newGate(tokens)

	tests := []struct {
		name    string
		allowed []auth.UserRole
		role    auth.UserRole
		status  int
	}{
		{name: "empty allow-list admits user", role: auth.RoleUser, status: fiber.StatusOK},
		{name: "empty allow-list admits admin", role: auth.RoleAdmin, status: fiber.StatusOK},
		{name: "admin only rejects user", allowed: []auth.UserRole{auth.RoleAdmin}, role: auth.RoleUser, status: fiber.StatusForbidden},
		{name: "admin only admits admin", allowed: []auth.UserRole{auth.RoleAdmin}, role: auth.RoleAdmin, status: fiber.StatusOK},
		{name: "user or admin admits user", allowed: []auth.UserRole{auth.RoleUser, auth.RoleAdmin}, role: auth.RoleUser, status: fiber.StatusOK},
		{name: "user only rejects admin", allowed: []auth.UserRole{auth.RoleUser}, role: auth.RoleAdmin, status: fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newGateApp(gate, tt.allowed...)
			resp := get(t, app, tokenCookie(t, tokens, tt.role))
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAuthorize_WithoutAuthentication(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: auth.NewErrorHandler(nopLogger{})})
	app.Get("/", auth.Authorize(auth.DefaultContextKey, auth.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp := get(t, app)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"access denied, user not authenticated"}`, rawBody(t, resp))
}

func TestOptionalAuth(t *testing.T) {
	tokens := auth.NewTokenService(testSigningKey, time.Hour, "test-issuer", nopLogger{})
	gate := newGate(tokens)

	app := fiber.New()
	app.Get("/", gate.OptionalAuth(), func(c *fiber.Ctx) error {
		identity, ok := auth.GetRequestIdentity(c, gate.ContextKey())
		if !ok {
			return c.SendString("anonymous")
		}
		return c.SendString(identity.Email)
	})

	assert.Equal(t, "anonymous", rawBody(t, get(t, app)))
	assert.Equal(t, "anonymous", rawBody(t, get(t, app, &http.Cookie{Name: auth.DefaultCookieName, Value: "garbage"})))
	assert.Equal(t, "a@x.com", rawBody(t, get(t, app, tokenCookie(t, tokens, auth.RoleUser))))
}
