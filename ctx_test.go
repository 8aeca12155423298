package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-authd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityContext(t *testing.T) {
	identity := &auth.RequestIdentity{ID: "1", Email: "a@x.com", Role: auth.RoleAdmin}

	ctx := auth.WithIdentityContext(context.Background(), identity)
	got, ok := auth.IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, identity, got)

	_, ok = auth.IdentityFromContext(context.Background())
	assert.False(t, ok)

	_, ok = auth.IdentityFromContext(auth.WithIdentityContext(context.Background(), nil))
	assert.False(t, ok)
}

func TestIdentityFromClaims(t *testing.T) {
	assert.Nil(t, auth.IdentityFromClaims(nil))

	claims := &auth.JWTClaims{UID: "1", UserEmail: "a@x.com", UserRole: "user"}
	assert.Equal(t, &auth.RequestIdentity{ID: "1", Email: "a@x.com", Role: auth.RoleUser}, auth.IdentityFromClaims(claims))

	unknown := &auth.JWTClaims{UID: "2", UserEmail: "b@x.com", UserRole: "root"}
	identity := auth.IdentityFromClaims(unknown)
	require.NotNil(t, identity)
	assert.Empty(t, identity.Role)
	assert.False(t, auth.RoleAllowList{auth.RoleUser, auth.RoleAdmin}.Permits(identity.Role))
}

func TestGetRequestIdentity_Locals(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		if _, ok := auth.GetRequestIdentity(c, ""); ok {
			return c.SendStatus(fiber.StatusConflict)
		}

		c.Locals(auth.DefaultContextKey, "not an identity")
		if _, ok := auth.GetRequestIdentity(c, ""); ok {
			return c.SendStatus(fiber.StatusConflict)
		}

		c.Locals(auth.DefaultContextKey, &auth.RequestIdentity{ID: "1", Role: auth.RoleUser})
		identity, ok := auth.GetRequestIdentity(c, auth.DefaultContextKey)
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}

		return c.SendString(identity.ID)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", rawBody(t, resp))
}
