package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-authd/middleware/jwtware"
)

// DefaultContextKey is the Locals key the authentication gate stores
// the RequestIdentity under
const DefaultContextKey = "user"

var identityCtxKey = &contextKey{"identity"}

type contextKey struct {
	name string
}

// RequestIdentity is the request scoped projection of a verified token
type RequestIdentity struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// IdentityFromClaims projects verified claims into a RequestIdentity.
// A role outside the known set is dropped so no gate can match it.
func IdentityFromClaims(claims jwtware.AuthClaims) *RequestIdentity {
	if claims == nil {
		return nil
	}
	role, ok := ParseRole(claims.Role())
	if !ok {
		role = ""
	}
	return &RequestIdentity{
		ID:    claims.UserID(),
		Email: claims.Email(),
		Role:  role,
	}
}

// WithIdentityContext sets the RequestIdentity in the given context
func WithIdentityContext(ctx context.Context, identity *RequestIdentity) context.Context {
	return context.WithValue(ctx, identityCtxKey, identity)
}

// IdentityFromContext finds the RequestIdentity in the standard context
func IdentityFromContext(ctx context.Context) (*RequestIdentity, bool) {
	raw, ok := ctx.Value(identityCtxKey).(*RequestIdentity)
	return raw, ok && raw != nil
}

// GetRequestIdentity extracts the RequestIdentity from the fiber locals
func GetRequestIdentity(c *fiber.Ctx, key string) (*RequestIdentity, bool) {
	if key == "" {
		key = DefaultContextKey
	}
	raw, ok := c.Locals(key).(*RequestIdentity)
	return raw, ok && raw != nil
}
