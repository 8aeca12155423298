package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user record owned by the directory.
// PasswordHash never leaves the process: it is excluded from JSON.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Name          string     `bun:"name,notnull" json:"name"`
	Email         string     `bun:"email,notnull,unique" json:"email"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Role          UserRole   `bun:"role,notnull" json:"role"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at,omitempty"`
}

// NewUser is the insert payload for a directory. Only the hashed credential
// is carried.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
}

// Identity returns the public projection of the user
func (u *User) Identity() Identity {
	return authIdentity{
		id:    u.ID.String(),
		email: u.Email,
		role:  u.Role,
	}
}

// PublicUser is the user shape returned to clients
type PublicUser struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// Public returns the client safe view of the record
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID.String(),
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

type authIdentity struct {
	id    string
	email string
	role  UserRole
}

func (a authIdentity) ID() string     { return a.id }
func (a authIdentity) Email() string  { return a.email }
func (a authIdentity) Role() UserRole { return a.role }
