package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// UserDirectory is the user record store.
// FindByEmail returns (nil, nil) when no record matches. Insert fails
// with an ErrConflict copy when the email is already taken.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	Insert(ctx context.Context, record NewUser) (*User, error)
}

// BunUserDirectory implements UserDirectory on the generic bun repository.
type BunUserDirectory struct {
	repo repository.Repository[*User]
}

// NewUserDirectory returns a directory backed by db
func NewUserDirectory(db *bun.DB) *BunUserDirectory {
	return &BunUserDirectory{repo: NewUsersRepository(db)}
}

// NewUsersRepository returns the user repository, with email as the
// identifier column.
func NewUsersRepository(db *bun.DB) repository.Repository[*User] {
	return repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})
}

func (d *BunUserDirectory) FindByEmail(ctx context.Context, email string) (*User, error) {
	record, err := d.repo.GetByIdentifier(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, internalError(err, "user lookup failed")
	}

	return record, nil
}

func (d *BunUserDirectory) Insert(ctx context.Context, in NewUser) (*User, error) {
	role := in.Role
	if role == "" {
		role = DefaultRole
	}

	now := time.Now().UTC()
	record := &User{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Role:         role,
		CreatedAt:    &now,
	}

	created, err := d.repo.Create(ctx, record)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, withMetadata(withSource(ErrConflict, err), map[string]any{
				"email": in.Email,
			})
		}
		return nil, internalError(err, "user insert failed")
	}

	return created, nil
}

// IsUniqueViolation recognises unique constraint errors from the
// PostgreSQL and SQLite drivers, also when wrapped by the repository
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.Category == goerrors.CategoryConflict {
		return true
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		if strings.Contains(e.Error(), "UNIQUE constraint failed") {
			return true
		}
	}
	return false
}
