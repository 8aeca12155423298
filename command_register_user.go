package auth

import (
	"context"
)

// RegisterUserMessage carries a validated sign-up request
type RegisterUserMessage struct {
	Name     string
	Email    string
	Password string
	Role     UserRole
}

// RegisterUserHandler creates the user record for a RegisterUserMessage
type RegisterUserHandler struct {
	directory UserDirectory
	hasher    PasswordHasher
	logger    Logger
}

// NewRegisterUserHandler returns a handler writing to directory
func NewRegisterUserHandler(directory UserDirectory, hasher PasswordHasher, logger Logger) *RegisterUserHandler {
	return &RegisterUserHandler{
		directory: directory,
		hasher:    hasher,
		logger:    normalizeLogger(logger),
	}
}

// Execute looks the email up, hashes the password and inserts the record.
// A taken email fails with ErrDuplicateUser, whether caught by the lookup
// or by the directory rejecting the insert.
func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, cancelledError(err, "context cancelled during user registration")
	}

	existing, err := h.directory.FindByEmail(ctx, event.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateUser
	}

	hash, err := h.hasher.Hash(ctx, event.Password)
	if err != nil {
		return nil, err
	}

	role := event.Role
	if role == "" {
		role = DefaultRole
	}

	user, err := h.directory.Insert(ctx, NewUser{
		Name:         event.Name,
		Email:        event.Email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if HasTextCode(err, TextCodeConflict) {
			h.logger.Info("duplicate insert rejected by directory", "email", event.Email)
			return nil, withSource(ErrDuplicateUser, err)
		}
		return nil, err
	}

	return user, nil
}
