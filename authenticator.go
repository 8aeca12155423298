package auth

import (
	"context"
)

// Authenticator runs the credential flows that end in a session token
type Authenticator interface {
	Register(ctx context.Context, msg RegisterUserMessage) (*User, string, error)
	Login(ctx context.Context, email, password string) (*User, string, error)
	Logout(ctx context.Context, identity *RequestIdentity)
}

// credentialBurner spends the same work as a real verification on
// accounts that do not exist
type credentialBurner interface {
	Burn(ctx context.Context, secret string)
}

type Auther struct {
	directory    UserDirectory
	hasher       PasswordHasher
	tokens       TokenService
	register     *RegisterUserHandler
	logger       Logger
	activitySink ActivitySink
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(directory UserDirectory, hasher PasswordHasher, tokens TokenService) *Auther {
	logger := defLogger{}
	return &Auther{
		directory:    directory,
		hasher:       hasher,
		tokens:       tokens,
		register:     NewRegisterUserHandler(directory, hasher, logger),
		logger:       logger,
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = normalizeLogger(logger)
	s.register = NewRegisterUserHandler(s.directory, s.hasher, s.logger)
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

// Register creates the user and issues its first session token
func (s *Auther) Register(ctx context.Context, msg RegisterUserMessage) (*User, string, error) {
	user, err := s.register.Execute(ctx, msg)
	if err != nil {
		if !HasTextCode(err, TextCodeDuplicateUser) {
			s.logger.Error("register user failed", "email", msg.Email, "error", err)
		}
		return nil, "", err
	}

	token, err := s.tokens.Generate(user.Identity())
	if err != nil {
		s.logger.Error("register token signing failed", "user_id", user.ID.String(), "error", err)
		return nil, "", err
	}

	s.emit(ctx, ActivityEventSignUp, user.ID.String(), user.Email, map[string]any{
		"role": string(user.Role),
	})

	return user, token, nil
}

// Login verifies the credentials and issues a session token.
// Unknown email and wrong password both fail with ErrInvalidCredentials.
func (s *Auther) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Error("login lookup failed", "email", email, "error", err)
		return nil, "", err
	}

	if user == nil {
		if b, ok := s.hasher.(credentialBurner); ok {
			b.Burn(ctx, password)
		}
		s.loginFailed(ctx, "", email)
		return nil, "", ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		if !HasTextCode(err, TextCodeVerificationFailure) {
			return nil, "", err
		}
		s.logger.Error("stored credential unreadable", "user_id", user.ID.String(), "error", err)
		ok = false
	}

	if !ok {
		s.loginFailed(ctx, user.ID.String(), email)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.Identity())
	if err != nil {
		s.logger.Error("login token signing failed", "user_id", user.ID.String(), "error", err)
		return nil, "", err
	}

	s.emit(ctx, ActivityEventLoginSuccess, user.ID.String(), user.Email, nil)

	return user, token, nil
}

// Logout records the event. The session itself lives on the client.
func (s *Auther) Logout(ctx context.Context, identity *RequestIdentity) {
	event := ActivityEvent{EventType: ActivityEventLogout}
	if identity != nil {
		event.UserID = identity.ID
		event.Email = identity.Email
	}
	recordActivity(ctx, s.activitySink, s.logger, event)
}

func (s *Auther) loginFailed(ctx context.Context, userID, email string) {
	s.emit(ctx, ActivityEventLoginFailure, userID, email, map[string]any{
		"reason": TextCodeInvalidCredentials,
	})
}

func (s *Auther) emit(ctx context.Context, eventType ActivityEventType, userID, email string, metadata map[string]any) {
	recordActivity(ctx, s.activitySink, s.logger, ActivityEvent{
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		Metadata:  metadata,
	})
}
