package auth_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goliatone/go-authd"
	"github.com/google/uuid"
)

// memoryDirectory is an in-memory auth.UserDirectory
type memoryDirectory struct {
	mu    sync.Mutex
	users map[string]*auth.User

	// hideExisting makes FindByEmail miss, so Insert sees the race
	hideExisting bool
	findErr      error
	insertErr    error
	inserted     []auth.NewUser
}

func newMemoryDirectory() *memoryDirectory {
	return &memoryDirectory{users: map[string]*auth.User{}}
}

func (d *memoryDirectory) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.findErr != nil {
		return nil, d.findErr
	}
	if d.hideExisting {
		return nil, nil
	}
	user, ok := d.users[email]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

func (d *memoryDirectory) Insert(_ context.Context, in auth.NewUser) (*auth.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.insertErr != nil {
		return nil, d.insertErr
	}
	if _, ok := d.users[in.Email]; ok {
		conflict := auth.ErrConflict.Clone()
		conflict.Source = errors.New("UNIQUE constraint failed: users.email")
		return nil, conflict
	}

	now := time.Now()
	user := &auth.User{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Role:         in.Role,
		CreatedAt:    &now,
	}
	d.users[in.Email] = user
	d.inserted = append(d.inserted, in)

	cp := *user
	return &cp, nil
}

func (d *memoryDirectory) stored(email string) *auth.User {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.users[email]
}

// recordingSink keeps every activity event
type recordingSink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
}

func (s *recordingSink) Record(_ context.Context, event auth.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) types() []auth.ActivityEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]auth.ActivityEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
}

// nopLogger discards everything
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
