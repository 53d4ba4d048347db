// Package session keeps the signed-in user of each client between requests.
//
// A session lives in a slot of a Store keyed by an opaque id. The slot holds
// the JSON encoded user as it was at sign-in. Restore re-reads the user from
// the users table on every call so that a deleted account or a changed role
// takes effect immediately; the slot is only a pointer plus a cached copy.
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/colocetudiant/internal/model"
)

// State is what the rest of the application knows about the caller.
type State struct {
	User            *model.User `json:"user"`
	IsAuthenticated bool        `json:"is_authenticated"`
}

// Anonymous is the state of a caller without a valid session.
func Anonymous() State { return State{} }

// Verifier looks up the current record of a user. A missing user is
// reported as (nil, nil).
type Verifier interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// Manager drives the session lifecycle: Login creates a slot, Restore reads
// and re-validates it, Logout clears it.
type Manager struct {
	store Store
	users Verifier
	ttl   time.Duration
	log   *zap.Logger
}

func NewManager(store Store, users Verifier, ttl time.Duration, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{store: store, users: users, ttl: ttl, log: log}
}

// Login stores u in a fresh slot and returns the slot id.
func (m *Manager) Login(ctx context.Context, u model.User) (string, State, error) {
	sid := uuid.NewString()
	if err := m.write(ctx, sid, u); err != nil {
		return "", Anonymous(), err
	}
	return sid, State{User: &u, IsAuthenticated: true}, nil
}

// Refresh overwrites the cached user of an existing slot, e.g. after a
// profile edit.
func (m *Manager) Refresh(ctx context.Context, sid string, u model.User) error {
	return m.write(ctx, sid, u)
}

// Logout clears the slot. Clearing an absent slot is not an error.
func (m *Manager) Logout(ctx context.Context, sid string) error {
	return m.store.Delete(ctx, sid)
}

// Restore returns the state bound to sid. An absent, unreadable or stale
// slot yields the anonymous state; stale and unreadable slots are cleared.
// Lookup failures of the users table are returned as errors.
func (m *Manager) Restore(ctx context.Context, sid string) (State, error) {
	if sid == "" {
		return Anonymous(), nil
	}
	blob, ok, err := m.store.Get(ctx, sid)
	if err != nil {
		return Anonymous(), err
	}
	if !ok {
		return Anonymous(), nil
	}
	var cached model.User
	if err := json.Unmarshal(blob, &cached); err != nil || cached.ID == "" {
		m.log.Warn("dropping unreadable session", zap.String("sid", sid))
		_ = m.store.Delete(ctx, sid)
		return Anonymous(), nil
	}
	fresh, err := m.users.GetByID(ctx, cached.ID)
	if err != nil {
		return Anonymous(), err
	}
	if fresh == nil {
		m.log.Info("session user no longer exists", zap.String("user_id", cached.ID))
		_ = m.store.Delete(ctx, sid)
		return Anonymous(), nil
	}
	if err := m.write(ctx, sid, *fresh); err != nil {
		m.log.Warn("session refresh failed", zap.Error(err))
	}
	return State{User: fresh, IsAuthenticated: true}, nil
}

func (m *Manager) write(ctx context.Context, sid string, u model.User) error {
	blob, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, sid, blob, m.ttl)
}
