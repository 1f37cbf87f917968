// Package session owns the signed-in identity and the one progress backend
// selected for it. The backend is re-selected on every auth transition.
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/devcompass/devcompass/internal/auth"
	"github.com/devcompass/devcompass/internal/progress"
	"github.com/devcompass/devcompass/internal/store"
)

// Authenticator is the subset of auth.Service the manager drives.
type Authenticator interface {
	SignUp(ctx context.Context, name, email, password string) (*auth.Identity, error)
	SignIn(ctx context.Context, email, password string) (*auth.Identity, error)
	SignOut() error
	Current() (*auth.Identity, error)
}

// GuestStore is the device-local backend. Peek and Clear are needed for the
// guest migration at sign-up.
type GuestStore interface {
	progress.Store
	Peek(ctx context.Context) (*progress.UserProgress, error)
	Clear(ctx context.Context) error
}

// Session is the state every feature reads: who is signed in and where
// their progress lives.
type Session struct {
	// Identity is nil for guests.
	Identity *auth.Identity
	Tracker  *progress.Tracker
}

// SignedIn reports whether a user is signed in.
func (s *Session) SignedIn() bool {
	return s.Identity != nil
}

// UID returns the signed-in user's id, or "" for guests.
func (s *Session) UID() string {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.UID
}

// Store returns the active progress backend.
func (s *Session) Store() progress.Store {
	return s.Tracker.Store()
}

// Manager selects the progress backend for the current identity.
type Manager struct {
	auth   Authenticator
	docs   store.DocumentRepo
	guest  GuestStore
	logger *zap.Logger

	mu      sync.Mutex
	current *Session
}

// NewManager restores the persisted sign-in, if any, and builds the initial
// session.
func NewManager(a Authenticator, docs store.DocumentRepo, guest GuestStore, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{auth: a, docs: docs, guest: guest, logger: logger}

	id, err := a.Current()
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	m.current = m.build(id)
	return m, nil
}

// Current returns the active session.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// SignUp creates an account, moves any guest progress into it and switches
// to the remote backend.
func (m *Manager) SignUp(ctx context.Context, name, email, password string) (*Session, error) {
	id, err := m.auth.SignUp(ctx, name, email, password)
	if err != nil {
		return nil, err
	}

	s := m.build(id)
	m.migrateGuest(ctx, s.Store())
	m.switchTo(s)
	return s, nil
}

// SignIn switches to the signed-in user's remote backend. Guest progress
// stays on the device.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*Session, error) {
	id, err := m.auth.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s := m.build(id)
	m.switchTo(s)
	return s, nil
}

// SignOut drops the stored sign-in and falls back to the guest backend.
func (m *Manager) SignOut() (*Session, error) {
	if err := m.auth.SignOut(); err != nil {
		return nil, err
	}
	s := m.build(nil)
	m.switchTo(s)
	return s, nil
}

func (m *Manager) build(id *auth.Identity) *Session {
	var backend progress.Store = m.guest
	if id != nil {
		backend = progress.NewRemoteStore(m.docs, progress.Profile{
			UID:        id.UID,
			Name:       id.Name,
			Email:      id.Email,
			PictureURL: id.PictureURL,
		})
	}
	return &Session{Identity: id, Tracker: progress.NewTracker(backend, m.logger)}
}

func (m *Manager) switchTo(s *Session) {
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	m.logger.Debug("session changed",
		zap.Bool("signed_in", s.SignedIn()),
		zap.String("backend", s.Store().Kind()),
	)
}

// migrateGuest folds the device's guest record into the new remote record
// and clears it. Failures are logged; the account itself already exists.
func (m *Manager) migrateGuest(ctx context.Context, remote progress.Store) {
	guest, err := m.guest.Peek(ctx)
	if err != nil {
		m.logger.Warn("read guest progress for migration", zap.Error(err))
		return
	}
	if guest == nil {
		return
	}

	current, err := remote.Load(ctx)
	if err != nil {
		m.logger.Warn("load new account progress for migration", zap.Error(err))
		return
	}

	merged := progress.MergeGuest(current, guest)
	if err := remote.Save(ctx, merged); err != nil {
		m.logger.Warn("save migrated guest progress", zap.Error(err))
		return
	}
	if err := m.guest.Clear(ctx); err != nil {
		m.logger.Warn("clear guest progress", zap.Error(err))
		return
	}

	m.logger.Info("migrated guest progress",
		zap.Int("python", merged.CompletedCount(progress.Python)),
		zap.Int("javascript", merged.CompletedCount(progress.JavaScript)),
	)
}
