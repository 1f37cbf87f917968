package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/devcompass/devcompass/internal/store"
)

// Store is a progress backend. Exactly one Store is active per session.
type Store interface {
	// Load returns the record, creating and persisting a default one on
	// first access.
	Load(ctx context.Context) (*UserProgress, error)

	// Save persists the full record.
	Save(ctx context.Context, p *UserProgress) error

	// Kind is "remote" or "local".
	Kind() string
}

const usersCollection = "users"

// Profile identifies the owner of a remote record.
type Profile struct {
	UID        string
	Name       string
	Email      string
	PictureURL string
}

// RemoteStore keeps progress in the users/<uid> document.
type RemoteStore struct {
	docs    store.DocumentRepo
	profile Profile
	now     func() time.Time
}

// NewRemoteStore returns the backend for a signed-in user.
func NewRemoteStore(docs store.DocumentRepo, profile Profile) *RemoteStore {
	return &RemoteStore{docs: docs, profile: profile, now: time.Now}
}

func (s *RemoteStore) Kind() string { return "remote" }

// UID returns the owner of the record.
func (s *RemoteStore) UID() string { return s.profile.UID }

func (s *RemoteStore) Load(ctx context.Context) (*UserProgress, error) {
	doc, err := s.docs.Get(ctx, usersCollection, s.profile.UID)
	if err != nil {
		return nil, fmt.Errorf("load progress for %s: %w", s.profile.UID, err)
	}

	if doc == nil {
		p := New(s.profile.Name, s.now())
		p.Email = s.profile.Email
		p.PictureURL = s.profile.PictureURL
		if err := s.docs.Set(ctx, usersCollection, s.profile.UID, p); err != nil {
			return nil, fmt.Errorf("create progress for %s: %w", s.profile.UID, err)
		}
		return p, nil
	}

	var p UserProgress
	if err := doc.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode progress for %s: %w", s.profile.UID, err)
	}
	return &p, nil
}

// Save merges the progress fields into the user document, leaving profile
// fields written elsewhere intact.
func (s *RemoteStore) Save(ctx context.Context, p *UserProgress) error {
	if err := s.docs.Merge(ctx, usersCollection, s.profile.UID, progressFields(p)); err != nil {
		return fmt.Errorf("save progress for %s: %w", s.profile.UID, err)
	}
	return nil
}

// LocalKey is the key of the guest record in the local store.
const LocalKey = "devcompass_user_data"

// LocalStore keeps guest progress as a single JSON blob in an embedded
// badger database.
type LocalStore struct {
	db  *badger.DB
	own bool
	now func() time.Time
}

// OpenLocalStore opens (or creates) the badger database in dir.
func OpenLocalStore(dir string, logger *zap.Logger) (*LocalStore, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(newBadgerLogger(logger)).
		WithNumVersionsToKeep(1)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open local store %s: %w", dir, err)
	}
	return &LocalStore{db: db, own: true, now: time.Now}, nil
}

// NewLocalStore wraps an already open database. Close does not close it.
func NewLocalStore(db *badger.DB) *LocalStore {
	return &LocalStore{db: db, now: time.Now}
}

func (s *LocalStore) Kind() string { return "local" }

// Close closes the database if it was opened by OpenLocalStore.
func (s *LocalStore) Close() error {
	if !s.own {
		return nil
	}
	return s.db.Close()
}

func (s *LocalStore) Load(ctx context.Context) (*UserProgress, error) {
	p, err := s.read()
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	p = New(GuestName, s.now())
	if err := s.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Peek returns the stored record, or nil if there is none. Unlike Load it
// never creates one.
func (s *LocalStore) Peek(ctx context.Context) (*UserProgress, error) {
	return s.read()
}

func (s *LocalStore) Save(_ context.Context, p *UserProgress) error {
	p.LastUpdated = s.now().UTC()
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode guest progress: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(LocalKey), b)
	})
	if err != nil {
		return fmt.Errorf("save guest progress: %w", err)
	}
	return nil
}

// Clear deletes the guest record.
func (s *LocalStore) Clear(_ context.Context) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(LocalKey))
	})
	if err != nil {
		return fmt.Errorf("clear guest progress: %w", err)
	}
	return nil
}

func (s *LocalStore) read() (*UserProgress, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(LocalKey))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read guest progress: %w", err)
	}

	var p UserProgress
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode guest progress: %w", err)
	}
	return &p, nil
}

// badgerLogger routes badger's internal logging to zap. Badger is chatty
// at info level, so info is demoted to debug.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func newBadgerLogger(l *zap.Logger) badger.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return badgerLogger{s: l.Named("badger").Sugar()}
}

func (b badgerLogger) Errorf(f string, args ...interface{})   { b.s.Errorf(f, args...) }
func (b badgerLogger) Warningf(f string, args ...interface{}) { b.s.Warnf(f, args...) }
func (b badgerLogger) Infof(f string, args ...interface{})    { b.s.Debugf(f, args...) }
func (b badgerLogger) Debugf(f string, args ...interface{})   { b.s.Debugf(f, args...) }
