package progress

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrEmptyChallengeID is returned when a completion names no challenge.
var ErrEmptyChallengeID = errors.New("challenge id is required")

// Tracker is the service boundary over a Store. Backend failures are logged
// and masked: callers always get a usable record back.
type Tracker struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// NewTracker creates a Tracker over the active backend.
func NewTracker(s Store, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		store:  s,
		logger: logger.With(zap.String("backend", s.Kind())),
		now:    time.Now,
	}
}

// Store returns the backend.
func (t *Tracker) Store() Store {
	return t.store
}

// Load returns the current record. On any backend failure it logs and
// returns an empty record.
func (t *Tracker) Load(ctx context.Context) *UserProgress {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, _ := t.load(ctx)
	return p
}

func (t *Tracker) load(ctx context.Context) (*UserProgress, bool) {
	p, err := t.store.Load(ctx)
	if err != nil {
		t.logger.Error("load progress", zap.Error(err))
		return New(t.defaultName(), t.now()), false
	}
	return p, true
}

// RecordCompletion marks a challenge complete and persists the record.
// Completing an already completed challenge changes nothing. The updated
// record is returned without re-reading the backend; a failed save is
// logged and the updated record is still returned.
//
// Only validation failures are reported as errors.
func (t *Tracker) RecordCompletion(ctx context.Context, track Track, challengeID string) (*UserProgress, error) {
	if !track.Valid() {
		return nil, ErrUnknownTrack
	}
	challengeID = strings.TrimSpace(challengeID)
	if challengeID == "" {
		return nil, ErrEmptyChallengeID
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	p, loaded := t.load(ctx)
	if !p.RecordCompletion(track, challengeID, t.now()) {
		return p, nil
	}

	t.logger.Info("challenge completed",
		zap.String("track", string(track)),
		zap.String("challenge", challengeID),
		zap.Int("percent", p.Percent[track]),
	)

	// Saving over a record that could not be read would clobber it.
	if loaded {
		t.save(ctx, p)
	}
	return p, nil
}

// RecordActivity prepends a lesson or generic activity and persists the
// record. A zero timestamp is set to now.
func (t *Tracker) RecordActivity(ctx context.Context, a Activity) *UserProgress {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, loaded := t.load(ctx)
	if a.Kind == "" {
		a.Kind = GenericActivity
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = t.now().UTC()
	}
	p.AddActivity(a)
	p.LastUpdated = t.now().UTC()

	if loaded {
		t.save(ctx, p)
	}
	return p
}

func (t *Tracker) save(ctx context.Context, p *UserProgress) {
	if err := t.store.Save(ctx, p); err != nil {
		t.logger.Error("save progress", zap.Error(err))
	}
}

func (t *Tracker) defaultName() string {
	if t.store.Kind() == "local" {
		return GuestName
	}
	return ""
}
