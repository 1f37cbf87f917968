package challenges

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/devcompass/devcompass/internal/judge"
	"github.com/devcompass/devcompass/internal/progress"
)

// ErrEmptySource is returned when an attempt carries no code.
var ErrEmptySource = errors.New("write some code before running it")

// Executor runs source code remotely. *judge.Client implements it.
type Executor interface {
	Run(ctx context.Context, lang judge.Language, source, stdin string) (*judge.Result, error)
}

// Recorder persists completions. *progress.Tracker implements it.
type Recorder interface {
	RecordCompletion(ctx context.Context, track progress.Track, challengeID string) (*progress.UserProgress, error)
}

// Outcome is the result of one attempt.
type Outcome struct {
	Challenge *Challenge

	// Passed is true when the program ran and its output solved the
	// challenge.
	Passed bool

	// Output is the program's stdout.
	Output string

	// Error is the execution error shown to the user, empty on success.
	Error string

	// Progress is the updated record after a passing attempt.
	Progress *progress.UserProgress
}

// Service runs challenge attempts.
type Service struct {
	exec   Executor
	logger *zap.Logger
}

// NewService creates a challenge service.
func NewService(exec Executor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{exec: exec, logger: logger}
}

// Attempt runs source against a challenge and records the completion
// through rec when the output is correct.
func (s *Service) Attempt(ctx context.Context, rec Recorder, track progress.Track, id, source string) (*Outcome, error) {
	ch, err := Get(track, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(source) == "" {
		return nil, ErrEmptySource
	}
	lang, err := Language(track)
	if err != nil {
		return nil, err
	}

	res, err := s.exec.Run(ctx, lang, source, "")
	if err != nil {
		return nil, fmt.Errorf("execute %s/%s: %w", track, id, err)
	}

	out := &Outcome{Challenge: ch, Output: res.Stdout}
	if !res.Accepted() {
		out.Error = res.ErrorText()
		s.logger.Debug("attempt did not run",
			zap.String("challenge", id),
			zap.Int("status", res.Status.ID),
		)
		return out, nil
	}

	out.Passed = ch.Check(res.Stdout)
	s.logger.Info("challenge attempt",
		zap.String("track", string(track)),
		zap.String("challenge", id),
		zap.Bool("passed", out.Passed),
	)
	if !out.Passed {
		return out, nil
	}

	p, err := rec.RecordCompletion(ctx, track, id)
	if err != nil {
		return nil, fmt.Errorf("record completion: %w", err)
	}
	out.Progress = p
	return out, nil
}
