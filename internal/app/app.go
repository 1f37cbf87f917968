// Package app wires configuration, storage and services into the object
// graph every command runs against.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/devcompass/devcompass/internal/auth"
	"github.com/devcompass/devcompass/internal/challenges"
	"github.com/devcompass/devcompass/internal/community"
	"github.com/devcompass/devcompass/internal/config"
	"github.com/devcompass/devcompass/internal/judge"
	"github.com/devcompass/devcompass/internal/llm"
	"github.com/devcompass/devcompass/internal/pathgen"
	"github.com/devcompass/devcompass/internal/progress"
	"github.com/devcompass/devcompass/internal/session"
	"github.com/devcompass/devcompass/internal/store"
)

// App holds the long-lived dependencies of one invocation.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	Store     *store.Store
	Guest     *progress.LocalStore
	Auth      *auth.Service
	Sessions  *session.Manager
	Community *community.Service

	mu    sync.Mutex
	judge *judge.Client
	llm   llm.Provider
}

// Open creates the data directory, opens the document store and the guest
// store, and restores the signed-in session.
func Open(cfg *config.Config, logger *zap.Logger) (_ *App, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	a := &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.Store, err = store.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a.Guest, err = progress.OpenLocalStore(cfg.GuestDir(), logger.Named("guest"))
	if err != nil {
		return nil, err
	}

	authCfg := cfg.Auth
	if authCfg.Secret == "" {
		authCfg.Secret, err = auth.LoadOrCreateSecret(cfg.SecretFile())
		if err != nil {
			return nil, err
		}
	}
	docs := a.Store.DocumentRepo()
	a.Auth, err = auth.NewService(docs, authCfg, cfg.SessionFile(), logger.Named("auth"))
	if err != nil {
		return nil, err
	}

	a.Sessions, err = session.NewManager(a.Auth, docs, a.Guest, logger.Named("session"))
	if err != nil {
		return nil, err
	}
	a.Community = community.NewService(docs, logger.Named("community"))

	logger.Debug("app opened",
		zap.String("data_dir", cfg.DataDir),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("signed_in", a.Sessions.Current().SignedIn()),
	)
	return a, nil
}

// Judge returns the code execution client, creating it on first use.
func (a *App) Judge() (*judge.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.judge == nil {
		c, err := judge.New(a.Config.Judge, a.Logger.Named("judge"))
		if err != nil {
			return nil, err
		}
		a.judge = c
	}
	return a.judge, nil
}

// Challenges returns the challenge service backed by the judge client.
func (a *App) Challenges() (*challenges.Service, error) {
	j, err := a.Judge()
	if err != nil {
		return nil, err
	}
	return challenges.NewService(j, a.Logger.Named("challenges")), nil
}

// LLM returns the configured provider, creating it on first use. Every
// request is recorded in the store's event log.
func (a *App) LLM(ctx context.Context) (llm.Provider, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.llm == nil {
		if err := a.Config.LLM.Validate(); err != nil {
			return nil, fmt.Errorf("LLM provider not configured: %w", err)
		}
		p, err := llm.NewProvider(ctx, a.Config.LLM, a.Store.EventRepo(), a.Logger.Named("llm"))
		if err != nil {
			return nil, err
		}
		a.llm = p
	}
	return a.llm, nil
}

// Paths returns the learning path generator.
func (a *App) Paths(ctx context.Context) (*pathgen.Service, error) {
	p, err := a.LLM(ctx)
	if err != nil {
		return nil, err
	}
	return pathgen.NewService(p, pathgen.DefaultConfig(), a.Logger.Named("pathgen")), nil
}

// GeneratePath generates a learning path and records it in the current
// session's activity feed. Guests may generate paths too.
func (a *App) GeneratePath(ctx context.Context, in pathgen.Input) (*pathgen.LearningPath, error) {
	svc, err := a.Paths(ctx)
	if err != nil {
		return nil, err
	}
	lp, err := svc.Generate(ctx, in)
	if err != nil {
		return nil, err
	}
	a.Sessions.Current().Tracker.RecordActivity(ctx, progress.Activity{
		Kind:        progress.GenericActivity,
		Description: fmt.Sprintf("Generated a %s learning path for %s", in.SkillLevel, in.Goal),
	})
	return lp, nil
}

// Close releases everything Open acquired.
func (a *App) Close() error {
	var errs []error
	if a.judge != nil {
		a.judge.Close()
	}
	if a.Guest != nil {
		errs = append(errs, a.Guest.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}
