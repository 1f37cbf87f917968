package pathgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/devcompass/devcompass/internal/llm"
)

const (
	purposeStructured = "learning-path"
	purposeText       = "learning-path-text"
)

// Service generates learning paths through an LLM provider.
type Service struct {
	provider llm.Provider
	cfg      Config
	logger   *zap.Logger
}

// NewService creates a learning path service.
func NewService(provider llm.Provider, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{provider: provider, cfg: cfg, logger: logger}
}

type pathOutput struct {
	Overview   string            `json:"overview"`
	Duration   string            `json:"duration"`
	Milestones []milestoneOutput `json:"milestones"`
	Tips       []string          `json:"tips"`
}

type milestoneOutput struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	KeyConcepts     []string `json:"key_concepts"`
	Resources       []string `json:"resources"`
	PracticeProject string   `json:"practice_project"`
}

// Generate requests a schema-validated path first and falls back to the
// free-text template and Parse when that fails. Both results pass through
// the same defaults and milestone gate.
func (s *Service) Generate(ctx context.Context, in Input) (*LearningPath, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	lp, err := s.generateStructured(ctx, in)
	if err == nil {
		return lp, nil
	}
	if !s.cfg.TextFallback {
		return nil, err
	}
	s.logger.Warn("structured learning path failed, falling back to text",
		zap.String("goal", in.Goal),
		zap.Error(err),
	)

	lp, textErr := s.generateText(ctx, in)
	if textErr != nil {
		if errors.Is(textErr, ErrInsufficientMilestones) {
			return nil, textErr
		}
		return nil, fmt.Errorf("learning path generation: %w", errors.Join(err, textErr))
	}
	return lp, nil
}

func (s *Service) generateStructured(ctx context.Context, in Input) (*LearningPath, error) {
	ctx = llm.WithPurpose(ctx, purposeStructured)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildStructuredMessage(in)},
		},
		Schema:      LearningPathSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("structured learning path: %w", err)
	}

	var out pathOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse learning path response: %w", err)
	}

	lp := &LearningPath{
		Overview: out.Overview,
		Duration: out.Duration,
		Tips:     cleanList(out.Tips),
	}
	for _, m := range out.Milestones {
		lp.Milestones = append(lp.Milestones, Milestone{
			Title:           m.Title,
			Description:     m.Description,
			KeyConcepts:     cleanList(m.KeyConcepts),
			Resources:       m.Resources,
			PracticeProject: m.PracticeProject,
		})
	}
	return finalize(lp, in)
}

func (s *Service) generateText(ctx context.Context, in Input) (*LearningPath, error) {
	ctx = llm.WithPurpose(ctx, purposeText)

	req := llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildTextMessage(in)},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("text learning path: %w", err)
	}

	s.logger.Debug("learning path text response", zap.Int("bytes", len(resp.Text)))
	return Parse(resp.Text, in)
}
