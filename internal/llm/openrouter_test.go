package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewOpenRouterProvider(t *testing.T) {
	p, err := NewOpenRouterProvider(OpenRouterConfig{
		APIKey: "sk-or-test",
		Model:  "anthropic/claude-3-haiku",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-3-haiku", p.ModelID(), "model ids pass through")

	assert.Equal(t, "openrouter", p.name)

	_, err = NewOpenRouterProvider(OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"}, nil)
	assert.Error(t, err)
}
