package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
	)
	return &AnthropicProvider{
		client: &client,
		model:  "claude-haiku-4-5-20251001",
		logger: zaptest.NewLogger(t),
	}
}

func anthropicErrorHandler(status int, kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": kind, "message": kind},
		})
	}
}

func TestAnthropicProvider_TextResponse(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_test",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": "OVERVIEW: Learn Go\nDURATION: 8 weeks"},
			},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
		})
	})

	resp, err := p.Generate(context.Background(), Request{
		System:    "You are an expert programming mentor.",
		Messages:  []Message{{Role: RoleUser, Content: "Create a learning path."}},
		MaxTokens: 256,
	})
	require.NoError(t, err)
	assert.Equal(t, 50, resp.Usage.InputTokens)
	assert.Equal(t, 80, resp.Usage.TotalTokens)
	assert.Equal(t, "end", resp.StopReason)
	assert.Equal(t, "OVERVIEW: Learn Go\nDURATION: 8 weeks", resp.Text)
	assert.Nil(t, resp.Content, "text requests carry no JSON")
}

func TestAnthropicProvider_ErrorMapping(t *testing.T) {
	_, err := newTestAnthropicProvider(t, anthropicErrorHandler(http.StatusTooManyRequests, "rate_limit_error")).
		Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}, MaxTokens: 10})
	var rl *ErrRateLimit
	require.ErrorAs(t, err, &rl)

	_, err = newTestAnthropicProvider(t, anthropicErrorHandler(http.StatusInternalServerError, "api_error")).
		Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}, MaxTokens: 10})
	var unavail *ErrProviderUnavailable
	require.ErrorAs(t, err, &unavail)
}

func TestAnthropicModelMapping(t *testing.T) {
	assert.Equal(t, "claude-sonnet-4-20250514", resolveModel("claude-sonnet", anthropicModels))
	assert.Equal(t, "claude-haiku-4-5-20251001", resolveModel("claude-haiku", anthropicModels))
	assert.Equal(t, "claude-opus-4-1", resolveModel("claude-opus-4-1", anthropicModels))
}
