package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/devcompass/devcompass/internal/store"
)

func TestMockProvider(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: "plain answer", Usage: Usage{InputTokens: 10}},
		MockResponse{Err: &ErrRateLimit{}},
	)

	resp, err := mock.Generate(context.Background(), Request{System: "sys"})
	require.NoError(t, err)
	assert.Equal(t, "plain answer", resp.Text)
	assert.Nil(t, resp.Content)
	assert.Equal(t, 10, resp.Usage.InputTokens)

	_, err = mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	require.ErrorAs(t, err, &rl)

	_, err = mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	require.ErrorAs(t, err, &unavail, "empty queue")

	assert.Equal(t, 3, mock.CallCount())
	assert.Equal(t, "sys", mock.Calls[0].System)
}

func TestMockProvider_ValidatesStructuredResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"name":"Ada","age":36}`)},
		MockResponse{Content: json.RawMessage(`{"name":"Ada"}`)},
	)
	req := Request{Schema: testSchema()}

	resp, err := mock.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Ada","age":36}`, string(resp.Content))
	assert.Empty(t, resp.Text)

	_, err = mock.Generate(context.Background(), req)
	var inv *ErrInvalidResponse
	require.ErrorAs(t, err, &inv)
}

func TestFinish(t *testing.T) {
	structured := Request{Schema: testSchema(), MaxTokens: 64}
	plain := Request{MaxTokens: 64}

	tests := []struct {
		name        string
		req         Request
		out         rawOutput
		wantText    string
		wantContent string
		wantErr     any
	}{
		{name: "text is trimmed", req: plain, out: rawOutput{text: "\n OVERVIEW: Go \n"}, wantText: "OVERVIEW: Go"},
		{name: "text that looks like json stays text", req: plain, out: rawOutput{text: `"quoted"`}, wantText: `"quoted"`},
		{name: "truncated text is kept", req: plain, out: rawOutput{text: "1. Basics", stopReason: "max_tokens"}, wantText: "1. Basics"},
		{name: "empty text", req: plain, out: rawOutput{text: "  "}, wantErr: &ErrInvalidResponse{}},
		{name: "json", req: structured, out: rawOutput{text: `{"name":"Ada","age":1}`}, wantContent: `{"name":"Ada","age":1}`},
		{name: "fenced json", req: structured, out: rawOutput{text: "```json\n{\"name\":\"Ada\",\"age\":1}\n```"}, wantContent: `{"name":"Ada","age":1}`},
		{name: "empty json", req: structured, out: rawOutput{text: "```\n```"}, wantErr: &ErrInvalidResponse{}},
		{name: "truncated json", req: structured, out: rawOutput{text: `{"name":`, stopReason: "max_tokens"}, wantErr: &ErrMaxTokensExceeded{}},
		{name: "schema mismatch", req: structured, out: rawOutput{text: `{"name":"Ada"}`}, wantErr: &ErrInvalidResponse{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := finish(tt.req, tt.out)
			switch want := tt.wantErr.(type) {
			case *ErrInvalidResponse:
				require.ErrorAs(t, err, &want)
				return
			case *ErrMaxTokensExceeded:
				require.ErrorAs(t, err, &want)
				assert.Equal(t, 64, want.MaxTokens)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, resp.Text)
			if tt.wantContent == "" {
				assert.Nil(t, resp.Content)
			} else {
				assert.JSONEq(t, tt.wantContent, string(resp.Content))
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "gemini unavailable (HTTP 503): overloaded",
		(&ErrProviderUnavailable{Provider: "gemini", Status: 503, Err: errors.New("overloaded")}).Error())
	assert.Equal(t, "LLM provider unavailable", (&ErrProviderUnavailable{}).Error())
	assert.Equal(t, "openai rate limited (retry after 2s)", (&ErrRateLimit{Provider: "openai", RetryAfter: 2 * time.Second}).Error())

	var rl *ErrRateLimit
	assert.ErrorAs(t, classifyStatus("openai", 429, errors.New("slow")), &rl)
	var unavail *ErrProviderUnavailable
	require.ErrorAs(t, classifyStatus("openai", 401, errors.New("key")), &unavail)
	assert.Equal(t, 401, unavail.Status)
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, UnknownPurpose, PurposeFrom(ctx))
	assert.Equal(t, "learning-path", PurposeFrom(WithPurpose(ctx, "learning-path")))
	assert.Equal(t, UnknownPurpose, PurposeFrom(WithPurpose(ctx, "")))
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("DEVCOMPASS_LLM_PROVIDER", "openrouter")
	t.Setenv("DEVCOMPASS_OPENROUTER_API_KEY", "sk-or")
	t.Setenv("DEVCOMPASS_GEMINI_MODEL", "gemini-2.5-flash")

	cfg := ConfigFromEnv()
	assert.Equal(t, "openrouter", cfg.Provider)
	assert.Equal(t, "sk-or", cfg.OpenRouter.APIKey)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.True(t, cfg.HasKey())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"gemini without key", Config{Provider: "gemini"}, true},
		{"gemini with key", Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "k"}}, false},
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"openai with key", Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "k"}}, false},
		{"openrouter without key", Config{Provider: "openrouter"}, true},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "llama"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() = %v", err)
		})
	}
}

type recordingEventRepo struct {
	store.EventRepo
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingEventRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return r.err
}

func TestLoggingProvider_RecordsEvents(t *testing.T) {
	repo := &recordingEventRepo{}
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"ok":true}`), Usage: Usage{InputTokens: 7, OutputTokens: 3}},
		MockResponse{Err: errors.New("boom")},
	)
	p := WithLogging(mock, "gemini", repo, zap.NewNop())

	ctx := WithPurpose(context.Background(), "learning-path")
	_, err := p.Generate(ctx, Request{System: "mentor", Messages: []Message{{Role: RoleUser, Content: "go"}}})
	require.NoError(t, err)
	_, err = p.Generate(ctx, Request{})
	require.Error(t, err)

	require.Len(t, repo.events, 2)
	first := repo.events[0]
	assert.Equal(t, "gemini", first.Provider)
	assert.Equal(t, "mock", first.Model)
	assert.Equal(t, "learning-path", first.Purpose)
	assert.True(t, first.Success)
	assert.Equal(t, 7, first.InputTokens)
	assert.Contains(t, first.RequestBody, "[system]\nmentor")
	assert.Contains(t, first.RequestBody, "[user]\ngo")
	assert.Equal(t, `{"ok":true}`, first.ResponseBody)

	assert.False(t, repo.events[1].Success)
	assert.Equal(t, "boom", repo.events[1].ErrorMessage)
}

func TestLoggingProvider_EventFailureDoesNotFailRequest(t *testing.T) {
	repo := &recordingEventRepo{err: errors.New("disk full")}
	p := WithLogging(NewMockProvider(okResponse()), "mock", repo, nil)

	_, err := p.Generate(context.Background(), Request{})
	assert.NoError(t, err)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())

	_, err = NewProvider(context.Background(), Config{Provider: "openai"}, nil, zap.NewNop())
	assert.Error(t, err, "missing key")

	_, err = NewProvider(context.Background(), Config{Provider: "llama"}, nil, zap.NewNop())
	assert.Error(t, err)
}
