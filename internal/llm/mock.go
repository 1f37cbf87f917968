package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned answer for MockProvider. Content is used for
// structured requests and Text for plain ones; whichever is set goes through
// the same schema validation a real provider applies.
type MockResponse struct {
	Content    json.RawMessage
	Text       string
	Usage      Usage
	StopReason string
	Err        error
}

// MockProvider is a deterministic Provider for tests and the "mock"
// provider setting. Responses are served in FIFO order and every request is
// recorded in Calls.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate serves the next canned response. An exhausted queue reports
// ErrProviderUnavailable, like a provider that is down.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	if len(m.responses) == 0 {
		m.mu.Unlock()
		return nil, &ErrProviderUnavailable{Provider: "mock"}
	}
	next := m.responses[0]
	m.responses = m.responses[1:]
	m.mu.Unlock()

	if next.Err != nil {
		return nil, next.Err
	}

	text := next.Text
	if text == "" {
		text = string(next.Content)
	}
	stop := next.StopReason
	if stop == "" {
		stop = "end"
	}
	return finish(req, rawOutput{text: text, usage: next.Usage, model: "mock", stopReason: stop})
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
