package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// errEmptyOutput is wrapped in ErrInvalidResponse when a provider answers
// without any text.
var errEmptyOutput = errors.New("empty output")

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	msg := "rate limited"
	if e.Provider != "" {
		msg = e.Provider + " " + msg
	}
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the model answered with content that is not
// usable: empty, not JSON, or not matching the requested schema.
type ErrInvalidResponse struct {
	Schema  string
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	if e.Schema != "" {
		return fmt.Sprintf("invalid %s response: %v", e.Schema, e.Err)
	}
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down, unreachable or
// rejected the request.
type ErrProviderUnavailable struct {
	Provider string
	Status   int
	Err      error
}

func (e *ErrProviderUnavailable) Error() string {
	name := e.Provider
	if name == "" {
		name = "LLM provider"
	}
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s unavailable (HTTP %d): %v", name, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s unavailable: %v", name, e.Err)
	default:
		return name + " unavailable"
	}
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates a structured response was cut off at
// MaxTokens and cannot be valid JSON.
type ErrMaxTokensExceeded struct {
	MaxTokens int
	Content   json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	if e.MaxTokens > 0 {
		return fmt.Sprintf("LLM response truncated at %d tokens", e.MaxTokens)
	}
	return "LLM response truncated: max tokens exceeded"
}

// classifyStatus maps an SDK error with its HTTP status onto the error
// types the retry decorator understands. status is 0 when the SDK error
// carried none (network failures).
func classifyStatus(provider string, status int, err error) error {
	if status == http.StatusTooManyRequests {
		return &ErrRateLimit{Provider: provider, Err: err}
	}
	return &ErrProviderUnavailable{Provider: provider, Status: status, Err: err}
}
