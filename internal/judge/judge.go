// Package judge is a client for Judge0-compatible remote code execution.
//
// Code runs asynchronously on the remote side: Submit queues a job and
// returns a token, Result fetches its state, and Run ties the two together
// with a bounded poll loop.
package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Language is a Judge0 language id.
type Language int

const (
	Python     Language = 71 // Python 3.8
	JavaScript Language = 63 // Node.js 12
)

// Status ids reported by Judge0.
const (
	StatusInQueue    = 1
	StatusProcessing = 2
	StatusAccepted   = 3
)

// Config configures the client.
type Config struct {
	// BaseURL is the API root. Default: https://judge0-ce.p.rapidapi.com
	BaseURL string `yaml:"base_url"`

	// APIKey enables the RapidAPI headers when set.
	APIKey string `yaml:"api_key"`

	// Host is sent as X-RapidAPI-Host. Defaults to the BaseURL host.
	Host string `yaml:"host"`

	// PollInterval is the wait between status checks. Default: 1s.
	PollInterval time.Duration `yaml:"poll_interval"`

	// MaxAttempts bounds the number of status checks. Default: 10.
	MaxAttempts int `yaml:"max_attempts"`

	// Timeout applies to each HTTP request. Default: 15s.
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the public Judge0 CE endpoint settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:      "https://judge0-ce.p.rapidapi.com",
		PollInterval: time.Second,
		MaxAttempts:  10,
		Timeout:      15 * time.Second,
	}
}

// Submission is a source program to run.
type Submission struct {
	LanguageID Language `json:"language_id"`
	SourceCode string   `json:"source_code"`
	Stdin      string   `json:"stdin,omitempty"`
}

// Status is the execution state of a submission.
type Status struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Result is the state of a submission as reported by the server.
type Result struct {
	Token         string `json:"token"`
	Status        Status `json:"status"`
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	CompileOutput string `json:"compile_output"`
	Message       string `json:"message"`
	Time          string `json:"time"`
	Memory        int    `json:"memory"`
}

// Pending reports whether the job is still queued or running.
func (r *Result) Pending() bool {
	return r.Status.ID <= StatusProcessing
}

// Accepted reports whether the program ran to completion.
func (r *Result) Accepted() bool {
	return r.Status.ID == StatusAccepted
}

// ErrorText returns the most specific error output available.
func (r *Result) ErrorText() string {
	switch {
	case r.Stderr != "":
		return r.Stderr
	case r.CompileOutput != "":
		return r.CompileOutput
	default:
		return "An error occurred"
	}
}

// ErrNoToken is returned when a submission response carries no token.
var ErrNoToken = errors.New("judge: submission returned no token")

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("judge: HTTP %d: %s", e.StatusCode, e.Body)
}

// Client talks to a Judge0 server.
type Client struct {
	cfg    Config
	base   *url.URL
	http   *http.Client
	logger *zap.Logger
}

// New creates a client. Zero-valued config fields take their defaults.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse judge base URL: %w", err)
	}
	if cfg.Host == "" {
		cfg.Host = base.Host
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		cfg:  cfg,
		base: base,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		},
		logger: logger,
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// Submit queues a program and returns its token.
func (c *Client) Submit(ctx context.Context, sub Submission) (string, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return "", fmt.Errorf("marshal submission: %w", err)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/submissions?base64_encoded=false&wait=false", body, &out); err != nil {
		return "", fmt.Errorf("submit: %w", err)
	}
	if out.Token == "" {
		return "", ErrNoToken
	}
	c.logger.Debug("judge submission queued", zap.String("token", out.Token), zap.Int("language", int(sub.LanguageID)))
	return out.Token, nil
}

// Result fetches the current state of a submission.
func (c *Client) Result(ctx context.Context, token string) (*Result, error) {
	var res Result
	path := "/submissions/" + url.PathEscape(token) + "?base64_encoded=false"
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, fmt.Errorf("fetch result %s: %w", token, err)
	}
	if res.Token == "" {
		res.Token = token
	}
	return &res, nil
}

// Run submits a program and polls until it leaves the queued/processing
// states or MaxAttempts status checks have been made. The last observed
// result is returned either way; callers check Pending.
func (c *Client) Run(ctx context.Context, lang Language, source, stdin string) (*Result, error) {
	token, err := c.Submit(ctx, Submission{LanguageID: lang, SourceCode: source, Stdin: stdin})
	if err != nil {
		return nil, err
	}

	var res *Result
	for attempt := 1; ; attempt++ {
		res, err = c.Result(ctx, token)
		if err != nil {
			return nil, err
		}
		if !res.Pending() || attempt >= c.cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.cfg.PollInterval):
		}
	}

	c.logger.Debug("judge result",
		zap.String("token", token),
		zap.Int("status", res.Status.ID),
		zap.String("description", res.Status.Description),
	)
	return res, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("X-RapidAPI-Key", c.cfg.APIKey)
		req.Header.Set("X-RapidAPI-Host", c.cfg.Host)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
