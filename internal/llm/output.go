package llm

import (
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
)

// rawOutput is what a provider received before it becomes a Response.
type rawOutput struct {
	text       string
	usage      Usage
	model      string
	stopReason string
}

// finish turns a provider's raw output into a Response. Text requests get
// the trimmed prose in Response.Text. Schema requests get the JSON, with any
// markdown code fence removed, validated into Response.Content; a response
// cut off at MaxTokens is rejected since it cannot be complete JSON.
func finish(req Request, out rawOutput) (*Response, error) {
	text := strings.TrimSpace(out.text)
	resp := &Response{
		Usage:      out.usage,
		Model:      out.model,
		StopReason: out.stopReason,
	}

	if req.Schema == nil {
		if text == "" {
			return nil, &ErrInvalidResponse{Err: errEmptyOutput}
		}
		resp.Text = text
		return resp, nil
	}

	body := json.RawMessage(stripCodeFence(text))
	if len(body) == 0 {
		return nil, &ErrInvalidResponse{Schema: req.Schema.Name, Err: errEmptyOutput}
	}
	if out.stopReason == "max_tokens" {
		return nil, &ErrMaxTokensExceeded{MaxTokens: req.MaxTokens, Content: body}
	}
	if err := validateJSON(req.Schema, body); err != nil {
		return nil, err
	}
	resp.Content = body
	return resp, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models put around
// structured output.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// debugCall is the per-provider debug hook, logged once per Generate.
func debugCall(logger *zap.Logger, provider, model string, req Request, start time.Time, resp *Response, err error) {
	if ce := logger.Check(zap.DebugLevel, "llm call"); ce != nil {
		fields := []zap.Field{
			zap.String("provider", provider),
			zap.String("model", model),
			zap.Bool("structured", req.Schema != nil),
			zap.Int("max_tokens", req.MaxTokens),
			zap.Duration("elapsed", time.Since(start)),
		}
		if resp != nil {
			fields = append(fields,
				zap.String("stop_reason", resp.StopReason),
				zap.Int("input_tokens", resp.Usage.InputTokens),
				zap.Int("output_tokens", resp.Usage.OutputTokens),
				zap.Int("bytes", len(resp.Body())),
			)
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		ce.Write(fields...)
	}
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
