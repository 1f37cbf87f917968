package llm

import "context"

// UnknownPurpose labels calls made without WithPurpose.
const UnknownPurpose = "unknown"

type purposeKey struct{}

// WithPurpose labels every LLM call made with ctx, e.g. "learning-path".
// The label ends up in the event log and in debug logs.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	if purpose == "" {
		purpose = UnknownPurpose
	}
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or UnknownPurpose.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok {
		return v
	}
	return UnknownPurpose
}
