package store

import (
	"context"
	"encoding/json"
	"time"
)

// Document is a JSON record addressed by collection and id.
type Document struct {
	Collection string
	ID         string
	Data       json.RawMessage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Decode unmarshals the document data into v.
func (d *Document) Decode(v any) error {
	return json.Unmarshal(d.Data, v)
}

// ListOpts configures document listing.
type ListOpts struct {
	Limit  int  // max results (0 = unlimited)
	Newest bool // order by creation time descending instead of ascending
}

// DocumentRepo is a small document store: point lookups, full replace,
// shallow merge updates and ordered listing per collection.
type DocumentRepo interface {
	// Get returns the document, or nil if it doesn't exist.
	Get(ctx context.Context, collection, id string) (*Document, error)

	// Set creates or fully replaces a document.
	Set(ctx context.Context, collection, id string, data any) error

	// Merge overlays the top-level fields onto the document, creating it if
	// it doesn't exist. Fields not named are preserved.
	Merge(ctx context.Context, collection, id string, fields map[string]any) error

	// Create stores a new document under a generated id and returns the id.
	Create(ctx context.Context, collection string, data any) (string, error)

	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error

	// List returns the documents of a collection ordered by creation time.
	List(ctx context.Context, collection string, opts ListOpts) ([]*Document, error)

	// Count returns the number of documents in a collection.
	Count(ctx context.Context, collection string) (int, error)
}

// QueryOpts configures event queries.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	From  time.Time // timestamp >= From
	To    time.Time // timestamp <= To
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM token usage for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo records and queries LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if it doesn't exist.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}
