package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle", DSN: "x"})
	require.Error(t, err)
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	s1, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

type profile struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Score int    `json:"score"`
}

func TestDocumentGetMissing(t *testing.T) {
	repo := openTestStore(t).DocumentRepo()

	doc, err := repo.Get(context.Background(), "users", "nobody")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestDocumentSetAndGet(t *testing.T) {
	repo := openTestStore(t).DocumentRepo()
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "users", "u1", profile{Name: "Ada", Score: 3}))

	doc, err := repo.Get(ctx, "users", "u1")
	require.NoError(t, err)
	require.NotNil(t, doc)

	var p profile
	require.NoError(t, doc.Decode(&p))
	assert.Equal(t, profile{Name: "Ada", Score: 3}, p)
	assert.False(t, doc.CreatedAt.IsZero())
}

func TestDocumentSetReplacesWholeDocument(t *testing.T) {
	repo := openTestStore(t).DocumentRepo()
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "users", "u1", profile{Name: "Ada", Email: "ada@example.com"}))
	first, err := repo.Get(ctx, "users", "u1")
	require.NoError(t, err)

	require.NoError(t, repo.Set(ctx, "users", "u1", profile{Name: "Grace"}))
	doc, err := repo.Get(ctx, "users", "u1")
	require.NoError(t, err)

	var p profile
	require.NoError(t, doc.Decode(&p))
	assert.Equal(t, "Grace", p.Name)
	assert.Empty(t, p.Email)
	assert.Equal(t, first.CreatedAt, doc.CreatedAt, "replace keeps creation time")
	assert.True(t, doc.UpdatedAt.After(first.UpdatedAt))
}

func TestDocumentMergePreservesOtherFields(t *testing.T) {
	repo := openTestStore(t).DocumentRepo()
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "users", "u1", profile{Name: "Ada", Email: "ada@example.com", Score: 1}))
	require.NoError(t, repo.Merge(ctx, "users", "u1", map[string]any{"score": 5}))

	doc, err := repo.Get(ctx, "users", "u1")
	require.NoError(t, err)

	var p profile
	require.NoError(t, doc.Decode(&p))
	assert.Equal(t, profile{Name: "Ada", Email: "ada@example.com", Score: 5}, p)
}

func TestDocumentMergeCreatesMissing(t *testing.T) {
	repo := openTestStore(t).DocumentRepo()
	ctx := context.Background()

	require.NoError(t, repo.Merge(ctx, "users", "new", map[string]any{"name": "Lin"}))

	doc, err := repo.Get(ctx, "users", "new")
	require.NoError(t, err)
	require.NotNil(t, doc)

	var p profile
	require.NoError(t, doc.Decode(&p))
	assert.Equal(t, "Lin", p.Name)
}

func TestDocumentCreateListCountDelete(t *testing.T) {
	repo := openTestStore(t).DocumentRepo()
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"first", "second", "third"} {
		id, err := repo.Create(ctx, "posts", profile{Name: name})
		require.NoError(t, err)
		require.NotEmpty(t, id)
		ids = append(ids, id)
	}
	require.NoError(t, repo.Set(ctx, "other", "x", profile{Name: "elsewhere"}))

	n, err := repo.Count(ctx, "posts")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	oldest, err := repo.List(ctx, "posts", ListOpts{})
	require.NoError(t, err)
	require.Len(t, oldest, 3)
	assert.Equal(t, ids[0], oldest[0].ID)

	newest, err := repo.List(ctx, "posts", ListOpts{Newest: true, Limit: 2})
	require.NoError(t, err)
	require.Len(t, newest, 2)
	assert.Equal(t, ids[2], newest[0].ID)
	assert.Equal(t, ids[1], newest[1].ID)

	require.NoError(t, repo.Delete(ctx, "posts", ids[0]))
	require.NoError(t, repo.Delete(ctx, "posts", "missing"))

	n, err = repo.Count(ctx, "posts")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestLLMEventsAppendQueryAggregate(t *testing.T) {
	repo := openTestStore(t).EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "learning-path", InputTokens: 100, OutputTokens: 400, LatencyMs: 900, Success: true},
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "learning-path", InputTokens: 120, OutputTokens: 300, LatencyMs: 1100, Success: true},
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "learning-path-text", LatencyMs: 50, Success: false, ErrorMessage: "boom"},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	got, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "learning-path-text", got[0].Purpose, "newest first")
	assert.False(t, got[0].Success)
	assert.Equal(t, "boom", got[0].ErrorMessage)

	one, err := repo.GetLLMEvent(ctx, got[1].ID)
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, 120, one.InputTokens)

	missing, err := repo.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, PurposeUsage{Purpose: "learning-path", Calls: 2, InputTokens: 220, OutputTokens: 700, AvgLatencyMs: 1000}, byPurpose[0])

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 1)
	assert.Equal(t, 2, byModel[0].Calls, "failed calls are not billed")

	future, err := repo.QueryLLMEvents(ctx, QueryOpts{From: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, future)
}
