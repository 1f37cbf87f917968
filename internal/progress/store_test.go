package progress

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/devcompass/devcompass/internal/store"
)

func openDocs(t *testing.T) store.DocumentRepo {
	t.Helper()
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st.DocumentRepo()
}

func openLocal(t *testing.T) *LocalStore {
	t.Helper()
	s, err := OpenLocalStore(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func rawLocal(t *testing.T, s *LocalStore) map[string]any {
	t.Helper()
	var out map[string]any
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(LocalKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		})
	})
	require.NoError(t, err)
	return out
}

func TestRemoteStoreCreatesOnFirstLoad(t *testing.T) {
	docs := openDocs(t)
	ctx := context.Background()
	s := NewRemoteStore(docs, Profile{UID: "u1", Name: "Ada", Email: "ada@example.com"})

	p, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.Name)
	assert.Equal(t, 0, p.Percent[Python])

	doc, err := docs.Get(ctx, "users", "u1")
	require.NoError(t, err)
	require.NotNil(t, doc, "document created on first access")

	var raw map[string]any
	require.NoError(t, doc.Decode(&raw))
	assert.Equal(t, "ada@example.com", raw["email"])
	assert.EqualValues(t, 0, raw["pythonProgress"])
}

func TestRemoteStoreMissingFieldsDefault(t *testing.T) {
	docs := openDocs(t)
	ctx := context.Background()
	require.NoError(t, docs.Set(ctx, "users", "u2", map[string]any{"name": "Lin", "email": "lin@example.com"}))

	p, err := NewRemoteStore(docs, Profile{UID: "u2"}).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Lin", p.Name)
	assert.Equal(t, 0, p.Streak)
	assert.Empty(t, p.Completed[Python])
	assert.Empty(t, p.RecentActivities)
}

func TestRemoteStoreSaveMergesProfile(t *testing.T) {
	docs := openDocs(t)
	ctx := context.Background()
	require.NoError(t, docs.Set(ctx, "users", "u3", map[string]any{
		"name": "Grace", "email": "grace@example.com", "profilePicture": "https://example.com/g.png",
	}))

	s := NewRemoteStore(docs, Profile{UID: "u3"})
	p, err := s.Load(ctx)
	require.NoError(t, err)
	p.RecordCompletion(JavaScript, "classes", day0)
	require.NoError(t, s.Save(ctx, p))

	again, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"classes"}, again.Completed[JavaScript])
	assert.Equal(t, 8, again.Percent[JavaScript])
	assert.Equal(t, "https://example.com/g.png", again.PictureURL)
	assert.Equal(t, "grace@example.com", again.Email)
}

func TestLocalStoreInitializesGuestRecord(t *testing.T) {
	s := openLocal(t)
	ctx := context.Background()

	peek, err := s.Peek(ctx)
	require.NoError(t, err)
	assert.Nil(t, peek)

	p, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, GuestName, p.Name)

	raw := rawLocal(t, s)
	assert.EqualValues(t, 0, raw["pythonProgress"])
	assert.NotEmpty(t, raw["lastUpdated"])
}

func TestLocalStoreClear(t *testing.T) {
	s := openLocal(t)
	ctx := context.Background()

	_, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Clear(ctx))

	peek, err := s.Peek(ctx)
	require.NoError(t, err)
	assert.Nil(t, peek)
}

func TestLocalStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenLocalStore(dir, nil)
	require.NoError(t, err)
	p, err := s.Load(ctx)
	require.NoError(t, err)
	p.RecordCompletion(Python, "strings", day0)
	require.NoError(t, s.Save(ctx, p))
	require.NoError(t, s.Close())

	s, err = OpenLocalStore(dir, nil)
	require.NoError(t, err)
	defer s.Close()

	again, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"strings"}, again.Completed[Python])
}
