package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/devcompass/devcompass/internal/auth"
	"github.com/devcompass/devcompass/internal/progress"
	"github.com/devcompass/devcompass/internal/store"
)

type fixture struct {
	docs  store.DocumentRepo
	auth  *auth.Service
	guest *progress.LocalStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	st, err := store.OpenSQLite(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	guest, err := progress.OpenLocalStore(filepath.Join(dir, "guest"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { guest.Close() })

	a, err := auth.NewService(st.DocumentRepo(), auth.Config{
		Secret:     "test-secret",
		BcryptCost: bcrypt.MinCost,
	}, filepath.Join(dir, "session.jwt"), zaptest.NewLogger(t))
	require.NoError(t, err)

	return &fixture{docs: st.DocumentRepo(), auth: a, guest: guest}
}

func (f *fixture) manager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(f.auth, f.docs, f.guest, zaptest.NewLogger(t))
	require.NoError(t, err)
	return m
}

func TestNewManagerStartsAsGuest(t *testing.T) {
	m := newFixture(t).manager(t)

	s := m.Current()
	assert.False(t, s.SignedIn())
	assert.Empty(t, s.UID())
	assert.Equal(t, "local", s.Store().Kind())
}

func TestBackendFollowsAuthTransitions(t *testing.T) {
	f := newFixture(t)
	m := f.manager(t)
	ctx := context.Background()

	s, err := m.SignUp(ctx, "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.True(t, s.SignedIn())
	assert.Equal(t, "remote", s.Store().Kind())
	assert.Same(t, s, m.Current())

	s, err = m.SignOut()
	require.NoError(t, err)
	assert.False(t, s.SignedIn())
	assert.Equal(t, "local", s.Store().Kind())

	s, err = m.SignIn(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", s.Identity.Name)
	assert.Equal(t, "remote", s.Store().Kind())
	assert.Same(t, s, m.Current())
}

func TestSignInRestoredOnRestart(t *testing.T) {
	f := newFixture(t)
	_, err := f.manager(t).SignUp(context.Background(), "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)

	s := f.manager(t).Current()
	require.True(t, s.SignedIn())
	assert.Equal(t, "ada@example.com", s.Identity.Email)
}

func TestFailedSignInKeepsSession(t *testing.T) {
	m := newFixture(t).manager(t)
	before := m.Current()

	_, err := m.SignIn(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Same(t, before, m.Current())
}

func TestSignUpMigratesGuestProgress(t *testing.T) {
	f := newFixture(t)
	m := f.manager(t)
	ctx := context.Background()

	_, err := m.Current().Tracker.RecordCompletion(ctx, progress.Python, "loops")
	require.NoError(t, err)
	_, err = m.Current().Tracker.RecordCompletion(ctx, progress.JavaScript, "arrays")
	require.NoError(t, err)

	s, err := m.SignUp(ctx, "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)

	p := s.Tracker.Load(ctx)
	assert.Equal(t, "Ada", p.Name)
	assert.Equal(t, []string{"loops"}, p.Completed[progress.Python])
	assert.Equal(t, 10, p.Percent[progress.Python])
	assert.Equal(t, []string{"arrays"}, p.Completed[progress.JavaScript])
	assert.Len(t, p.RecentActivities, 2)

	guest, err := f.guest.Peek(ctx)
	require.NoError(t, err)
	assert.Nil(t, guest, "guest record cleared after migration")
}

func TestSignInDoesNotMigrate(t *testing.T) {
	f := newFixture(t)
	m := f.manager(t)
	ctx := context.Background()

	_, err := m.SignUp(ctx, "Ada", "ada@example.com", "secret1")
	require.NoError(t, err)
	_, err = m.SignOut()
	require.NoError(t, err)

	_, err = m.Current().Tracker.RecordCompletion(ctx, progress.Python, "loops")
	require.NoError(t, err)

	s, err := m.SignIn(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Empty(t, s.Tracker.Load(ctx).Completed[progress.Python])

	guest, err := f.guest.Peek(ctx)
	require.NoError(t, err)
	require.NotNil(t, guest)
	assert.Equal(t, []string{"loops"}, guest.Completed[progress.Python])
}
