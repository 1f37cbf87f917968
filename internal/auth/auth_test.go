package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/devcompass/devcompass/internal/store"
)

func newTestService(t *testing.T) (*Service, store.DocumentRepo) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.OpenSQLite(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := DefaultConfig()
	cfg.Secret = "test-secret"
	cfg.BcryptCost = bcrypt.MinCost

	svc, err := NewService(st.DocumentRepo(), cfg, filepath.Join(dir, "session.jwt"), zaptest.NewLogger(t))
	require.NoError(t, err)
	return svc, st.DocumentRepo()
}

func TestSignUpCreatesAccountAndProfile(t *testing.T) {
	svc, docs := newTestService(t)
	ctx := context.Background()

	id, err := svc.SignUp(ctx, "Ada", " Ada@Example.com ", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, id.UID)
	assert.Equal(t, "ada@example.com", id.Email)

	doc, err := docs.Get(ctx, "users", id.UID)
	require.NoError(t, err)
	require.NotNil(t, doc)
	var p profile
	require.NoError(t, doc.Decode(&p))
	assert.Equal(t, "Ada", p.Name)

	cur, err := svc.Current()
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, id.UID, cur.UID)
	assert.Equal(t, "Ada", cur.Name)
}

func TestSignUpValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "", "a@b.co", "secret1")
	assert.ErrorIs(t, err, ErrEmptyField)

	_, err = svc.SignUp(ctx, "Ada", "not-an-email", "secret1")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.SignUp(ctx, "Ada", "a@b.co", "123")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = svc.SignUp(ctx, "Ada", "a@b.co", "secret1")
	require.NoError(t, err)
	_, err = svc.SignUp(ctx, "Other", "A@B.co", "secret2")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignInAndOut(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.SignUp(ctx, "Lin", "lin@example.com", "password")
	require.NoError(t, err)
	require.NoError(t, svc.SignOut())

	cur, err := svc.Current()
	require.NoError(t, err)
	assert.Nil(t, cur)

	_, err = svc.SignIn(ctx, "lin@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.SignIn(ctx, "nobody@example.com", "password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	id, err := svc.SignIn(ctx, "LIN@example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, created.UID, id.UID)
	assert.Equal(t, "Lin", id.Name)

	require.NoError(t, svc.SignOut())
	require.NoError(t, svc.SignOut(), "second sign-out is a no-op")
}

func TestCurrentDiscardsExpiredToken(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SignUp(context.Background(), "Ada", "ada@example.com", "password")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }

	cur, err := svc.Current()
	require.NoError(t, err)
	assert.Nil(t, cur)
	_, statErr := os.Stat(svc.sessionFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCurrentRejectsForeignSignature(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.SignUp(context.Background(), "Ada", "ada@example.com", "password")
	require.NoError(t, err)

	svc.secret = []byte("another-secret")
	cur, err := svc.Current()
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestLoadOrCreateSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "secret")

	first, err := LoadOrCreateSecret(path)
	require.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := LoadOrCreateSecret(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNewServiceRequiresSecret(t *testing.T) {
	_, err := NewService(nil, Config{}, "", nil)
	assert.Error(t, err)
}
