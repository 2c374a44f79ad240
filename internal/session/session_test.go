package session_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdash/internal/service"
	"taskdash/internal/session"
	"taskdash/internal/testutil"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	s := session.NewFileStore(path)

	_, err := s.Load()
	require.ErrorIs(t, err, session.ErrNoSession)

	require.NoError(t, s.Save("abc"))
	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	dir, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dir.Mode().Perm())

	require.NoError(t, s.Clear())
	_, err = s.Load()
	require.ErrorIs(t, err, session.ErrNoSession)
	require.NoError(t, s.Clear(), "clearing an empty store is fine")
}

func TestFileStore_BlankFileIsNoSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte(" \n"), 0600))

	_, err := session.NewFileStore(path).Load()

	require.ErrorIs(t, err, session.ErrNoSession)
}

func TestMemoryStore(t *testing.T) {
	s := session.NewMemoryStore("")
	_, err := s.Load()
	require.ErrorIs(t, err, session.ErrNoSession)

	require.NoError(t, s.Save("tok"))
	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", got)

	require.NoError(t, s.Clear())
	_, err = s.Load()
	require.ErrorIs(t, err, session.ErrNoSession)
}

func TestManager_Current(t *testing.T) {
	token := testutil.Token("Ana", "ana@example.com")
	m := session.NewManager(session.NewMemoryStore(token), logr.Discard())

	s, err := m.Current()

	require.NoError(t, err)
	assert.Equal(t, session.Session{Name: "Ana", Email: "ana@example.com", Token: token}, s)
}

func TestManager_NameFallsBackToEmail(t *testing.T) {
	m := session.NewManager(session.NewMemoryStore(testutil.Token("", "ana@example.com")), logr.Discard())

	s, err := m.Current()

	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", s.Name)
}

func TestManager_UndecodableIsNoSession(t *testing.T) {
	for _, token := range []string{"garbage", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.bm90IGpzb24.sig"} {
		m := session.NewManager(session.NewMemoryStore(token), logr.Discard())

		_, err := m.Current()

		assert.ErrorIs(t, err, session.ErrNoSession, token)
	}
}

func TestManager_BeginAndEnd(t *testing.T) {
	store := session.NewMemoryStore("")
	m := session.NewManager(store, logr.Discard())

	s, err := m.Begin(testutil.Token("Ana", "ana@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "Ana", s.Name)

	require.NoError(t, m.End())
	_, err = m.Current()
	require.ErrorIs(t, err, session.ErrNoSession)
}

func TestManager_BeginRejectsUnusableCredential(t *testing.T) {
	store := session.NewMemoryStore("")
	m := session.NewManager(store, logr.Discard())

	_, err := m.Begin("garbage")

	require.ErrorIs(t, err, session.ErrNoSession)
	_, err = store.Load()
	require.ErrorIs(t, err, session.ErrNoSession, "an unusable credential is not kept")
}

func TestTokenSource(t *testing.T) {
	store := session.NewMemoryStore("")
	ts := session.NewManager(store, logr.Discard()).TokenSource()

	_, err := ts.Token()
	require.True(t, service.IsAuth(err), "missing credential is an auth error, got %v", err)
	require.True(t, errors.Is(err, session.ErrNoSession))

	require.NoError(t, store.Save("tok"))
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.Type())
}
