package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"tok-123","perfil":{"id":"u1","nombre":"Ana","email":"ana@example.com"}}`))
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"u1","nombre":"Ana","email":"ana@example.com"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginPersistsAndMirrorsSession(t *testing.T) {
	srv := newAuthServer(t)
	path := filepath.Join(t.TempDir(), "session.json")

	m := NewManager(srv.URL, NewFileStore(path))

	s, err := m.Login(context.Background(), Credentials{Email: "ana@example.com", Password: "secreto"})
	require.NoError(t, err)
	assert.Equal(t, "tok-123", s.Token)
	assert.Equal(t, "Ana", s.Perfil.Nombre)

	// persisted copy survives a fresh manager
	restored := NewManager(srv.URL, NewFileStore(path))
	restored.Restore()
	token, ok := restored.Token()
	require.True(t, ok)
	assert.Equal(t, "tok-123", token)
}

func TestRestoreIgnoresCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	m := NewManager("http://localhost", NewFileStore(path))
	m.Restore()

	_, ok := m.Token()
	assert.False(t, ok)
}

func TestRestoreWithoutFileStaysUnauthenticated(t *testing.T) {
	m := NewManager("http://localhost", NewFileStore(filepath.Join(t.TempDir(), "absent.json")))
	m.Restore()

	assert.Nil(t, m.Current())
}

func TestMeUsesStoredToken(t *testing.T) {
	srv := newAuthServer(t)
	path := filepath.Join(t.TempDir(), "session.json")

	m := NewManager(srv.URL, NewFileStore(path))
	_, err := m.Login(context.Background(), Credentials{Email: "ana@example.com", Password: "secreto"})
	require.NoError(t, err)

	profile, err := m.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", profile.ID)
}

func TestLogoutClearsStorageThenMemory(t *testing.T) {
	srv := newAuthServer(t)
	path := filepath.Join(t.TempDir(), "session.json")

	m := NewManager(srv.URL, NewFileStore(path))
	_, err := m.Login(context.Background(), Credentials{Email: "ana@example.com", Password: "secreto"})
	require.NoError(t, err)

	require.NoError(t, m.Logout(context.Background()))

	_, ok := m.Token()
	assert.False(t, ok)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

type failingClearStore struct {
	Store
}

func (f *failingClearStore) Clear() error {
	return errors.New("disk on fire")
}

func TestLogoutKeepsMemoryWhenStorageClearFails(t *testing.T) {
	srv := newAuthServer(t)
	path := filepath.Join(t.TempDir(), "session.json")

	m := NewManager(srv.URL, &failingClearStore{Store: NewFileStore(path)})
	_, err := m.Login(context.Background(), Credentials{Email: "ana@example.com", Password: "secreto"})
	require.NoError(t, err)

	err = m.Logout(context.Background())
	require.Error(t, err)

	// the session is still active; memory must not run ahead of storage
	_, ok := m.Token()
	assert.True(t, ok)
}
