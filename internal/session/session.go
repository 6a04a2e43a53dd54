// Package session holds the client-side auth session: the token and
// profile issued by the auth collaborator, mirrored between memory and a
// durable store. The manager is an explicit injected object with init
// (Restore) and teardown (Logout) lifecycles, not an ambient singleton.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

type Profile struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Email  string `json:"email"`
}

type Session struct {
	Token  string  `json:"token"`
	Perfil Profile `json:"perfil"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Nombre   string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Manager struct {
	mu      sync.RWMutex
	current *Session

	store       Store
	authBaseURL string
	httpClient  *http.Client
}

func NewManager(authBaseURL string, store Store) *Manager {
	return &Manager{
		store:       store,
		authBaseURL: authBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Restore loads the persisted session before any authenticated call is
// made. Absent or corrupt state leaves the manager unauthenticated and is
// deliberately not surfaced as an error.
func (m *Manager) Restore() {
	s, err := m.store.Load()
	if err != nil || s == nil {
		return
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
}

func (m *Manager) Login(ctx context.Context, creds Credentials) (*Session, error) {
	return m.exchange(ctx, "/auth/login", creds)
}

func (m *Manager) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	return m.exchange(ctx, "/auth/registro", req)
}

func (m *Manager) exchange(ctx context.Context, path string, payload interface{}) (*Session, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.authBaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("auth rejected: status %d", resp.StatusCode)
	}

	var s Session
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Token == "" {
		return nil, fmt.Errorf("auth response missing token")
	}

	// persist first so a crash between the two writes cannot leave memory
	// ahead of storage
	if err := m.store.Save(&s); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	m.mu.Lock()
	m.current = &s
	m.mu.Unlock()

	return &s, nil
}

func (m *Manager) Me(ctx context.Context) (*Profile, error) {
	token, ok := m.Token()
	if !ok {
		return nil, fmt.Errorf("no active session")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.authBaseURL+"/auth/me", nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth rejected: status %d", resp.StatusCode)
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	return &p, nil
}

// Logout clears the persisted session and only then the in-memory copy, so
// a failed persistence-clear never leaves stale data recoverable after a
// restart while memory already looks clean.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("clear persisted session: %w", err)
	}

	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	return nil
}

func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Token returns the active bearer token for outbound requests.
func (m *Manager) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return "", false
	}
	return m.current.Token, true
}
