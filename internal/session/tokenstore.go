package session

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenStore persists the one bearer token a client keeps between runs
type TokenStore interface {
	// Load returns the persisted token, or "" if none is stored
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileTokenStore keeps the token in a single file, created 0600
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates a file-backed token store at path
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// DefaultTokenPath returns the conventional token location
func DefaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cityhunt/token"
	}
	return filepath.Join(home, ".cityhunt", "token")
}

// Load implements TokenStore
func (f *FileTokenStore) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Save implements TokenStore
func (f *FileTokenStore) Save(token string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(f.path, []byte(token), 0600)
}

// Clear implements TokenStore
func (f *FileTokenStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// MemoryTokenStore is an in-memory TokenStore for tests and ephemeral
// sessions. Error fields allow behavior injection.
type MemoryTokenStore struct {
	mu      sync.Mutex
	token   string
	SaveErr error
	LoadErr error
}

// NewMemoryTokenStore creates an empty in-memory token store
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

// Seed sets the stored token directly
func (m *MemoryTokenStore) Seed(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

// Load implements TokenStore
func (m *MemoryTokenStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return "", m.LoadErr
	}
	return m.token, nil
}

// Save implements TokenStore
func (m *MemoryTokenStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.token = token
	return nil
}

// Clear implements TokenStore
func (m *MemoryTokenStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
