// Package session owns the persisted client credentials: the bearer token
// and the advisory cached user record. Both live in a single JSON file under
// the user's formpilot directory and are always written and cleared together.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// User is the cached user record. It is advisory only (display purposes);
// the token is the sole security-relevant credential.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// storageV1 is the on-disk format.
type storageV1 struct {
	Version int       `json:"version"`
	Token   string    `json:"token"`
	User    *User     `json:"user,omitempty"`
	SavedAt time.Time `json:"savedAt"`
}

// Store is an explicit session object with a Load/Save/Clear lifecycle,
// injected into whatever needs credentials. State is process-wide but file
// backed, so separate invocations of the CLI share one login — and a logout
// in one process invalidates the others' next request, which they see as a
// 401.
type Store struct {
	filePath string

	mu    sync.RWMutex
	token string
	user  *User
}

// DefaultPath returns ~/.formpilot/session.json.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".formpilot", "session.json")
	}
	return filepath.Join(home, ".formpilot", "session.json")
}

// NewStore creates a store backed by the given file and loads any existing
// session. A missing file just means unauthenticated.
func NewStore(path string) (*Store, error) {
	s := &Store{filePath: path}
	if err := s.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.filePath }

// Load reads the session file into memory. Returns os.ErrNotExist-style
// errors when no session has been saved yet.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var storage storageV1
	if err := json.Unmarshal(data, &storage); err != nil {
		return fmt.Errorf("unreadable session file: %w", err)
	}
	s.token = storage.Token
	s.user = storage.User
	return nil
}

// SetCredentials stores the token and user record together and persists
// them. Called exactly on login and signup.
func (s *Store) SetCredentials(token string, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.user = &user
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	storage := storageV1{
		Version: 1,
		Token:   s.token,
		User:    s.user,
		SavedAt: time.Now(),
	}
	data, err := json.MarshalIndent(storage, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return err
	}
	// 0600: the token is a credential.
	return os.WriteFile(s.filePath, data, 0600)
}

// Clear wipes the in-memory credentials and removes the session file.
// Token and cached user always go together.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = nil

	if err := os.Remove(s.filePath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Token returns the bearer token, or "" when unauthenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the cached user record, or nil.
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated reports whether a token is held. Absence of a token is
// the definition of unauthenticated; validity is only known to the backend.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}
