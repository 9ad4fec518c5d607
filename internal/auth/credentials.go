package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Credential is the persisted shape: {accessToken, refreshToken, apiKey?}.
type Credential struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	APIKey       string `json:"apiKey,omitempty"`
	ExpiresAtMs  int64  `json:"-"`
}

// Store is the credential storage interface: an in-memory cache backed by
// a persistence delegate (a file, in the default implementation).
type Store interface {
	GetAccess() string
	GetRefresh() string
	GetAPIKey() string
	GetAll() Credential
	SetAuth(access, refresh, apiKey string, expiresAtMs int64) error
	Clear() error
}

// FileStore persists the credential record as JSON at an OS-specific path,
// caching it in memory with an exclusive-writer discipline: one refresh
// owner performs the swap, readers observe it atomically.
type FileStore struct {
	path string

	mu  sync.RWMutex
	cur Credential

	refreshGroup singleflight.Group
}

// DefaultCredentialPath resolves the OS-specific auth.json location.
func DefaultCredentialPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Cursor", "auth.json")
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".cursor", "auth.json")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "cursor", "auth.json")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "cursor", "auth.json")
	}
}

// NewFileStore loads an existing credential file if present; a missing or
// unparseable file starts from an empty credential rather than erroring,
// since "not logged in yet" is a normal state.
func NewFileStore(path string) *FileStore {
	s := &FileStore{path: path}
	if b, err := os.ReadFile(path); err == nil {
		var c Credential
		if json.Unmarshal(b, &c) == nil {
			s.cur = c
		}
	}
	return s
}

func (s *FileStore) GetAccess() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.AccessToken
}

func (s *FileStore) GetRefresh() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.RefreshToken
}

func (s *FileStore) GetAPIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.APIKey
}

func (s *FileStore) GetAll() Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

func (s *FileStore) SetAuth(access, refresh, apiKey string, expiresAtMs int64) error {
	s.mu.Lock()
	s.cur = Credential{AccessToken: access, RefreshToken: refresh, APIKey: apiKey, ExpiresAtMs: expiresAtMs}
	toPersist := s.cur
	s.mu.Unlock()
	return s.persist(toPersist)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	s.cur = Credential{}
	s.mu.Unlock()
	return os.Remove(s.path)
}

func (s *FileStore) persist(c Credential) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("auth: create credential dir: %w", err)
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("auth: marshal credential: %w", err)
	}
	return os.WriteFile(s.path, b, 0o600)
}

// EnsureFresh returns a valid access token, refreshing it first if expired.
// Concurrent callers during a refresh all await the single in-flight
// refresh call via singleflight rather than each firing their own HTTP
// request against the refresh endpoint.
func (s *FileStore) EnsureFresh(ctx context.Context, client *Client) (string, error) {
	cur := s.GetAll()
	if !IsExpired(cur.AccessToken, cur.ExpiresAtMs) {
		return cur.AccessToken, nil
	}

	v, err, _ := s.refreshGroup.Do("refresh", func() (any, error) {
		// Re-check after acquiring the single-flight slot: another caller
		// may have just completed the refresh this one was about to do.
		cur := s.GetAll()
		if !IsExpired(cur.AccessToken, cur.ExpiresAtMs) {
			return cur.AccessToken, nil
		}
		pair, err := client.Refresh(ctx, cur.RefreshToken)
		if err != nil {
			// AuthRefreshFailed: continue using the existing (possibly
			// expired) token rather than failing the caller outright.
			return cur.AccessToken, nil
		}
		if err := s.SetAuth(pair.AccessToken, pair.RefreshToken, cur.APIKey, pair.ExpiresAtMs); err != nil {
			return cur.AccessToken, nil
		}
		return pair.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
