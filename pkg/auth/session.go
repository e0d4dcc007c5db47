// Package auth holds the two pieces of state that survive a build: the
// cached ATProto session token and the stored app password. The session is a
// plain JSON cache file, reused across runs until the service rejects it and
// then silently replaced. The app password lives in the system keychain with
// an encrypted-file fallback.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Session is a cached ATProto session
type Session struct {
	DID       string    `json:"did"`
	Handle    string    `json:"handle"`
	AccessJwt string    `json:"accessJwt"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionCache persists a session in a local JSON file
type SessionCache struct {
	path string
}

// NewSessionCache creates a cache backed by the given file path
func NewSessionCache(path string) *SessionCache {
	return &SessionCache{path: path}
}

// Load reads the cached session. A missing file returns (nil, nil): the
// caller creates a fresh session in that case.
func (c *SessionCache) Load() (*Session, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session cache: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		// A corrupt cache is treated like a missing one.
		return nil, nil
	}

	if session.AccessJwt == "" {
		return nil, nil
	}
	return &session, nil
}

// Save writes the session, replacing whatever was cached before
func (c *SessionCache) Save(session *Session) error {
	if session == nil || session.AccessJwt == "" {
		return fmt.Errorf("refusing to cache an empty session")
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create session cache directory: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session cache: %w", err)
	}

	return nil
}

// Delete removes the cached session. Deleting a missing cache is not an error.
func (c *SessionCache) Delete() error {
	err := os.Remove(c.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session cache: %w", err)
	}
	return nil
}
