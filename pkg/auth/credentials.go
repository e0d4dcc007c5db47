package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrInvalidCredentials indicates malformed or incomplete credentials
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrCredentialsNotFound indicates no stored credentials for the handle
	ErrCredentialsNotFound = errors.New("credentials not found")
)

// Credentials holds a Bluesky account identifier and its app password
type Credentials struct {
	Handle       string    `json:"handle"`
	AppPassword  string    `json:"app_password"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore is the interface for storing and retrieving credentials
type CredentialStore interface {
	// Store saves credentials for an account
	Store(creds *Credentials) error

	// Retrieve gets credentials for a specific handle
	Retrieve(handle string) (*Credentials, error)

	// Delete removes credentials for a specific handle
	Delete(handle string) error

	// Exists checks if credentials exist for a handle
	Exists(handle string) bool
}

// Manager handles credential storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a credential manager. The system keychain is preferred;
// an encrypted file under the user config directory is the fallback, and a
// read-only environment store is tried last.
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := configDirectory()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager over explicit stores (tests)
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves credentials using the first store that accepts them
func (m *Manager) Store(creds *Credentials) error {
	if creds == nil || creds.Handle == "" {
		return ErrInvalidCredentials
	}
	if creds.AppPassword == "" {
		return errors.New("app password is required")
	}

	creds.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(creds); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return errors.New("no available credential stores")
}

// Retrieve gets credentials from the first store that has them
func (m *Manager) Retrieve(handle string) (*Credentials, error) {
	if handle == "" {
		return nil, ErrInvalidCredentials
	}

	for _, store := range m.stores {
		creds, err := store.Retrieve(handle)
		if err == nil && creds != nil {
			return creds, nil
		}
	}

	return nil, ErrCredentialsNotFound
}

// Delete removes credentials from every store that has them
func (m *Manager) Delete(handle string) error {
	if handle == "" {
		return ErrInvalidCredentials
	}

	deleted := false
	for _, store := range m.stores {
		if err := store.Delete(handle); err == nil {
			deleted = true
		}
	}

	if !deleted {
		return ErrCredentialsNotFound
	}
	return nil
}

// Exists checks whether any store has credentials for the handle
func (m *Manager) Exists(handle string) bool {
	for _, store := range m.stores {
		if store.Exists(handle) {
			return true
		}
	}
	return false
}

// configDirectory returns the application config directory
func configDirectory() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "bskyarchive"), nil
}
