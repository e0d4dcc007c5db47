package auth

import "os"

// EnvironmentStore reads credentials from BLUESKY_HANDLE and
// BLUESKY_APP_PASSWORD. It is read-only and tried last; CI runs that inject
// secrets as environment variables need nothing else.
type EnvironmentStore struct{}

// NewEnvironmentStore creates an environment-backed credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is unsupported: environment variables are not writable state
func (s *EnvironmentStore) Store(creds *Credentials) error {
	return ErrInvalidCredentials
}

// Retrieve returns the environment credentials when they match the handle
func (s *EnvironmentStore) Retrieve(handle string) (*Credentials, error) {
	envHandle := os.Getenv("BLUESKY_HANDLE")
	password := os.Getenv("BLUESKY_APP_PASSWORD")

	if password == "" || envHandle == "" {
		return nil, ErrCredentialsNotFound
	}
	if handle != "" && handle != envHandle {
		return nil, ErrCredentialsNotFound
	}

	return &Credentials{
		Handle:      envHandle,
		AppPassword: password,
	}, nil
}

// Delete is unsupported for the environment store
func (s *EnvironmentStore) Delete(handle string) error {
	return ErrCredentialsNotFound
}

// Exists checks whether the environment carries matching credentials
func (s *EnvironmentStore) Exists(handle string) bool {
	creds, err := s.Retrieve(handle)
	return err == nil && creds != nil
}
