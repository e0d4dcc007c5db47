package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 32
	keySize    = 32
	iterations = 100000
)

// EncryptedFileStore implements CredentialStore using an encrypted file.
// It is the fallback for systems without a usable keychain.
type EncryptedFileStore struct {
	filepath   string
	passphrase string
	mu         sync.RWMutex
}

// encryptedFile is the on-disk layout
type encryptedFile struct {
	Salt      string `json:"salt"`
	Encrypted string `json:"encrypted"`
}

// NewEncryptedFileStore creates an encrypted file-based credential store
func NewEncryptedFileStore(filePath string) (*EncryptedFileStore, error) {
	dir := filepath.Dir(filePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	store := &EncryptedFileStore{filepath: filePath}

	passphrase, err := store.loadOrCreatePassphrase()
	if err != nil {
		return nil, fmt.Errorf("failed to get passphrase: %w", err)
	}
	store.passphrase = passphrase

	return store, nil
}

// loadOrCreatePassphrase reads the local key file, creating it with random
// content on first use. The key file protects the credential file from
// casual reads; a keychain is still the better place when available.
func (e *EncryptedFileStore) loadOrCreatePassphrase() (string, error) {
	keyPath := e.filepath + ".key"

	if data, err := os.ReadFile(keyPath); err == nil && len(data) > 0 {
		return string(data), nil
	}

	raw := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", fmt.Errorf("failed to generate key material: %w", err)
	}
	passphrase := hex.EncodeToString(raw)

	if err := os.WriteFile(keyPath, []byte(passphrase), 0600); err != nil {
		return "", fmt.Errorf("failed to write key file: %w", err)
	}

	return passphrase, nil
}

// Store saves credentials to the encrypted file
func (e *EncryptedFileStore) Store(creds *Credentials) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if creds == nil || creds.Handle == "" {
		return ErrInvalidCredentials
	}

	accounts, err := e.loadAccounts()
	if err != nil {
		return fmt.Errorf("failed to load existing data: %w", err)
	}

	accounts[creds.Handle] = *creds
	return e.saveAccounts(accounts)
}

// Retrieve gets credentials from the encrypted file
func (e *EncryptedFileStore) Retrieve(handle string) (*Credentials, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if handle == "" {
		return nil, ErrInvalidCredentials
	}

	accounts, err := e.loadAccounts()
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	creds, exists := accounts[handle]
	if !exists {
		return nil, ErrCredentialsNotFound
	}

	return &creds, nil
}

// Delete removes credentials from the encrypted file
func (e *EncryptedFileStore) Delete(handle string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if handle == "" {
		return ErrInvalidCredentials
	}

	accounts, err := e.loadAccounts()
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}

	if _, exists := accounts[handle]; !exists {
		return ErrCredentialsNotFound
	}

	delete(accounts, handle)
	return e.saveAccounts(accounts)
}

// Exists checks if credentials exist in the encrypted file
func (e *EncryptedFileStore) Exists(handle string) bool {
	creds, err := e.Retrieve(handle)
	return err == nil && creds != nil
}

// loadAccounts decrypts the file into the account map. A missing file yields
// an empty map.
func (e *EncryptedFileStore) loadAccounts() (map[string]Credentials, error) {
	data, err := os.ReadFile(e.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]Credentials), nil
		}
		return nil, err
	}

	var file encryptedFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse encrypted file: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(file.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(file.Encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	plaintext, err := e.decrypt(ciphertext, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}

	accounts := make(map[string]Credentials)
	if err := json.Unmarshal(plaintext, &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse decrypted data: %w", err)
	}

	return accounts, nil
}

// saveAccounts encrypts and writes the account map
func (e *EncryptedFileStore) saveAccounts(accounts map[string]Credentials) error {
	plaintext, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("failed to marshal accounts: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	ciphertext, err := e.encrypt(plaintext, salt)
	if err != nil {
		return fmt.Errorf("failed to encrypt: %w", err)
	}

	file := encryptedFile{
		Salt:      base64.StdEncoding.EncodeToString(salt),
		Encrypted: base64.StdEncoding.EncodeToString(ciphertext),
	}

	data, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal file: %w", err)
	}

	return os.WriteFile(e.filepath, data, 0600)
}

// deriveKey stretches the passphrase with the record's salt
func (e *EncryptedFileStore) deriveKey(salt []byte) []byte {
	return pbkdf2.Key([]byte(e.passphrase), salt, iterations, keySize, sha256.New)
}

// encrypt seals plaintext with AES-GCM under the derived key
func (e *EncryptedFileStore) encrypt(plaintext, salt []byte) ([]byte, error) {
	block, err := aes.NewCipher(e.deriveKey(salt))
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// decrypt opens an AES-GCM sealed message
func (e *EncryptedFileStore) decrypt(ciphertext, salt []byte) ([]byte, error) {
	block, err := aes.NewCipher(e.deriveKey(salt))
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}
