package credential

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/99designs/keyring"

	"github.com/nhle/taskboard/internal/model"
)

const serviceName = "taskboard"

// ErrNotFound is returned when no credential is stored under a key.
var ErrNotFound = errors.New("credential not found")

// Store reads and writes secrets in a keyring.
type Store struct {
	ring keyring.Keyring
}

// NewStore wraps an already opened keyring.
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Open opens the system keyring. The encrypted file backend, used when no
// OS keyring is available, keeps its files under dir.
func Open(dir string) (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  dir,
		FilePasswordFunc:         keyring.FixedStringPrompt("taskboard-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewStore(ring), nil
}

// Get returns the secret stored under key, trimmed of surrounding space.
func (s *Store) Get(key string) (string, error) {
	item, err := s.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("getting credential %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return strings.TrimSpace(string(item.Data)), nil
}

// Set stores value under key, replacing any previous secret.
func (s *Store) Set(key, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("setting credential %q: empty value", key)
	}
	err := s.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: serviceName + " " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes the secret under key. Removing a missing key is not an
// error.
func (s *Store) Delete(key string) error {
	err := s.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

func openDefault() (*Store, error) {
	return Open(filepath.Join(model.ConfigDir(), "credentials"))
}

// Get retrieves a credential from the default system keyring.
func Get(key string) (string, error) {
	s, err := openDefault()
	if err != nil {
		return "", err
	}
	return s.Get(key)
}

// Set stores a credential in the default system keyring.
func Set(key, value string) error {
	s, err := openDefault()
	if err != nil {
		return err
	}
	return s.Set(key, value)
}

// Delete removes a credential from the default system keyring.
func Delete(key string) error {
	s, err := openDefault()
	if err != nil {
		return err
	}
	return s.Delete(key)
}
