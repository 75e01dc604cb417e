// Package store is the plaintext key-value store for non-secret wallet
// metadata. It must never hold key material; secrets live in the vault.
package store

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/voxwallet/walletd/internal/apperr"
)

// Well-known metadata keys.
const (
	KeyAddress     = "wallet-address"
	KeyHasWallet   = "hasPrivateKey"
	KeyLiveNetwork = "live_network"
)

// Store persists string metadata in a single JSON file.
type Store struct {
	mu   sync.Mutex
	path string
}

// New creates a store backed by the given file path. The file is created
// lazily on first write.
func New(path string) *Store {
	return &Store{path: path}
}

// Get returns the stored value for key, or "" if absent.
// Absence is a valid result, not an error.
func (s *Store) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

// Set persists value under key.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.save(values)
}

func (s *Store) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, apperr.Wrap(apperr.KindStorageRead, "failed to read metadata file", err)
	}

	// Skip UTF-8 BOM if present
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}

	if len(data) == 0 {
		return map[string]string{}, nil
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, apperr.Wrap(apperr.KindStorageRead, "failed to unmarshal metadata file", err)
	}
	return values, nil
}

func (s *Store) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return apperr.Wrap(apperr.KindStorageWrite, "failed to marshal metadata", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return apperr.Wrap(apperr.KindStorageWrite, "failed to write metadata file", err)
	}
	return nil
}
