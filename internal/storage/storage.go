// Package storage is the durable key-value mirror of the session state,
// the server-side analog of browser local storage. Values survive process
// restarts; in-memory state is authoritative once hydration completes.
package storage

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

type Store struct {
	mu     sync.Mutex
	path   string
	aead   cipher.AEAD
	values map[string]string
}

// New opens (or creates) the store at path. When secret is non-empty the file
// is encrypted at rest with ChaCha20-Poly1305; an unreadable or undecryptable
// file is treated as absent rather than failing startup.
func New(path string, secret string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	s := &Store{path: path, values: map[string]string{}}

	if secret != "" {
		key := sha256.Sum256([]byte(secret))
		aead, err := chacha20poly1305.New(key[:])
		if err != nil {
			return nil, err
		}
		s.aead = aead
	}

	s.load()
	return s, nil
}

func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	return v, ok
}

func (s *Store) Set(key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return s.saveLocked()
}

// SetAll writes several keys in one save so related values (token and user)
// land together.
func (s *Store) SetAll(pairs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range pairs {
		s.values[k] = v
	}
	return s.saveLocked()
}

func (s *Store) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.values, key)
	}
	return s.saveLocked()
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}

	if s.aead != nil {
		if len(data) < s.aead.NonceSize() {
			slog.Warn("session store file too short, starting empty", "path", s.path)
			return
		}
		nonce, sealed := data[:s.aead.NonceSize()], data[s.aead.NonceSize():]
		data, err = s.aead.Open(nil, nonce, sealed, nil)
		if err != nil {
			slog.Warn("session store file undecryptable, starting empty", "path", s.path)
			return
		}
	}

	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		slog.Warn("session store file corrupt, starting empty", "path", s.path)
		return
	}

	s.values = values
}

func (s *Store) saveLocked() error {
	data, err := json.Marshal(s.values)
	if err != nil {
		return err
	}

	if s.aead != nil {
		nonce := make([]byte, s.aead.NonceSize())
		if _, err := rand.Read(nonce); err != nil {
			return err
		}
		data = append(nonce, s.aead.Seal(nil, nonce, data, nil)...)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, s.path)
}
