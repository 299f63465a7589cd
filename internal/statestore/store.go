// Package statestore is the local durable key-value store that keeps the
// attendance session across restarts.
package statestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"clockin/internal/errors"
	"clockin/internal/logging"
)

// KV is a small durable key-value store holding JSON values.
type KV interface {
	Get(key string, v any) (bool, error)
	Put(key string, v any) error
	Delete(key string) error
}

// FileStore keeps every key in one JSON object on disk.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// DefaultPath returns ~/.clockin/state.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".clockin", "state.json"), nil
}

// Open prepares a store at path, creating its directory.
func Open(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.NewStorageError("create state directory", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Get decodes the value under key into v. It reports false when key is absent.
func (s *FileStore) Get(key string, v any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return false, err
	}
	raw, ok := values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, errors.NewStorageError("decode "+key, err)
	}
	return true, nil
}

// Put stores v under key.
func (s *FileStore) Put(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(v)
	if err != nil {
		return errors.NewStorageError("encode "+key, err)
	}

	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = raw
	return s.save(values)
}

// Delete removes key. Deleting a missing key is not an error.
func (s *FileStore) Delete(key string) error {
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

// load reads the whole file. A corrupt file is moved aside and read as empty.
func (s *FileStore) load() (map[string]json.RawMessage, error) {
	values := make(map[string]json.RawMessage)

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, errors.NewStorageError("read "+s.path, err)
	}
	if len(data) == 0 {
		return values, nil
	}

	if err := json.Unmarshal(data, &values); err != nil {
		backupPath := s.path + ".corrupt"
		_ = os.Rename(s.path, backupPath)
		logging.Debugf("statestore: corrupt %s moved to %s: %v\n", s.path, backupPath, err)
		return make(map[string]json.RawMessage), nil
	}
	return values, nil
}

// save writes to a temp file then renames it over the store.
func (s *FileStore) save(values map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.NewStorageError("encode state", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return errors.NewStorageError("write temp file", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.NewStorageError("rename temp file", err)
	}
	return nil
}
