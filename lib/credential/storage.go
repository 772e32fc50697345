// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package credential

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// Storage is a small key-value store for session records.
type Storage interface {
	// Get returns the value for key. The bool is false if key is unset.
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	// Remove deletes key. Removing an unset key is not an error.
	Remove(key string) error
}

// MemoryStorage is a Storage held in memory. Safe for concurrent use.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key.
func (s *MemoryStorage) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

// Set stores a copy of value under key.
func (s *MemoryStorage) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (s *MemoryStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// FileStorage keeps one file per key in a directory. Keys are
// path-escaped into file names.
type FileStorage struct {
	directory string
}

// NewFileStorage returns a FileStorage rooted at directory, creating
// it with mode 0700 if needed.
func NewFileStorage(directory string) (*FileStorage, error) {
	if directory == "" {
		return nil, fmt.Errorf("credential: storage directory is required")
	}
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return nil, fmt.Errorf("credential: creating storage directory: %w", err)
	}
	return &FileStorage{directory: directory}, nil
}

func (s *FileStorage) path(key string) string {
	return filepath.Join(s.directory, url.PathEscape(key))
}

// Get reads the file for key. A missing file reports ok == false.
func (s *FileStorage) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("credential: reading %q: %w", key, err)
	}
	return data, true, nil
}

// Set replaces the file for key atomically with mode 0600.
func (s *FileStorage) Set(key string, value []byte) error {
	if err := writeFileAtomic(s.path(key), value); err != nil {
		return fmt.Errorf("credential: storing %q: %w", key, err)
	}
	return nil
}

// Remove deletes the file for key. A missing file is not an error.
func (s *FileStorage) Remove(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("credential: removing %q: %w", key, err)
	}
	return nil
}
