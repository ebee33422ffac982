// Copyright (c) 2025 HustleSynth
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hustlesynth/synthchat/internal/util"
)

// ============================================================================
// Store
// ============================================================================

// Store persists keyed values as files under a base directory.
// JSON values get a .json extension; raw string values are stored as-is.
// All methods are safe for use from a single goroutine; callers that
// share a Store across goroutines serialize access themselves (the
// session package does).
type Store struct {
	baseDir string
}

// NewStore creates a store rooted at baseDir, creating it if needed.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// BaseDir returns the directory values are stored under.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Save marshals v as JSON and writes it atomically under key.
func (s *Store) Save(key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal value for %q: %w", key, err)
	}
	if err := util.AtomicWriteFile(s.jsonPath(key), data, 0600); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// Load reads the JSON value stored under key into out. Returns false
// when the key is absent or the stored bytes fail to decode; out is
// left untouched in the decode-failure case only if decoding failed
// before any field was set, so callers should pass a fresh zero value.
func (s *Store) Load(key string, out any) bool {
	data, err := os.ReadFile(s.jsonPath(key))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false
	}
	return true
}

// SaveString writes a raw string value atomically under key.
func (s *Store) SaveString(key, value string) error {
	if err := util.AtomicWriteFile(s.rawPath(key), []byte(value), 0600); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

// LoadString reads the raw string stored under key. Returns false when
// the key is absent.
func (s *Store) LoadString(key string) (string, bool) {
	data, err := os.ReadFile(s.rawPath(key))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Delete removes the value stored under key. Deleting an absent key is
// not an error.
func (s *Store) Delete(key string) error {
	var firstErr error
	for _, p := range []string{s.jsonPath(key), s.rawPath(key)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = fmt.Errorf("failed to delete %q: %w", key, err)
		}
	}
	return firstErr
}

// Clear removes every stored value.
func (s *Store) Clear() error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to list storage directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.baseDir, e.Name())); err != nil {
			return fmt.Errorf("failed to remove %q: %w", e.Name(), err)
		}
	}
	return nil
}

func (s *Store) jsonPath(key string) string {
	return filepath.Join(s.baseDir, sanitizeKey(key)+".json")
}

func (s *Store) rawPath(key string) string {
	return filepath.Join(s.baseDir, sanitizeKey(key)+".txt")
}

// sanitizeKey keeps keys from escaping the base directory or colliding
// with path separators. Keys are short identifiers in practice; anything
// exotic is flattened to underscores.
func sanitizeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
