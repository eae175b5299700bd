// Package statefile persists the extracted test binary path where the
// editor's debugging plugin reads it. One path per file, overwritten on
// each successful run.
package statefile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store writes and reads a single-path state file.
type Store struct {
	path string
}

// NewStore creates a store for the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Write persists the binary path, creating the parent directory when
// needed. The write goes through a temp file and rename so a concurrent
// reader never observes a partial path.
func (s *Store) Write(binaryPath string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create settings directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op when the rename already consumed the temp file.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.WriteString(binaryPath + "\n"); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace state file %s: %w", s.path, err)
	}
	return nil
}

// Read returns the persisted binary path, trimmed. found is false when the
// file does not exist or holds only whitespace.
func (s *Store) Read() (path string, found bool, err error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read state file %s: %w", s.path, err)
	}
	path = strings.TrimSpace(string(data))
	return path, path != "", nil
}
