// Package store persists generated videos on the filesystem.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no video exists under the requested key.
var ErrNotFound = errors.New("video not found")

const partialSuffix = ".partial"

// VideoStore maps video keys to files under a single root directory.
//
// Writes go to a partial file first and are renamed into place, so a key is
// never visible until its content is complete.
type VideoStore struct {
	dir string
}

// New creates the store, ensuring the root directory exists.
func New(dir string) (*VideoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create videos dir: %w", err)
	}
	return &VideoStore{dir: dir}, nil
}

// Persist writes the video bytes under the given key and returns the final
// path. The key is reduced to its base name; path separators never escape
// the root.
func (s *VideoStore) Persist(key string, data []byte) (string, error) {
	name, err := s.cleanKey(key)
	if err != nil {
		return "", err
	}

	final := filepath.Join(s.dir, name)
	tmp := final + partialSuffix

	if err := s.writeFile(tmp, data); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}

	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to finalize video %s: %w", name, err)
	}
	return final, nil
}

func (s *VideoStore) writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create video file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write video file: %w", err)
	}
	return f.Sync()
}

// Retrieve returns the bytes stored under key, or ErrNotFound.
func (s *VideoStore) Retrieve(key string) ([]byte, error) {
	path, err := s.Path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read video %s: %w", key, err)
	}
	return data, nil
}

// Path returns the full path of an existing video, or ErrNotFound.
func (s *VideoStore) Path(key string) (string, error) {
	name, err := s.cleanKey(key)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", fmt.Errorf("failed to stat video %s: %w", name, err)
	}
	return path, nil
}

// cleanKey rejects keys that would resolve outside the root or collide with
// in-progress writes.
func (s *VideoStore) cleanKey(key string) (string, error) {
	name := filepath.Base(strings.TrimSpace(key))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("%w: invalid key %q", ErrNotFound, key)
	}
	if strings.HasSuffix(name, partialSuffix) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return name, nil
}
