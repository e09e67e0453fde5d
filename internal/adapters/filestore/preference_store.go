package filestore

// Package filestore persists preferences in a dotenv-formatted file so a
// terminal session keeps its settings across restarts.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/j26/auth-demo/internal/ports"
	"github.com/joho/godotenv"
)

var _ ports.PreferenceStore = (*PreferenceStore)(nil)

// PreferenceStore reads and rewrites the whole file on every call. Keys are
// stored with every character outside [A-Za-z0-9_] replaced by '_'.
type PreferenceStore struct {
	path string
	mu   sync.Mutex
}

// NewPreferenceStore returns a store backed by path. The file is created on first Set.
func NewPreferenceStore(path string) (*PreferenceStore, error) {
	if path == "" {
		return nil, errors.New("preference file path is required")
	}
	return &PreferenceStore{path: path}, nil
}

// Path returns the backing file.
func (s *PreferenceStore) Path() string { return s.path }

func (s *PreferenceStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[envKey(key)]
	return v, ok, nil
}

func (s *PreferenceStore) Set(_ context.Context, key, value string) error {
	if key == "" {
		return errors.New("preference key cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[envKey(key)] = value

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create preference dir: %w", err)
		}
	}
	if err := godotenv.Write(values, s.path); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}

func (s *PreferenceStore) load() (map[string]string, error) {
	values, err := godotenv.Read(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	return values, nil
}

// envKey maps key onto a name godotenv reads back unchanged.
func envKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
}
