package memory

// Package memory holds process-local adapters used in development and by the
// HTTP demo when no shared store is configured.

import (
	"context"
	"sync"

	"github.com/j26/auth-demo/internal/ports"
)

var _ ports.PreferenceStore = (*PreferenceStore)(nil)

// PreferenceStore is a map guarded by a RWMutex.
type PreferenceStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewPreferenceStore returns an empty store.
func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{values: map[string]string{}}
}

func (s *PreferenceStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *PreferenceStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
