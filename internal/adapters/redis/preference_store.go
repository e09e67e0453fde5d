package redis

// Package redis provides Redis-based adapters for the auth demo.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/j26/auth-demo/internal/ports"
	"github.com/redis/go-redis/v9"
)

var _ ports.PreferenceStore = (*PreferenceStore)(nil)

// PreferenceStore keeps preference values as plain Redis strings.
// Every write renews the TTL, so preferences only expire when left untouched.
type PreferenceStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// PreferenceStoreOptions groups construction parameters for PreferenceStore.
type PreferenceStoreOptions struct {
	Client redis.UniversalClient
	Prefix string
	// TTL of zero keeps values forever.
	TTL time.Duration
}

// NewPreferenceStore creates a new Redis-based preference store.
func NewPreferenceStore(opts PreferenceStoreOptions) (*PreferenceStore, error) {
	if opts.Client == nil {
		return nil, errors.New("redis client is required")
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "prefs:"
	}
	return &PreferenceStore{client: opts.Client, prefix: prefix, ttl: opts.TTL}, nil
}

func (s *PreferenceStore) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, errors.New("preference key cannot be empty")
	}

	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return v, true, nil
}

func (s *PreferenceStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("preference key cannot be empty")
	}
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
