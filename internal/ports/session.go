package ports

// Package ports defines interfaces (hexagonal ports) for session tracking.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"encoding/json"
)

// StatusClient talks to the external authentication service.
type StatusClient interface {
	// FetchUser calls the status endpoint and returns the raw "user" member
	// (nil when the service reports no user).
	FetchUser(ctx context.Context) (json.RawMessage, error)

	// Refresh calls the refresh endpoint without following redirects. The
	// service updates the expiry cookie as a side effect.
	Refresh(ctx context.Context) error
}

// CookieReader exposes cookies the client currently holds for the auth service.
type CookieReader interface {
	Cookie(name string) (value string, ok bool)
}

// PreferenceStore persists small string values under fixed keys.
type PreferenceStore interface {
	// Get returns the stored value; ok is false when the key was never written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}
