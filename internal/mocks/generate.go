// Package mocks provides mock implementations for testing session tracking.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	client := mocks.NewMockStatusClient(ctrl)
//	client.EXPECT().FetchUser(gomock.Any()).Return(json.RawMessage(`{"name":"Ada"}`), nil)
package mocks

// Generate mock for StatusClient interface from internal/ports package.
// This creates MockStatusClient with methods for all StatusClient interface methods:
// FetchUser, Refresh
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=status_client_mock.go github.com/j26/auth-demo/internal/ports StatusClient

// Generate mock for PreferenceStore interface from internal/ports package.
// This creates MockPreferenceStore with methods for all PreferenceStore interface methods:
// Get, Set
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=preference_store_mock.go github.com/j26/auth-demo/internal/ports PreferenceStore
