package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	domainsession "github.com/j26/auth-demo/internal/domain/session"
	"github.com/j26/auth-demo/internal/ports"
)

// DefaultPreferenceKey is the storage key of the "prevent auto-refresh" flag.
const DefaultPreferenceKey = "preventAutoRefresh"

// PreferenceKey scopes key to one client (e.g., a browser) when a store is shared.
func PreferenceKey(clientID, key string) string {
	if clientID == "" {
		return key
	}
	return clientID + ":" + key
}

// AutoRefreshPreferenceOptions groups dependencies for AutoRefreshPreference.
type AutoRefreshPreferenceOptions struct {
	Store ports.PreferenceStore
	Key   string
}

// AutoRefreshPreference is the persisted two-state auto-refresh toggle. It is
// read once by Load and written on every Toggle.
type AutoRefreshPreference struct {
	store ports.PreferenceStore
	key   string

	mu     sync.Mutex
	state  domainsession.AutoRefreshState
	loaded bool
}

// NewAutoRefreshPreference constructs the toggle in its default (enabled) state.
func NewAutoRefreshPreference(opts AutoRefreshPreferenceOptions) (*AutoRefreshPreference, error) {
	if opts.Store == nil {
		return nil, errors.New("preference store is required")
	}
	key := opts.Key
	if key == "" {
		key = DefaultPreferenceKey
	}
	return &AutoRefreshPreference{
		store: opts.Store,
		key:   key,
		state: domainsession.AutoRefreshEnabled,
	}, nil
}

// Load reads the persisted flag the first time it is called; later calls
// return the in-memory state. An absent flag is written back with its
// default value.
func (p *AutoRefreshPreference) Load(ctx context.Context) (domainsession.AutoRefreshState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded {
		return p.state, nil
	}

	v, ok, err := p.store.Get(ctx, p.key)
	if err != nil {
		return p.state, fmt.Errorf("load auto-refresh preference: %w", err)
	}
	p.state = domainsession.AutoRefreshFromPrevent(v, ok)
	p.loaded = true
	if ok {
		return p.state, nil
	}
	if err := p.store.Set(ctx, p.key, p.state.PreventValue()); err != nil {
		return p.state, fmt.Errorf("save default auto-refresh preference: %w", err)
	}
	return p.state, nil
}

// State returns the current toggle state.
func (p *AutoRefreshPreference) State() domainsession.AutoRefreshState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Toggle flips the state and persists it. When persisting fails the state is
// left unchanged.
func (p *AutoRefreshPreference) Toggle(ctx context.Context) (domainsession.AutoRefreshState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := p.state.Toggle()
	if err := p.store.Set(ctx, p.key, next.PreventValue()); err != nil {
		return p.state, fmt.Errorf("save auto-refresh preference: %w", err)
	}
	p.state = next
	p.loaded = true
	return p.state, nil
}

// ScriptConfig is the configuration handed to the refresh script owner.
func (p *AutoRefreshPreference) ScriptConfig() domainsession.RefreshScriptConfig {
	return domainsession.RefreshScriptConfig{Enabled: p.State().Enabled()}
}
