package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/j26/auth-demo/internal/clock"
	domainsession "github.com/j26/auth-demo/internal/domain/session"
)

// ErrAutoRefreshDisabled is returned by AutoRefresher.Run while disabled.
var ErrAutoRefreshDisabled = errors.New("auto-refresh is disabled")

type sessionRefresher interface {
	Refresh(ctx context.Context) error
}

// AutoRefresherConfig configures background refresh.
type AutoRefresherConfig struct {
	Script domainsession.RefreshScriptConfig
	// Lead is how long before expiry a refresh becomes due.
	Lead time.Duration
}

// AutoRefresherOptions groups dependencies for AutoRefresher.
type AutoRefresherOptions struct {
	Session sessionRefresher
	Clock   clock.Clock
	Config  AutoRefresherConfig
}

// AutoRefresher renews the session shortly before it expires, for clients
// that cannot run the service's browser refresh script. It attempts at most
// one refresh per observed expiry so a refresh that does not move the expiry
// is not retried in a loop.
type AutoRefresher struct {
	session sessionRefresher
	clock   clock.Clock

	mu        sync.Mutex
	cfg       AutoRefresherConfig
	attempted time.Time
}

// NewAutoRefresher constructs an AutoRefresher.
func NewAutoRefresher(opts AutoRefresherOptions) (*AutoRefresher, error) {
	if opts.Session == nil {
		return nil, errors.New("session is required")
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}
	cfg := opts.Config
	if cfg.Lead < 0 {
		cfg.Lead = 0
	}
	return &AutoRefresher{session: opts.Session, clock: clk, cfg: cfg}, nil
}

// Configure replaces the script configuration, e.g. after the user toggled.
func (a *AutoRefresher) Configure(script domainsession.RefreshScriptConfig) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cfg.Script = script
}

// Config returns the active configuration.
func (a *AutoRefresher) Config() AutoRefresherConfig {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// Due reports whether a refresh should run for the given expiry.
func (a *AutoRefresher) Due(expiresAt time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dueLocked(expiresAt)
}

func (a *AutoRefresher) dueLocked(expiresAt time.Time) bool {
	if !a.cfg.Script.Enabled || expiresAt.IsZero() {
		return false
	}
	if a.attempted.Equal(expiresAt) {
		return false
	}
	return expiresAt.Sub(a.clock.Now()) <= a.cfg.Lead
}

// Run refreshes the session if a refresh is due for expiresAt. It reports
// whether a refresh was attempted.
func (a *AutoRefresher) Run(ctx context.Context, expiresAt time.Time) (bool, error) {
	a.mu.Lock()
	if !a.cfg.Script.Enabled {
		a.mu.Unlock()
		return false, ErrAutoRefreshDisabled
	}
	if !a.dueLocked(expiresAt) {
		a.mu.Unlock()
		return false, nil
	}
	a.attempted = expiresAt
	a.mu.Unlock()

	return true, a.session.Refresh(ctx)
}
