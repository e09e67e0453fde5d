package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	domainsession "github.com/j26/auth-demo/internal/domain/session"
	"github.com/j26/auth-demo/internal/ports"
	"golang.org/x/sync/singleflight"
)

const (
	flightUser    = "user"
	flightRefresh = "refresh"
)

// SessionConfig holds the non-port settings of SessionService.
type SessionConfig struct {
	// ExpiresAtCookie names the cookie carrying the epoch-millisecond expiry.
	ExpiresAtCookie string
	// Origin is the application origin login redirects return to.
	Origin *url.URL
	// LoginPath is the login endpoint path on Origin.
	LoginPath string
}

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Client  ports.StatusClient
	Cookies ports.CookieReader
	Config  SessionConfig
}

// SessionService mirrors the session held by the authentication service. Status
// fetches and refreshes are coalesced: at most one of each is in flight and
// concurrent callers share its result.
type SessionService struct {
	client  ports.StatusClient
	cookies ports.CookieReader
	cfg     SessionConfig

	flights singleflight.Group

	mu    sync.RWMutex
	state domainsession.Session
}

// NewSessionService constructs a SessionService in its initial loading state.
func NewSessionService(opts SessionServiceOptions) (*SessionService, error) {
	if opts.Client == nil {
		return nil, errors.New("status client is required")
	}
	if opts.Cookies == nil {
		return nil, errors.New("cookie reader is required")
	}
	cfg := opts.Config
	if cfg.ExpiresAtCookie == "" {
		return nil, errors.New("expiry cookie name is required")
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/auth/login"
	}
	return &SessionService{
		client:  opts.Client,
		cookies: opts.Cookies,
		cfg:     cfg,
		state:   domainsession.New(),
	}, nil
}

// Snapshot returns a copy of the current session state.
func (s *SessionService) Snapshot() domainsession.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// GetUser fetches the user from the status endpoint and re-reads the expiry
// cookie. Loading is cleared however the call ends.
func (s *SessionService) GetUser(ctx context.Context) error {
	return s.coalesce(ctx, flightUser, s.getUser)
}

func (s *SessionService) getUser(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	user, err := s.client.FetchUser(ctx)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	expiresAt := s.readExpiry()

	s.mu.Lock()
	s.state.User = user
	s.state.ExpiresAt = expiresAt
	s.mu.Unlock()
	return nil
}

// Refresh calls the refresh endpoint and then fetches the user again.
func (s *SessionService) Refresh(ctx context.Context) error {
	return s.coalesce(ctx, flightRefresh, func(ctx context.Context) error {
		if err := s.client.Refresh(ctx); err != nil {
			return fmt.Errorf("refresh session: %w", err)
		}
		return s.GetUser(ctx)
	})
}

// UpdateRefreshExpiry re-reads the expiry cookie into state without any
// network call and returns the value it read.
func (s *SessionService) UpdateRefreshExpiry() time.Time {
	expiresAt := s.readExpiry()
	s.mu.Lock()
	s.state.ExpiresAt = expiresAt
	s.mu.Unlock()
	return expiresAt
}

// LoginURL builds the absolute login URL whose redirect_uri points at
// redirectPath resolved against the configured origin.
func (s *SessionService) LoginURL(redirectPath string) (string, error) {
	return BuildLoginURL(s.cfg.Origin, s.cfg.LoginPath, redirectPath)
}

// BuildLoginURL resolves loginPath and redirectPath against origin and embeds
// the latter as the redirect_uri query parameter.
func BuildLoginURL(origin *url.URL, loginPath, redirectPath string) (string, error) {
	if origin == nil || origin.Scheme == "" || origin.Host == "" {
		return "", errors.New("absolute origin is required")
	}
	redirectRef, err := url.Parse(redirectPath)
	if err != nil {
		return "", fmt.Errorf("parse redirect path: %w", err)
	}
	loginRef, err := url.Parse(loginPath)
	if err != nil {
		return "", fmt.Errorf("parse login path: %w", err)
	}

	redirectURI := origin.ResolveReference(redirectRef)
	login := origin.ResolveReference(loginRef)
	q := login.Query()
	q.Set("redirect_uri", redirectURI.String())
	login.RawQuery = q.Encode()
	return login.String(), nil
}

func (s *SessionService) readExpiry() time.Time {
	raw, ok := s.cookies.Cookie(s.cfg.ExpiresAtCookie)
	if !ok {
		return time.Time{}
	}
	expiresAt, ok := domainsession.ParseExpiresAt(raw)
	if !ok {
		return time.Time{}
	}
	return expiresAt
}

func (s *SessionService) setLoading(v bool) {
	s.mu.Lock()
	s.state.Loading = v
	s.mu.Unlock()
}

// coalesce runs fn at most once per key at a time. The shared call is detached
// from the first caller's cancellation; each caller still stops waiting when
// its own context ends.
func (s *SessionService) coalesce(ctx context.Context, key string, fn func(context.Context) error) error {
	shared := context.WithoutCancel(ctx)
	ch := s.flights.DoChan(key, func() (any, error) {
		return nil, fn(shared)
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

// LogStartupFailure records a failed initial status fetch. The first fetch is
// fire-and-forget from the caller's point of view, so it must fail loudly.
func LogStartupFailure(ctx context.Context, logger *slog.Logger, err error) {
	if err == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.ErrorContext(ctx, "failed to fetch auth status", "error", err)
}
