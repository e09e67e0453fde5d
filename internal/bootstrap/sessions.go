package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/j26/auth-demo/config"
	"github.com/j26/auth-demo/internal/adapters/authapi"
	httpx "github.com/j26/auth-demo/internal/http"
	"github.com/j26/auth-demo/internal/observability/statsd"
	"github.com/j26/auth-demo/internal/ports"
	"github.com/j26/auth-demo/internal/service"
)

// SessionFactoryConfig groups what every session needs.
type SessionFactoryConfig struct {
	Auth config.AuthServiceConfig
	// BaseURL is the public origin of the demo. Empty derives it per request.
	BaseURL string
	// PreferenceKey is the unscoped key of the auto-refresh flag.
	PreferenceKey string
	Store         ports.PreferenceStore
	Metrics       statsd.Sink
	Logger        *slog.Logger
}

// SessionFactory builds session services on top of fresh authentication
// service clients.
type SessionFactory struct {
	cfg    SessionFactoryConfig
	origin *url.URL
}

// NewSessionFactory validates cfg.
func NewSessionFactory(cfg SessionFactoryConfig) (*SessionFactory, error) {
	if cfg.Store == nil {
		return nil, errors.New("preference store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.PreferenceKey == "" {
		cfg.PreferenceKey = service.DefaultPreferenceKey
	}
	f := &SessionFactory{cfg: cfg}
	if cfg.BaseURL != "" {
		origin, err := parseOrigin(cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		f.origin = origin
	}
	return f, nil
}

// NewClient returns an authentication service client with an empty jar.
func (f *SessionFactory) NewClient() (*authapi.Client, error) {
	return authapi.NewClient(authapi.ClientOptions{
		BaseURL:     f.cfg.Auth.ServiceURL,
		UserPath:    f.cfg.Auth.UserPath,
		RefreshPath: f.cfg.Auth.RefreshPath,
		Timeout:     f.cfg.Auth.RequestTimeout,
		Metrics:     f.cfg.Metrics,
		Logger:      f.cfg.Logger,
	})
}

// NewSession binds a session service to client, with logins returning to origin.
func (f *SessionFactory) NewSession(client *authapi.Client, origin *url.URL) (*service.SessionService, error) {
	return service.NewSessionService(service.SessionServiceOptions{
		Client:  client,
		Cookies: client,
		Config: service.SessionConfig{
			ExpiresAtCookie: f.cfg.Auth.ExpiresAtCookie,
			Origin:          origin,
			LoginPath:       f.cfg.Auth.LoginPath,
		},
	})
}

// NewPreference returns the auto-refresh preference for clientID.
func (f *SessionFactory) NewPreference(clientID string) (*service.AutoRefreshPreference, error) {
	return service.NewAutoRefreshPreference(service.AutoRefreshPreferenceOptions{
		Store: f.cfg.Store,
		Key:   service.PreferenceKey(clientID, f.cfg.PreferenceKey),
	})
}

// Open implements httpx.SessionOpener. The browser's cookies, minus the
// demo's own client ID, seed the client jar so upstream calls act on the
// browser's session.
func (f *SessionFactory) Open(r *http.Request) (*httpx.SessionScope, error) {
	client, err := f.NewClient()
	if err != nil {
		return nil, err
	}
	client.SeedCookies(upstreamCookies(r))

	origin := f.origin
	if origin == nil {
		origin = RequestOrigin(r)
	}
	sess, err := f.NewSession(client, origin)
	if err != nil {
		return nil, err
	}
	pref, err := f.NewPreference(httpx.ClientIDFromContext(r.Context()))
	if err != nil {
		return nil, err
	}
	return &httpx.SessionScope{
		Session:         sess,
		Preference:      pref,
		UpstreamCookies: client.ReceivedCookies,
	}, nil
}

func upstreamCookies(r *http.Request) []*http.Cookie {
	all := r.Cookies()
	out := make([]*http.Cookie, 0, len(all))
	for _, c := range all {
		if c.Name != httpx.ClientIDCookie {
			out = append(out, c)
		}
	}
	return out
}

// RequestOrigin derives the public origin of r, honouring the
// X-Forwarded-Proto and X-Forwarded-Host headers set by a fronting proxy.
func RequestOrigin(r *http.Request) *url.URL {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := firstHeaderValue(r.Header.Get("X-Forwarded-Proto")); p == "http" || p == "https" {
		scheme = p
	}
	host := r.Host
	if h := firstHeaderValue(r.Header.Get("X-Forwarded-Host")); h != "" {
		host = h
	}
	return &url.URL{Scheme: scheme, Host: host}
}

func firstHeaderValue(v string) string {
	first, _, _ := strings.Cut(v, ",")
	return strings.ToLower(strings.TrimSpace(first))
}

func parseOrigin(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", raw)
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host}, nil
}
