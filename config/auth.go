package config

import (
	"strings"
	"time"
)

// Default values shared with the external authentication service.
const (
	DefaultExpiresAtCookie   = "j26-auth_expires-at"
	DefaultRefreshScriptPath = "/auth/static/refresh.js"
	DefaultUserNameExpr      = "name || preferred_username || email"
)

// AuthServiceConfig describes how to reach the external authentication service.
// The service owns login, token validation and refresh; this application only
// calls its endpoints and reads the expiry cookie it writes.
type AuthServiceConfig struct {
	// ServiceURL is the origin the /auth/* paths live under (e.g., "https://dev.j26.se").
	ServiceURL string `env:"AUTH_SERVICE_URL" envDefault:"http://localhost:3000"`

	UserPath    string `env:"AUTH_USER_PATH"    envDefault:"/auth/user"`
	RefreshPath string `env:"AUTH_REFRESH_PATH" envDefault:"/auth/refresh"`
	LoginPath   string `env:"AUTH_LOGIN_PATH"   envDefault:"/auth/login"`

	// ExpiresAtCookie holds the epoch-millisecond expiry written by the service.
	ExpiresAtCookie string `env:"AUTH_EXPIRES_AT_COOKIE" envDefault:"j26-auth_expires-at"`

	// RefreshScriptPath is where the service serves its auto-refresh script.
	RefreshScriptPath string `env:"AUTH_REFRESH_SCRIPT_PATH" envDefault:"/auth/static/refresh.js"`

	// RequestTimeout bounds every upstream call.
	RequestTimeout time.Duration `env:"AUTH_REQUEST_TIMEOUT" envDefault:"10s"`

	// ProxyEnabled mounts a reverse proxy for /auth/ so the browser sees one origin.
	ProxyEnabled bool `env:"AUTH_PROXY_ENABLED" envDefault:"false"`

	// ProxyPreserveHost forwards the incoming Host header instead of the upstream host.
	ProxyPreserveHost bool `env:"AUTH_PROXY_PRESERVE_HOST" envDefault:"false"`

	// UserNameExpr is a JMESPath expression that picks a display name out of the user record.
	UserNameExpr string `env:"AUTH_USER_NAME_EXPR" envDefault:"name || preferred_username || email"`
}

// Sanitize normalises paths and restores defaults for blank values.
func (a *AuthServiceConfig) Sanitize() {
	a.ServiceURL = strings.TrimRight(strings.TrimSpace(a.ServiceURL), "/")
	a.UserPath = normalizePath(a.UserPath, "/auth/user")
	a.RefreshPath = normalizePath(a.RefreshPath, "/auth/refresh")
	a.LoginPath = normalizePath(a.LoginPath, "/auth/login")
	a.RefreshScriptPath = normalizePath(a.RefreshScriptPath, DefaultRefreshScriptPath)

	a.ExpiresAtCookie = strings.TrimSpace(a.ExpiresAtCookie)
	if a.ExpiresAtCookie == "" {
		a.ExpiresAtCookie = DefaultExpiresAtCookie
	}
	if a.RequestTimeout <= 0 {
		a.RequestTimeout = 10 * time.Second
	}
	if strings.TrimSpace(a.UserNameExpr) == "" {
		a.UserNameExpr = DefaultUserNameExpr
	}
}

func normalizePath(p, fallback string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return fallback
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
