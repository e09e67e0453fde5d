package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg.Sanitize()

	if cfg.Auth.ExpiresAtCookie != "j26-auth_expires-at" {
		t.Fatalf("unexpected cookie name %q", cfg.Auth.ExpiresAtCookie)
	}
	if cfg.Auth.UserPath != "/auth/user" || cfg.Auth.RefreshPath != "/auth/refresh" || cfg.Auth.LoginPath != "/auth/login" {
		t.Fatalf("unexpected auth paths: %+v", cfg.Auth)
	}
	if cfg.Auth.RefreshScriptPath != "/auth/static/refresh.js" {
		t.Fatalf("unexpected refresh script path %q", cfg.Auth.RefreshScriptPath)
	}
	if cfg.Preferences.Key != "preventAutoRefresh" {
		t.Fatalf("unexpected preference key %q", cfg.Preferences.Key)
	}
	if cfg.Preferences.Store != PreferenceStoreMemory {
		t.Fatalf("unexpected preference store %q", cfg.Preferences.Store)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTP.Addr)
	}
}

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_SERVICE_URL", "https://dev.j26.se/ ")
	t.Setenv("AUTH_USER_PATH", "auth/me")
	t.Setenv("AUTH_EXPIRES_AT_COOKIE", "custom_expiry")
	t.Setenv("AUTH_REQUEST_TIMEOUT", "3s")
	t.Setenv("AUTH_PROXY_ENABLED", "true")
	t.Setenv("PREFERENCES_STORE", "Redis")
	t.Setenv("REDIS_URI", "redis:6379")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg.Sanitize()

	if cfg.Auth.ServiceURL != "https://dev.j26.se" {
		t.Fatalf("expected trimmed service url, got %q", cfg.Auth.ServiceURL)
	}
	if cfg.Auth.UserPath != "/auth/me" {
		t.Fatalf("expected leading slash to be added, got %q", cfg.Auth.UserPath)
	}
	if cfg.Auth.ExpiresAtCookie != "custom_expiry" {
		t.Fatalf("unexpected cookie %q", cfg.Auth.ExpiresAtCookie)
	}
	if cfg.Auth.RequestTimeout != 3*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.Auth.RequestTimeout)
	}
	if !cfg.Auth.ProxyEnabled {
		t.Fatalf("expected proxy to be enabled")
	}
	if cfg.Preferences.Store != PreferenceStoreRedis {
		t.Fatalf("expected redis store, got %q", cfg.Preferences.Store)
	}
	if cfg.Redis.URI != "redis:6379" {
		t.Fatalf("unexpected redis uri %q", cfg.Redis.URI)
	}
}

func TestPreferenceStoreKind_UnmarshalText(t *testing.T) {
	var k PreferenceStoreKind
	if err := k.UnmarshalText([]byte("file")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k != PreferenceStoreFile {
		t.Fatalf("expected file, got %q", k)
	}
	if err := k.UnmarshalText([]byte("postgres")); err == nil {
		t.Fatalf("expected error for unknown store")
	}
}

func TestAuthServiceConfig_SanitizeRestoresDefaults(t *testing.T) {
	cfg := AuthServiceConfig{RequestTimeout: -time.Second, UserNameExpr: "  "}
	cfg.Sanitize()

	if cfg.ExpiresAtCookie != DefaultExpiresAtCookie {
		t.Fatalf("expected default cookie, got %q", cfg.ExpiresAtCookie)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("expected default timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.UserNameExpr != DefaultUserNameExpr {
		t.Fatalf("expected default expression, got %q", cfg.UserNameExpr)
	}
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	cfg := HTTPConfig{BaseURL: " https://example.test/ ", CompressionLevel: 42}
	cfg.Sanitize()

	if cfg.BaseURL != "https://example.test" {
		t.Fatalf("unexpected base url %q", cfg.BaseURL)
	}
	if cfg.CompressionLevel != 9 {
		t.Fatalf("expected level to be clamped to 9, got %d", cfg.CompressionLevel)
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " ",
	}

	cfg.Sanitize()

	if cfg.Enabled {
		t.Fatalf("expected enabled to be false when address is empty")
	}

	cfg = ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " statsd:1234 ",
	}

	cfg.Sanitize()

	if !cfg.IsEnabled() {
		t.Fatalf("expected metrics to remain enabled")
	}
	if cfg.StatsdAddress != "statsd:1234" {
		t.Fatalf("expected address to be trimmed, got %q", cfg.StatsdAddress)
	}
	if cfg.Prefix != "authdemo" {
		t.Fatalf("expected default prefix, got %q", cfg.Prefix)
	}
}

func TestObservabilityConfig_SanitizeLogLevel(t *testing.T) {
	cfg := ObservabilityConfig{LogLevel: "VERBOSE"}
	cfg.Sanitize()
	if cfg.LogLevel != "info" {
		t.Fatalf("expected fallback to info, got %q", cfg.LogLevel)
	}
}
