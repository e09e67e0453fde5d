package bootstrap

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/j26/auth-demo/config"
	"github.com/j26/auth-demo/internal/adapters/memory"
	httpx "github.com/j26/auth-demo/internal/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testClientID = "6f1c9a52-3b7e-4d0a-9e21-0c5d8f4b7a13"

type cookieRecorder struct {
	mu     sync.Mutex
	header string
}

func newUpstream(t *testing.T, rec *cookieRecorder) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.mu.Lock()
		rec.header = r.Header.Get("Cookie")
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{"name":"Ada"}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSessionFactory_OpenSeedsBrowserCookies(t *testing.T) {
	rec := &cookieRecorder{}
	upstream := newUpstream(t, rec)
	store := memory.NewPreferenceStore()

	f, err := NewSessionFactory(SessionFactoryConfig{
		Auth:    config.AuthServiceConfig{ServiceURL: upstream.URL, ExpiresAtCookie: config.DefaultExpiresAtCookie},
		BaseURL: "https://demo.example.test/ignored/path",
		Store:   store,
		Logger:  discardLogger(),
	})
	require.NoError(t, err)

	var scope *httpx.SessionScope
	h := httpx.ClientID("")(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		var openErr error
		scope, openErr = f.Open(r)
		require.NoError(t, openErr)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: httpx.ClientIDCookie, Value: testClientID})
	req.AddCookie(&http.Cookie{Name: "session", Value: "abc"})
	req.AddCookie(&http.Cookie{Name: config.DefaultExpiresAtCookie, Value: "1700000020000"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, scope)

	ctx := context.Background()
	require.NoError(t, scope.Session.GetUser(ctx))
	assert.Contains(t, rec.header, "session=abc")
	assert.NotContains(t, rec.header, httpx.ClientIDCookie)
	assert.Equal(t, int64(1_700_000_020_000), scope.Session.Snapshot().ExpiresAt.UnixMilli())

	login, err := scope.Session.LoginURL("/")
	require.NoError(t, err)
	assert.Contains(t, login, "https://demo.example.test/auth/login?")

	_, err = scope.Preference.Toggle(ctx)
	require.NoError(t, err)
	v, ok, err := store.Get(ctx, testClientID+":preventAutoRefresh")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)
}

func TestNewSessionFactory_Validation(t *testing.T) {
	_, err := NewSessionFactory(SessionFactoryConfig{})
	require.Error(t, err)

	_, err = NewSessionFactory(SessionFactoryConfig{Store: memory.NewPreferenceStore(), BaseURL: "/relative"})
	require.Error(t, err)
}

func TestRequestOrigin(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		tls     bool
		want    string
	}{
		{name: "plain", want: "http://demo.local"},
		{name: "tls", tls: true, want: "https://demo.local"},
		{
			name:    "forwarded",
			headers: map[string]string{"X-Forwarded-Proto": "https, http", "X-Forwarded-Host": "app.example.test"},
			want:    "https://app.example.test",
		},
		{name: "bogus proto", headers: map[string]string{"X-Forwarded-Proto": "gopher"}, want: "http://demo.local"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://demo.local/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if tt.tls {
				req.TLS = &tls.ConnectionState{}
			}
			assert.Equal(t, tt.want, RequestOrigin(req).String())
		})
	}
}
