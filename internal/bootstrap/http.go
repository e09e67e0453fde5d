package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/j26/auth-demo/config"
	httpx "github.com/j26/auth-demo/internal/http"
	"github.com/j26/auth-demo/internal/service"
	"golang.org/x/sync/errgroup"
)

const (
	defaultAddr     = ":8080"
	shutdownTimeout = 10 * time.Second
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config  *config.AppConfig
	Open    httpx.SessionOpener
	Display *service.UserDisplay
	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler
	Ready   httpx.HealthCheck
	Logger  *slog.Logger
}

// BuildHTTPHandler assembles the router, the optional auth proxy and the
// middleware chain.
func BuildHTTPHandler(cfg HTTPServerConfig) (http.Handler, error) {
	if cfg.Config == nil {
		return nil, errors.New("config is required")
	}
	if cfg.Open == nil {
		return nil, errors.New("session opener is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config

	var proxy http.Handler
	if appCfg.Auth.ProxyEnabled {
		p, err := httpx.NewAuthProxy(httpx.AuthProxyOptions{
			Upstream:     appCfg.Auth.ServiceURL,
			PreserveHost: appCfg.Auth.ProxyPreserveHost,
			Timeout:      appCfg.Auth.RequestTimeout,
			CookieDomain: appCfg.HTTP.CookieDomain,
			Logger:       logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create auth proxy: %w", err)
		}
		logger.Info("auth proxy enabled", "upstream", appCfg.Auth.ServiceURL)
		proxy = p
	}

	router, err := httpx.NewRouter(httpx.RouterServices{
		Open:    cfg.Open,
		Display: cfg.Display,
		Page: httpx.PageConfig{
			Title:            "J26 Authentication Demo",
			RefreshScriptURL: appCfg.Auth.RefreshScriptPath,
			ExpiresAtCookie:  appCfg.Auth.ExpiresAtCookie,
			AuthServiceURL:   appCfg.Auth.ServiceURL,
			ProxyEnabled:     appCfg.Auth.ProxyEnabled,
			CookieDomain:     appCfg.HTTP.CookieDomain,
			Location:         time.Local,
		},
		AuthProxy: proxy,
		Metrics:   cfg.Metrics,
		Ready:     cfg.Ready,
		IsDev:     appCfg.IsDev,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}

	// Order: Recover -> RequestID -> Logging -> ClientID -> Compression -> Router.
	// Compression sits innermost so logging records compressed sizes.
	mws := []httpx.Middleware{
		httpx.Recover(logger),
		httpx.RequestID(),
		httpx.Logging(logger),
		httpx.ClientID(appCfg.HTTP.CookieDomain),
	}
	if appCfg.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", appCfg.HTTP.CompressionLevel)
		mws = append(mws, httpx.Compression(httpx.CompressionConfig{
			Level:  appCfg.HTTP.CompressionLevel,
			Logger: logger,
		}))
	}
	return httpx.Chain(router, mws...), nil
}

// NewHTTPServer returns a server with the timeouts used in every environment.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = defaultAddr
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// ServeHTTP serves on ln until ctx is cancelled, then shuts the server down
// gracefully.
func ServeHTTP(ctx context.Context, server *http.Server, ln net.Listener, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.InfoContext(ctx, "starting HTTP server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.InfoContext(ctx, "shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		logger.InfoContext(ctx, "HTTP server stopped")
		return nil
	})

	return g.Wait()
}
