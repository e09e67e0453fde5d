package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	authdemo "github.com/j26/auth-demo"
	"github.com/j26/auth-demo/internal/clock"
	"github.com/j26/auth-demo/internal/service"
)

// Paths on disk used in dev mode for hot reloading.
const (
	TemplatePathFromRoot = "frontend/templates"
	StaticPathFromRoot   = "frontend/static"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Open    SessionOpener
	Display *service.UserDisplay
	Page    PageConfig
	// AuthProxy, when set, is mounted at /auth/.
	AuthProxy http.Handler
	// Metrics, when set, is mounted at /metrics.
	Metrics http.Handler
	// Ready backs /readyz; nil always reports ready.
	Ready HealthCheck
	Clock   clock.Clock
	IsDev   bool         // Development mode flag for hot reloading
	Logger  *slog.Logger // Logger for template and HTTP errors (optional)
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) (http.Handler, error) {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	renderer, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS(services.IsDev, logger),
		DevMode:    services.IsDev,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	h := &SessionHandlers{
		Open:     services.Open,
		Renderer: renderer,
		Display:  services.Display,
		Page:     services.Page,
		Clock:    services.Clock,
		Logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("GET /session/status", h.Status)
	mux.HandleFunc("GET /session/expiry", h.Expiry)
	mux.HandleFunc("POST /session/refresh", h.Refresh)
	mux.HandleFunc("POST /preferences/auto-refresh", h.ToggleAutoRefresh)
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readyHandler(services.Ready, logger))
	mux.Handle("HEAD /readyz", readyHandler(services.Ready, logger))
	mux.Handle("GET /static/", staticHandler(services.IsDev, logger))
	if services.AuthProxy != nil {
		mux.Handle("/auth/", services.AuthProxy)
	}
	if services.Metrics != nil {
		mux.Handle("GET /metrics", services.Metrics)
	}
	return mux, nil
}

func templateFS(isDev bool, logger *slog.Logger) fs.FS {
	if isDev {
		return os.DirFS(TemplatePathFromRoot)
	}
	sub, err := fs.Sub(authdemo.TemplateFS, TemplatePathFromRoot)
	if err != nil {
		logger.Warn("embedded templates unavailable, reading from disk", "error", err)
		return os.DirFS(TemplatePathFromRoot)
	}
	return sub
}

// staticHandler serves /static from disk in dev mode and from the embedded
// filesystem otherwise.
func staticHandler(isDev bool, logger *slog.Logger) http.Handler {
	if isDev {
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir(StaticPathFromRoot))), false)
	}
	sub, err := fs.Sub(authdemo.StaticFS, StaticPathFromRoot)
	if err != nil {
		logger.Warn("embedded static assets unavailable, reading from disk", "error", err)
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir(StaticPathFromRoot))), false)
	}
	return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(sub))), true)
}

const staticMaxAge = 24 * time.Hour

func staticWithCacheHeaders(next http.Handler, cache bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cache {
			w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(int(staticMaxAge.Seconds())))
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}
		next.ServeHTTP(w, r)
	})
}
