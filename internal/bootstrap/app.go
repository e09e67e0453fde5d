package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/j26/auth-demo/config"
	"github.com/j26/auth-demo/internal/service"
)

// RunServer wires the demo server from cfg and blocks until ctx is cancelled.
func RunServer(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (err error) {
	if cfg == nil {
		return errors.New("config is required")
	}

	store, closeStore, err := NewPreferenceStore(ctx, PreferenceStoreConfig{
		Preferences: cfg.Preferences,
		Redis:       cfg.Redis,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close preference store: %w", cerr))
		}
	}()

	metrics, err := NewMetrics(cfg.Observability.Metrics, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := metrics.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close metrics: %w", cerr))
		}
	}()

	display, err := service.NewUserDisplay(cfg.Auth.UserNameExpr, nil)
	if err != nil {
		return err
	}

	sessions, err := NewSessionFactory(SessionFactoryConfig{
		Auth:          cfg.Auth,
		BaseURL:       cfg.HTTP.BaseURL,
		PreferenceKey: cfg.Preferences.Key,
		Store:         store,
		Metrics:       metrics.Sink,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	handler, err := BuildHTTPHandler(HTTPServerConfig{
		Config:  cfg,
		Open:    sessions.Open,
		Display: display,
		Metrics: metrics.Handler,
		Ready:   PreferenceStoreCheck(store),
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	server := NewHTTPServer(cfg.HTTP.Addr, handler)
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", server.Addr, err)
	}
	return ServeHTTP(ctx, server, ln, logger)
}
