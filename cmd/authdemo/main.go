package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/j26/auth-demo/config"
	"github.com/j26/auth-demo/internal/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := bootstrap.InitLogger(bootstrap.LoggerOptions{})
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		stop()
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	// Reconfigure now that the level and dev mode are known.
	logger = bootstrap.InitLogger(bootstrap.LoggerOptions{
		Level: cfg.Observability.LogLevel,
		Dev:   cfg.IsDev,
	})
	logStartupInfo(ctx, logger, &cfg)

	return bootstrap.RunServer(ctx, &cfg, logger)
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting auth demo",
		"addr", cfg.HTTP.Addr,
		"auth_service", cfg.Auth.ServiceURL,
		"auth_proxy", cfg.Auth.ProxyEnabled,
		"preference_store", string(cfg.Preferences.Store),
		"dev", cfg.IsDev)
}
