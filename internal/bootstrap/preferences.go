package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/j26/auth-demo/config"
	"github.com/j26/auth-demo/internal/adapters/filestore"
	"github.com/j26/auth-demo/internal/adapters/memory"
	redisstore "github.com/j26/auth-demo/internal/adapters/redis"
	httpx "github.com/j26/auth-demo/internal/http"
	"github.com/j26/auth-demo/internal/ports"
)

// PreferenceStoreConfig selects and configures the auto-refresh preference store.
type PreferenceStoreConfig struct {
	Preferences config.PreferencesConfig
	Redis       config.RedisConfig
	Logger      *slog.Logger
}

// NewPreferenceStore builds the configured store. The returned close func
// releases any connection the store holds and is never nil.
//
//nolint:ireturn // the store kind is chosen at runtime.
func NewPreferenceStore(ctx context.Context, cfg PreferenceStoreConfig) (ports.PreferenceStore, func() error, error) {
	noop := func() error { return nil }
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Preferences.Store {
	case config.PreferenceStoreFile:
		store, err := filestore.NewPreferenceStore(cfg.Preferences.File)
		if err != nil {
			return nil, noop, fmt.Errorf("create file preference store: %w", err)
		}
		logger.InfoContext(ctx, "preferences stored in file", "path", store.Path())
		return store, noop, nil

	case config.PreferenceStoreRedis:
		client, err := ConnectRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, noop, err
		}
		store, err := redisstore.NewPreferenceStore(redisstore.PreferenceStoreOptions{
			Client: client,
			Prefix: cfg.Preferences.RedisPrefix,
			TTL:    cfg.Preferences.TTL,
		})
		if err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("create redis preference store: %w", err)
		}
		logger.InfoContext(ctx, "preferences stored in redis", "prefix", cfg.Preferences.RedisPrefix)
		return store, client.Close, nil

	default:
		logger.InfoContext(ctx, "preferences kept in memory")
		return memory.NewPreferenceStore(), noop, nil
	}
}

// readinessKey is read, never written, by PreferenceStoreCheck.
const readinessKey = "readiness_probe"

// PreferenceStoreCheck reports whether store answers reads.
func PreferenceStoreCheck(store ports.PreferenceStore) httpx.HealthCheck {
	return func(ctx context.Context) error {
		if _, _, err := store.Get(ctx, readinessKey); err != nil {
			return fmt.Errorf("preference store: %w", err)
		}
		return nil
	}
}
