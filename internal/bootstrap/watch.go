package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/j26/auth-demo/config"
	"github.com/j26/auth-demo/internal/ports"
	"github.com/j26/auth-demo/internal/service"
)

// Watcher is a tracker plus the resources it owns.
type Watcher struct {
	Tracker *service.Tracker
	close   func() error
}

// Close stops the tracker and releases the preference store.
func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}
	if w.Tracker != nil {
		w.Tracker.Close()
	}
	if w.close != nil {
		return w.close()
	}
	return nil
}

// NewWatcher builds the session tracker used by the terminal client. The
// session is seeded from cfg.Watch.Cookie, and login URLs return to
// APP_BASE_URL (or the authentication service origin when unset).
func NewWatcher(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*Watcher, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	store, closeStore, err := NewPreferenceStore(ctx, PreferenceStoreConfig{
		Preferences: cfg.Preferences,
		Redis:       cfg.Redis,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	w := &Watcher{close: closeStore}

	tracker, err := newTracker(cfg, store, logger)
	if err != nil {
		return nil, errors.Join(err, w.Close())
	}
	w.Tracker = tracker
	return w, nil
}

func newTracker(cfg *config.AppConfig, store ports.PreferenceStore, logger *slog.Logger) (*service.Tracker, error) {
	sessions, err := NewSessionFactory(SessionFactoryConfig{
		Auth:          cfg.Auth,
		BaseURL:       cfg.HTTP.BaseURL,
		PreferenceKey: cfg.Preferences.Key,
		Store:         store,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	client, err := sessions.NewClient()
	if err != nil {
		return nil, err
	}
	if err := client.SeedCookieHeader(cfg.Watch.Cookie); err != nil {
		return nil, err
	}

	origin := sessions.origin
	if origin == nil {
		origin = &url.URL{Scheme: client.BaseURL().Scheme, Host: client.BaseURL().Host}
	}
	sess, err := sessions.NewSession(client, origin)
	if err != nil {
		return nil, err
	}
	pref, err := sessions.NewPreference("")
	if err != nil {
		return nil, err
	}
	display, err := service.NewUserDisplay(cfg.Auth.UserNameExpr, nil)
	if err != nil {
		return nil, err
	}

	tracker, err := service.NewTracker(service.TrackerOptions{
		Session:    sess,
		Preference: pref,
		Logger:     logger,
	}, service.TrackerConfig{
		Display:     display,
		RefreshLead: cfg.Watch.RefreshLead,
		Location:    time.Local,
	})
	if err != nil {
		return nil, fmt.Errorf("create tracker: %w", err)
	}
	return tracker, nil
}
