package config

import (
	"strings"
	"time"
)

// WatchConfig configures the terminal session watcher (cmd/authwatch).
type WatchConfig struct {
	// Cookie is a raw Cookie header copied from a signed-in browser. It seeds
	// the client's cookie jar so the watcher shares the browser session.
	Cookie string `env:"WATCH_COOKIE"`

	// RefreshLead is how long before expiry the watcher refreshes on its own
	// while auto-refresh is enabled.
	RefreshLead time.Duration `env:"WATCH_REFRESH_LEAD" envDefault:"5s"`

	// LogFile receives logs while the terminal UI owns stdout. Empty discards them.
	LogFile string `env:"WATCH_LOG_FILE"`
}

// Sanitize applies guardrails to watcher settings.
func (w *WatchConfig) Sanitize() {
	w.Cookie = strings.TrimSpace(w.Cookie)
	if w.RefreshLead < 0 {
		w.RefreshLead = 0
	}
}
