package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/j26/auth-demo/internal/clock"
	domainsession "github.com/j26/auth-demo/internal/domain/session"
)

// ErrManualRefreshDisabled is returned by Tracker.Refresh while auto-refresh is on.
var ErrManualRefreshDisabled = errors.New("manual refresh is only available while auto-refresh is off")

// TrackerOptions groups dependencies for Tracker.
type TrackerOptions struct {
	Session    *SessionService
	Preference *AutoRefreshPreference
	Logger     *slog.Logger
}

// TrackerConfig holds optional collaborators and settings for Tracker.
type TrackerConfig struct {
	Clock       clock.Clock
	Display     *UserDisplay
	RefreshLead time.Duration
	Location    *time.Location
	// RedirectPath is where the login URL sends the user back to.
	RedirectPath string
}

// Tracker ties one session to its countdown and auto-refresh policy for a
// long-lived client such as the terminal UI.
type Tracker struct {
	session    *SessionService
	preference *AutoRefreshPreference
	logger     *slog.Logger
	countdown  *Countdown
	refresher  *AutoRefresher
	display    *UserDisplay
	clock      clock.Clock
	location   *time.Location
	redirect   string
}

// NewTracker wires a Tracker.
func NewTracker(opts TrackerOptions, cfg TrackerConfig) (*Tracker, error) {
	if opts.Session == nil {
		return nil, errors.New("session service is required")
	}
	if opts.Preference == nil {
		return nil, errors.New("auto-refresh preference is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.System{}
	}
	refresher, err := NewAutoRefresher(AutoRefresherOptions{
		Session: opts.Session,
		Clock:   clk,
		Config: AutoRefresherConfig{
			Script: opts.Preference.ScriptConfig(),
			Lead:   cfg.RefreshLead,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create auto refresher: %w", err)
	}
	redirect := cfg.RedirectPath
	if redirect == "" {
		redirect = "/"
	}
	return &Tracker{
		session:    opts.Session,
		preference: opts.Preference,
		logger:     logger,
		countdown:  NewCountdown(CountdownOptions{Clock: clk}),
		refresher:  refresher,
		display:    cfg.Display,
		clock:      clk,
		location:   cfg.Location,
		redirect:   redirect,
	}, nil
}

// Start reads the persisted preference, performs the initial status fetch and
// starts the countdown. A failed fetch is logged and returned; the tracker
// stays usable.
func (t *Tracker) Start(ctx context.Context) error {
	state, err := t.preference.Load(ctx)
	if err != nil {
		t.logger.WarnContext(ctx, "using default auto-refresh preference", "error", err)
	}
	t.refresher.Configure(domainsession.RefreshScriptConfig{Enabled: state.Enabled()})

	err = t.session.GetUser(ctx)
	LogStartupFailure(ctx, t.logger, err)
	t.countdown.Reset(t.session.Snapshot().ExpiresAt)
	return err
}

// Updates delivers countdown changes. Call Sync after each one.
func (t *Tracker) Updates() <-chan int { return t.countdown.Updates() }

// Sync re-reads the expiry cookie and retargets the countdown if the expiry
// moved. It reports whether it did.
func (t *Tracker) Sync() bool {
	prev := t.countdown.Target()
	next := t.session.UpdateRefreshExpiry()
	if next.Equal(prev) {
		return false
	}
	t.countdown.Reset(next)
	return true
}

// AutoRefreshDue reports whether the background refresher would act now.
func (t *Tracker) AutoRefreshDue() bool {
	return t.refresher.Due(t.session.Snapshot().ExpiresAt)
}

// AutoRefresh runs the background refresher for the current expiry. It reports
// whether a refresh was attempted.
func (t *Tracker) AutoRefresh(ctx context.Context) (bool, error) {
	ran, err := t.refresher.Run(ctx, t.session.Snapshot().ExpiresAt)
	if errors.Is(err, ErrAutoRefreshDisabled) {
		return false, nil
	}
	if ran {
		t.Sync()
	}
	return ran, err
}

// Refresh is the manual refresh control.
func (t *Tracker) Refresh(ctx context.Context) error {
	if t.preference.State().Enabled() {
		return ErrManualRefreshDisabled
	}
	if err := t.session.Refresh(ctx); err != nil {
		return err
	}
	t.Sync()
	return nil
}

// ToggleAutoRefresh flips and persists the auto-refresh preference.
func (t *Tracker) ToggleAutoRefresh(ctx context.Context) (domainsession.AutoRefreshState, error) {
	state, err := t.preference.Toggle(ctx)
	if err != nil {
		return state, err
	}
	t.refresher.Configure(t.preference.ScriptConfig())
	return state, nil
}

// LoginURL builds the sign-in URL returning to path.
func (t *Tracker) LoginURL(path string) (string, error) {
	return t.session.LoginURL(path)
}

// Status renders the current state.
func (t *Tracker) Status() domainsession.StatusView {
	snap := t.session.Snapshot()
	login, err := t.session.LoginURL(t.redirect)
	if err != nil {
		login = ""
	}
	return domainsession.NewStatusView(snap, domainsession.ViewParams{
		Seconds:     domainsession.SecondsUntil(snap.ExpiresAt, t.clock.Now()),
		Location:    t.location,
		UserName:    t.display.Name(snap.User),
		AutoRefresh: t.preference.State(),
		LoginURL:    login,
	})
}

// Close stops the countdown.
func (t *Tracker) Close() { t.countdown.Stop() }
