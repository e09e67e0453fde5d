// Package tui renders a tracked session in the terminal with Bubble Tea.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	domainsession "github.com/j26/auth-demo/internal/domain/session"
	"github.com/j26/auth-demo/internal/service"
)

// Tracker is the session surface the terminal UI drives.
type Tracker interface {
	Start(ctx context.Context) error
	Updates() <-chan int
	Sync() bool
	AutoRefreshDue() bool
	AutoRefresh(ctx context.Context) (bool, error)
	Refresh(ctx context.Context) error
	ToggleAutoRefresh(ctx context.Context) (domainsession.AutoRefreshState, error)
	LoginURL(path string) (string, error)
	Status() domainsession.StatusView
}

var _ Tracker = (*service.Tracker)(nil)

// Messages produced by the model's commands.
type (
	startedMsg   struct{ err error }
	countdownMsg struct{ seconds int }
	refreshedMsg struct {
		err     error
		auto    bool
		skipped bool
	}
	toggledMsg struct {
		state domainsession.AutoRefreshState
		err   error
	}
)

// Model is the Bubble Tea model for one session.
type Model struct {
	ctx     context.Context
	tracker Tracker

	view       domainsession.StatusView
	refreshing bool
	notice     string
	err        error
	loginURL   string
	width      int
}

// New returns a model driving tracker. ctx bounds every network call.
func New(ctx context.Context, tracker Tracker) Model {
	return Model{ctx: ctx, tracker: tracker, view: tracker.Status()}
}

// Init starts the status fetch and begins listening for countdown changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.start(), m.waitCountdown())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		return m.handleKey(msg)

	case startedMsg:
		m.err = msg.err

	case countdownMsg:
		m.tracker.Sync()
		cmds := []tea.Cmd{m.waitCountdown()}
		if !m.refreshing && m.tracker.AutoRefreshDue() {
			m.refreshing = true
			cmds = append(cmds, m.autoRefresh())
		}
		m.view = m.tracker.Status()
		return m, tea.Batch(cmds...)

	case refreshedMsg:
		m.refreshing = false
		if msg.skipped && msg.err == nil {
			break
		}
		m.err = msg.err
		if msg.err == nil {
			m.notice = "Session refreshed."
			if msg.auto {
				m.notice = "Session refreshed automatically."
			}
		}

	case toggledMsg:
		m.err = msg.err
		if msg.err != nil {
			break
		}
		m.notice = "Auto-refresh disabled."
		if !msg.state.Enabled() {
			break
		}
		m.notice = "Auto-refresh enabled."
		// The countdown is silent once it reaches zero, so a session that
		// lapsed while auto-refresh was off is picked up here.
		if !m.refreshing && m.tracker.AutoRefreshDue() {
			m.refreshing = true
			m.view = m.tracker.Status()
			return m, m.autoRefresh()
		}
	}

	m.view = m.tracker.Status()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "r":
		if m.refreshing {
			return m, nil
		}
		if !m.view.RefreshEnabled {
			m.err = service.ErrManualRefreshDisabled
			return m, nil
		}
		m.refreshing = true
		m.notice = "Refreshing..."
		m.err = nil
		return m, m.refresh()

	case "a":
		m.err = nil
		return m, m.toggle()

	case "l":
		url, err := m.tracker.LoginURL("/")
		m.err = err
		m.loginURL = url
		return m, nil
	}
	return m, nil
}

func (m Model) start() tea.Cmd {
	return func() tea.Msg {
		return startedMsg{err: m.tracker.Start(m.ctx)}
	}
}

// waitCountdown blocks until the next countdown value. A closed channel ends
// the subscription.
func (m Model) waitCountdown() tea.Cmd {
	updates := m.tracker.Updates()
	return func() tea.Msg {
		select {
		case secs, ok := <-updates:
			if !ok {
				return nil
			}
			return countdownMsg{seconds: secs}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		return refreshedMsg{err: m.tracker.Refresh(m.ctx)}
	}
}

func (m Model) autoRefresh() tea.Cmd {
	return func() tea.Msg {
		ran, err := m.tracker.AutoRefresh(m.ctx)
		return refreshedMsg{err: err, auto: true, skipped: !ran}
	}
}

func (m Model) toggle() tea.Cmd {
	return func() tea.Msg {
		state, err := m.tracker.ToggleAutoRefresh(m.ctx)
		return toggledMsg{state: state, err: err}
	}
}
