package session

import "time"

// StatusView is the rendered form of a session: the rows of the status table
// plus the state of the controls next to it.
type StatusView struct {
	Loading       string
	Authenticated string
	ExpiresAt     string
	ExpiresIn     string
	User          string
	// UserName is a short display name; empty when none could be derived.
	UserName string
	// AutoRefresh mirrors the toggle; the manual Refresh control is only
	// active while it is off.
	AutoRefresh    bool
	RefreshEnabled bool
	LoginURL       string
}

// ViewParams carries the inputs to NewStatusView that are not part of Session.
type ViewParams struct {
	Seconds     int
	Location    *time.Location
	UserName    string
	AutoRefresh AutoRefreshState
	LoginURL    string
}

// NewStatusView renders s for display.
func NewStatusView(s Session, p ViewParams) StatusView {
	return StatusView{
		Loading:        YesNo(s.Loading),
		Authenticated:  YesNo(s.Authenticated()),
		ExpiresAt:      FormatExpiresAt(s.ExpiresAt, p.Location),
		ExpiresIn:      FormatExpiresIn(s.ExpiresAt, p.Seconds),
		User:           FormatUser(s.User),
		UserName:       p.UserName,
		AutoRefresh:    p.AutoRefresh.Enabled(),
		RefreshEnabled: !p.AutoRefresh.Enabled(),
		LoginURL:       p.LoginURL,
	}
}
