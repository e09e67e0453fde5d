package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/j26/auth-demo/internal/clock"
	domainsession "github.com/j26/auth-demo/internal/domain/session"
	"github.com/j26/auth-demo/internal/service"
)

// User-facing messages for failed session operations.
const (
	msgStatusFailed   = "Could not reach the authentication service."
	msgRefreshFailed  = "Refreshing the session failed."
	msgRefreshBlocked = "Manual refresh is only available while auto-refresh is off."
)

// SessionScope is one request's view of the caller's session.
type SessionScope struct {
	Session    *service.SessionService
	Preference *service.AutoRefreshPreference
	// UpstreamCookies lists cookies the authentication service set while
	// serving this request.
	UpstreamCookies func() []*http.Cookie
}

// SessionOpener binds a SessionScope to the caller's cookies and client ID.
type SessionOpener func(r *http.Request) (*SessionScope, error)

// PageConfig holds static values rendered into the demo page.
type PageConfig struct {
	Title string
	// RefreshScriptURL is where the browser loads the auto-refresh script from.
	RefreshScriptURL string
	ExpiresAtCookie  string
	AuthServiceURL   string
	ProxyEnabled     bool
	// CookieDomain overrides the Domain of relayed upstream cookies.
	CookieDomain string
	Location     *time.Location
}

// SessionHandlers serves the demo page and its htmx fragments.
type SessionHandlers struct {
	Open     SessionOpener
	Renderer *TemplateRenderer
	Display  *service.UserDisplay
	Page     PageConfig
	Clock    clock.Clock
	Logger   *slog.Logger
}

// viewData is shared by the page and every fragment.
type viewData struct {
	Title            string
	View             domainsession.StatusView
	Script           domainsession.RefreshScriptConfig
	RefreshScriptURL string
	ExpiresAtCookie  string
	AuthServiceURL   string
	ProxyEnabled     bool
	Error            string
	// ClearNotice empties the notice line out of band alongside a status swap.
	ClearNotice bool
}

func (h *SessionHandlers) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

func (h *SessionHandlers) now() time.Time {
	if h.Clock == nil {
		return time.Now()
	}
	return h.Clock.Now()
}

func (h *SessionHandlers) open(w http.ResponseWriter, r *http.Request) (*SessionScope, bool) {
	scope, err := h.Open(r)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "failed to open session scope", "error", err)
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "session_unavailable", Err: errors.New("session unavailable")})
		return nil, false
	}
	return scope, true
}

// openWithPreference is open plus the caller's auto-refresh preference, for
// handlers that render or change it.
func (h *SessionHandlers) openWithPreference(w http.ResponseWriter, r *http.Request) (*SessionScope, bool) {
	scope, ok := h.open(w, r)
	if !ok {
		return nil, false
	}
	if _, err := scope.Preference.Load(r.Context()); err != nil {
		h.logger().WarnContext(r.Context(), "using default auto-refresh preference", "error", err)
	}
	return scope, true
}

func (h *SessionHandlers) data(scope *SessionScope) viewData {
	snap := scope.Session.Snapshot()
	login, err := scope.Session.LoginURL("/")
	if err != nil {
		login = ""
	}
	return viewData{
		Title: h.Page.Title,
		View: domainsession.NewStatusView(snap, domainsession.ViewParams{
			Seconds:     domainsession.SecondsUntil(snap.ExpiresAt, h.now()),
			Location:    h.Page.Location,
			UserName:    h.Display.Name(snap.User),
			AutoRefresh: scope.Preference.State(),
			LoginURL:    login,
		}),
		Script:           scope.Preference.ScriptConfig(),
		RefreshScriptURL: h.Page.RefreshScriptURL,
		ExpiresAtCookie:  h.Page.ExpiresAtCookie,
		AuthServiceURL:   h.Page.AuthServiceURL,
		ProxyEnabled:     h.Page.ProxyEnabled,
	}
}

func (h *SessionHandlers) render(w http.ResponseWriter, status int, name string, data viewData) {
	if err := h.Renderer.Render(w, status, name, data); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Index renders the demo page in its loading state; the status panel fetches
// itself once loaded.
func (h *SessionHandlers) Index(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.openWithPreference(w, r)
	if !ok {
		return
	}
	h.render(w, http.StatusOK, tmplPage, h.data(scope))
}

// Status fetches the user from the authentication service and renders the
// status panel.
func (h *SessionHandlers) Status(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.open(w, r)
	if !ok {
		return
	}
	err := scope.Session.GetUser(r.Context())
	h.relayCookies(w, scope)
	data := h.data(scope)
	if err != nil {
		service.LogStartupFailure(r.Context(), h.logger(), err)
		data.Error = msgStatusFailed
		h.render(w, http.StatusBadGateway, tmplStatus, data)
		return
	}
	h.render(w, http.StatusOK, tmplStatus, data)
}

// Expiry re-reads the expiry cookie and renders the countdown rows. It makes
// no upstream call and does not touch the preference store.
func (h *SessionHandlers) Expiry(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.open(w, r)
	if !ok {
		return
	}
	scope.Session.UpdateRefreshExpiry()
	h.render(w, http.StatusOK, tmplExpiry, h.data(scope))
}

// Refresh is the manual refresh control. It is rejected while auto-refresh
// is on.
func (h *SessionHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.openWithPreference(w, r)
	if !ok {
		return
	}
	if scope.Preference.State().Enabled() {
		h.notice(w, http.StatusConflict, msgRefreshBlocked)
		return
	}

	err := scope.Session.Refresh(r.Context())
	h.relayCookies(w, scope)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "manual refresh failed", "error", err)
		h.notice(w, http.StatusBadGateway, msgRefreshFailed)
		return
	}
	Trigger(w, EventSessionRefreshed, nil)
	data := h.data(scope)
	data.ClearNotice = true
	h.render(w, http.StatusOK, tmplRefreshed, data)
}

// notice renders msg into the notice line and leaves the status panel alone.
func (h *SessionHandlers) notice(w http.ResponseWriter, status int, msg string) {
	Retarget(w, "#notice", "outerHTML")
	h.render(w, status, tmplNotice, viewData{Error: msg})
}

// ToggleAutoRefresh flips and persists the caller's auto-refresh preference.
func (h *SessionHandlers) ToggleAutoRefresh(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.openWithPreference(w, r)
	if !ok {
		return
	}
	state, err := scope.Preference.Toggle(r.Context())
	if err != nil {
		h.logger().ErrorContext(r.Context(), "failed to save auto-refresh preference", "error", err)
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "preference_not_saved", Err: errors.New("preference not saved")})
		return
	}
	h.logger().InfoContext(r.Context(), "auto-refresh toggled", "enabled", state.Enabled())

	cfg := scope.Preference.ScriptConfig()
	if !IsHTMX(r) {
		WriteJSON(w, http.StatusOK, cfg)
		return
	}
	Trigger(w, EventAutoRefreshChanged, cfg)
	h.render(w, http.StatusOK, tmplControls, h.data(scope))
}

// relayCookies forwards cookies the authentication service set upstream so
// the browser keeps the renewed session.
func (h *SessionHandlers) relayCookies(w http.ResponseWriter, scope *SessionScope) {
	if scope.UpstreamCookies == nil {
		return
	}
	for _, c := range scope.UpstreamCookies() {
		relayed := *c
		relayed.Domain = h.Page.CookieDomain
		relayed.Raw, relayed.Unparsed = "", nil
		http.SetCookie(w, &relayed)
	}
}
