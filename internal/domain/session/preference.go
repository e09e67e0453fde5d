package session

// AutoRefreshState is the two-state toggle governing background refresh.
type AutoRefreshState bool

const (
	AutoRefreshEnabled  AutoRefreshState = true
	AutoRefreshDisabled AutoRefreshState = false
)

// Enabled reports whether background refresh may run.
func (s AutoRefreshState) Enabled() bool { return bool(s) }

// Toggle returns the other state.
func (s AutoRefreshState) Toggle() AutoRefreshState { return !s }

// PreventValue serialises the state as the persisted "prevent auto-refresh"
// flag, which is the inverse of Enabled, as the literal "true" or "false".
func (s AutoRefreshState) PreventValue() string {
	if s.Enabled() {
		return "false"
	}
	return "true"
}

// AutoRefreshFromPrevent decodes a persisted flag. Only the literal "true"
// disables auto-refresh; missing or unrecognised values leave it enabled.
func AutoRefreshFromPrevent(value string, ok bool) AutoRefreshState {
	if ok && value == "true" {
		return AutoRefreshDisabled
	}
	return AutoRefreshEnabled
}

// RefreshScriptConfig is handed to whatever owns background refresh (the
// browser script or the terminal AutoRefresher) instead of shared global state.
type RefreshScriptConfig struct {
	Enabled bool `json:"enabled"`
}
