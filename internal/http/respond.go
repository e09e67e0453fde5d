package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
)

// Event is a client-side event raised through the Hx-Trigger header. The
// page script listens for these to keep the refresh script in step.
type Event string

const (
	// EventSessionRefreshed fires after a manual refresh succeeded.
	EventSessionRefreshed Event = "sessionRefreshed"
	// EventAutoRefreshChanged carries the new RefreshScriptConfig.
	EventAutoRefreshChanged Event = "autoRefreshChanged"
)

// IsHTMX reports whether the request was initiated by htmx (Hx-Request: true).
func IsHTMX(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Hx-Request"), "true")
}

// Trigger sets Hx-Trigger to {"<event>": payload}, or true when payload is nil.
func Trigger(w http.ResponseWriter, event Event, payload any) {
	var value any = true
	if payload != nil {
		value = payload
	}
	b, err := json.Marshal(map[Event]any{event: value})
	if err != nil {
		b = []byte(`{"` + string(event) + `":true}`)
	}
	w.Header().Set("Hx-Trigger", string(b))
}

// Retarget points htmx at target with the given swap style, overriding the
// hx-target and hx-swap of the element that made the request.
func Retarget(w http.ResponseWriter, target, swap string) {
	w.Header().Set("Hx-Retarget", target)
	if swap != "" {
		w.Header().Set("Hx-Reswap", swap)
	}
}

// WriteJSON writes v as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	// A disconnected client is not an error worth reporting.
	_, _ = buf.WriteTo(w)
}

// ErrorParams describes a JSON error reply.
type ErrorParams struct {
	Code    int
	ErrCode string
	// Err supplies the message; nil falls back to the status text.
	Err error
}

// WriteError writes {"error": ErrCode, "message": ...}.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	msg := http.StatusText(p.Code)
	if p.Err != nil {
		msg = p.Err.Error()
	}
	WriteJSON(w, p.Code, map[string]string{"error": p.ErrCode, "message": msg})
}
