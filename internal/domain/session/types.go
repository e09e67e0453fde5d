package session

// Package session contains domain-level types for tracking a session that is
// owned by the external authentication service. It is pure and free of
// framework/adapter concerns.

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// DisplayTimeLayout renders absolute expiry times the way the demo page does
// (Swedish locale, ISO-like date and 24h clock).
const DisplayTimeLayout = "2006-01-02 15:04:05"

// NotApplicable is shown for values that are unknown.
const NotApplicable = "N/A"

// Session mirrors what the client knows about the session held by the
// authentication service. It is optimistic: the service is the source of truth.
type Session struct {
	// User is the opaque user record returned by the status endpoint, nil when absent.
	User json.RawMessage
	// ExpiresAt comes from the expiry cookie; zero when no expiry is known.
	ExpiresAt time.Time
	// Loading is true while a status fetch is in flight.
	Loading bool
}

// New returns the state a session starts in before the first status fetch.
func New() Session { return Session{Loading: true} }

// Authenticated reports whether the status endpoint returned a user.
func (s Session) Authenticated() bool { return len(s.User) > 0 }

// HasExpiry reports whether an expiry timestamp is known.
func (s Session) HasExpiry() bool { return !s.ExpiresAt.IsZero() }

// Clone returns a deep copy safe to hand to renderers.
func (s Session) Clone() Session {
	out := s
	if s.User != nil {
		out.User = append(json.RawMessage(nil), s.User...)
	}
	return out
}

// NormalizeUser maps a JSON null or empty payload to nil.
func NormalizeUser(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return append(json.RawMessage(nil), trimmed...)
}

// ParseExpiresAt parses the expiry cookie value: a base-10 integer of epoch
// milliseconds. Leading digits are accepted the way a lenient integer parse
// would; anything without a leading integer reports ok=false.
func ParseExpiresAt(value string) (time.Time, bool) {
	v := strings.TrimSpace(value)
	end := 0
	for end < len(v) {
		c := v[end]
		if (c == '-' || c == '+') && end == 0 {
			end++
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		end++
	}
	ms, err := strconv.ParseInt(v[:end], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// SecondsUntil returns max(0, ceil((target-now)/1s)). A zero target yields 0.
func SecondsUntil(target, now time.Time) int {
	if target.IsZero() {
		return 0
	}
	remaining := target.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Seconds()))
}

// FormatExpiresAt renders the absolute expiry or N/A.
func FormatExpiresAt(expiresAt time.Time, loc *time.Location) string {
	if expiresAt.IsZero() {
		return NotApplicable
	}
	if loc == nil {
		loc = time.Local
	}
	return expiresAt.In(loc).Format(DisplayTimeLayout)
}

// FormatExpiresIn renders the countdown, or N/A when no expiry is known.
func FormatExpiresIn(expiresAt time.Time, seconds int) string {
	if expiresAt.IsZero() {
		return NotApplicable
	}
	if seconds < 0 {
		seconds = 0
	}
	return strconv.Itoa(seconds) + " seconds"
}

// FormatUser pretty-prints the user record with two-space indentation, or N/A.
func FormatUser(user json.RawMessage) string {
	if len(user) == 0 {
		return NotApplicable
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, user, "", "  "); err != nil {
		return string(user)
	}
	return buf.String()
}

// YesNo renders a boolean row value.
func YesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
