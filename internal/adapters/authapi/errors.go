package authapi

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures talking to the authentication service.
type ErrorKind string

const (
	// KindNetwork covers transport failures (DNS, refused, timeouts).
	KindNetwork ErrorKind = "network"
	// KindMalformed covers response bodies that are not the expected JSON.
	KindMalformed ErrorKind = "malformed"
	// KindStatus covers unexpected HTTP status codes.
	KindStatus ErrorKind = "status"
)

// Error is returned by every Client call that fails.
type Error struct {
	Kind       ErrorKind
	Operation  string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("auth %s: unexpected status %d", e.Operation, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("auth %s: %s: %v", e.Operation, e.Kind, e.Err)
	}
	return fmt.Sprintf("auth %s: %s", e.Operation, e.Kind)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Class tags metrics with the error kind.
func (e *Error) Class() string { return string(e.Kind) }

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
