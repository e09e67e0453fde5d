package errors

import (
	"context"
	goerrors "errors"
	"reflect"
	"strings"
)

// Classifier is implemented by errors that know their own metric class.
type Classifier interface {
	Class() string
}

// Classify returns a normalized error class suitable for tagging metrics/logs.
// Errors implementing Classifier anywhere in the chain win; context errors map
// to "timeout"/"canceled"; otherwise the innermost concrete type name is used.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	var c Classifier
	if goerrors.As(err, &c) {
		if class := strings.TrimSpace(c.Class()); class != "" {
			return class
		}
	}
	switch {
	case goerrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case goerrors.Is(err, context.Canceled):
		return "canceled"
	}

	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), "*", ""))
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
