package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// JMESPathEvaluator abstracts JMESPath validation and evaluation.
type JMESPathEvaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

// jmespathLibEvaluator implements JMESPathEvaluator using go-jmespath.
type jmespathLibEvaluator struct{}

func (jmespathLibEvaluator) Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return errors.New("empty expression")
	}
	_, err := jmespath.Compile(expr)
	return err
}

func (jmespathLibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// UserDisplay extracts a human-readable name from the opaque user record.
type UserDisplay struct {
	expr string
	jems JMESPathEvaluator
}

// NewUserDisplay validates expr and returns a UserDisplay. A nil evaluator
// uses go-jmespath.
func NewUserDisplay(expr string, evaluator JMESPathEvaluator) (*UserDisplay, error) {
	if evaluator == nil {
		evaluator = jmespathLibEvaluator{}
	}
	if err := evaluator.Validate(expr); err != nil {
		return nil, fmt.Errorf("invalid user name expression %q: %w", expr, err)
	}
	return &UserDisplay{expr: expr, jems: evaluator}, nil
}

// Name returns the display name, or "" when the record has none.
func (d *UserDisplay) Name(user json.RawMessage) string {
	if d == nil || len(user) == 0 {
		return ""
	}
	var data any
	if err := json.Unmarshal(user, &data); err != nil {
		return ""
	}
	v, err := d.jems.Evaluate(d.expr, data)
	if err != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
