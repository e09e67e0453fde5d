package errors

import (
	"context"
	goerrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type classified struct{ class string }

func (c classified) Error() string { return "classified" }
func (c classified) Class() string { return c.class }

type plainErr struct{}

func (*plainErr) Error() string { return "plain" }

func TestClassify(t *testing.T) {
	assert.Equal(t, "", Classify(nil))
	assert.Equal(t, "network", Classify(fmt.Errorf("wrap: %w", classified{class: "network"})))
	assert.Equal(t, "timeout", Classify(fmt.Errorf("call: %w", context.DeadlineExceeded)))
	assert.Equal(t, "canceled", Classify(context.Canceled))
	assert.Equal(t, "errors_plainerr", Classify(fmt.Errorf("outer: %w", &plainErr{})))
	assert.Equal(t, "errors_errorstring", Classify(goerrors.New("boom")))
}
