package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedMetric struct {
	kind string
	name string
	tags map[string]string
}

type recordingSink struct{ metrics []recordedMetric }

func (r *recordingSink) Count(name string, _ int64, tags map[string]string) {
	r.metrics = append(r.metrics, recordedMetric{kind: "count", name: name, tags: tags})
}

func (r *recordingSink) Timing(name string, _ time.Duration, tags map[string]string) {
	r.metrics = append(r.metrics, recordedMetric{kind: "timing", name: name, tags: tags})
}

func TestEmitAuthCall_Success(t *testing.T) {
	sink := &recordingSink{}
	EmitAuthCall(sink, AuthCallMetric{Operation: OperationRefresh, Duration: 12 * time.Millisecond})

	require.Len(t, sink.metrics, 2)
	assert.Equal(t, "auth.call", sink.metrics[0].name)
	assert.Equal(t, ResultSuccess, sink.metrics[0].tags["result"])
	assert.Equal(t, OperationRefresh, sink.metrics[0].tags["operation"])
	assert.Equal(t, "timing", sink.metrics[1].kind)
}

func TestEmitAuthCall_ErrorWithoutDuration(t *testing.T) {
	sink := &recordingSink{}
	EmitAuthCall(sink, AuthCallMetric{Operation: OperationFetchUser, Err: errors.New("boom")})

	require.Len(t, sink.metrics, 1)
	assert.Equal(t, ResultError, sink.metrics[0].tags["result"])
	assert.NotEmpty(t, sink.metrics[0].tags["error_class"])
}

func TestEmitAuthCall_NilSink(t *testing.T) {
	assert.NotPanics(t, func() {
		EmitAuthCall(nil, AuthCallMetric{Operation: OperationRefresh})
	})
}
