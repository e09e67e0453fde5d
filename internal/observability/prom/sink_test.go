package prom

import (
	"errors"
	"testing"
	"time"

	"github.com/j26/auth-demo/internal/observability/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSink_RecordsAuthCalls(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := NewSink("authdemo", reg)

	metrics.EmitAuthCall(sink, metrics.AuthCallMetric{
		Operation: metrics.OperationFetchUser,
		Duration:  20 * time.Millisecond,
	})
	metrics.EmitAuthCall(sink, metrics.AuthCallMetric{
		Operation: metrics.OperationRefresh,
		Duration:  10 * time.Millisecond,
		Err:       errors.New("boom"),
	})

	assert.InDelta(t, 1, testutil.ToFloat64(sink.authCalls.WithLabelValues("fetch_user", "success", "")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(sink.authCalls))
	assert.Equal(t, 2, testutil.CollectAndCount(sink.authLatency))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{"authdemo_auth_calls_total", "authdemo_auth_call_duration_seconds"}, names)
}

func TestSink_IgnoresUnknownMetrics(t *testing.T) {
	sink := NewSink("authdemo", prometheus.NewRegistry())
	sink.Count("something.else", 1, nil)
	sink.Timing("something.else", time.Second, nil)
	assert.Equal(t, 0, testutil.CollectAndCount(sink.authCalls))
}

func TestSink_NilIsSafe(t *testing.T) {
	var sink *Sink
	assert.NotPanics(t, func() {
		sink.Count(authCallCount, 1, nil)
		sink.Timing(authCallDuration, time.Second, nil)
	})
}
