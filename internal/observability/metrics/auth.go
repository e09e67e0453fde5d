package metrics

import (
	"time"

	obserrors "github.com/j26/auth-demo/internal/observability/errors"
	"github.com/j26/auth-demo/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Operation names for calls made against the authentication service.
const (
	OperationFetchUser = "fetch_user"
	OperationRefresh   = "refresh"
)

// AuthCallMetric captures one upstream call for metric emission.
type AuthCallMetric struct {
	Operation string
	Duration  time.Duration
	Err       error
}

// EmitAuthCall emits a counter and a timing for an upstream call.
func EmitAuthCall(sink statsd.Sink, in AuthCallMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"operation": in.Operation,
		"result":    ResultSuccess,
	}
	if in.Err != nil {
		tags["result"] = ResultError
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("auth.call", 1, tags)
	if in.Duration > 0 {
		sink.Timing("auth.call.duration", in.Duration, tags)
	}
}
