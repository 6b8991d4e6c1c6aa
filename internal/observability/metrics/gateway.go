// Package metrics emits the gateway's counters and timings through a statsd.Sink.
package metrics

import (
	"time"

	obserrors "github.com/StefanUPB/tng-gtk-common/internal/observability/errors"
	"github.com/StefanUPB/tng-gtk-common/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess  = "success"
	ResultError    = "error"
	ResultRejected = "rejected"
	ResultNotFound = "not_found"
)

// Operation is one gateway interaction worth counting.
type Operation struct {
	// Name is the metric suffix, e.g. "dispatch" becomes gateway.dispatch.
	Name     string
	Result   string
	Duration time.Duration
	Err      error
	// Tags are extra low-cardinality tags such as status or kind.
	Tags map[string]string
}

// Emit records a count and, when Duration is set, a timing for op.
func Emit(sink statsd.Sink, op Operation) {
	if sink == nil || op.Name == "" {
		return
	}

	tags := CloneTags(op.Tags)
	if tags == nil {
		tags = make(map[string]string, 2)
	}
	tags["result"] = op.Result
	if op.Err != nil && op.Result == ResultError {
		if class := obserrors.Classify(op.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("gateway."+op.Name, 1, tags)
	if op.Duration > 0 {
		sink.Timing("gateway."+op.Name+".duration", op.Duration, CloneTags(tags))
	}
}

// ResultFor maps an error to ResultSuccess or ResultError.
func ResultFor(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
