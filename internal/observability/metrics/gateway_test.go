package metrics

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/StefanUPB/tng-gtk-common/internal/errors"
)

type recordedMetric struct {
	kind string
	name string
	tags map[string]string
}

type fakeSink struct {
	metrics []recordedMetric
}

func (f *fakeSink) Count(name string, _ int64, tags map[string]string) {
	f.metrics = append(f.metrics, recordedMetric{kind: "count", name: name, tags: tags})
}

func (f *fakeSink) Gauge(name string, _ float64, tags map[string]string) {
	f.metrics = append(f.metrics, recordedMetric{kind: "gauge", name: name, tags: tags})
}

func (f *fakeSink) Timing(name string, _ time.Duration, tags map[string]string) {
	f.metrics = append(f.metrics, recordedMetric{kind: "timing", name: name, tags: tags})
}

func TestEmit_SuccessWithDuration(t *testing.T) {
	sink := &fakeSink{}
	Emit(sink, Operation{
		Name:     "dispatch",
		Result:   ResultSuccess,
		Duration: 20 * time.Millisecond,
		Tags:     map[string]string{"status": "200"},
	})

	if len(sink.metrics) != 2 {
		t.Fatalf("expected count and timing, got %d metrics", len(sink.metrics))
	}
	if sink.metrics[0].name != "gateway.dispatch" || sink.metrics[0].tags["result"] != ResultSuccess {
		t.Fatalf("unexpected count metric %+v", sink.metrics[0])
	}
	if sink.metrics[1].name != "gateway.dispatch.duration" || sink.metrics[1].tags["status"] != "200" {
		t.Fatalf("unexpected timing metric %+v", sink.metrics[1])
	}
}

func TestEmit_ErrorClass(t *testing.T) {
	sink := &fakeSink{}
	Emit(sink, Operation{
		Name:   "materialize",
		Result: ResultError,
		Err:    apperrors.Transport(errors.New("unexpected EOF"), "download failed"),
	})

	if len(sink.metrics) != 1 {
		t.Fatalf("expected only a count, got %d", len(sink.metrics))
	}
	if got := sink.metrics[0].tags["error_class"]; got != "transport" {
		t.Fatalf("error_class = %q, want transport", got)
	}
}

func TestEmit_NilSinkAndNoName(t *testing.T) {
	Emit(nil, Operation{Name: "callback"})

	sink := &fakeSink{}
	Emit(sink, Operation{Result: ResultSuccess})
	if len(sink.metrics) != 0 {
		t.Fatalf("expected nothing emitted without a name")
	}
}

func TestResultFor(t *testing.T) {
	if ResultFor(nil) != ResultSuccess || ResultFor(errors.New("x")) != ResultError {
		t.Fatal("unexpected ResultFor mapping")
	}
}

func TestCloneTags(t *testing.T) {
	src := map[string]string{"a": "1"}
	cp := CloneTags(src)
	cp["a"] = "2"
	if src["a"] != "1" {
		t.Fatal("CloneTags must not alias the source map")
	}
	if CloneTags(nil) != nil {
		t.Fatal("CloneTags(nil) should be nil")
	}
}

func TestEmitStoreGauges(t *testing.T) {
	sink := &fakeSink{}
	EmitStoreGauges(sink, StoreGauges{Backend: "memory", Size: 3, Capacity: 10, Hits: 7})

	if len(sink.metrics) != 5 {
		t.Fatalf("expected 5 gauges, got %d", len(sink.metrics))
	}
	for _, m := range sink.metrics {
		if m.kind != "gauge" || m.tags["backend"] != "memory" {
			t.Fatalf("unexpected metric %+v", m)
		}
	}
	if sink.metrics[0].name != "gateway.status_store.size" {
		t.Fatalf("unexpected first gauge %q", sink.metrics[0].name)
	}

	EmitStoreGauges(nil, StoreGauges{})
}
