package metrics

import "github.com/StefanUPB/tng-gtk-common/internal/observability/statsd"

// StoreGauges is a snapshot of an in-process status store.
type StoreGauges struct {
	Backend   string
	Size      int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// EmitStoreGauges reports g as gauges tagged with the store backend.
// Hits, misses and evictions are cumulative since process start.
func EmitStoreGauges(sink statsd.Sink, g StoreGauges) {
	if sink == nil {
		return
	}
	tags := map[string]string{"backend": g.Backend}
	sink.Gauge("gateway.status_store.size", float64(g.Size), CloneTags(tags))
	sink.Gauge("gateway.status_store.capacity", float64(g.Capacity), CloneTags(tags))
	sink.Gauge("gateway.status_store.hits", float64(g.Hits), CloneTags(tags))
	sink.Gauge("gateway.status_store.misses", float64(g.Misses), CloneTags(tags))
	sink.Gauge("gateway.status_store.evictions", float64(g.Evictions), CloneTags(tags))
}
