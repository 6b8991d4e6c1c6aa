package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/StefanUPB/tng-gtk-common/config"
	"github.com/StefanUPB/tng-gtk-common/internal/data"
	"github.com/StefanUPB/tng-gtk-common/internal/observability/metrics"
	"github.com/StefanUPB/tng-gtk-common/internal/observability/statsd"
)

const storeStatsInterval = 30 * time.Second

// storeStatsSource is implemented by stores that keep in-process counters.
type storeStatsSource interface {
	Stats() data.MemoryStatusStoreStats
}

// reportStoreStats emits store gauges every interval until ctx is done.
func reportStoreStats(ctx context.Context, src storeStatsSource, sink statsd.Sink, interval time.Duration, logger *slog.Logger) error {
	if interval <= 0 {
		interval = storeStatsInterval
	}
	logger.DebugContext(ctx, "reporting status store stats", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s := src.Stats()
			metrics.EmitStoreGauges(sink, metrics.StoreGauges{
				Backend:   string(config.StoreBackendMemory),
				Size:      s.Size,
				Capacity:  s.Capacity,
				Hits:      s.Hits,
				Misses:    s.Misses,
				Evictions: s.Evictions,
			})
		}
	}
}
