package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeStats is a snapshot of Go runtime resource usage
type RuntimeStats struct {
	Goroutines     int     `json:"goroutines"`
	HeapAllocBytes uint64  `json:"heap_alloc_bytes"`
	SysBytes       uint64  `json:"sys_bytes"`
	NumGC          uint32  `json:"num_gc"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
}

// CollectRuntimeStats reads the current runtime counters.
func CollectRuntimeStats(start time.Time) RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: mem.HeapAlloc,
		SysBytes:       mem.Sys,
		NumGC:          mem.NumGC,
		UptimeSeconds:  time.Since(start).Seconds(),
	}
}

// RegisterUptimeMetric exports process uptime as an observable gauge.
func RegisterUptimeMetric(meter metric.Meter, start time.Time) error {
	_, err := meter.Float64ObservableGauge(
		"process_uptime_seconds",
		metric.WithDescription("Seconds since the server started"),
		metric.WithUnit("s"),
		metric.WithFloat64Callback(func(_ context.Context, o metric.Float64Observer) error {
			o.Observe(time.Since(start).Seconds())
			return nil
		}),
	)
	return err
}
