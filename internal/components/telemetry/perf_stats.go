package telemetry

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type perfGauges struct {
	cpu         metric.Float64Gauge
	memory      metric.Int64Gauge
	liveObjects metric.Int64Gauge
	goroutines  metric.Int64Gauge
}

func newPerfGauges(meter metric.Meter) (perfGauges, error) {
	var (
		g   perfGauges
		err error
	)
	g.cpu, err = meter.Float64Gauge("cpu_usage", metric.WithUnit("%"))
	if err != nil {
		return perfGauges{}, err
	}
	g.memory, err = meter.Int64Gauge("allocated_mb", metric.WithUnit("MB"))
	if err != nil {
		return perfGauges{}, err
	}
	g.liveObjects, err = meter.Int64Gauge("live_objects")
	if err != nil {
		return perfGauges{}, err
	}
	g.goroutines, err = meter.Int64Gauge("goroutine_count")
	if err != nil {
		return perfGauges{}, err
	}
	return g, nil
}

func (g perfGauges) record(ctx context.Context) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	// an interval of 0 compares against the previous call
	cpuUsage, err := cpu.PercentWithContext(ctx, 0, false)
	if err == nil && len(cpuUsage) > 0 {
		g.cpu.Record(ctx, cpuUsage[0])
	} else if err != nil {
		slog.Debug("failed to read cpu usage", "err", err)
	}

	g.memory.Record(ctx, int64(memStats.Alloc/1_000_000))
	g.liveObjects.Record(ctx, int64(memStats.Mallocs)-int64(memStats.Frees))
	g.goroutines.Record(ctx, int64(runtime.NumGoroutine()))
}

// InstrumentPerfStats records process statistics through the global meter
// provider every `interval` until ctx is done.
func InstrumentPerfStats(ctx context.Context, interval time.Duration) error {
	gauges, err := newPerfGauges(otel.Meter("go.perf_stats"))
	if err != nil {
		return err
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				gauges.record(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
