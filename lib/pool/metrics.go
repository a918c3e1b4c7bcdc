package pool

import "github.com/go-i2p/dbpool/lib/metrics"

// Pool utilization metrics
var (
	// ConnectionsMax is the configured connection ceiling.
	ConnectionsMax = metrics.NewGauge(
		"dbpool_connections_max",
		"Configured ceiling on tracked connections",
	)
	// ConnectionsBound is the current number of bound connections.
	ConnectionsBound = metrics.NewGauge(
		"dbpool_connections_bound",
		"Current number of worker-bound connections",
	)
	// AcquireTotal is the total number of acquisitions.
	AcquireTotal = metrics.NewCounter(
		"dbpool_acquire_total",
		"Total number of connection acquisitions",
	)
	// AcquireHitsTotal is the number of acquisitions served from the table.
	AcquireHitsTotal = metrics.NewCounter(
		"dbpool_acquire_hits_total",
		"Acquisitions that returned an already-bound connection",
	)
	// ConnectionsCreatedTotal is the number of connections created.
	ConnectionsCreatedTotal = metrics.NewCounter(
		"dbpool_connections_created_total",
		"Total number of connections created and bound",
	)
	// EvictionsTotal is the number of closed connections reclaimed.
	EvictionsTotal = metrics.NewCounter(
		"dbpool_evictions_total",
		"Total number of closed connections evicted from the table",
	)
	// WaitTicksTotal is the number of backpressure ticks slept.
	WaitTicksTotal = metrics.NewCounter(
		"dbpool_wait_ticks_total",
		"Total backpressure wait ticks slept by blocked acquisitions",
	)
	// CapacityFailuresTotal is the number of acquisitions that exhausted
	// the wait budget.
	CapacityFailuresTotal = metrics.NewCounter(
		"dbpool_capacity_failures_total",
		"Acquisitions that failed after exhausting the wait budget",
	)
	// FactoryFailuresTotal is the number of factory failures.
	FactoryFailuresTotal = metrics.NewCounter(
		"dbpool_factory_failures_total",
		"Total number of connection factory failures",
	)
	// AcquireLatency tracks time spent in Acquire, including any
	// backpressure wait.
	AcquireLatency = metrics.NewHistogram(
		"dbpool_acquire_duration_seconds",
		"Time spent acquiring a connection from the pool",
		metrics.DefaultLatencyBuckets,
	)
)

// UpdateMetrics publishes a Stats snapshot to the metrics registry.
// Counters are set to the snapshot totals; the pool's internal counters are
// the source of truth.
func UpdateMetrics(stats Stats) {
	ConnectionsMax.Set(int64(stats.MaxConnections))
	ConnectionsBound.Set(int64(stats.Bound))
	AcquireTotal.Set(stats.AcquireCount)
	AcquireHitsTotal.Set(stats.Hits)
	ConnectionsCreatedTotal.Set(stats.Creates)
	EvictionsTotal.Set(stats.Evictions)
	WaitTicksTotal.Set(stats.WaitTicks)
	CapacityFailuresTotal.Set(stats.CapacityFailures)
	FactoryFailuresTotal.Set(stats.FactoryFailures)
}
