package resilience

import "github.com/go-i2p/dbpool/lib/metrics"

// Circuit breaker metrics
var (
	// BreakerTrips counts closed-to-open transitions.
	BreakerTrips = metrics.NewCounter(
		"dbpool_breaker_trips_total",
		"Total number of circuit breaker trips",
	)
	// BreakerFastFails counts dials rejected while the circuit was open.
	BreakerFastFails = metrics.NewCounter(
		"dbpool_breaker_fast_fails_total",
		"Total number of dials rejected by an open circuit breaker",
	)
)
