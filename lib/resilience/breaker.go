// Package resilience provides a circuit breaker for connection factories.
//
// A pool retries admission whenever a slot frees up, so a database that is
// down gets redialed on every admission attempt. Wrapping the factory in a
// breaker makes repeated dial failures fail fast until the backend has had
// time to recover.
//
// State transitions:
//
//	Closed (normal) -> Open (failing) -> HalfOpen (testing) -> Closed
//	                     ^                    |
//	                     +--------------------+ (if test fails)
package resilience

import (
	"sync"
	"time"

	"github.com/go-i2p/logger"

	dberrors "github.com/go-i2p/dbpool/lib/errors"
	"github.com/go-i2p/dbpool/lib/pool"
)

var log = logger.GetGoI2PLogger()

// State represents the state of the circuit breaker.
type State int

const (
	// StateClosed is the normal operating state - dials pass through.
	StateClosed State = iota
	// StateOpen means the circuit is tripped - dials fail immediately.
	StateOpen
	// StateHalfOpen means the circuit is testing if the backend recovered.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures the circuit breaker behavior.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive dial failures before
	// opening the circuit.
	FailureThreshold int
	// SuccessThreshold is the number of successful dials in half-open
	// state before closing the circuit.
	SuccessThreshold int
	// Cooldown is how long the circuit stays open before allowing a
	// test dial.
	Cooldown time.Duration
	// MaxProbes is the maximum number of dials allowed in half-open state.
	MaxProbes int
}

// DefaultBreakerConfig returns sensible defaults for database dials.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Cooldown:         30 * time.Second,
		MaxProbes:        1,
	}
}

// Breaker implements the circuit breaker pattern for connection dials.
type Breaker struct {
	mu     sync.Mutex
	config BreakerConfig
	name   string

	state    State
	failures int
	probes   int
	passes   int
	openedAt time.Time
}

// NewBreaker creates a circuit breaker with the given configuration.
// Zero-value config fields fall back to DefaultBreakerConfig.
func NewBreaker(name string, cfg BreakerConfig) *Breaker {
	def := DefaultBreakerConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	if cfg.MaxProbes <= 0 {
		cfg.MaxProbes = def.MaxProbes
	}

	return &Breaker{
		config: cfg,
		name:   name,
		state:  StateClosed,
	}
}

// Allow reports whether a dial may proceed, counting it against the
// half-open probe budget when applicable.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.allowLocked()
}

func (b *Breaker) allowLocked() bool {
	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(b.openedAt) >= b.config.Cooldown {
			b.transitionTo(StateHalfOpen)
			b.probes = 1
			return true
		}
		return false
	case StateHalfOpen:
		if b.probes < b.config.MaxProbes {
			b.probes++
			return true
		}
		return false
	default:
		return false
	}
}

// RecordSuccess records a successful dial.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.passes++
		if b.passes >= b.config.SuccessThreshold {
			b.transitionTo(StateClosed)
		}
	}
}

// RecordFailure records a failed dial.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.config.FailureThreshold {
			b.transitionTo(StateOpen)
		}
	case StateHalfOpen:
		// Test dial failed - back to open for another cooldown.
		b.transitionTo(StateOpen)
	}
}

// transitionTo changes the breaker state. Caller must hold mu.
func (b *Breaker) transitionTo(next State) {
	if b.state == next {
		return
	}

	prev := b.state
	b.state = next

	switch next {
	case StateClosed:
		b.failures = 0
		b.passes = 0
	case StateOpen:
		b.openedAt = time.Now()
		b.passes = 0
		BreakerTrips.Inc()
	case StateHalfOpen:
		b.passes = 0
		b.probes = 0
	}

	log.WithField("breaker", b.name).
		WithField("from", prev.String()).
		WithField("to", next.String()).
		Warn("circuit breaker state transition")
}

// State returns the current breaker state, accounting for an elapsed
// cooldown.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen && time.Since(b.openedAt) >= b.config.Cooldown {
		return StateHalfOpen
	}
	return b.state
}

// IsOpen returns true if the breaker is currently rejecting dials.
func (b *Breaker) IsOpen() bool {
	return b.State() == StateOpen
}

// Reset returns the breaker to its initial closed state.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = StateClosed
	b.failures = 0
	b.passes = 0
	b.probes = 0
	b.openedAt = time.Time{}
}

// Name returns the name of this breaker.
func (b *Breaker) Name() string {
	return b.name
}

// Guard wraps a connection factory with the breaker. While the circuit is
// open the returned factory fails immediately with ErrCircuitOpen; the pool
// surfaces that to callers wrapped in its usual factory-failure error, with
// no table mutation.
func (b *Breaker) Guard(factory pool.Factory) pool.Factory {
	return func() (pool.Connection, error) {
		if !b.Allow() {
			BreakerFastFails.Inc()
			return nil, dberrors.ErrCircuitOpen
		}

		conn, err := factory()
		if err != nil {
			b.RecordFailure()
			return nil, err
		}

		b.RecordSuccess()
		return conn, nil
	}
}
