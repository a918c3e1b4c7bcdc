// Package pool provides a bounded connection pool that binds exactly one
// database connection to each logical worker.
// Connections are created lazily on first acquisition, a global ceiling caps
// the number of tracked connections, and slots held by closed connections are
// reclaimed to make room for new workers.
package pool

import (
	"sync"
	"time"

	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// Default configuration values
const (
	// DefaultMaxConnections is the default ceiling on tracked connections.
	DefaultMaxConnections = 5
	// DefaultPendingTimeout is the default number of one-second retries a
	// blocked acquisition performs before giving up.
	DefaultPendingTimeout = 10
)

// waitTick is the wait-loop granularity. Acquisitions blocked on a full
// table re-check capacity once per tick.
const waitTick = time.Second

// Connection is the capability the pool requires from pooled connections.
// Everything else (queries, transactions, closing) belongs to the concrete
// connection type and its callers.
type Connection interface {
	// IsClosed reports whether the connection has been closed. It must be
	// a cheap status read with no I/O: the pool calls it while holding its
	// internal lock.
	IsClosed() bool
}

// Factory creates new connections. It is supplied at construction and is
// invoked only during admission, after capacity has been secured.
type Factory func() (Connection, error)

// WorkerID identifies a logical worker. It is opaque to the pool: entries
// are looked up by exact equality, never by relation.
type WorkerID uint64

// Config configures a Pool.
type Config struct {
	// MaxConnections is the hard ceiling on simultaneously tracked live
	// connections. Must be > 0.
	// Default: 5
	MaxConnections int
	// PendingTimeout is how many one-second retries a blocked acquisition
	// performs before failing with MaxConnectionsError. 0 means fail
	// immediately with no retry wait.
	// Default: 10
	PendingTimeout int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxConnections: DefaultMaxConnections,
		PendingTimeout: DefaultPendingTimeout,
	}
}

// Pool binds one connection per worker, up to a configurable ceiling.
//
// All table reads and writes, capacity decisions, and the backpressure wait
// happen under a single mutex. The wait loop deliberately sleeps with the
// lock held, serializing unrelated acquisitions while the pool is at
// capacity. That coarse backpressure keeps the admission decision trivially
// race-free at the cost of throughput.
type Pool struct {
	mu      sync.Mutex
	conns   map[WorkerID]Connection
	factory Factory

	maxConns       int
	pendingTimeout int

	// tick is the wait-loop granularity. It is waitTick everywhere except
	// in tests, which shrink it to keep the suite fast.
	tick time.Duration

	// Counters, guarded by mu.
	acquireCount     uint64
	hits             uint64
	creates          uint64
	evictions        uint64
	waitTicks        uint64
	capacityFailures uint64
	factoryFailures  uint64
}

// New creates a pool with the given factory and connection ceiling.
// A maxConns <= 0 falls back to DefaultMaxConnections.
func New(factory Factory, maxConns int) *Pool {
	cfg := DefaultConfig()
	cfg.MaxConnections = maxConns
	return NewWithConfig(factory, cfg)
}

// NewWithConfig creates a pool from a full Config.
func NewWithConfig(factory Factory, cfg Config) *Pool {
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = DefaultMaxConnections
	}
	if cfg.PendingTimeout < 0 {
		cfg.PendingTimeout = DefaultPendingTimeout
	}

	p := &Pool{
		conns:          make(map[WorkerID]Connection, cfg.MaxConnections),
		factory:        factory,
		maxConns:       cfg.MaxConnections,
		pendingTimeout: cfg.PendingTimeout,
		tick:           waitTick,
	}

	log.WithField("maxConnections", cfg.MaxConnections).
		WithField("pendingTimeout", cfg.PendingTimeout).
		Debug("pool created")
	return p
}

// Acquire returns the connection bound to id, creating and binding a new one
// if none exists yet.
//
// The fast path returns a bound connection as-is without checking its
// closed-status; a worker that kept a connection past its closure sees the
// failure from the connection itself on next use, and the stale entry is
// reclaimed the next time admission needs the slot.
//
// When the table is full, Acquire first evicts entries whose connection
// reports closed, then retries once per second for up to PendingTimeout
// seconds, and finally fails with a MaxConnectionsError. Factory failures
// surface as a ConnectionError and leave the table untouched.
func (p *Pool) Acquire(id WorkerID) (Connection, error) {
	start := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.acquireCount++

	if conn, ok := p.conns[id]; ok {
		p.hits++
		AcquireLatency.Observe(time.Since(start).Seconds())
		return conn, nil
	}

	conn, err := p.admitLocked(id)
	AcquireLatency.Observe(time.Since(start).Seconds())
	return conn, err
}

// admitLocked decides whether a new connection may be created for id and,
// if so, creates and binds it. Caller must hold mu.
func (p *Pool) admitLocked(id WorkerID) (Connection, error) {
	if len(p.conns) >= p.maxConns {
		p.evictClosedLocked()
	}
	if len(p.conns) >= p.maxConns {
		p.waitForSpaceLocked()
	}
	if len(p.conns) >= p.maxConns {
		p.capacityFailures++
		log.WithField("max", p.maxConns).Warn("pool at capacity, acquisition failed")
		return nil, &MaxConnectionsError{Max: p.maxConns}
	}

	conn, err := p.factory()
	if err != nil {
		p.factoryFailures++
		log.WithError(err).Debug("connection factory failed")
		return nil, &ConnectionError{Err: err}
	}

	p.conns[id] = conn
	p.creates++
	log.WithField("worker", id).WithField("bound", len(p.conns)).Debug("connection bound")
	return conn, nil
}

// waitForSpaceLocked blocks for up to pendingTimeout ticks, re-running
// eviction after each tick, and returns as soon as a slot frees up. The
// mutex stays held across the sleeps: acquisitions for other workers queue
// behind this one until it resolves.
func (p *Pool) waitForSpaceLocked() {
	for i := 0; i < p.pendingTimeout; i++ {
		time.Sleep(p.tick)
		p.waitTicks++
		if p.evictClosedLocked(); len(p.conns) < p.maxConns {
			log.WithField("ticks", i+1).Debug("slot freed during backpressure wait")
			return
		}
	}
}

// EvictClosed removes every table entry whose connection reports closed and
// returns the number of entries removed. Admission runs the same sweep
// internally; calling it directly is only needed for housekeeping outside
// the acquisition path.
func (p *Pool) EvictClosed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.evictClosedLocked()
}

// evictClosedLocked is the lock-held eviction sweep. IsClosed is a cheap
// status flag, so scanning the whole table under the lock is fine.
func (p *Pool) evictClosedLocked() int {
	evicted := 0
	for id, conn := range p.conns {
		if conn.IsClosed() {
			delete(p.conns, id)
			evicted++
		}
	}
	if evicted > 0 {
		p.evictions += uint64(evicted)
		log.WithField("evicted", evicted).Debug("closed connections evicted")
	}
	return evicted
}

// Size returns the number of currently bound connections.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.conns)
}

// MaxConnections returns the current connection ceiling.
func (p *Pool) MaxConnections() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxConns
}

// SetMaxConnections changes the connection ceiling. It does not evict
// connections already bound above a lowered ceiling; the table shrinks
// back under it as closed connections are reclaimed.
func (p *Pool) SetMaxConnections(n int) error {
	if n <= 0 {
		return ErrInvalidLimit
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.maxConns = n
	return nil
}

// PendingTimeout returns the wait budget, in seconds.
func (p *Pool) PendingTimeout() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pendingTimeout
}

// SetPendingTimeout changes the wait budget. 0 disables the backpressure
// wait entirely: a full table fails immediately after one eviction sweep.
func (p *Pool) SetPendingTimeout(seconds int) error {
	if seconds < 0 {
		return ErrInvalidLimit
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pendingTimeout = seconds
	return nil
}

// Stats is a point-in-time snapshot of pool state and counters.
type Stats struct {
	// MaxConnections is the current connection ceiling.
	MaxConnections int
	// PendingTimeout is the wait budget in seconds.
	PendingTimeout int
	// Bound is the number of currently bound connections.
	Bound int
	// AcquireCount is the total number of Acquire calls.
	AcquireCount uint64
	// Hits is the number of acquisitions served from the table.
	Hits uint64
	// Creates is the number of connections created and bound.
	Creates uint64
	// Evictions is the number of closed connections reclaimed.
	Evictions uint64
	// WaitTicks is the total number of backpressure ticks slept.
	WaitTicks uint64
	// CapacityFailures is the number of acquisitions that exhausted the
	// wait budget.
	CapacityFailures uint64
	// FactoryFailures is the number of factory calls that failed.
	FactoryFailures uint64
}

// Stats returns current pool statistics.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{
		MaxConnections:   p.maxConns,
		PendingTimeout:   p.pendingTimeout,
		Bound:            len(p.conns),
		AcquireCount:     p.acquireCount,
		Hits:             p.hits,
		Creates:          p.creates,
		Evictions:        p.evictions,
		WaitTicks:        p.waitTicks,
		CapacityFailures: p.capacityFailures,
		FactoryFailures:  p.factoryFailures,
	}
}
