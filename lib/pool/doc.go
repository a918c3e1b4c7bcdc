// Package pool provides a bounded connection pool that binds one database
// connection to each logical worker, for use beneath a record-mapping layer.
//
// The pool supports:
//   - Lazy connection creation on first acquisition per worker
//   - A hard, runtime-adjustable ceiling on tracked connections
//   - Reclamation of slots whose connection has been closed
//   - A bounded backpressure wait when the pool is full
//   - Metrics for pool utilization
//
// # Basic Usage
//
//	factory := func() (pool.Connection, error) {
//	    return sqlconn.Open("sqlite3", "file:app.db")
//	}
//
//	p := pool.New(factory, 5)
//
//	conn, err := p.Acquire(workerID)
//	if err != nil {
//	    return err
//	}
//
//	// Use connection... The pool keeps it bound to workerID; there is no
//	// release step. Closing the connection (elsewhere) frees the slot on
//	// the next eviction sweep.
//
// # Identity
//
// A WorkerID is opaque to the pool: any stable per-worker value works. Code
// without a natural identity can draw one from NextWorkerID and carry it in
// a context via WithWorker / AcquireContext.
//
// # Capacity and backpressure
//
// When the table is full, Acquire evicts closed connections, then retries
// once per second for up to PendingTimeout seconds while holding the pool
// lock, and finally fails with a MaxConnectionsError. The held lock means a
// full pool serializes all acquisitions until a slot frees up; that is the
// intended backpressure behavior, not an accident.
//
// # Metrics
//
// Pool utilization metrics are registered with the metrics package:
//   - dbpool_connections_max: configured ceiling
//   - dbpool_connections_bound: currently bound connections
//   - dbpool_acquire_total: total acquisitions
//   - dbpool_acquire_hits_total: acquisitions served from the table
//   - dbpool_connections_created_total: connections created
//   - dbpool_evictions_total: closed connections reclaimed
//   - dbpool_wait_ticks_total: backpressure ticks slept
//   - dbpool_capacity_failures_total: acquisitions failed at capacity
//   - dbpool_factory_failures_total: factory failures
//   - dbpool_acquire_duration_seconds: acquisition latency
package pool
