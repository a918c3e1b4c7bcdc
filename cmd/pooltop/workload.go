package main

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-i2p/dbpool/lib/pool"
	"github.com/go-i2p/dbpool/lib/testutil"
)

// workload runs a fleet of synthetic workers against a pool. Each worker
// repeatedly reacquires its own connection and occasionally closes it, so
// the monitor has eviction and rebinding activity to display.
type workload struct {
	pool    *pool.Pool
	workers int
	churn   time.Duration

	paused atomic.Bool
	stop   chan struct{}
	wg     sync.WaitGroup
}

func newWorkload(p *pool.Pool, workers int, churn time.Duration) *workload {
	if workers < 1 {
		workers = 1
	}
	return &workload{
		pool:    p,
		workers: workers,
		churn:   churn,
		stop:    make(chan struct{}),
	}
}

// Start launches the worker goroutines.
func (w *workload) Start() {
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.runWorker(pool.WorkerID(i + 1))
	}
}

// Stop shuts the fleet down and waits for it to drain.
func (w *workload) Stop() {
	close(w.stop)
	w.wg.Wait()
}

// TogglePause flips the fleet between running and idle and reports the new
// paused state.
func (w *workload) TogglePause() bool {
	paused := !w.paused.Load()
	w.paused.Store(paused)
	return paused
}

// Workers returns the fleet size.
func (w *workload) Workers() int {
	return w.workers
}

func (w *workload) runWorker(id pool.WorkerID) {
	defer w.wg.Done()

	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))

	for {
		select {
		case <-w.stop:
			return
		case <-time.After(jitter(rng, 200*time.Millisecond)):
		}

		if w.paused.Load() {
			continue
		}

		conn, err := w.pool.Acquire(id)
		if err != nil {
			// Capacity or dial failure; the next iteration retries.
			continue
		}

		// Once in a while, drop the connection to exercise eviction.
		if fake, ok := conn.(*testutil.FakeConn); ok {
			if rng.Float64() < float64(200*time.Millisecond)/float64(w.churn) {
				fake.Close()
			}
		}
	}
}

// jitter returns a duration in [d/2, 3d/2).
func jitter(rng *rand.Rand, d time.Duration) time.Duration {
	return d/2 + time.Duration(rng.Int63n(int64(d)))
}
