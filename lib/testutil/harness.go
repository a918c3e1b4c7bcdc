// Package testutil provides shared fakes and a small worker harness for
// exercising the connection pool in tests and demos: closable fake
// connections, scripted factories, and a goroutine fan-out helper.
package testutil

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-i2p/dbpool/lib/pool"
)

// FakeConn is a closable fake connection.
type FakeConn struct {
	// ID distinguishes connection instances in assertions.
	ID int

	mu     sync.Mutex
	closed bool
}

// Close marks the connection closed.
func (c *FakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// CloseAfter marks the connection closed after d, from a goroutine.
func (c *FakeConn) CloseAfter(d time.Duration) {
	go func() {
		time.Sleep(d)
		c.Close()
	}()
}

// IsClosed reports whether Close has been called.
func (c *FakeConn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// interface guard
var _ pool.Connection = (*FakeConn)(nil)

// Factory returns a pool.Factory producing sequentially numbered FakeConns.
// The counter is shared so callers can assert on the number of dials.
func Factory(counter *int32) pool.Factory {
	return func() (pool.Connection, error) {
		id := atomic.AddInt32(counter, 1)
		return &FakeConn{ID: int(id)}, nil
	}
}

// FailingFactory returns a pool.Factory that always fails with err.
func FailingFactory(err error) pool.Factory {
	return func() (pool.Connection, error) {
		return nil, err
	}
}

// FlakyFactory fails the first n dials with err, then behaves like Factory.
func FlakyFactory(n int32, err error, counter *int32) pool.Factory {
	var attempts int32
	ok := Factory(counter)
	return func() (pool.Connection, error) {
		if atomic.AddInt32(&attempts, 1) <= n {
			return nil, err
		}
		return ok()
	}
}

// RunWorkers runs fn once per worker in its own goroutine and waits for all
// of them. The worker index is passed to fn.
func RunWorkers(n int, fn func(worker int)) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fn(i)
		}(i)
	}
	wg.Wait()
}
