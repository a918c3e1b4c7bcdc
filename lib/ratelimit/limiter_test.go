package ratelimit

import (
	"errors"
	"testing"
	"time"

	dberrors "github.com/go-i2p/dbpool/lib/errors"
	"github.com/go-i2p/dbpool/lib/pool"
)

// stubConn satisfies pool.Connection for limiter tests.
type stubConn struct{}

func (stubConn) IsClosed() bool { return false }

func TestLimiterAllow(t *testing.T) {
	// 10 tokens/sec, capacity 5
	limiter := New(10, 5)

	// Should allow 5 dials immediately
	for i := 0; i < 5; i++ {
		if !limiter.Allow() {
			t.Errorf("dial %d should be allowed", i)
		}
	}

	// 6th dial should be denied
	if limiter.Allow() {
		t.Error("6th dial should be denied")
	}
}

func TestLimiterRefill(t *testing.T) {
	// 100 tokens/sec, capacity 10
	limiter := New(100, 10)

	// Drain all tokens
	for i := 0; i < 10; i++ {
		limiter.Allow()
	}

	// Should be empty
	if limiter.Allow() {
		t.Error("should be empty")
	}

	// Wait for refill (100ms should add ~10 tokens)
	time.Sleep(100 * time.Millisecond)

	// Should have tokens again
	if !limiter.Allow() {
		t.Error("should have tokens after refill")
	}
}

func TestLimiterTokens(t *testing.T) {
	limiter := New(10, 5)
	tokens := limiter.Tokens()
	if tokens != 5 {
		t.Errorf("expected 5 tokens, got %f", tokens)
	}

	limiter.Allow()
	tokens = limiter.Tokens()
	if tokens < 3.9 || tokens > 4.1 {
		t.Errorf("expected ~4 tokens, got %f", tokens)
	}
}

func TestLimitWrapsFactory(t *testing.T) {
	// Negligible refill rate so the test controls the token count.
	limiter := New(0.001, 2)

	calls := 0
	factory := limiter.Limit(func() (pool.Connection, error) {
		calls++
		return stubConn{}, nil
	})

	for i := 0; i < 2; i++ {
		if _, err := factory(); err != nil {
			t.Fatalf("dial %d failed: %v", i, err)
		}
	}

	_, err := factory()
	if !errors.Is(err, dberrors.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if calls != 2 {
		t.Errorf("inner factory called %d times, want 2", calls)
	}
}

func TestLimitedFactoryWithPool(t *testing.T) {
	limiter := New(0.001, 1)
	p := pool.New(limiter.Limit(func() (pool.Connection, error) {
		return stubConn{}, nil
	}), 4)

	if _, err := p.Acquire(1); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	// The second worker's dial is over the rate; it surfaces as a factory
	// failure and binds nothing.
	_, err := p.Acquire(2)
	if !errors.Is(err, dberrors.ErrRateLimited) {
		t.Fatalf("expected wrapped ErrRateLimited, got %v", err)
	}
	if p.Size() != 1 {
		t.Errorf("pool size = %d, want 1", p.Size())
	}
}
