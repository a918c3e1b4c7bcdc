package redisconn

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	dberrors "github.com/go-i2p/dbpool/lib/errors"
	"github.com/go-i2p/dbpool/lib/pool"
)

// testRedisAddr is the server used by integration tests; they skip when it
// is not reachable.
const testRedisAddr = "127.0.0.1:6379"

func requireRedis(t *testing.T) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", testRedisAddr, 500*time.Millisecond)
	if err != nil {
		t.Skipf("redis not reachable at %s: %v", testRedisAddr, err)
	}
	conn.Close()
}

func TestOpenUnreachableServer(t *testing.T) {
	// A port from the TEST-NET range that nothing listens on.
	_, err := Open(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 500 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected dial failure")
	}
}

func TestOpenPingClose(t *testing.T) {
	requireRedis(t)

	conn, err := Open(&redis.Options{Addr: testRedisAddr})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if conn.IsClosed() {
		t.Error("fresh connection should not report closed")
	}
	if err := conn.Ping(context.Background()); err != nil {
		t.Errorf("ping failed: %v", err)
	}

	client, err := conn.Client()
	if err != nil {
		t.Fatalf("Client failed: %v", err)
	}
	if client == nil {
		t.Fatal("expected non-nil client")
	}

	if err := conn.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !conn.IsClosed() {
		t.Error("connection should report closed after Close")
	}

	if err := conn.Close(); !errors.Is(err, dberrors.ErrRedisClosed) {
		t.Errorf("second Close = %v, want ErrRedisClosed", err)
	}
	if _, err := conn.Client(); !errors.Is(err, dberrors.ErrRedisClosed) {
		t.Errorf("Client after close = %v, want ErrRedisClosed", err)
	}
	if err := conn.Ping(context.Background()); !errors.Is(err, dberrors.ErrRedisClosed) {
		t.Errorf("Ping after close = %v, want ErrRedisClosed", err)
	}
}

func TestFactoryWithPool(t *testing.T) {
	requireRedis(t)

	p := pool.New(Factory(&redis.Options{Addr: testRedisAddr}), 2)

	conn1, err := p.Acquire(1)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if _, err := p.Acquire(2); err != nil {
		t.Fatalf("Acquire for second worker failed: %v", err)
	}

	conn1.(*Conn).Close()
	if _, err := p.Acquire(3); err != nil {
		t.Errorf("Acquire after closing a connection failed: %v", err)
	}
	if p.Size() != 2 {
		t.Errorf("pool size = %d, want 2", p.Size())
	}
}
