// Package redisconn adapts go-redis clients to the pool's Connection
// capability, for deployments whose record-mapping layer stores records in
// Redis rather than a SQL database. Semantics mirror sqlconn: each Conn
// owns one client, IsClosed is a plain flag read, and closing the Conn
// frees its pool slot on the next eviction sweep.
package redisconn

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-i2p/logger"
	"github.com/redis/go-redis/v9"

	"github.com/go-i2p/dbpool/lib/config"
	dberrors "github.com/go-i2p/dbpool/lib/errors"
	"github.com/go-i2p/dbpool/lib/pool"
)

var log = logger.GetGoI2PLogger()

// dialTimeout bounds the connection-verifying ping in Open.
const dialTimeout = 5 * time.Second

// interface guard
var _ pool.Connection = (*Conn)(nil)

// Conn is a Redis connection owned by one pool slot.
type Conn struct {
	client *redis.Client
	closed atomic.Bool
}

// Open dials a Redis server and verifies it with a ping.
func Open(opts *redis.Options) (*Conn, error) {
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redisconn: ping: %w", err)
	}

	log.WithField("addr", opts.Addr).Debug("redis connection opened")
	return &Conn{client: client}, nil
}

// IsClosed reports whether Close has been called.
func (c *Conn) IsClosed() bool {
	return c.closed.Load()
}

// Close closes the underlying client.
func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return dberrors.ErrRedisClosed
	}
	log.Debug("redis connection closed")
	return c.client.Close()
}

// Client exposes the underlying go-redis client for the layer above.
func (c *Conn) Client() (*redis.Client, error) {
	if c.closed.Load() {
		return nil, dberrors.ErrRedisClosed
	}
	return c.client, nil
}

// Ping verifies the server is still reachable.
func (c *Conn) Ping(ctx context.Context) error {
	if c.closed.Load() {
		return dberrors.ErrRedisClosed
	}
	return c.client.Ping(ctx).Err()
}

// Factory returns a pool.Factory dialing the given server.
func Factory(opts *redis.Options) pool.Factory {
	return func() (pool.Connection, error) {
		return Open(opts)
	}
}

// FromConfig builds a factory from the [redis] section of a config file.
func FromConfig(cfg config.RedisConfig) pool.Factory {
	return Factory(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})
}
