// Package errors provides shared error types for dbpool.
//
// This package provides:
//   - Sentinel errors for common error conditions
//   - Error wrapping with context preservation
//
// Package-specific error payloads (pool.MaxConnectionsError,
// pool.ConnectionError) live next to the code that produces them; the
// sentinels here are the cross-package vocabulary checked with errors.Is().
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrClosed indicates a resource is closed.
	ErrClosed = errors.New("closed")

	// ErrConfiguration indicates a configuration error.
	ErrConfiguration = errors.New("configuration error")

	// ErrRateLimited indicates a rate limit was exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCircuitOpen indicates the circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// Database adapter errors
var (
	// ErrConnClosed indicates an operation on a closed database connection.
	ErrConnClosed = fmt.Errorf("sqlconn: connection %w", ErrClosed)

	// ErrUnknownDriver indicates an unsupported database driver name.
	ErrUnknownDriver = fmt.Errorf("sqlconn: unknown driver: %w", ErrConfiguration)
)

// Redis adapter errors
var (
	// ErrRedisClosed indicates an operation on a closed Redis connection.
	ErrRedisClosed = fmt.Errorf("redisconn: connection %w", ErrClosed)
)

// Configuration errors
var (
	// ErrConfigPoolLimits indicates out-of-range pool limits in a config file.
	ErrConfigPoolLimits = fmt.Errorf("config: pool limits: %w", ErrConfiguration)

	// ErrConfigDatabase indicates an invalid database section in a config file.
	ErrConfigDatabase = fmt.Errorf("config: database: %w", ErrConfiguration)
)
