package pool

import (
	"errors"
	"fmt"
)

var (
	// ErrMaxConnections is returned (wrapped in a MaxConnectionsError) when
	// an acquisition exhausts its wait budget with the table still full.
	// Callers should treat it as "system at capacity", not as a broken
	// connection: retry later, raise the ceiling, or close idle connections.
	ErrMaxConnections = errors.New("pool: max connections reached")

	// ErrLockFailure signals an internal synchronization failure. It is part
	// of the documented failure taxonomy but is never produced by this
	// implementation: a sync.Mutex cannot fail to lock. Callers that see it
	// from another implementation should treat it as fatal.
	ErrLockFailure = errors.New("pool: lock failure")

	// ErrNoWorker is returned by AcquireContext when the context carries no
	// worker identity.
	ErrNoWorker = errors.New("pool: no worker bound to context")

	// ErrInvalidLimit is returned by the configuration setters for
	// out-of-range values.
	ErrInvalidLimit = errors.New("pool: invalid limit")
)

// MaxConnectionsError reports an acquisition that found the pool full and
// could not free a slot within the wait budget. Max records the ceiling in
// effect at the time.
type MaxConnectionsError struct {
	Max int
}

func (e *MaxConnectionsError) Error() string {
	return fmt.Sprintf("pool: max connections reached (max %d)", e.Max)
}

// Is makes errors.Is(err, ErrMaxConnections) match.
func (e *MaxConnectionsError) Is(target error) bool {
	return target == ErrMaxConnections
}

// ConnectionError wraps a failure reported by the connection factory. The
// pool does not interpret the underlying error; it only forwards it and
// guarantees the table is untouched on this path.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "pool: connection factory: " + e.Err.Error()
}

// Unwrap exposes the factory's error for errors.Is / errors.As.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}
