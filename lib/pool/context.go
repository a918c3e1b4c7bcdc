package pool

import (
	"context"
	"sync/atomic"
)

// workerKey is the context key for a bound WorkerID.
type workerKey struct{}

// workerSeq backs NextWorkerID.
var workerSeq uint64

// NextWorkerID returns a fresh process-unique WorkerID. Callers with a
// natural identity (an OS thread id, a job number) should use that instead;
// this helper exists for workers that have none.
func NextWorkerID() WorkerID {
	return WorkerID(atomic.AddUint64(&workerSeq, 1))
}

// WithWorker returns a context carrying the given worker identity. Every
// goroutine serving one logical worker should share a context derived from
// the same WithWorker call.
func WithWorker(ctx context.Context, id WorkerID) context.Context {
	return context.WithValue(ctx, workerKey{}, id)
}

// FromContext extracts the worker identity bound into ctx, if any.
func FromContext(ctx context.Context) (WorkerID, bool) {
	id, ok := ctx.Value(workerKey{}).(WorkerID)
	return id, ok
}

// AcquireContext is the ambient-identity form of Acquire: the worker
// identity is read from ctx before any locking, so the caller's identity is
// fixed at call entry. The context carries identity only; acquisition is
// not cancellable mid-wait and always runs to success or failure.
func (p *Pool) AcquireContext(ctx context.Context) (Connection, error) {
	id, ok := FromContext(ctx)
	if !ok {
		return nil, ErrNoWorker
	}
	return p.Acquire(id)
}
