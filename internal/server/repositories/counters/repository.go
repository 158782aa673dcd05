// Package counters implements the sequence store: a durable mapping from a
// named counter key to a monotonically increasing value, with an atomic
// increment primitive. It is the sole arbiter of sequential ID order.
package counters

import "context"

type Repository interface {
	// IncrementAndGet atomically increments the counter for key and returns
	// the new value, creating the row on first use (first call returns 1).
	// Concurrent callers for the same key never receive the same value.
	IncrementAndGet(ctx context.Context, key string) (int64, error)

	// EnsureInitialized creates the counter row for key with the given
	// starting value if it does not exist yet. Idempotent: an existing row
	// is left untouched.
	EnsureInitialized(ctx context.Context, key string, start int64) error
}
