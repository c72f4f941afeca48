package idempotency

import "context"

// Store is a best-effort, time-bounded record of event ids already acted
// upon. It makes broker redelivery safe within a TTL window; it is not a
// cross-process exactly-once guarantee.
//
// CheckAndReserve is a single guarded operation so two concurrent
// deliveries of the same id cannot both pass the duplicate check.
type Store interface {
	// CheckAndReserve atomically checks whether id was already reserved or
	// processed and, if not, reserves it for the caller. It returns true
	// when the caller won the reservation and should run the handler.
	// Empty ids disable dedup: they always report true and are never
	// stored.
	CheckAndReserve(ctx context.Context, id string) (bool, error)

	// Commit finalizes a reservation after the handler succeeded. Only
	// committed entries survive as processed markers.
	Commit(ctx context.Context, id string) error

	// Release drops a reservation after the handler failed so the event
	// stays retryable.
	Release(ctx context.Context, id string) error

	// Cleanup removes entries older than the TTL and returns how many
	// were removed. This is the only eviction mechanism.
	Cleanup(ctx context.Context) int

	// Count returns the number of entries currently held.
	Count() int

	// Clear empties the store. Test and ops utility.
	Clear()
}
