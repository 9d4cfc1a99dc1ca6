// Package idempotency ensures a given event identifier triggers its side
// effects at most once.
package idempotency

import (
	"context"
	"time"

	"github.com/smallbiznis/factura/internal/cache"
)

// SeenEventStore records which event identifiers have already been handled.
// Implementations must be safe for concurrent use.
type SeenEventStore interface {
	// MarkSeen records id and reports whether it was already present.
	MarkSeen(ctx context.Context, id string) (alreadySeen bool, err error)
}

// MemoryStore keeps seen event IDs in process memory with a TTL bound so the
// set cannot grow without limit over the process lifetime.
type MemoryStore struct {
	ids *cache.TTLCache[string, struct{}]
	ttl time.Duration
}

// NewMemoryStore builds an in-memory store. A zero TTL keeps entries for the
// process lifetime.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ids: cache.NewTTLCache[string, struct{}](),
		ttl: ttl,
	}
}

func (s *MemoryStore) MarkSeen(_ context.Context, id string) (bool, error) {
	return s.ids.SetIfAbsent(id, struct{}{}, s.ttl), nil
}
