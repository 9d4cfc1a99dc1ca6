package idempotency

import (
	"context"

	"go.uber.org/zap"
)

// Guard wraps side effects so repeated delivery of the same event does not
// double-apply them.
type Guard struct {
	store SeenEventStore
	log   *zap.Logger
}

func NewGuard(store SeenEventStore, log *zap.Logger) *Guard {
	return &Guard{store: store, log: log.Named("idempotency.guard")}
}

// Run marks eventID as seen and then invokes fn, returning whether fn was
// executed. Marking happens before fn runs so near-simultaneous duplicate
// deliveries cannot both execute; the trade-off is that a failure inside fn
// is not retried, so fn must not leave partial writes behind.
func (g *Guard) Run(ctx context.Context, eventID string, fn func(context.Context) error) (executed bool, err error) {
	alreadySeen, err := g.store.MarkSeen(ctx, eventID)
	if err != nil {
		return false, err
	}
	if alreadySeen {
		g.log.Info("duplicate event skipped", zap.String("event_id", eventID))
		return false, nil
	}
	return true, fn(ctx)
}
