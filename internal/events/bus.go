package events

import (
	"context"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Handler consumes one invoice event. Handlers own their error handling;
// the bus never inspects outcomes.
type Handler func(ctx context.Context, evt InvoiceEvent)

type BusParams struct {
	fx.In

	Log *zap.Logger
}

// Bus is a synchronous in-process publish/subscribe fan-out. Delivery is
// at-least-once from the publisher's point of view and ordered per invoice
// because publishers emit sequentially.
type Bus struct {
	mu       sync.RWMutex
	log      *zap.Logger
	handlers map[string][]Handler
}

func NewBus(p BusParams) *Bus {
	return &Bus{
		log:      p.Log.Named("events.bus"),
		handlers: make(map[string][]Handler),
	}
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(eventType string, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
	b.mu.Unlock()
}

// Publish delivers the event to every subscriber of its type. A panicking
// handler is recovered and logged so it cannot take down the publisher.
func (b *Bus) Publish(ctx context.Context, evt InvoiceEvent) {
	b.mu.RLock()
	handlers := b.handlers[evt.Type]
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.log.Debug("no subscribers for event",
			zap.String("event_id", evt.EventID),
			zap.String("event_type", evt.Type),
		)
		return
	}

	for _, h := range handlers {
		b.deliver(ctx, h, evt)
	}
}

func (b *Bus) deliver(ctx context.Context, h Handler, evt InvoiceEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				zap.String("event_id", evt.EventID),
				zap.String("event_type", evt.Type),
				zap.Any("panic", r),
			)
		}
	}()
	h(ctx, evt)
}
