package service

import (
	"context"
	"time"

	"github.com/smallbiznis/factura/internal/events"
	"github.com/smallbiznis/factura/internal/idempotency"
	obsmetrics "github.com/smallbiznis/factura/internal/observability/metrics"
	revenuedomain "github.com/smallbiznis/factura/internal/revenue/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Skip reasons reported by the processor on top of the classifier's own.
const (
	skipDuplicateEvent   = "duplicate_event"
	skipNoRelevantChange = "no_relevant_change"
	skipUnknownEventType = "unknown_event_type"
)

type ProcessorParam struct {
	fx.In

	Log     *zap.Logger
	Guard   *idempotency.Guard
	Service *Service
	Metrics *obsmetrics.Metrics `optional:"true"`
}

// Processor consumes invoice lifecycle events and keeps the per-period
// revenue aggregates in sync. It never returns errors to the bus: skips are
// logged at info, infrastructure failures at error, and arithmetic invariant
// violations at dpanic so they fail loudly outside production.
type Processor struct {
	log     *zap.Logger
	guard   *idempotency.Guard
	svc     *Service
	metrics *obsmetrics.Metrics
}

func NewProcessor(p ProcessorParam) *Processor {
	return &Processor{
		log:     p.Log.Named("revenue.processor"),
		guard:   p.Guard,
		svc:     p.Service,
		metrics: p.Metrics,
	}
}

// Register subscribes the processor to every invoice event type.
func Register(proc *Processor, bus *events.Bus) {
	bus.Subscribe(events.EventInvoiceCreated, proc.Handle)
	bus.Subscribe(events.EventInvoiceUpdated, proc.Handle)
	bus.Subscribe(events.EventInvoiceDeleted, proc.Handle)
}

// Handle runs the full pipeline for one event under the idempotency guard.
func (p *Processor) Handle(ctx context.Context, evt events.InvoiceEvent) {
	executed, err := p.guard.Run(ctx, evt.EventID, func(ctx context.Context) error {
		return p.process(ctx, evt)
	})
	if err != nil {
		p.metrics.IncEventFailed(evt.Type)
		if revenuedomain.IsInvariantViolation(err) {
			p.log.DPanic("revenue invariant violated",
				zap.String("event_id", evt.EventID),
				zap.String("event_type", evt.Type),
				zap.String("invoice_id", evt.Invoice.ID.String()),
				zap.Error(err),
			)
			return
		}
		p.log.Error("revenue event processing failed",
			zap.String("event_id", evt.EventID),
			zap.String("event_type", evt.Type),
			zap.String("invoice_id", evt.Invoice.ID.String()),
			zap.Error(err),
		)
		return
	}
	if !executed {
		p.metrics.IncEventSkipped(skipDuplicateEvent)
	}
}

func (p *Processor) process(ctx context.Context, evt events.InvoiceEvent) error {
	now := p.svc.clock.Now()

	switch evt.Type {
	case events.EventInvoiceCreated:
		return p.processCreated(ctx, evt, now)
	case events.EventInvoiceUpdated:
		return p.processUpdated(ctx, evt, now)
	case events.EventInvoiceDeleted:
		return p.processDeleted(ctx, evt, now)
	default:
		p.skip(evt, skipUnknownEventType)
		return nil
	}
}

// processCreated treats a fresh invoice as an ineligible_to_eligible
// transition against whatever aggregate exists for its period.
func (p *Processor) processCreated(ctx context.Context, evt events.InvoiceEvent, now time.Time) error {
	outcome := p.svc.classifier.Eligibility(evt.Invoice, now)
	if !outcome.Eligible {
		p.skip(evt, outcome.Reason)
		return nil
	}

	period, err := revenuedomain.ResolvePeriod(evt.Invoice.Date, now, p.svc.classifier.Bounds)
	if err != nil {
		p.skip(evt, revenuedomain.ReasonUnresolvablePeriod)
		return nil
	}

	if err := p.svc.applyChange(ctx, change{
		period:         period,
		classification: revenuedomain.ChangeIneligibleToEligible,
		current:        evt.Invoice,
	}); err != nil {
		return err
	}
	p.processed(evt, period)
	return nil
}

func (p *Processor) processUpdated(ctx context.Context, evt events.InvoiceEvent, now time.Time) error {
	if evt.Previous == nil {
		// An update without its prior state cannot be classified; apply it
		// like a create so an eligible invoice is at least counted once.
		p.log.Warn("update event without previous snapshot",
			zap.String("event_id", evt.EventID),
			zap.String("invoice_id", evt.Invoice.ID.String()),
		)
		return p.processCreated(ctx, evt, now)
	}
	previous := *evt.Previous

	classification := p.svc.classifier.ClassifyChange(previous, evt.Invoice, now)

	// An eligible invoice whose date moved to another month leaves one
	// aggregate and enters another; no single classification covers that,
	// so it is applied as a removal plus an addition.
	if classification != revenuedomain.ChangeEligibleToIneligible &&
		classification != revenuedomain.ChangeIneligibleToEligible &&
		p.svc.classifier.Eligibility(previous, now).Eligible {
		prevPeriod, prevErr := revenuedomain.ResolvePeriod(previous.Date, now, p.svc.classifier.Bounds)
		curPeriod, curErr := revenuedomain.ResolvePeriod(evt.Invoice.Date, now, p.svc.classifier.Bounds)
		if prevErr == nil && curErr == nil && !prevPeriod.Equal(curPeriod) {
			if err := p.svc.applyChange(ctx, change{
				period:         prevPeriod,
				classification: revenuedomain.ChangeEligibleToIneligible,
				current:        evt.Invoice,
				previous:       evt.Previous,
			}); err != nil {
				return err
			}
			if err := p.svc.applyChange(ctx, change{
				period:         curPeriod,
				classification: revenuedomain.ChangeIneligibleToEligible,
				current:        evt.Invoice,
			}); err != nil {
				return err
			}
			p.processed(evt, curPeriod)
			return nil
		}
	}

	if classification == revenuedomain.ChangeNone {
		p.skip(evt, skipNoRelevantChange)
		return nil
	}

	// A removal adjusts the period the invoice contributed to, which is the
	// previous snapshot's period; everything else targets the current one.
	anchor := evt.Invoice
	if classification == revenuedomain.ChangeEligibleToIneligible {
		anchor = previous
	}
	period, err := revenuedomain.ResolvePeriod(anchor.Date, now, p.svc.classifier.Bounds)
	if err != nil {
		p.skip(evt, revenuedomain.ReasonUnresolvablePeriod)
		return nil
	}

	if err := p.svc.applyChange(ctx, change{
		period:         period,
		classification: classification,
		current:        evt.Invoice,
		previous:       evt.Previous,
	}); err != nil {
		return err
	}
	p.processed(evt, period)
	return nil
}

// processDeleted removes the invoice's contribution; an ineligible deleted
// invoice never contributed and needs no adjustment.
func (p *Processor) processDeleted(ctx context.Context, evt events.InvoiceEvent, now time.Time) error {
	outcome := p.svc.classifier.Eligibility(evt.Invoice, now)
	if !outcome.Eligible {
		p.skip(evt, outcome.Reason)
		return nil
	}

	period, err := revenuedomain.ResolvePeriod(evt.Invoice.Date, now, p.svc.classifier.Bounds)
	if err != nil {
		p.skip(evt, revenuedomain.ReasonUnresolvablePeriod)
		return nil
	}

	snapshot := evt.Invoice
	if err := p.svc.applyChange(ctx, change{
		period:         period,
		classification: revenuedomain.ChangeEligibleToIneligible,
		current:        evt.Invoice,
		previous:       &snapshot,
	}); err != nil {
		return err
	}
	p.processed(evt, period)
	return nil
}

func (p *Processor) skip(evt events.InvoiceEvent, reason string) {
	p.metrics.IncEventSkipped(reason)
	p.log.Info("revenue event skipped",
		zap.String("event_id", evt.EventID),
		zap.String("event_type", evt.Type),
		zap.String("invoice_id", evt.Invoice.ID.String()),
		zap.String("reason", reason),
	)
}

func (p *Processor) processed(evt events.InvoiceEvent, period revenuedomain.Period) {
	p.metrics.IncEventProcessed(evt.Type)
	p.log.Info("revenue event processed",
		zap.String("event_id", evt.EventID),
		zap.String("event_type", evt.Type),
		zap.String("invoice_id", evt.Invoice.ID.String()),
		zap.String("period", period.String()),
	)
}
