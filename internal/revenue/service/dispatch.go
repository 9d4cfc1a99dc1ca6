package service

import (
	"context"
	"fmt"

	"github.com/smallbiznis/factura/internal/events"
	revenuedomain "github.com/smallbiznis/factura/internal/revenue/domain"
	"github.com/smallbiznis/factura/pkg/db"
	"go.uber.org/zap"
)

// change is one classified adjustment against a single period's aggregate.
type change struct {
	period         revenuedomain.Period
	classification revenuedomain.ChangeClassification
	current        events.InvoiceSnapshot
	// previous is the snapshot that contributed to the aggregate before
	// this change; set for updates and deletes.
	previous *events.InvoiceSnapshot
}

// applyChange selects and runs exactly one mutation path for the classified
// change: create, additive update, status-move update, subtractive update or
// delete. Reads and writes against the store are serialized per period.
func (s *Service) applyChange(ctx context.Context, ch change) error {
	if ch.classification == revenuedomain.ChangeNone {
		return nil
	}

	unlock := s.locks.Lock(ch.period.String())
	defer unlock()

	existing, err := s.store.FindByPeriod(ctx, ch.period)
	if err != nil {
		return fmt.Errorf("find revenue for period %s: %w", ch.period, err)
	}

	if existing == nil {
		if ch.classification == revenuedomain.ChangeIneligibleToEligible {
			return s.createAggregate(ctx, ch)
		}
		// Nothing to adjust: a removal or status/amount change against a
		// period that has no aggregate row.
		s.log.Warn("no aggregate row for classified change",
			zap.String("period", ch.period.String()),
			zap.String("classification", string(ch.classification)),
			zap.String("invoice_id", ch.current.ID.String()),
		)
		return nil
	}

	switch ch.classification {
	case revenuedomain.ChangeIneligibleToEligible:
		return s.addInvoice(ctx, existing, ch.current)
	case revenuedomain.ChangeEligibleToIneligible:
		return s.removeInvoice(ctx, existing, ch)
	case revenuedomain.ChangeEligibleStatusChange:
		return s.moveInvoice(ctx, existing, ch)
	case revenuedomain.ChangeEligibleAmountChange:
		return s.repriceInvoice(ctx, existing, ch)
	default:
		return nil
	}
}

func (s *Service) createAggregate(ctx context.Context, ch change) error {
	totals := revenuedomain.Totals{}.AfterAddition(ch.current.Amount)
	buckets, err := revenuedomain.Buckets{}.Add(ch.current.Status, ch.current.Amount)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	row := &revenuedomain.Revenue{
		ID:          s.genID.Generate(),
		PeriodStart: ch.period.Start(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	row.Apply(totals, buckets)

	if err := s.store.Create(ctx, row); err != nil {
		// Another process created the row between our read and write; fold
		// this invoice into the existing aggregate instead.
		if db.IsDuplicateKeyErr(err) {
			existing, findErr := s.store.FindByPeriod(ctx, ch.period)
			if findErr != nil {
				return findErr
			}
			if existing != nil {
				return s.addInvoice(ctx, existing, ch.current)
			}
		}
		return fmt.Errorf("create revenue for period %s: %w", ch.period, err)
	}

	s.log.Info("revenue aggregate created",
		zap.String("period", ch.period.String()),
		zap.String("invoice_id", ch.current.ID.String()),
		zap.Int64("total_amount", row.TotalAmount),
	)
	return nil
}

func (s *Service) addInvoice(ctx context.Context, row *revenuedomain.Revenue, snap events.InvoiceSnapshot) error {
	totals := row.Totals().AfterAddition(snap.Amount)
	buckets, err := row.Buckets().Add(snap.Status, snap.Amount)
	if err != nil {
		return err
	}

	row.Apply(totals, buckets)
	row.UpdatedAt = s.clock.Now()
	if err := s.store.Update(ctx, row); err != nil {
		return fmt.Errorf("update revenue for period %s: %w", row.Period(), err)
	}

	s.log.Info("invoice added to revenue aggregate",
		zap.String("period", row.Period().String()),
		zap.String("invoice_id", snap.ID.String()),
		zap.Int64("invoice_count", row.InvoiceCount),
	)
	return nil
}

func (s *Service) removeInvoice(ctx context.Context, row *revenuedomain.Revenue, ch change) error {
	prev := ch.previous
	if prev == nil {
		return fmt.Errorf("%w: removal without previous snapshot", revenuedomain.ErrCountUnderflow)
	}

	totals, err := row.Totals().AfterRemoval(prev.Amount)
	if err != nil {
		return err
	}
	buckets, err := row.Buckets().Remove(prev.Status, prev.Amount)
	if err != nil {
		return err
	}

	if totals.InvoiceCount == 0 {
		if err := s.store.Delete(ctx, row.ID); err != nil {
			return fmt.Errorf("delete revenue for period %s: %w", row.Period(), err)
		}
		s.log.Info("revenue aggregate deleted",
			zap.String("period", row.Period().String()),
			zap.String("invoice_id", prev.ID.String()),
		)
		return nil
	}

	row.Apply(totals, buckets)
	row.UpdatedAt = s.clock.Now()
	if err := s.store.Update(ctx, row); err != nil {
		return fmt.Errorf("update revenue for period %s: %w", row.Period(), err)
	}

	s.log.Info("invoice removed from revenue aggregate",
		zap.String("period", row.Period().String()),
		zap.String("invoice_id", prev.ID.String()),
		zap.Int64("invoice_count", row.InvoiceCount),
	)
	return nil
}

func (s *Service) moveInvoice(ctx context.Context, row *revenuedomain.Revenue, ch change) error {
	prev := ch.previous
	if prev == nil {
		return fmt.Errorf("%w: status move without previous snapshot", revenuedomain.ErrUnknownBucket)
	}

	// A combined status+amount change is applied as one bucket move; the
	// invoice count is unchanged either way.
	totals, err := row.Totals().AfterAmountChange(prev.Amount, ch.current.Amount)
	if err != nil {
		return err
	}
	buckets, err := row.Buckets().Move(prev.Status, ch.current.Status, prev.Amount, ch.current.Amount)
	if err != nil {
		return err
	}

	row.Apply(totals, buckets)
	row.UpdatedAt = s.clock.Now()
	if err := s.store.Update(ctx, row); err != nil {
		return fmt.Errorf("update revenue for period %s: %w", row.Period(), err)
	}

	s.log.Info("invoice moved between revenue buckets",
		zap.String("period", row.Period().String()),
		zap.String("invoice_id", ch.current.ID.String()),
		zap.String("from", string(prev.Status)),
		zap.String("to", string(ch.current.Status)),
	)
	return nil
}

func (s *Service) repriceInvoice(ctx context.Context, row *revenuedomain.Revenue, ch change) error {
	prev := ch.previous
	if prev == nil {
		return fmt.Errorf("%w: amount change without previous snapshot", revenuedomain.ErrNegativeAmount)
	}

	totals, err := row.Totals().AfterAmountChange(prev.Amount, ch.current.Amount)
	if err != nil {
		return err
	}
	buckets, err := row.Buckets().Move(ch.current.Status, ch.current.Status, prev.Amount, ch.current.Amount)
	if err != nil {
		return err
	}

	row.Apply(totals, buckets)
	row.UpdatedAt = s.clock.Now()
	if err := s.store.Update(ctx, row); err != nil {
		return fmt.Errorf("update revenue for period %s: %w", row.Period(), err)
	}

	s.log.Info("invoice repriced in revenue aggregate",
		zap.String("period", row.Period().String()),
		zap.String("invoice_id", ch.current.ID.String()),
		zap.Int64("previous_amount", prev.Amount),
		zap.Int64("current_amount", ch.current.Amount),
	)
	return nil
}
