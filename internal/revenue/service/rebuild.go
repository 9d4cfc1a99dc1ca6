package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/smallbiznis/factura/internal/events"
	invoicedomain "github.com/smallbiznis/factura/internal/invoice/domain"
	revenuedomain "github.com/smallbiznis/factura/internal/revenue/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Rebuild recomputes every monthly aggregate from the invoices table inside
// one transaction. It is the reconciliation escape hatch for drift caused by
// lost events or the read-then-write race between overlapping events.
func (s *Service) Rebuild(ctx context.Context) error {
	started := s.clock.Now()

	var rows int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&revenuedomain.Revenue{}).Error; err != nil {
			return fmt.Errorf("clear revenues: %w", err)
		}

		var invoices []invoicedomain.Invoice
		if err := tx.
			Where("status IN ?", []invoicedomain.InvoiceStatus{
				invoicedomain.InvoiceStatusPaid,
				invoicedomain.InvoiceStatusPending,
			}).
			Where("amount > 0").
			Find(&invoices).Error; err != nil {
			return fmt.Errorf("load invoices: %w", err)
		}

		aggregates, err := s.aggregateInvoices(invoices)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		for _, agg := range aggregates {
			row := &revenuedomain.Revenue{
				ID:          s.genID.Generate(),
				PeriodStart: agg.period.Start(),
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			row.Apply(agg.totals, agg.buckets)
			if err := tx.Create(row).Error; err != nil {
				return fmt.Errorf("insert revenue for period %s: %w", agg.period, err)
			}
		}
		rows = len(aggregates)
		return nil
	})
	if err != nil {
		s.metrics.IncRebuildRun("failure")
		s.log.Error("revenue rebuild failed", zap.Error(err))
		return err
	}

	s.metrics.IncRebuildRun("success")
	s.log.Info("revenue rebuild completed",
		zap.Int("periods", rows),
		zap.Duration("took", s.clock.Now().Sub(started)),
	)
	return nil
}

type periodAggregate struct {
	period  revenuedomain.Period
	totals  revenuedomain.Totals
	buckets revenuedomain.Buckets
}

// aggregateInvoices folds eligible invoices into per-period totals, applying
// the same eligibility rules as the event path. Results are ordered by period
// so inserts are deterministic.
func (s *Service) aggregateInvoices(invoices []invoicedomain.Invoice) ([]periodAggregate, error) {
	now := s.clock.Now()
	byPeriod := make(map[revenuedomain.Period]*periodAggregate)

	for _, inv := range invoices {
		snap := events.SnapshotOf(inv)
		if !s.classifier.Eligibility(snap, now).Eligible {
			continue
		}
		period, err := revenuedomain.ResolvePeriod(snap.Date, now, s.classifier.Bounds)
		if err != nil {
			continue
		}

		agg, ok := byPeriod[period]
		if !ok {
			agg = &periodAggregate{period: period}
			byPeriod[period] = agg
		}
		agg.totals = agg.totals.AfterAddition(snap.Amount)
		buckets, err := agg.buckets.Add(snap.Status, snap.Amount)
		if err != nil {
			return nil, err
		}
		agg.buckets = buckets
	}

	out := make([]periodAggregate, 0, len(byPeriod))
	for _, agg := range byPeriod {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].period.Start().Before(out[j].period.Start())
	})
	return out, nil
}
