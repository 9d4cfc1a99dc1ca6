// Package service implements invoice CRUD and emits lifecycle events for
// the revenue engine.
package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/factura/internal/clock"
	"github.com/smallbiznis/factura/internal/events"
	invoicedomain "github.com/smallbiznis/factura/internal/invoice/domain"
	"github.com/smallbiznis/factura/pkg/db/option"
	"github.com/smallbiznis/factura/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type ServiceParam struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Store repository.Repository[invoicedomain.Invoice]
	Bus   *events.Bus
	Clock clock.Clock
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	store repository.Repository[invoicedomain.Invoice]
	bus   *events.Bus
	clock clock.Clock
}

func NewService(p ServiceParam) *Service {
	return &Service{
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,
		store: p.Store,
		bus:   p.Bus,
		clock: p.Clock,
	}
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) ([]invoicedomain.Invoice, error) {
	query := &invoicedomain.Invoice{}
	if req.CustomerID != "" {
		customerID, err := snowflake.ParseString(req.CustomerID)
		if err != nil {
			return nil, invoicedomain.ErrInvalidCustomer
		}
		query.CustomerID = customerID
	}
	if req.Status != "" {
		if !req.Status.Valid() {
			return nil, invoicedomain.ErrInvalidStatus
		}
		query.Status = req.Status
	}

	opts := []option.QueryOption{option.WithOrder("date DESC")}
	if req.Limit > 0 {
		opts = append(opts, option.WithLimit(req.Limit))
	}
	if req.Offset > 0 {
		opts = append(opts, option.WithOffset(req.Offset))
	}

	rows, err := s.store.Find(ctx, query, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]invoicedomain.Invoice, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	invoiceID, err := snowflake.ParseString(id)
	if err != nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvoiceNotFound
	}
	row, err := s.store.FindOne(ctx, &invoicedomain.Invoice{ID: invoiceID})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if row == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvoiceNotFound
	}
	return *row, nil
}

func (s *Service) Create(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (invoicedomain.Invoice, error) {
	customerID, err := snowflake.ParseString(req.CustomerID)
	if err != nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidCustomer
	}
	if req.Amount < 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidAmount
	}
	status := req.Status
	if status == "" {
		status = invoicedomain.InvoiceStatusDraft
	}
	if !status.Valid() {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidStatus
	}
	if req.Date.IsZero() {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidDate
	}

	now := s.clock.Now()
	inv := invoicedomain.Invoice{
		ID:         s.genID.Generate(),
		CustomerID: customerID,
		Amount:     req.Amount,
		Status:     status,
		Date:       req.Date.UTC(),
		Metadata:   datatypes.JSONMap(req.Metadata),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Create(ctx, &inv); err != nil {
		return invoicedomain.Invoice{}, fmt.Errorf("create invoice: %w", err)
	}

	s.log.Info("invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("customer_id", inv.CustomerID.String()),
		zap.Int64("amount", inv.Amount),
		zap.String("status", string(inv.Status)),
	)
	s.bus.Publish(ctx, events.InvoiceEvent{
		EventID: uuid.NewString(),
		Type:    events.EventInvoiceCreated,
		Invoice: events.SnapshotOf(inv),
	})
	return inv, nil
}

func (s *Service) Update(ctx context.Context, req invoicedomain.UpdateInvoiceRequest) (invoicedomain.Invoice, error) {
	existing, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	previous := events.SnapshotOf(existing)

	patch := map[string]any{}
	if req.Amount != nil {
		if *req.Amount < 0 {
			return invoicedomain.Invoice{}, invoicedomain.ErrInvalidAmount
		}
		existing.Amount = *req.Amount
		patch["amount"] = *req.Amount
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return invoicedomain.Invoice{}, invoicedomain.ErrInvalidStatus
		}
		existing.Status = *req.Status
		patch["status"] = *req.Status
	}
	if req.Date != nil {
		if req.Date.IsZero() {
			return invoicedomain.Invoice{}, invoicedomain.ErrInvalidDate
		}
		existing.Date = req.Date.UTC()
		patch["date"] = existing.Date
	}
	if len(patch) == 0 {
		return existing, nil
	}

	existing.UpdatedAt = s.clock.Now()
	patch["updated_at"] = existing.UpdatedAt
	if err := s.store.Update(ctx, existing.ID.String(), patch); err != nil {
		return invoicedomain.Invoice{}, fmt.Errorf("update invoice %s: %w", existing.ID, err)
	}

	s.log.Info("invoice updated",
		zap.String("invoice_id", existing.ID.String()),
		zap.String("status", string(existing.Status)),
		zap.Int64("amount", existing.Amount),
	)
	s.bus.Publish(ctx, events.InvoiceEvent{
		EventID:  uuid.NewString(),
		Type:     events.EventInvoiceUpdated,
		Invoice:  events.SnapshotOf(existing),
		Previous: &previous,
	})
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, existing.ID.String()); err != nil {
		return fmt.Errorf("delete invoice %s: %w", existing.ID, err)
	}

	s.log.Info("invoice deleted", zap.String("invoice_id", existing.ID.String()))
	s.bus.Publish(ctx, events.InvoiceEvent{
		EventID: uuid.NewString(),
		Type:    events.EventInvoiceDeleted,
		Invoice: events.SnapshotOf(existing),
	})
	return nil
}
