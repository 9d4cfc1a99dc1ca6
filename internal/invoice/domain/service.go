package domain

import (
	"context"
	"errors"
	"time"
)

type CreateInvoiceRequest struct {
	CustomerID string
	Amount     int64
	Status     InvoiceStatus
	Date       time.Time
	Metadata   map[string]any
}

type UpdateInvoiceRequest struct {
	ID     string
	Amount *int64
	Status *InvoiceStatus
	Date   *time.Time
}

type ListInvoiceRequest struct {
	CustomerID string
	Status     InvoiceStatus
	Limit      int
	Offset     int
}

type Service interface {
	List(ctx context.Context, req ListInvoiceRequest) ([]Invoice, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	Create(ctx context.Context, req CreateInvoiceRequest) (Invoice, error)
	Update(ctx context.Context, req UpdateInvoiceRequest) (Invoice, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvoiceNotFound = errors.New("invoice_not_found")
	ErrInvalidInvoice  = errors.New("invalid_invoice")
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrInvalidDate     = errors.New("invalid_date")
)
