// Package domain contains the monthly revenue aggregate and the pure rules
// that maintain it: period resolution, eligibility classification and
// bucket arithmetic.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Revenue is the aggregate row for one calendar month. The paid and pending
// buckets always partition the total: TotalPaidAmount + TotalPendingAmount ==
// TotalAmount after every mutation.
type Revenue struct {
	ID                 snowflake.ID `gorm:"primaryKey"`
	PeriodStart        time.Time    `gorm:"not null;uniqueIndex:ux_revenue_period"`
	InvoiceCount       int64        `gorm:"not null;default:0"`
	TotalAmount        int64        `gorm:"not null;default:0"`
	TotalPaidAmount    int64        `gorm:"not null;default:0"`
	TotalPendingAmount int64        `gorm:"not null;default:0"`
	CreatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Revenue) TableName() string { return "revenues" }

// Period returns the aggregate's natural key.
func (r Revenue) Period() Period {
	return PeriodOf(r.PeriodStart)
}

// Totals returns the count/total pair for arithmetic.
func (r Revenue) Totals() Totals {
	return Totals{InvoiceCount: r.InvoiceCount, TotalAmount: r.TotalAmount}
}

// Buckets returns the paid/pending split for arithmetic.
func (r Revenue) Buckets() Buckets {
	return Buckets{Paid: r.TotalPaidAmount, Pending: r.TotalPendingAmount}
}

// Apply writes recomputed totals and buckets back onto the row.
func (r *Revenue) Apply(t Totals, b Buckets) {
	r.InvoiceCount = t.InvoiceCount
	r.TotalAmount = t.TotalAmount
	r.TotalPaidAmount = b.Paid
	r.TotalPendingAmount = b.Pending
}

// Store is the persistence port for revenue aggregates. FindByPeriod returns
// (nil, nil) when no row exists for the period.
type Store interface {
	FindByPeriod(ctx context.Context, period Period) (*Revenue, error)
	List(ctx context.Context) ([]Revenue, error)
	Create(ctx context.Context, row *Revenue) error
	Update(ctx context.Context, row *Revenue) error
	Delete(ctx context.Context, id snowflake.ID) error
}

// Service is the read/maintenance surface exposed to HTTP and the scheduler.
type Service interface {
	List(ctx context.Context) ([]Revenue, error)
	GetByPeriod(ctx context.Context, period Period) (*Revenue, error)
	Rebuild(ctx context.Context) error
}

var (
	ErrRevenueNotFound = errors.New("revenue_not_found")

	// Invariant violations. These indicate a programming or data-integrity
	// bug, never expected input, and must not be silently absorbed.
	ErrCountUnderflow = errors.New("invoice_count_underflow")
	ErrNegativeAmount = errors.New("negative_aggregate_amount")
	ErrUnknownBucket  = errors.New("unknown_bucket_status")
)

// IsInvariantViolation reports whether err is an aggregate invariant
// violation rather than an expected skip or infrastructure failure.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrCountUnderflow) ||
		errors.Is(err, ErrNegativeAmount) ||
		errors.Is(err, ErrUnknownBucket)
}
