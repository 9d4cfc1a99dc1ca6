package domain

import (
	"fmt"

	invoicedomain "github.com/smallbiznis/factura/internal/invoice/domain"
)

// Totals is the count/total pair of one aggregate. All arithmetic is pure;
// methods return new values and never mutate the receiver.
type Totals struct {
	InvoiceCount int64
	TotalAmount  int64
}

// AfterAddition accounts for one newly contributing invoice.
func (t Totals) AfterAddition(amount int64) Totals {
	return Totals{
		InvoiceCount: t.InvoiceCount + 1,
		TotalAmount:  t.TotalAmount + amount,
	}
}

// AfterRemoval accounts for one invoice leaving the aggregate. Calling it on
// an empty aggregate is a precondition violation, not a recoverable case.
func (t Totals) AfterRemoval(amount int64) (Totals, error) {
	if t.InvoiceCount == 0 {
		return Totals{}, fmt.Errorf("%w: removal from empty aggregate", ErrCountUnderflow)
	}
	next := Totals{
		InvoiceCount: t.InvoiceCount - 1,
		TotalAmount:  t.TotalAmount - amount,
	}
	if next.TotalAmount < 0 {
		return Totals{}, fmt.Errorf("%w: total %d after removing %d", ErrNegativeAmount, next.TotalAmount, amount)
	}
	return next, nil
}

// AfterAmountChange re-prices one invoice in place; the count is unchanged.
func (t Totals) AfterAmountChange(previousAmount, currentAmount int64) (Totals, error) {
	next := Totals{
		InvoiceCount: t.InvoiceCount,
		TotalAmount:  t.TotalAmount + (currentAmount - previousAmount),
	}
	if next.TotalAmount < 0 {
		return Totals{}, fmt.Errorf("%w: total %d after amount change %d -> %d",
			ErrNegativeAmount, next.TotalAmount, previousAmount, currentAmount)
	}
	return next, nil
}

// Buckets is the paid/pending partition of an aggregate's total.
type Buckets struct {
	Paid    int64
	Pending int64
}

// Sum returns the combined bucket amount; it must equal TotalAmount after
// every mutation.
func (b Buckets) Sum() int64 { return b.Paid + b.Pending }

// Add credits an amount to the bucket matching status.
func (b Buckets) Add(status invoicedomain.InvoiceStatus, amount int64) (Buckets, error) {
	switch status {
	case invoicedomain.InvoiceStatusPaid:
		b.Paid += amount
	case invoicedomain.InvoiceStatusPending:
		b.Pending += amount
	default:
		return Buckets{}, fmt.Errorf("%w: %s", ErrUnknownBucket, status)
	}
	return b, nil
}

// Remove debits an amount from the bucket matching status.
func (b Buckets) Remove(status invoicedomain.InvoiceStatus, amount int64) (Buckets, error) {
	switch status {
	case invoicedomain.InvoiceStatusPaid:
		b.Paid -= amount
	case invoicedomain.InvoiceStatusPending:
		b.Pending -= amount
	default:
		return Buckets{}, fmt.Errorf("%w: %s", ErrUnknownBucket, status)
	}
	if b.Paid < 0 || b.Pending < 0 {
		return Buckets{}, fmt.Errorf("%w: paid %d pending %d after removing %d from %s",
			ErrNegativeAmount, b.Paid, b.Pending, amount, status)
	}
	return b, nil
}

// Move shifts an invoice between buckets, re-pricing it at the same time:
// previousAmount leaves the from bucket and currentAmount enters the to
// bucket. When both statuses match, only the delta lands in that one bucket.
func (b Buckets) Move(from, to invoicedomain.InvoiceStatus, previousAmount, currentAmount int64) (Buckets, error) {
	next, err := b.Remove(from, previousAmount)
	if err != nil {
		return Buckets{}, err
	}
	return next.Add(to, currentAmount)
}
