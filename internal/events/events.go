// Package events defines invoice lifecycle events and the in-process bus
// that delivers them to subscribers.
package events

import (
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/smallbiznis/factura/internal/invoice/domain"
)

// Invoice event types delivered on the bus.
const (
	EventInvoiceCreated = "invoice_created"
	EventInvoiceUpdated = "invoice_updated"
	EventInvoiceDeleted = "invoice_deleted"
)

// InvoiceSnapshot is an immutable view of an invoice at event time.
type InvoiceSnapshot struct {
	ID         snowflake.ID
	CustomerID snowflake.ID
	Amount     int64
	Status     invoicedomain.InvoiceStatus
	Date       time.Time
}

// SnapshotOf captures a snapshot from a persisted invoice.
func SnapshotOf(inv invoicedomain.Invoice) InvoiceSnapshot {
	return InvoiceSnapshot{
		ID:         inv.ID,
		CustomerID: inv.CustomerID,
		Amount:     inv.Amount,
		Status:     inv.Status,
		Date:       inv.Date,
	}
}

// InvoiceEvent is one invoice lifecycle event. Update events carry the
// previous snapshot alongside the current one.
type InvoiceEvent struct {
	EventID  string
	Type     string
	Invoice  InvoiceSnapshot
	Previous *InvoiceSnapshot
}
