package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/factura/internal/clock"
	"github.com/smallbiznis/factura/internal/events"
	invoicedomain "github.com/smallbiznis/factura/internal/invoice/domain"
	"github.com/smallbiznis/factura/pkg/db"
	"github.com/smallbiznis/factura/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc       *Service
	node      *snowflake.Node
	published []events.InvoiceEvent
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&invoicedomain.Invoice{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	bus := events.NewBus(events.BusParams{Log: zap.NewNop()})
	f := &fixture{node: node}
	record := func(_ context.Context, evt events.InvoiceEvent) {
		f.published = append(f.published, evt)
	}
	bus.Subscribe(events.EventInvoiceCreated, record)
	bus.Subscribe(events.EventInvoiceUpdated, record)
	bus.Subscribe(events.EventInvoiceDeleted, record)

	f.svc = NewService(ServiceParam{
		Log:   zap.NewNop(),
		GenID: node,
		Store: repository.ProvideStore[invoicedomain.Invoice](conn),
		Bus:   bus,
		Clock: clock.NewFakeClock(time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)),
	})
	return f
}

func (f *fixture) customerID() string {
	return f.node.Generate().String()
}

func TestCreateInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID: f.customerID(),
		Amount:     10000,
		Status:     invoicedomain.InvoiceStatusPaid,
		Date:       time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
		Metadata:   map[string]any{"source": "import"},
	})
	require.NoError(t, err)
	assert.NotZero(t, inv.ID)
	assert.Equal(t, invoicedomain.InvoiceStatusPaid, inv.Status)

	got, err := f.svc.GetByID(ctx, inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
	assert.Equal(t, int64(10000), got.Amount)

	require.Len(t, f.published, 1)
	evt := f.published[0]
	assert.Equal(t, events.EventInvoiceCreated, evt.Type)
	assert.NotEmpty(t, evt.EventID)
	assert.Equal(t, inv.ID, evt.Invoice.ID)
	assert.Nil(t, evt.Previous)
}

func TestCreateInvoiceDefaultsToDraft(t *testing.T) {
	f := newFixture(t)

	inv, err := f.svc.Create(context.Background(), invoicedomain.CreateInvoiceRequest{
		CustomerID: f.customerID(),
		Amount:     500,
		Date:       time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusDraft, inv.Status)
}

func TestCreateInvoiceValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	date := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	_, err := f.svc.Create(ctx, invoicedomain.CreateInvoiceRequest{CustomerID: "not-a-number", Amount: 100, Date: date})
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidCustomer)

	_, err = f.svc.Create(ctx, invoicedomain.CreateInvoiceRequest{CustomerID: f.customerID(), Amount: -1, Date: date})
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidAmount)

	_, err = f.svc.Create(ctx, invoicedomain.CreateInvoiceRequest{CustomerID: f.customerID(), Amount: 100, Status: "REFUNDED", Date: date})
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidStatus)

	_, err = f.svc.Create(ctx, invoicedomain.CreateInvoiceRequest{CustomerID: f.customerID(), Amount: 100})
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidDate)

	assert.Empty(t, f.published, "no events for rejected requests")
}

func TestUpdateInvoiceCarriesPreviousSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID: f.customerID(),
		Amount:     10000,
		Status:     invoicedomain.InvoiceStatusPending,
		Date:       time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	paid := invoicedomain.InvoiceStatusPaid
	amount := int64(15000)
	updated, err := f.svc.Update(ctx, invoicedomain.UpdateInvoiceRequest{
		ID:     inv.ID.String(),
		Amount: &amount,
		Status: &paid,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15000), updated.Amount)
	assert.Equal(t, invoicedomain.InvoiceStatusPaid, updated.Status)

	require.Len(t, f.published, 2)
	evt := f.published[1]
	assert.Equal(t, events.EventInvoiceUpdated, evt.Type)
	require.NotNil(t, evt.Previous)
	assert.Equal(t, int64(10000), evt.Previous.Amount)
	assert.Equal(t, invoicedomain.InvoiceStatusPending, evt.Previous.Status)
	assert.Equal(t, int64(15000), evt.Invoice.Amount)

	got, err := f.svc.GetByID(ctx, inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(15000), got.Amount)
}

func TestUpdateInvoiceNoFieldsIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID: f.customerID(),
		Amount:     10000,
		Status:     invoicedomain.InvoiceStatusPaid,
		Date:       time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, invoicedomain.UpdateInvoiceRequest{ID: inv.ID.String()})
	require.NoError(t, err)

	assert.Len(t, f.published, 1, "no update event without changes")
}

func TestDeleteInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID: f.customerID(),
		Amount:     10000,
		Status:     invoicedomain.InvoiceStatusPaid,
		Date:       time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, inv.ID.String()))

	_, err = f.svc.GetByID(ctx, inv.ID.String())
	assert.ErrorIs(t, err, invoicedomain.ErrInvoiceNotFound)

	require.Len(t, f.published, 2)
	evt := f.published[1]
	assert.Equal(t, events.EventInvoiceDeleted, evt.Type)
	assert.Equal(t, inv.ID, evt.Invoice.ID)
}

func TestDeleteMissingInvoice(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Delete(context.Background(), f.node.Generate().String())
	assert.ErrorIs(t, err, invoicedomain.ErrInvoiceNotFound)
}

func TestListInvoicesFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	date := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	customer := f.customerID()

	for _, status := range []invoicedomain.InvoiceStatus{
		invoicedomain.InvoiceStatusPaid,
		invoicedomain.InvoiceStatusPending,
		invoicedomain.InvoiceStatusPaid,
	} {
		_, err := f.svc.Create(ctx, invoicedomain.CreateInvoiceRequest{
			CustomerID: customer,
			Amount:     100,
			Status:     status,
			Date:       date,
		})
		require.NoError(t, err)
	}
	_, err := f.svc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID: f.customerID(),
		Amount:     100,
		Status:     invoicedomain.InvoiceStatusPaid,
		Date:       date,
	})
	require.NoError(t, err)

	all, err := f.svc.List(ctx, invoicedomain.ListInvoiceRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	byCustomer, err := f.svc.List(ctx, invoicedomain.ListInvoiceRequest{CustomerID: customer})
	require.NoError(t, err)
	assert.Len(t, byCustomer, 3)

	paid, err := f.svc.List(ctx, invoicedomain.ListInvoiceRequest{CustomerID: customer, Status: invoicedomain.InvoiceStatusPaid})
	require.NoError(t, err)
	assert.Len(t, paid, 2)

	limited, err := f.svc.List(ctx, invoicedomain.ListInvoiceRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
