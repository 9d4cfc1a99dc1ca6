package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/factura/internal/config"
	invoicedomain "github.com/smallbiznis/factura/internal/invoice/domain"
	revenuedomain "github.com/smallbiznis/factura/internal/revenue/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInvoiceService struct {
	created []invoicedomain.CreateInvoiceRequest
	deleted []string
}

func (f *fakeInvoiceService) List(context.Context, invoicedomain.ListInvoiceRequest) ([]invoicedomain.Invoice, error) {
	return []invoicedomain.Invoice{}, nil
}

func (f *fakeInvoiceService) GetByID(_ context.Context, id string) (invoicedomain.Invoice, error) {
	return invoicedomain.Invoice{}, invoicedomain.ErrInvoiceNotFound
}

func (f *fakeInvoiceService) Create(_ context.Context, req invoicedomain.CreateInvoiceRequest) (invoicedomain.Invoice, error) {
	f.created = append(f.created, req)
	if req.Amount < 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidAmount
	}
	return invoicedomain.Invoice{ID: 1, Amount: req.Amount, Status: req.Status, Date: req.Date}, nil
}

func (f *fakeInvoiceService) Update(_ context.Context, req invoicedomain.UpdateInvoiceRequest) (invoicedomain.Invoice, error) {
	return invoicedomain.Invoice{}, invoicedomain.ErrInvoiceNotFound
}

func (f *fakeInvoiceService) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeRevenueService struct {
	rows     []revenuedomain.Revenue
	rebuilds int
}

func (f *fakeRevenueService) List(context.Context) ([]revenuedomain.Revenue, error) {
	return f.rows, nil
}

func (f *fakeRevenueService) GetByPeriod(_ context.Context, period revenuedomain.Period) (*revenuedomain.Revenue, error) {
	for i := range f.rows {
		if f.rows[i].Period().Equal(period) {
			return &f.rows[i], nil
		}
	}
	return nil, revenuedomain.ErrRevenueNotFound
}

func (f *fakeRevenueService) Rebuild(context.Context) error {
	f.rebuilds++
	return nil
}

func newTestServer(t *testing.T) (*Server, *fakeInvoiceService, *fakeRevenueService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	invoiceSvc := &fakeInvoiceService{}
	revenueSvc := &fakeRevenueService{}
	srv := NewServer(ServerParams{
		Gin:        engine,
		Cfg:        config.Config{},
		InvoiceSvc: invoiceSvc,
		RevenueSvc: revenueSvc,
	})
	return srv, invoiceSvc, revenueSvc
}

func doRequest(srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func TestCreateInvoiceEndpoint(t *testing.T) {
	srv, invoiceSvc, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/invoices", map[string]any{
		"customer_id": "42",
		"amount":      10000,
		"status":      "paid",
		"date":        "2024-03-10",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, invoiceSvc.created, 1)
	assert.Equal(t, invoicedomain.InvoiceStatusPaid, invoiceSvc.created[0].Status)
	assert.Equal(t, time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), invoiceSvc.created[0].Date)
}

func TestCreateInvoiceRejectsBadDate(t *testing.T) {
	srv, invoiceSvc, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/invoices", map[string]any{
		"customer_id": "42",
		"amount":      10000,
		"date":        "10 March 2024",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, invoiceSvc.created)
}

func TestCreateInvoiceMapsValidationError(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/invoices", map[string]any{
		"customer_id": "42",
		"amount":      -5,
		"date":        "2024-03-10",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error struct {
			Type   string `json:"type"`
			Errors []struct {
				Code string `json:"code"`
			} `json:"errors"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Error.Type)
	require.Len(t, resp.Error.Errors, 1)
	assert.Equal(t, "invalid_amount", resp.Error.Errors[0].Code)
}

func TestGetInvoiceNotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/invoices/123", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetInvoiceInvalidID(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/invoices/not-an-id", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRevenueByPeriod(t *testing.T) {
	srv, _, revenueSvc := newTestServer(t)
	row := revenuedomain.Revenue{
		ID:          7,
		PeriodStart: revenuedomain.NewPeriod(2024, time.March).Start(),
	}
	row.Apply(revenuedomain.Totals{InvoiceCount: 2, TotalAmount: 12500}, revenuedomain.Buckets{Paid: 10000, Pending: 2500})
	revenueSvc.rows = []revenuedomain.Revenue{row}

	rec := doRequest(srv, http.MethodGet, "/api/revenues/2024-03", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data revenueResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2024-03", resp.Data.Period)
	assert.Equal(t, int64(12500), resp.Data.TotalAmount)
	assert.Equal(t, int64(10000), resp.Data.TotalPaidAmount)
	assert.Equal(t, int64(2500), resp.Data.TotalPendingAmount)
}

func TestGetRevenueByPeriodBadFormat(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/revenues/march-2024", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRevenueByPeriodMissing(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/revenues/2024-03", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRebuildEndpoint(t *testing.T) {
	srv, _, revenueSvc := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/revenues/rebuild", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, revenueSvc.rebuilds)
}
