package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	revenuedomain "github.com/smallbiznis/factura/internal/revenue/domain"
)

type revenueResponse struct {
	ID                 string    `json:"id"`
	Period             string    `json:"period"`
	PeriodStart        time.Time `json:"period_start"`
	InvoiceCount       int64     `json:"invoice_count"`
	TotalAmount        int64     `json:"total_amount"`
	TotalPaidAmount    int64     `json:"total_paid_amount"`
	TotalPendingAmount int64     `json:"total_pending_amount"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func toRevenueResponse(r revenuedomain.Revenue) revenueResponse {
	return revenueResponse{
		ID:                 r.ID.String(),
		Period:             r.Period().String(),
		PeriodStart:        r.PeriodStart,
		InvoiceCount:       r.InvoiceCount,
		TotalAmount:        r.TotalAmount,
		TotalPaidAmount:    r.TotalPaidAmount,
		TotalPendingAmount: r.TotalPendingAmount,
		UpdatedAt:          r.UpdatedAt,
	}
}

func (s *Server) ListRevenues(c *gin.Context) {
	rows, err := s.revenueSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	out := make([]revenueResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toRevenueResponse(row))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (s *Server) GetRevenueByPeriod(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("period"))
	period, err := revenuedomain.ParsePeriod(raw)
	if err != nil {
		AbortWithError(c, newValidationError("period", "invalid_period", "expected YYYY-MM"))
		return
	}

	row, err := s.revenueSvc.GetByPeriod(c.Request.Context(), period)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toRevenueResponse(*row)})
}

func (s *Server) RebuildRevenues(c *gin.Context) {
	if err := s.revenueSvc.Rebuild(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"status": "rebuilt"}})
}
