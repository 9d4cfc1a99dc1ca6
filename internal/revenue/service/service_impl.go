// Package service implements the revenue aggregation engine: the read
// surface, the mutation dispatcher and the event-processing pipeline.
package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/factura/internal/clock"
	obsmetrics "github.com/smallbiznis/factura/internal/observability/metrics"
	revenuedomain "github.com/smallbiznis/factura/internal/revenue/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Store   revenuedomain.Store
	Clock   clock.Clock
	Bounds  revenuedomain.PeriodBounds `optional:"true"`
	Metrics *obsmetrics.Metrics        `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	store   revenuedomain.Store
	clock   clock.Clock
	metrics *obsmetrics.Metrics

	classifier revenuedomain.Classifier
	locks      *periodLocks
}

func NewService(p ServiceParam) *Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("revenue.service"),
		genID:   p.GenID,
		store:   p.Store,
		clock:   p.Clock,
		metrics: p.Metrics,

		classifier: revenuedomain.Classifier{Bounds: p.Bounds},
		locks:      newPeriodLocks(),
	}
}

func (s *Service) List(ctx context.Context) ([]revenuedomain.Revenue, error) {
	return s.store.List(ctx)
}

func (s *Service) GetByPeriod(ctx context.Context, period revenuedomain.Period) (*revenuedomain.Revenue, error) {
	row, err := s.store.FindByPeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, revenuedomain.ErrRevenueNotFound
	}
	return row, nil
}
