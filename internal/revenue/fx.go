package revenue

import (
	"github.com/smallbiznis/factura/internal/config"
	revenuedomain "github.com/smallbiznis/factura/internal/revenue/domain"
	"github.com/smallbiznis/factura/internal/revenue/repository"
	"github.com/smallbiznis/factura/internal/revenue/service"
	"go.uber.org/fx"
)

var Module = fx.Module("revenue.service",
	fx.Provide(
		providePeriodBounds,
		repository.NewStore,
		service.NewService,
		func(s *service.Service) revenuedomain.Service { return s },
		service.NewProcessor,
	),
	fx.Invoke(service.Register),
)

func providePeriodBounds(cfg config.Config) revenuedomain.PeriodBounds {
	return revenuedomain.PeriodBounds{
		MinYear:      cfg.Revenue.MinPeriodYear,
		MaxYearAhead: cfg.Revenue.MaxPeriodYearAhead,
	}
}
