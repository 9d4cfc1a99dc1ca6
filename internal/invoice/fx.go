package invoice

import (
	invoicedomain "github.com/smallbiznis/factura/internal/invoice/domain"
	"github.com/smallbiznis/factura/internal/invoice/service"
	"github.com/smallbiznis/factura/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(
		repository.ProvideStore[invoicedomain.Invoice],
		service.NewService,
		func(s *service.Service) invoicedomain.Service { return s },
	),
)
