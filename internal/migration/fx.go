package migration

import (
	"github.com/smallbiznis/factura/internal/config"
	invoicedomain "github.com/smallbiznis/factura/internal/invoice/domain"
	revenuedomain "github.com/smallbiznis/factura/internal/revenue/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Versioned SQL migrations cover postgres; mysql and sqlite fall
		// back to schema sync from the models.
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		return conn.AutoMigrate(
			&invoicedomain.Invoice{},
			&revenuedomain.Revenue{},
		)
	}),
)
