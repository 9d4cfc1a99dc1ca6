package observability

import (
	"github.com/smallbiznis/factura/internal/config"
	"github.com/smallbiznis/factura/internal/observability/logger"
	"github.com/smallbiznis/factura/internal/observability/metrics"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		provideLoggerConfig,
		logger.New,
		metrics.New,
	),
)

func provideLoggerConfig(cfg config.Config) logger.Config {
	return logger.Config{
		ServiceName:   cfg.AppName,
		Environment:   cfg.Environment,
		Version:       cfg.AppVersion,
		Level:         cfg.LogLevel,
		Format:        cfg.LogFormat,
		Debug:         !cfg.IsProduction(),
		IncludeCaller: true,
	}
}
