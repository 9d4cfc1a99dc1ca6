package idempotency

import (
	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/factura/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("idempotency",
	fx.Provide(NewStore),
	fx.Provide(NewGuard),
)

// NewStore selects the seen-event store backend: redis when configured,
// otherwise the in-process TTL store.
func NewStore(cfg config.Config, log *zap.Logger) SeenEventStore {
	ttl := cfg.Revenue.SeenEventTTL
	if cfg.RedisAddr == "" {
		log.Info("idempotency store: in-memory", zap.Duration("ttl", ttl))
		return NewMemoryStore(ttl)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	log.Info("idempotency store: redis", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", ttl))
	return NewRedisStore(client, ttl)
}
