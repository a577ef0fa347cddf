package cache

import (
	"context"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/billinginsights/internal/clock"
	"github.com/smallbiznis/billinginsights/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("cache",
	fx.Provide(NewStore),
)

// NewStore builds the result store selected by CACHE_DRIVER.
func NewStore(lc fx.Lifecycle, cfg config.Config, clk clock.Clock, log *zap.Logger) Store {
	log = log.Named("cache")

	switch cfg.Cache.Driver {
	case config.CacheDriverNone:
		log.Info("aggregation cache disabled")
		return NoopStore{}
	case config.CacheDriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     strings.TrimSpace(cfg.Cache.RedisAddr),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := client.Ping(pingCtx).Err(); err != nil {
					// Lookups fail open, so an unreachable Redis only costs cache hits.
					log.Warn("redis unreachable", zap.String("addr", cfg.Cache.RedisAddr), zap.Error(err))
				}
				return nil
			},
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		log.Info("aggregation cache using redis", zap.String("addr", cfg.Cache.RedisAddr))
		return NewRedisStore(client)
	default:
		return NewMemoryStore(NewTTLCache[string, []byte](clk))
	}
}
