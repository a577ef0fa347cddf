package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/billinginsights/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyAnalyticsOrg = "billinginsights:ratelimit:org:%s"

// QueryLimiter throttles analytics reads per organization.
type QueryLimiter struct {
	enabled bool

	bucket   *TokenBucket
	orgRate  float64
	orgBurst int
}

// NewQueryLimiter returns nil when rate limiting is disabled.
func NewQueryLimiter(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*QueryLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(cfg.Cache.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.OrgRate <= 0 || limitCfg.OrgBurst <= 0 {
		return nil, errors.New("analytics org rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	log.Named("ratelimit").Info("analytics rate limit enabled",
		zap.Float64("org_rate", limitCfg.OrgRate),
		zap.Int("org_burst", limitCfg.OrgBurst),
	)

	return newQueryLimiter(NewTokenBucket(client), limitCfg), nil
}

func newQueryLimiter(bucket *TokenBucket, cfg config.RateLimitConfig) *QueryLimiter {
	return &QueryLimiter{
		enabled:  true,
		bucket:   bucket,
		orgRate:  cfg.OrgRate,
		orgBurst: cfg.OrgBurst,
	}
}

func (l *QueryLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *QueryLimiter) AllowOrg(ctx context.Context, orgID string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	key := fmt.Sprintf(keyAnalyticsOrg, strings.TrimSpace(orgID))
	return l.bucket.Allow(ctx, key, l.orgRate, l.orgBurst)
}
