package server

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/billinginsights/internal/observability/logger"
	"github.com/smallbiznis/billinginsights/internal/orgcontext"
	"github.com/smallbiznis/billinginsights/internal/ratelimit"
	"go.uber.org/zap"
)

const (
	rateLimitOutcomeAllowed = "allowed"
	rateLimitOutcomeDenied  = "denied"
)

type orgLimiter interface {
	AllowOrg(ctx context.Context, orgID string) (*ratelimit.RateLimitResult, error)
}

// AnalyticsRateLimit applies the per-organization token bucket. It must run
// after OrgContext.
func (s *Server) AnalyticsRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.queryLimiter == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		orgID, ok := orgcontext.OrgIDFromContext(ctx)
		if !ok || orgID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		endpoint := normalizeRateLimitEndpoint(c)
		result, err := s.queryLimiter.AllowOrg(ctx, orgID.String())
		if err != nil {
			logger.FromContext(ctx).Warn("analytics rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}

		if !result.Allowed {
			logger.FromContext(ctx).Warn("analytics rate limit exceeded", zap.String("endpoint", endpoint))
			s.metrics.RecordRateLimit(ctx, endpoint, rateLimitOutcomeDenied)

			retryAfter := int(math.Ceil(result.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			c.Header("X-RateLimit-Remaining", "0")
			AbortWithError(c, ErrRateLimited)
			return
		}

		s.metrics.RecordRateLimit(ctx, endpoint, rateLimitOutcomeAllowed)
		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Next()
	}
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	if c == nil {
		return "unknown"
	}
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return endpoint
}
