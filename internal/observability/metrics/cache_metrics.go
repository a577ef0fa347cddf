package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/billinginsights/internal/billinganalytics/domain"
)

const (
	CacheResultHit   = "hit"
	CacheResultMiss  = "miss"
	CacheResultError = "error"
)

const (
	QueryErrorReasonCanceled       = "canceled"
	QueryErrorReasonTimeout        = "timeout"
	QueryErrorReasonConnection     = "connection"
	QueryErrorReasonInvalidAmount  = "invalid_amount"
	QueryErrorReasonUndefinedTable = "undefined_table"
	QueryErrorReasonUnknown        = "unknown"
)

// AnalyticsMetrics exposes Prometheus series for the result cache and the
// read queries behind each aggregation.
type AnalyticsMetrics struct {
	cacheLookups *prometheus.CounterVec
	queryErrors  *prometheus.CounterVec
}

var (
	analyticsMetricsOnce sync.Once
	analyticsMetrics     *AnalyticsMetrics
)

// Analytics returns the process-wide metrics registered on the default registerer.
func Analytics(cfg Config) *AnalyticsMetrics {
	analyticsMetricsOnce.Do(func() {
		analyticsMetrics = NewAnalyticsMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return analyticsMetrics
}

// NewAnalyticsMetrics registers the collectors on registerer.
func NewAnalyticsMetrics(registerer prometheus.Registerer, cfg Config) *AnalyticsMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "billinginsights"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "billinginsights_cache_lookups_total",
		Help:        "Aggregation cache lookups by kind and result.",
		ConstLabels: constLabels,
	}, []string{"kind", "result"})
	queryErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "billinginsights_query_errors_total",
		Help:        "Failed aggregation queries by kind and reason.",
		ConstLabels: constLabels,
	}, []string{"kind", "reason"})

	registerer.MustRegister(cacheLookups, queryErrors)

	return &AnalyticsMetrics{
		cacheLookups: cacheLookups,
		queryErrors:  queryErrors,
	}
}

// ObserveCacheLookup counts a cache lookup outcome.
func (m *AnalyticsMetrics) ObserveCacheLookup(kind, result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(kind, result).Inc()
}

// ObserveQueryError counts a failed query, classified by ClassifyQueryError.
func (m *AnalyticsMetrics) ObserveQueryError(kind string, err error) {
	if m == nil || err == nil {
		return
	}
	m.queryErrors.WithLabelValues(kind, ClassifyQueryError(err)).Inc()
}

// ClassifyQueryError maps a repository error to a low-cardinality reason.
func ClassifyQueryError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return QueryErrorReasonCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return QueryErrorReasonTimeout
	case errors.Is(err, domain.ErrInvalidAmount):
		return QueryErrorReasonInvalidAmount
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "57014":
			return QueryErrorReasonTimeout
		case pgErr.Code == "42P01":
			return QueryErrorReasonUndefinedTable
		case strings.HasPrefix(pgErr.Code, "08"), pgErr.Code == "53300":
			return QueryErrorReasonConnection
		}
	}
	return QueryErrorReasonUnknown
}
