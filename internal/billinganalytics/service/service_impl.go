package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/billinginsights/internal/billinganalytics/domain"
	"github.com/smallbiznis/billinginsights/internal/billinganalytics/engine"
	"github.com/smallbiznis/billinginsights/internal/cache"
	"github.com/smallbiznis/billinginsights/internal/clock"
	"github.com/smallbiznis/billinginsights/internal/config"
	"github.com/smallbiznis/billinginsights/internal/currency"
	"github.com/smallbiznis/billinginsights/internal/observability/logger"
	"github.com/smallbiznis/billinginsights/internal/observability/metrics"
	"github.com/smallbiznis/billinginsights/internal/observability/tracing"
	"github.com/smallbiznis/billinginsights/internal/orgcontext"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	kindGrossRevenue       = "gross_revenue"
	kindMRR                = "mrr"
	kindInvoiceCollections = "invoice_collections"
	kindUsage              = "usage"
	kindLifetimeUsage      = "lifetime_usage"

	outcomeSuccess = "success"
	outcomeError   = "error"
)

type Params struct {
	fx.In

	Repo         domain.Repository
	Log          *zap.Logger
	Clock        clock.Clock
	AppConfig    config.Config
	Analytics    *config.AnalyticsConfigHolder
	Cache        cache.Store               `optional:"true"`
	Formatter    currency.Formatter        `optional:"true"`
	Metrics      *metrics.Metrics          `optional:"true"`
	CacheMetrics *metrics.AnalyticsMetrics `optional:"true"`
}

type Service struct {
	repo         domain.Repository
	log          *zap.Logger
	clock        clock.Clock
	analytics    *config.AnalyticsConfigHolder
	cache        cache.Store
	cacheTTL     time.Duration
	formatter    currency.Formatter
	metrics      *metrics.Metrics
	cacheMetrics *metrics.AnalyticsMetrics
}

func NewService(p Params) domain.Service {
	store := p.Cache
	if store == nil {
		store = cache.NoopStore{}
	}
	analytics := p.Analytics
	if analytics == nil {
		analytics = config.NewStaticAnalyticsConfigHolder(config.DefaultAnalyticsConfig())
	}
	return &Service{
		repo:         p.Repo,
		log:          p.Log.Named("billinganalytics.service"),
		clock:        p.Clock,
		analytics:    analytics,
		cache:        store,
		cacheTTL:     time.Duration(p.AppConfig.Cache.TTLSeconds) * time.Second,
		formatter:    p.Formatter,
		metrics:      p.Metrics,
		cacheMetrics: p.CacheMetrics,
	}
}

// pass is the resolved shape of one aggregation request. now is read once and
// anchors every month computation of the pass.
type pass struct {
	kind     string
	orgID    snowflake.ID
	currency string
	scope    domain.PeriodScope
	subject  string
	now      time.Time
}

func (p pass) cacheKey() string {
	return strings.Join([]string{
		p.kind,
		p.orgID.String(),
		p.currency,
		string(p.scope),
		p.subject,
		p.now.Format("2006-01"),
	}, "/")
}

func (p pass) rangeQuery() domain.RangeQuery {
	from, to := engine.MonthWindowRange(p.now)
	return domain.RangeQuery{
		OrgID:    p.orgID,
		Currency: p.currency,
		From:     from,
		To:       to,
	}
}

func (s *Service) GetGrossRevenue(ctx context.Context, req domain.ChartRequest) (domain.ChartResponse, error) {
	return s.chart(ctx, kindGrossRevenue, req, s.repo.ListRevenueByMonth)
}

func (s *Service) GetMRR(ctx context.Context, req domain.ChartRequest) (domain.ChartResponse, error) {
	return s.chart(ctx, kindMRR, req, s.repo.ListMRRByMonth)
}

type monthlyLoader func(ctx context.Context, q domain.RangeQuery) ([]domain.RawMonthlyAmount, error)

func (s *Service) chart(ctx context.Context, kind string, req domain.ChartRequest, load monthlyLoader) (domain.ChartResponse, error) {
	p, err := s.resolve(ctx, kind, req.Scope, req.Currency)
	if err != nil {
		return domain.ChartResponse{}, err
	}

	return run(ctx, s, p, func(ctx context.Context) (domain.ChartResponse, error) {
		raw, err := load(ctx, p.rangeQuery())
		if err != nil {
			return domain.ChartResponse{}, err
		}
		data, err := engine.CoerceMonthlyAmounts(raw, p.currency)
		if err != nil {
			return domain.ChartResponse{}, err
		}
		window, err := engine.WindowSeries(engine.PadSeries(data, p.currency, p.now), p.scope)
		if err != nil {
			return domain.ChartResponse{}, err
		}
		return domain.ChartResponse{
			Scope:  p.scope,
			Series: engine.BuildChartSeries(window, p.currency, s.formatter),
		}, nil
	})
}

func (s *Service) GetInvoiceCollections(ctx context.Context, req domain.ChartRequest) (domain.InvoiceCollectionsResponse, error) {
	p, err := s.resolve(ctx, kindInvoiceCollections, req.Scope, req.Currency)
	if err != nil {
		return domain.InvoiceCollectionsResponse{}, err
	}

	return run(ctx, s, p, func(ctx context.Context) (domain.InvoiceCollectionsResponse, error) {
		raw, err := s.repo.ListInvoiceCollectionsByMonth(ctx, p.rangeQuery())
		if err != nil {
			return domain.InvoiceCollectionsResponse{}, err
		}
		data, err := engine.CoerceInvoiceCollections(raw, p.currency)
		if err != nil {
			return domain.InvoiceCollectionsResponse{}, err
		}
		result, err := engine.AggregateInvoiceCollections(data, p.currency, p.scope, p.now)
		if err != nil {
			return domain.InvoiceCollectionsResponse{}, err
		}
		return domain.InvoiceCollectionsResponse{Scope: p.scope, InvoiceCollectionsResult: result}, nil
	})
}

func (s *Service) GetUsageBreakdown(ctx context.Context, req domain.UsageRequest) (domain.UsageBreakdownResponse, error) {
	p, err := s.resolve(ctx, kindUsage, req.Scope, req.Currency)
	if err != nil {
		return domain.UsageBreakdownResponse{}, err
	}

	var customerID *snowflake.ID
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return domain.UsageBreakdownResponse{}, domain.ErrInvalidCustomer
		}
		customerID = &id
		p.subject = id.String()
	}

	top := req.Top
	if top <= 0 {
		top = s.analytics.Get().TopN
	}
	p.subject = fmt.Sprintf("%s:top%d", p.subject, top)

	return run(ctx, s, p, func(ctx context.Context) (domain.UsageBreakdownResponse, error) {
		q := p.rangeQuery()
		q.CustomerID = customerID
		raw, err := s.repo.ListUsageByMetric(ctx, q)
		if err != nil {
			return domain.UsageBreakdownResponse{}, err
		}
		items, err := engine.CoerceUsageLineItems(raw)
		if err != nil {
			return domain.UsageBreakdownResponse{}, err
		}

		labels, err := engine.WindowSeries(engine.LastThirteenMonths(p.now), p.scope)
		if err != nil {
			return domain.UsageBreakdownResponse{}, err
		}
		months, err := engine.ScopeMonths(engine.LastThirteenMonths(p.now), p.scope)
		if err != nil {
			return domain.UsageBreakdownResponse{}, err
		}

		inScope := make([]domain.UsageLineItem, 0, len(items))
		for _, item := range items {
			label, ok := engine.NormalizeMonthLabel(item.Month)
			if !ok {
				continue
			}
			if _, ok := months[label]; !ok {
				continue
			}
			item.Month = label
			inScope = append(inScope, item)
		}

		breakdown := engine.BucketTopN(inScope, top)
		s.metrics.RecordUsageLines(ctx, string(p.scope), len(breakdown.Lines))

		return domain.UsageBreakdownResponse{
			Scope:          p.scope,
			Currency:       p.currency,
			DateFrom:       labels[0],
			DateTo:         labels[len(labels)-1],
			UsageBreakdown: breakdown,
		}, nil
	})
}

func (s *Service) GetLifetimeUsage(ctx context.Context, req domain.LifetimeUsageRequest) (domain.LifetimeUsageResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.LifetimeUsageResponse{}, domain.ErrInvalidOrganization
	}

	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return domain.LifetimeUsageResponse{}, domain.ErrInvalidCustomer
	}

	var subscriptionID *snowflake.ID
	subject := customerID.String()
	if raw := strings.TrimSpace(req.SubscriptionID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return domain.LifetimeUsageResponse{}, domain.ErrInvalidSubscription
		}
		subscriptionID = &id
		subject += ":" + id.String()
	}

	p := pass{
		kind:    kindLifetimeUsage,
		orgID:   orgID,
		subject: subject,
		now:     s.clock.Now(),
	}

	return run(ctx, s, p, func(ctx context.Context) (domain.LifetimeUsageResponse, error) {
		resp := domain.LifetimeUsageResponse{CustomerID: customerID.String()}
		if subscriptionID != nil {
			resp.SubscriptionID = subscriptionID.String()
		}

		raw, err := s.repo.GetLifetimeUsage(ctx, orgID, customerID, subscriptionID)
		if errors.Is(err, domain.ErrNotFound) {
			return resp, nil
		}
		if err != nil {
			return domain.LifetimeUsageResponse{}, err
		}

		usage, err := engine.CoerceThresholdUsage(raw)
		if err != nil {
			return domain.LifetimeUsageResponse{}, err
		}
		resp.Usage = usage
		resp.ThresholdPercentages = engine.ThresholdPercentages(usage)
		return resp, nil
	})
}

// resolve validates the organization, scope and currency of a chart request
// and takes the single clock reading for the pass.
func (s *Service) resolve(ctx context.Context, kind string, rawScope domain.PeriodScope, rawCurrency string) (pass, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return pass{}, domain.ErrInvalidOrganization
	}

	defaults := s.analytics.Get()

	scopeValue := strings.TrimSpace(string(rawScope))
	if scopeValue == "" {
		scopeValue = defaults.DefaultScope
	}
	scope, err := domain.ParsePeriodScope(scopeValue)
	if err != nil {
		return pass{}, err
	}

	currencyCode := strings.TrimSpace(rawCurrency)
	if currencyCode == "" {
		currencyCode = defaults.DefaultCurrency
	}
	currencyCode, err = normalizeCurrency(currencyCode)
	if err != nil {
		return pass{}, err
	}

	return pass{
		kind:     kind,
		orgID:    orgID,
		currency: currencyCode,
		scope:    scope,
		subject:  "-",
		now:      s.clock.Now(),
	}, nil
}

func normalizeCurrency(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != 3 {
		return "", domain.ErrInvalidCurrency
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", domain.ErrInvalidCurrency
		}
	}
	return code, nil
}

// run serves a pass from the cache when possible, otherwise computes it and
// stores the result. Cache failures are logged and never fail the request.
func run[T any](ctx context.Context, s *Service, p pass, compute func(context.Context) (T, error)) (out T, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "billinganalytics."+p.kind,
		attribute.String("analytics.kind", p.kind),
		attribute.String("analytics.scope", string(p.scope)),
		attribute.String("analytics.currency", p.currency),
	)
	defer func() {
		outcome := outcomeSuccess
		if err != nil {
			outcome = outcomeError
		}
		s.metrics.RecordAggregation(ctx, p.kind, string(p.scope), outcome, time.Since(start))
		tracing.EndSpan(span, err)
	}()

	log := logger.WithContext(ctx, s.log).With(
		zap.String("kind", p.kind),
		zap.String("scope", string(p.scope)),
	)

	key := p.cacheKey()
	cached, ok, cacheErr := cache.GetJSON[T](ctx, s.cache, key)
	switch {
	case cacheErr != nil:
		s.cacheMetrics.ObserveCacheLookup(p.kind, metrics.CacheResultError)
		log.Warn("analytics cache read failed", zap.Error(cacheErr))
	case ok:
		s.cacheMetrics.ObserveCacheLookup(p.kind, metrics.CacheResultHit)
		return cached, nil
	default:
		s.cacheMetrics.ObserveCacheLookup(p.kind, metrics.CacheResultMiss)
	}

	out, err = compute(ctx)
	if err != nil {
		s.cacheMetrics.ObserveQueryError(p.kind, err)
		log.Error("analytics aggregation failed", zap.Error(err))
		return out, err
	}

	if s.cacheTTL > 0 {
		if err := cache.SetJSON(ctx, s.cache, key, out, s.cacheTTL); err != nil {
			log.Warn("analytics cache write failed", zap.Error(err))
		}
	}
	return out, nil
}
