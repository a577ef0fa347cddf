package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/billinginsights/internal/billinganalytics"
	analyticsdomain "github.com/smallbiznis/billinginsights/internal/billinganalytics/domain"
	"github.com/smallbiznis/billinginsights/internal/config"
	"github.com/smallbiznis/billinginsights/internal/observability"
	obsmiddleware "github.com/smallbiznis/billinginsights/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/billinginsights/internal/observability/metrics"
	obstracing "github.com/smallbiznis/billinginsights/internal/observability/tracing"
	"github.com/smallbiznis/billinginsights/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var Module = fx.Module("http.server",
	billinganalytics.Module,
	ratelimit.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	analyticsSvc analyticsdomain.Service
	queryLimiter orgLimiter
	metrics      *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	AnalyticsSvc analyticsdomain.Service
	QueryLimiter *ratelimit.QueryLimiter `optional:"true"`
	Metrics      *obsmetrics.Metrics     `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		analyticsSvc: p.AnalyticsSvc,
		metrics:      p.Metrics,
	}
	if p.QueryLimiter.Enabled() {
		svc.queryLimiter = p.QueryLimiter
	}

	svc.registerAPIRoutes()
	svc.registerFallback()
	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", OrgContext(), s.AnalyticsRateLimit())

	// -------- Analytics --------
	analytics := api.Group("/analytics")
	{
		analytics.GET("/gross-revenue", s.GetGrossRevenue)
		analytics.GET("/mrr", s.GetMRR)
		analytics.GET("/invoice-collections", s.GetInvoiceCollections)
		analytics.GET("/usage", s.GetUsageBreakdown)
	}

	// -------- Customers --------
	api.GET("/customers/:customer_id/lifetime-usage", s.GetLifetimeUsage)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
