package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes aggregation instruments.
type Metrics struct {
	aggregations        metric.Int64Counter
	aggregationDuration metric.Float64Histogram
	usageLines          metric.Int64Histogram
	rateLimitDecisions  metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the aggregation instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "billinginsights"
	}
	meter := provider.Meter(name)

	aggregations, err := meter.Int64Counter("billinginsights_aggregations_total")
	if err != nil {
		return nil, err
	}
	aggregationDuration, err := meter.Float64Histogram("billinginsights_aggregation_duration_ms")
	if err != nil {
		return nil, err
	}
	usageLines, err := meter.Int64Histogram("billinginsights_usage_breakdown_lines")
	if err != nil {
		return nil, err
	}
	rateLimitDecisions, err := meter.Int64Counter("billinginsights_rate_limit_decisions_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		aggregations:        aggregations,
		aggregationDuration: aggregationDuration,
		usageLines:          usageLines,
		rateLimitDecisions:  rateLimitDecisions,
	}, nil
}

// RecordAggregation counts one aggregation and records its latency.
func (m *Metrics) RecordAggregation(ctx context.Context, kind, scope, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("kind", strings.TrimSpace(kind)),
		attribute.String("scope", strings.TrimSpace(scope)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.aggregations.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.aggregationDuration.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(attrs...))
}

// RecordUsageLines records how many usage lines a breakdown displayed.
func (m *Metrics) RecordUsageLines(ctx context.Context, scope string, lines int) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("scope", strings.TrimSpace(scope)))
	m.usageLines.Record(ctx, int64(lines), metric.WithAttributes(attrs...))
}

// RecordRateLimit counts an allow or deny decision of the per-organization limiter.
func (m *Metrics) RecordRateLimit(ctx context.Context, endpoint, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.rateLimitDecisions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"kind":        {},
	"scope":       {},
	"outcome":     {},
	"endpoint":    {},
	"status_code": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
// Organization and customer IDs never become labels.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
