package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/licence-store/internal/config"
	"github.com/licence-store/internal/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// 毫秒级时延分桶
var durationBuckets = []float64{2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

// ShutdownFunc 刷新并关闭指标导出
type ShutdownFunc func(context.Context) error

// Metrics 网关业务指标
type Metrics struct {
	HTTPRequests     metric.Int64Counter
	HTTPDuration     metric.Float64Histogram
	CartMutations    metric.Int64Counter
	Checkouts        metric.Int64Counter
	LineOps          metric.Int64Counter
	DraftSubmissions metric.Int64Counter
	CacheLookups     metric.Int64Counter

	serviceName string
}

// Init 按配置初始化指标，未启用时返回不导出的实现
func Init(ctx context.Context, cfg config.TelemetryConfig) (*Metrics, ShutdownFunc, error) {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "licence-store"
	}
	if !cfg.Enabled {
		return Noop(), func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("build telemetry resource: %w", err)
	}

	exporterOpts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(strings.TrimSpace(cfg.OTLPEndpoint)),
		otlpmetrichttp.WithURLPath("/v1/metrics"),
	}
	if cfg.Insecure {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	interval := time.Duration(cfg.ExportIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(provider)

	metrics, err := New(provider.Meter(serviceName), serviceName)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, nil, err
	}
	logger.Infow("telemetry_enabled",
		"endpoint", cfg.OTLPEndpoint,
		"interval", interval,
		"service", serviceName,
	)
	return metrics, provider.Shutdown, nil
}

// Noop 返回不采集任何数据的指标
func Noop() *Metrics {
	metrics, _ := New(noop.NewMeterProvider().Meter(""), "")
	return metrics
}

// New 在给定 meter 上注册全部指标
func New(meter metric.Meter, serviceName string) (*Metrics, error) {
	m := &Metrics{serviceName: serviceName}
	var err error

	if m.HTTPRequests, err = meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("create http request counter: %w", err)
	}
	if m.HTTPDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, fmt.Errorf("create http duration histogram: %w", err)
	}
	if m.CartMutations, err = meter.Int64Counter(
		"cart_mutations_total",
		metric.WithDescription("Cart mutations by operation"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("create cart mutation counter: %w", err)
	}
	if m.Checkouts, err = meter.Int64Counter(
		"checkouts_total",
		metric.WithDescription("Checkout submissions by outcome"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("create checkout counter: %w", err)
	}
	if m.LineOps, err = meter.Int64Counter(
		"order_line_ops_total",
		metric.WithDescription("Order line operations sent to the backend"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("create line op counter: %w", err)
	}
	if m.DraftSubmissions, err = meter.Int64Counter(
		"draft_submissions_total",
		metric.WithDescription("Draft order submissions by outcome"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("create draft submission counter: %w", err)
	}
	if m.CacheLookups, err = meter.Int64Counter(
		"catalog_cache_lookups_total",
		metric.WithDescription("Catalog cache lookups by result"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("create cache lookup counter: %w", err)
	}
	return m, nil
}

func (m *Metrics) withServiceName(attrs ...attribute.KeyValue) metric.MeasurementOption {
	if m.serviceName != "" {
		attrs = append(attrs, attribute.String("service.name", m.serviceName))
	}
	return metric.WithAttributes(attrs...)
}

// RecordHTTP 记录一次 HTTP 请求
func (m *Metrics) RecordHTTP(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	opt := m.withServiceName(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.HTTPRequests.Add(ctx, 1, opt)
	m.HTTPDuration.Record(ctx, float64(elapsed.Milliseconds()), opt)
}

// RecordCartMutation 记录购物车变更
func (m *Metrics) RecordCartMutation(ctx context.Context, op string) {
	if m == nil {
		return
	}
	m.CartMutations.Add(ctx, 1, m.withServiceName(attribute.String("op", op)))
}

// RecordCheckout 记录结账结果
func (m *Metrics) RecordCheckout(ctx context.Context, err error) {
	if m == nil {
		return
	}
	m.Checkouts.Add(ctx, 1, m.withServiceName(attribute.String("outcome", outcome(err))))
}

// RecordLineOp 记录单条明细操作
func (m *Metrics) RecordLineOp(ctx context.Context, kind string, err error) {
	if m == nil {
		return
	}
	m.LineOps.Add(ctx, 1, m.withServiceName(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome(err)),
	))
}

// RecordDraftSubmit 记录草稿提交，partial 表示部分明细失败
func (m *Metrics) RecordDraftSubmit(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.DraftSubmissions.Add(ctx, 1, m.withServiceName(attribute.String("outcome", result)))
}

// RecordCacheLookup 记录目录缓存命中情况
func (m *Metrics) RecordCacheLookup(ctx context.Context, name string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.Add(ctx, 1, m.withServiceName(
		attribute.String("cache", name),
		attribute.String("result", result),
	))
}

func outcome(err error) string {
	if err != nil {
		return outcomeError
	}
	return outcomeSuccess
}
