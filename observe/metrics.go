package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument names.
const (
	MetricRequestsTotal    = "mathproxy.requests.total"
	MetricRequestErrors    = "mathproxy.requests.errors"
	MetricRequestDuration  = "mathproxy.requests.duration_ms"
	MetricCacheHits        = "mathproxy.cache.hits"
	MetricCacheMisses      = "mathproxy.cache.misses"
	MetricRendersTotal     = "mathproxy.renders.total"
	MetricRenderErrors     = "mathproxy.renders.errors"
	MetricTokensExhausted  = "mathproxy.tokens.exhausted"
	MetricTokenPoolReboots = "mathproxy.tokens.reboots"
)

// Metrics records proxy-level measurements.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordRequest records one handled query.
	RecordRequest(ctx context.Context, cached bool, duration time.Duration, err error)

	// RecordCacheLookup records a response cache hit or miss.
	RecordCacheLookup(ctx context.Context, hit bool)

	// RecordRender records one renderer invocation.
	RecordRender(ctx context.Context, err error)

	// RecordTokenExhausted records a request that found the token pool empty.
	RecordTokenExhausted(ctx context.Context)

	// RecordReboot records a token pool restart.
	RecordReboot(ctx context.Context)
}

type metricsImpl struct {
	requests     metric.Int64Counter
	requestErrs  metric.Int64Counter
	durationHist metric.Float64Histogram
	cacheHits    metric.Int64Counter
	cacheMisses  metric.Int64Counter
	renders      metric.Int64Counter
	renderErrs   metric.Int64Counter
	exhausted    metric.Int64Counter
	reboots      metric.Int64Counter
}

// NewMetrics creates the proxy instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	m := &metricsImpl{}
	var err error

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&m.requests, MetricRequestsTotal, "Total number of handled queries", "{request}"},
		{&m.requestErrs, MetricRequestErrors, "Total number of failed queries", "{error}"},
		{&m.cacheHits, MetricCacheHits, "Response cache hits", "{lookup}"},
		{&m.cacheMisses, MetricCacheMisses, "Response cache misses", "{lookup}"},
		{&m.renders, MetricRendersTotal, "Renderer invocations", "{call}"},
		{&m.renderErrs, MetricRenderErrors, "Failed renderer invocations", "{error}"},
		{&m.exhausted, MetricTokensExhausted, "Requests that found the token pool empty", "{event}"},
		{&m.reboots, MetricTokenPoolReboots, "Token pool restarts", "{restart}"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name,
			metric.WithDescription(c.desc),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return nil, err
		}
	}

	m.durationHist, err = meter.Float64Histogram(
		MetricRequestDuration,
		metric.WithDescription("Query handling duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *metricsImpl) RecordRequest(ctx context.Context, cached bool, duration time.Duration, err error) {
	opt := metric.WithAttributes(attribute.Bool("cached", cached))

	m.requests.Add(ctx, 1, opt)
	if err != nil {
		m.requestErrs.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordCacheLookup(ctx context.Context, hit bool) {
	if hit {
		m.cacheHits.Add(ctx, 1)
		return
	}
	m.cacheMisses.Add(ctx, 1)
}

func (m *metricsImpl) RecordRender(ctx context.Context, err error) {
	m.renders.Add(ctx, 1)
	if err != nil {
		m.renderErrs.Add(ctx, 1)
	}
}

func (m *metricsImpl) RecordTokenExhausted(ctx context.Context) {
	m.exhausted.Add(ctx, 1)
}

func (m *metricsImpl) RecordReboot(ctx context.Context) {
	m.reboots.Add(ctx, 1)
}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics {
	return nopMetrics{}
}

type nopMetrics struct{}

func (nopMetrics) RecordRequest(context.Context, bool, time.Duration, error) {}
func (nopMetrics) RecordCacheLookup(context.Context, bool)                   {}
func (nopMetrics) RecordRender(context.Context, error)                       {}
func (nopMetrics) RecordTokenExhausted(context.Context)                      {}
func (nopMetrics) RecordReboot(context.Context)                              {}
