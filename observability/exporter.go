package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// ExporterKind selects which MeterProvider backend InitExporter installs.
type ExporterKind int8

const (
	// ConsoleExporter prints metrics periodically, for local/dev use.
	ConsoleExporter ExporterKind = iota
	// PrometheusExporter exposes metrics for HTTP scraping, for production use.
	PrometheusExporter
)

// InitExporter installs the global MeterProvider that Runtime()'s
// instruments and otelruntime's goroutine/process gauges report
// through. Call once from a host binary before any metrics are
// emitted; the returned shutdown func flushes and tears the provider
// down.
func InitExporter(kind ExporterKind, interval, timeout time.Duration) (func(ctx context.Context) error, error) {
	switch kind {
	case PrometheusExporter:
		return newPrometheusMetricsExporter()
	default:
		return newConsoleMetricsExporter(interval, timeout)
	}
}

// Serves for test/dev environment.
func newConsoleMetricsExporter(interval, timeout time.Duration, opts ...stdoutmetric.Option) (func(ctx context.Context) error, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	callback := mp.Shutdown
	otel.SetMeterProvider(mp)
	return callback, nil
}

// Serves for the product environment and fetch stats metrics by HTTP.
func newPrometheusMetricsExporter() (func(ctx context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	callback := mp.Shutdown
	otel.SetMeterProvider(mp)
	return callback, nil
}
