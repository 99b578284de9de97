package observability

import (
	"context"
	"sync"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics holds the instruments emitted by channel/queue/loop as
// they dispatch, enqueue and drain messages. One instance is shared by
// the whole process; callers fetch it via Runtime().
type RuntimeMetrics struct {
	EnabledReceivers metric.Int64UpDownCounter
	SendsTotal       metric.Int64Counter
	QueueDepth       metric.Int64ObservableGauge
	ProcessEvents    metric.Int64Counter
}

var (
	runtimeOnce    sync.Once
	globalRuntimeM *RuntimeMetrics
)

// Runtime lazily builds the shared RuntimeMetrics against whatever
// MeterProvider is globally registered at first use (see
// newConsoleMetricsExporter / newPrometheusMetricsExporter).
func Runtime() *RuntimeMetrics {
	runtimeOnce.Do(func() {
		meter := otel.Meter("signalcore/channel")
		globalRuntimeM = &RuntimeMetrics{
			EnabledReceivers: lo.Must(meter.Int64UpDownCounter(
				"channel.enabled_receivers",
				metric.WithDescription("number of enabled receivers, summed over all channels"),
			)),
			SendsTotal: lo.Must(meter.Int64Counter(
				"channel.sends_total",
				metric.WithDescription("sends dispatched, by send mode"),
			)),
			QueueDepth: lo.Must(meter.Int64ObservableGauge(
				"queue.depth",
				metric.WithDescription("occupied slots in a registered loop-to-loop queue"),
			)),
			ProcessEvents: lo.Must(meter.Int64Counter(
				"loop.process_events_total",
				metric.WithDescription("callbacks drained by Loop.ProcessEvents"),
			)),
		}
	})
	return globalRuntimeM
}

// SendModeAttr builds the metric attribute set for channel.sends_total,
// tagging a send by its SendMode ("auto"/"queue") without channel
// importing the metric/attribute packages directly.
func SendModeAttr(mode string) metric.AddOption {
	return metric.WithAttributes(attribute.String("mode", mode))
}

// ObserveQueueDepth registers a callback reporting the current depth of
// a single named queue edge. Returns the registration so callers can
// unregister it when the edge is torn down.
func (m *RuntimeMetrics) ObserveQueueDepth(label string, depth func() int64) (metric.Registration, error) {
	meter := otel.Meter("signalcore/channel")
	return meter.RegisterCallback(func(ctx context.Context, obs metric.Observer) error {
		obs.ObserveInt64(m.QueueDepth, depth(), metric.WithAttributes(attribute.String("edge", label)))
		return nil
	}, m.QueueDepth)
}
