// Package bootstrap is called once from a host binary's main: it sets
// GOMAXPROCS to match the container's CPU quota via
// go.uber.org/automaxprocs and wires app-wide metrics collection.
package bootstrap

import (
	"context"
	"time"

	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap/zapcore"

	"github.com/ikorsukov/signalcore/observability"
	"github.com/ikorsukov/signalcore/xlog"
)

// Init sets GOMAXPROCS from the container's CPU quota, installs a
// metrics exporter, then starts app-wide metrics collection under
// name, tearing down both when ctx is cancelled. Call once from main.
func Init(ctx context.Context, name string, logger xlog.XLogger, exporter observability.ExporterKind) error {
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Logf(zapcore.InfoLevel, format, args...)
	}))
	shutdown, err := observability.InitExporter(exporter, 10*time.Second, 5*time.Second)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		_ = shutdown(context.Background())
	}()
	observability.InitAppStats(ctx, name)
	return nil
}
