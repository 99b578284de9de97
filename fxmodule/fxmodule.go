// Package fxmodule wires the runtime into a go.uber.org/fx application:
// a default XLogger, an fx.WithLogger option routing fx's own event
// stream through xlog.NewFxXLogger, a workerpool.Host lifecycle, and
// app-wide metrics bootstrap.
package fxmodule

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/ikorsukov/signalcore/observability"
	"github.com/ikorsukov/signalcore/workerpool"
	"github.com/ikorsukov/signalcore/xlog"
)

// Params configures the module's provided Host.
type Params struct {
	fx.In

	PoolSize int `optional:"true" name:"workerPoolSize"`
}

// NewLogger builds the module's default XLogger, writing structured
// console output.
func NewLogger() xlog.XLogger {
	return xlog.NewXLogger(xlog.WithXLoggerConsoleCore())
}

// NewHost builds the shared workerpool.Host and registers its
// Release with fx's shutdown hooks.
func NewHost(lc fx.Lifecycle, logger xlog.XLogger, p Params) (*workerpool.Host, error) {
	size := p.PoolSize
	if size <= 0 {
		size = 8
	}
	h, err := workerpool.NewHost(size, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			h.Release()
			return nil
		},
	})
	return h, nil
}

// WithLogger adapts a fx-application-supplied XLogger into fx's own
// event logger, exactly the pattern xlog/fx.go establishes.
func WithLogger(logger xlog.XLogger) fx.Option {
	return fx.WithLogger(func() fxevent.Logger {
		return xlog.NewFxXLogger(logger)
	})
}

// Module bundles the default logger and worker pool into a single
// fx.Option for host applications to fx.New(fxmodule.Module, ...).
var Module = fx.Module("signalcore",
	fx.Provide(NewLogger, NewHost),
	fx.Invoke(func(lc fx.Lifecycle) {
		var shutdownExporter func(context.Context) error
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				var err error
				shutdownExporter, err = observability.InitExporter(observability.PrometheusExporter, 10*time.Second, 5*time.Second)
				if err != nil {
					return err
				}
				observability.InitAppStats(ctx, "signalcore")
				return nil
			},
			OnStop: func(ctx context.Context) error {
				if shutdownExporter == nil {
					return nil
				}
				return shutdownExporter(ctx)
			},
		})
	}),
)
