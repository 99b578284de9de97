// Package workerpool is an ants-backed pool of goroutines, each
// dedicated to pumping exactly one loop.Loop: ants.NewPool with
// ants.WithPreAlloc, a pool-scoped logger, Submit per unit of work,
// Release on teardown.
package workerpool

import (
	"github.com/panjf2000/ants/v2"

	"github.com/ikorsukov/signalcore/internal/infra"
	"github.com/ikorsukov/signalcore/loop"
	"github.com/ikorsukov/signalcore/xlog"
)

// Host owns a bounded goroutine pool; it keeps no reference to the
// Loops it has spawned, which their callers close.
type Host struct {
	pool *ants.Pool
}

// NewHost builds a Host backed by an ants.Pool of the given size,
// routing the pool's internal diagnostics through logger.
func NewHost(size int, logger xlog.XLogger) (*Host, error) {
	antsLogger := xlog.NewAntsXLogger(logger)
	p, err := ants.NewPool(size, ants.WithPreAlloc(true), ants.WithLogger(antsLogger))
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	return &Host{pool: p}, nil
}

// Spawn creates a new Loop and submits a pump goroutine for it into
// the pool. The pump blocks on ProcessEventsBlocking using
// loop.SpinWait until the Loop is closed.
func (h *Host) Spawn() (*loop.Loop, error) {
	l := loop.NewLoop()
	err := h.pool.Submit(func() {
		for {
			if n := l.ProcessEventsBlocking(loop.SpinWait); n == 0 {
				return
			}
		}
	})
	if err != nil {
		l.Close()
		return nil, infra.WrapErrorStack(err)
	}
	return l, nil
}

// Running reports the number of goroutines currently pumping a Loop.
func (h *Host) Running() int { return h.pool.Running() }

// Release stops accepting new work and returns without waiting; a
// running pump exits only once its Loop is closed.
func (h *Host) Release() { h.pool.Release() }
