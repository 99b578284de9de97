// Package loop gives every goroutine that wants to participate in
// cross-goroutine dispatch an explicit handle. A C++ rendition of this
// identifies a participant by std::thread::id, sampled implicitly from
// the calling thread; Go exposes no public goroutine-identity
// primitive, so every API in this module takes a *Loop explicitly
// instead of inferring one.
package loop

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ikorsukov/signalcore/internal/id"
	"github.com/ikorsukov/signalcore/internal/infra"
	"github.com/ikorsukov/signalcore/ipc"
	"github.com/ikorsukov/signalcore/observability"
)

// Config constants: plain package-level vars, not compile-time
// constants, so a process can retune them at startup before any Loop
// is created.
var (
	MaxLoops           = 32
	MaxLoopsPerChannel = 16
	QueueCapacity      = uint32(2048)
)

var (
	registry  = ipc.NewRegistry()
	loopGen   = newIDGenerator()
	loopCount atomic.Int64
)

func newIDGenerator() id.Generator {
	gen, err := id.MonotonicNonZeroID()
	if err != nil {
		panic(infra.WrapErrorStack(err))
	}
	return gen
}

// Loop is a cross-goroutine dispatch endpoint: a registered inbox port
// plus a stable ID used as the dispatch key by channel/asyncpost.
type Loop struct {
	id      uint64
	port    *ipc.Port
	mu      sync.Mutex
	closed  bool
	closeCh chan struct{}
}

// NewLoop registers a new Loop with the process-wide registry. Callers
// typically create exactly one per goroutine they intend to dispatch
// to/from (see workerpool for a convenience host).
func NewLoop() *Loop {
	if int(loopCount.Load()) >= MaxLoops {
		panic(infra.NewErrorStack("loop: MaxLoops (%d) exceeded", MaxLoops))
	}
	lid := loopGen.Number()
	p := registry.RegisterPort(lid, QueueCapacity)
	loopCount.Add(1)
	return &Loop{id: lid, port: p, closeCh: make(chan struct{})}
}

// ID returns the Loop's process-unique identifier.
func (l *Loop) ID() uint64 { return l.id }

// ProcessEvents drains and invokes every call currently queued for
// this Loop, returning the number processed. Non-blocking: callers
// pump their own event loop (a for/select, a UI tick, whatever fits)
// and call this once per iteration.
func (l *Loop) ProcessEvents() int {
	batch := make([]ipc.CallMsg, 256)
	total := 0
	for {
		n := l.port.Drain(batch)
		for i := 0; i < n; i++ {
			batch[i].Fn.Call()
		}
		total += n
		observability.Runtime().ProcessEvents.Add(context.Background(), int64(n))
		if n < len(batch) {
			break
		}
	}
	return total
}

// ProcessEventsBlocking waits, using strategy, until at least one
// event is available, then drains exactly as ProcessEvents does.
// Returns 0 if strategy gives up (e.g. the Loop was closed).
func (l *Loop) ProcessEventsBlocking(strategy BlockStrategy) int {
	ok := strategy.WaitFor(func() bool { return l.port.Depth() > 0 }, l.closeCh)
	if !ok {
		return 0
	}
	return l.ProcessEvents()
}

// BlockStrategy re-exports ipc.BlockStrategy so callers don't need to
// import ipc directly just to pick a wait strategy.
type BlockStrategy = ipc.BlockStrategy

// SpinWait is the default BlockStrategy: brief spin, then yield, then
// OS-level yield.
var SpinWait = ipc.SpinWaitStrategy{}

// Close unregisters the Loop's port and unblocks any goroutine parked
// in ProcessEventsBlocking. Any in-flight sends already queued are
// simply never drained again; Close never attempts to cancel
// in-flight callbacks.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	close(l.closeCh)
	l.mu.Unlock()

	registry.UnregisterPort(l.id)
	loopCount.Add(-1)
}

// Post pushes fn onto target's port without blocking. Panics if
// target's ring has overflowed (a programmer error: size QueueCapacity
// for your workload).
func Post(from *Loop, target *Loop, fn func()) {
	fromID := uint64(0)
	if from != nil {
		fromID = from.id
	}
	target.port.Push(ipc.CallMsg{Fn: ipc.CallableFunc(fn), FromLoop: fromID})
}
