// Package channel implements the dispatch core: per-Loop subscriber
// tables, the two-phase pendingAdd/pendingRemove apply discipline, and
// the Auto/Queue send modes. Go has no variadic generics, so the core
// dispatches a single opaque payload type T; Channel1/Channel2/Channel3
// are typed facades that pack/unpack their own argument lists into
// that payload instead of using reflection.
package channel

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ikorsukov/signalcore/asyncable"
	"github.com/ikorsukov/signalcore/internal/id"
	"github.com/ikorsukov/signalcore/internal/infra"
	"github.com/ikorsukov/signalcore/loop"
	"github.com/ikorsukov/signalcore/observability"
)

// SendMode selects how send fans a payload out to known subscriber Loops.
type SendMode int

const (
	// Auto invokes same-Loop callbacks inline, then enqueues to every
	// other known Loop.
	Auto SendMode = iota
	// Queue always enqueues, including to the sender's own Loop.
	Queue
)

func (m SendMode) String() string {
	if m == Queue {
		return "queue"
	}
	return "auto"
}

// RegisterMode controls duplicate-registration behavior in onReceive.
type RegisterMode int

const (
	// SetOnce panics if subscriber already has a live registration on
	// this channel. Go has no separate debug/release build, so this
	// module always enforces the assertion rather than silently
	// replacing.
	SetOnce RegisterMode = iota
	// AsyncSet replaces any existing registration for subscriber.
	AsyncSet
)

var idGen = must(id.MonotonicNonZeroID())

func must(g id.Generator, err error) id.Generator {
	if err != nil {
		panic(infra.WrapErrorStack(err))
	}
	return g
}

type receiver[T any] struct {
	enabled    atomic.Bool
	subscriber *asyncable.Asyncable
	callback   func(T)
}

// loopTable is the subscriber table for a single Loop, owned
// exclusively by that Loop. The mutex exists because Go cannot enforce
// that ownership the way a single-threaded C++ object can; it is
// uncontended in the steady state since, apart from the owning Loop's
// goroutine, only registrations made for that Loop and cross-Loop
// disconnects (which disable a record before posting its removal)
// ever touch it.
type loopTable[T any] struct {
	l             *loop.Loop
	mu            sync.Mutex
	iterating     bool
	receivers     []*receiver[T]
	pendingAdd    []*receiver[T]
	pendingRemove []*receiver[T]
}

func (t *loopTable[T]) findLocked(subscriber *asyncable.Asyncable) *receiver[T] {
	if subscriber == nil {
		return nil
	}
	for _, r := range t.receivers {
		if r.subscriber == subscriber && r.enabled.Load() {
			return r
		}
	}
	for _, r := range t.pendingAdd {
		if r.subscriber == subscriber && r.enabled.Load() {
			return r
		}
	}
	return nil
}

func (t *loopTable[T]) applyAddLocked() {
	if len(t.pendingAdd) == 0 {
		return
	}
	t.receivers = append(t.receivers, t.pendingAdd...)
	t.pendingAdd = t.pendingAdd[:0]
}

func (t *loopTable[T]) applyRemoveLocked() {
	if len(t.pendingRemove) == 0 {
		return
	}
	for _, pr := range t.pendingRemove {
		for i, r := range t.receivers {
			if r == pr {
				t.receivers = append(t.receivers[:i], t.receivers[i+1:]...)
				break
			}
		}
	}
	t.pendingRemove = t.pendingRemove[:0]
}

// core is the unexported generic dispatch engine. It is never used
// directly by callers; Channel1/Channel2/Channel3/Channel0 wrap it.
type core[T any] struct {
	id           uint64
	tmu          sync.Mutex
	tables       atomic.Pointer[[]*loopTable[T]]
	enabledCount atomic.Int64
}

func newCore[T any]() *core[T] {
	c := &core[T]{id: idGen.Number()}
	empty := make([]*loopTable[T], 0)
	c.tables.Store(&empty)
	return c
}

// ID returns a diagnostic-only monotonic identifier for this channel
// instance. The actual identity key remains the pointer.
func (c *core[T]) ID() uint64 { return c.id }

func (c *core[T]) tableFor(l *loop.Loop) *loopTable[T] {
	tables := *c.tables.Load()
	for _, t := range tables {
		if t.l == l {
			return t
		}
	}

	c.tmu.Lock()
	defer c.tmu.Unlock()
	tables = *c.tables.Load()
	for _, t := range tables {
		if t.l == l {
			return t
		}
	}
	if len(tables) >= loop.MaxLoopsPerChannel {
		panic(infra.NewErrorStack("channel: MaxLoopsPerChannel (%d) exceeded", loop.MaxLoopsPerChannel))
	}
	nt := &loopTable[T]{l: l}
	next := make([]*loopTable[T], len(tables)+1)
	copy(next, tables)
	next[len(tables)] = nt
	c.tables.Store(&next)
	return nt
}

// DisconnectAsyncable implements asyncable.IConnectable. It is called
// by an Asyncable's Close() from whatever goroutine invoked Close,
// which need not be the registration Loop — so this always takes the
// safe cross-Loop path: disable immediately (observable to any
// in-flight send at once) and hand the bookkeeping removal to the
// registration Loop via Post.
func (c *core[T]) DisconnectAsyncable(subscriber *asyncable.Asyncable, registrationLoop uint64) {
	tables := *c.tables.Load()
	for _, t := range tables {
		if t.l.ID() != registrationLoop {
			continue
		}
		c.disconnectCrossLoop(t, subscriber)
		return
	}
}

// onReceive registers callback for subscriber on l. The duplicate check
// is channel-wide, not table-local: a subscriber's one live registration
// is tracked on the subscriber's own Asyncable (ConnectedLoop), so
// calling OnReceive from a second Loop on the same channel sees the
// first Loop's registration too, rather than only whatever happens to
// share l's table.
func (c *core[T]) onReceive(l *loop.Loop, subscriber *asyncable.Asyncable, callback func(T), mode RegisterMode) {
	if subscriber != nil {
		if existingLoopID, ok := subscriber.ConnectedLoop(c); ok {
			switch mode {
			case SetOnce:
				panic(infra.NewErrorStack("channel: SetOnce violated, subscriber already registered"))
			case AsyncSet:
				c.DisconnectAsyncable(subscriber, existingLoopID)
			}
		}
	}

	t := c.tableFor(l)

	t.mu.Lock()
	r := &receiver[T]{subscriber: subscriber, callback: callback}
	r.enabled.Store(true)
	if t.iterating {
		t.pendingAdd = append(t.pendingAdd, r)
	} else {
		t.receivers = append(t.receivers, r)
	}
	t.mu.Unlock()

	if subscriber != nil {
		subscriber.Connect(c, l.ID())
	}
	c.enabledCount.Add(1)
	observability.Runtime().EnabledReceivers.Add(context.Background(), 1)
}

// disableLocked marks r disabled and decrements the shared enabled
// count immediately; it does not remove r from the slice — that
// happens at the next applyRemoveLocked so in-flight iteration over a
// snapshot of the slice stays valid.
func (c *core[T]) disableLocked(t *loopTable[T], r *receiver[T]) {
	if !r.enabled.CompareAndSwap(true, false) {
		return
	}
	t.pendingRemove = append(t.pendingRemove, r)
	c.enabledCount.Add(-1)
	observability.Runtime().EnabledReceivers.Add(context.Background(), -1)
}

// disconnect is the public-facing removal entry point, called with l
// the caller's own current Loop (the fast, same-Loop path is only
// available when the caller truthfully is executing on l).
func (c *core[T]) disconnect(l *loop.Loop, subscriber *asyncable.Asyncable) {
	if subscriber == nil {
		return
	}
	tables := *c.tables.Load()
	for _, t := range tables {
		t.mu.Lock()
		r := t.findLocked(subscriber)
		if r == nil {
			t.mu.Unlock()
			continue
		}
		if t.l == l {
			c.disableLocked(t, r)
			if !t.iterating {
				t.applyRemoveLocked()
			}
			t.mu.Unlock()
			subscriber.Disconnect(c)
			return
		}
		t.mu.Unlock()
		c.disconnectCrossLoop(t, subscriber)
		subscriber.Disconnect(c)
		return
	}
}

// disconnectCrossLoop disables immediately (so in-flight sends skip
// it at once) and posts the bookkeeping removal to the owning Loop.
func (c *core[T]) disconnectCrossLoop(t *loopTable[T], subscriber *asyncable.Asyncable) {
	t.mu.Lock()
	r := t.findLocked(subscriber)
	if r == nil {
		t.mu.Unlock()
		return
	}
	c.disableLocked(t, r)
	t.mu.Unlock()

	loop.Post(nil, t.l, func() {
		t.mu.Lock()
		if !t.iterating {
			t.applyRemoveLocked()
		}
		t.mu.Unlock()
	})
}

func (c *core[T]) isConnected() bool {
	return c.enabledCount.Load() > 0
}

func (c *core[T]) send(l *loop.Loop, mode SendMode, payload T) {
	if c.enabledCount.Load() == 0 {
		return
	}
	observability.Runtime().SendsTotal.Add(context.Background(), 1, observability.SendModeAttr(mode.String()))

	tables := *c.tables.Load()
	for _, t := range tables {
		if mode == Auto && t.l == l {
			c.dispatchPass(t, payload)
			continue
		}
		// Queue mode always enqueues, even to the sender's own Loop;
		// Auto mode enqueues to every Loop other than the sender's.
		c.enqueue(l, t, payload)
	}
}

// dispatchPass runs the §4.5 state machine on t inline, on the
// calling goroutine (which must genuinely be t.l's pump goroutine).
func (c *core[T]) dispatchPass(t *loopTable[T], payload T) {
	t.mu.Lock()
	t.applyAddLocked()
	t.applyRemoveLocked()
	t.iterating = true
	snapshot := make([]*receiver[T], len(t.receivers))
	copy(snapshot, t.receivers)
	t.mu.Unlock()

	for _, r := range snapshot {
		if r.enabled.Load() {
			r.callback(payload)
		}
	}

	t.mu.Lock()
	t.iterating = false
	t.applyRemoveLocked()
	t.applyAddLocked()
	t.mu.Unlock()
}

// enqueue posts a CallMsg from the sending Loop to t.l that runs
// dispatchPass on t.l's own goroutine the next time it calls
// ProcessEvents.
func (c *core[T]) enqueue(from *loop.Loop, t *loopTable[T], payload T) {
	loop.Post(from, t.l, func() {
		c.dispatchPass(t, payload)
	})
}
