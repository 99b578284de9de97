package ipc

import (
	"sync"
	"sync/atomic"

	"github.com/ikorsukov/signalcore/internal/infra"
	"github.com/ikorsukov/signalcore/queue"
)

// DefaultPortCapacity is the ring size handed to a freshly registered
// port's edges when the caller doesn't ask for a specific one.
var DefaultPortCapacity uint32 = 2048

// edge is one sender's dedicated SPSC ring into a receiving Port. Every
// distinct FromLoop gets its own edge the first time it pushes, so two
// different Loops sending into the same target never share a ring.
type edge struct {
	fromLoopID uint64
	ring       *queue.RingQueue[CallMsg]
}

// Port is one loop's inbox: a set of single-producer/single-consumer
// rings, one per distinct sending Loop, so concurrent senders never
// race on the same writePos/buf. Fan-in across many senders is the
// receiving Loop draining every edge in turn.
type Port struct {
	loopID   uint64
	capacity uint32
	mu       sync.Mutex
	edges    atomic.Pointer[[]*edge]
}

func newPort(loopID uint64, capacity uint32) *Port {
	p := &Port{loopID: loopID, capacity: capacity}
	empty := make([]*edge, 0, 4)
	p.edges.Store(&empty)
	return p
}

func (p *Port) LoopID() uint64 { return p.loopID }

func (p *Port) findEdge(fromLoopID uint64) *edge {
	edges := *p.edges.Load()
	for _, e := range edges {
		if e.fromLoopID == fromLoopID {
			return e
		}
	}
	return nil
}

// edgeFor returns the ring dedicated to fromLoopID, creating it on
// first use. Lock-free read of the published slice, falling back to a
// mutex-guarded append only on a miss — same discipline as Registry
// itself.
func (p *Port) edgeFor(fromLoopID uint64) *edge {
	if e := p.findEdge(fromLoopID); e != nil {
		return e
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if e := p.findEdge(fromLoopID); e != nil {
		return e
	}

	e := &edge{fromLoopID: fromLoopID, ring: queue.NewRingQueue[CallMsg](p.capacity)}
	old := *p.edges.Load()
	next := make([]*edge, len(old), len(old)+1)
	copy(next, old)
	next = append(next, e)
	p.edges.Store(&next)
	return e
}

// Push enqueues msg onto the ring dedicated to msg.FromLoop, panicking
// if that edge has overflowed — queue overflow is a programmer error,
// sized for your workload, never a condition to silently swallow.
//
// A msg.FromLoop of 0 (an unregistered, "anonymous" sender — see
// loop.Post) shares a single edge across every caller that posts
// without a *Loop of its own; concurrent anonymous senders into the
// same target are not SPSC-safe and should each register a Loop.
func (p *Port) Push(msg CallMsg) {
	e := p.edgeFor(msg.FromLoop)
	if !e.ring.TryPush(msg) {
		panic(infra.NewErrorStack("ipc: port %d edge %d queue overflow", p.loopID, msg.FromLoop))
	}
}

// Drain pops up to len(dst) pending messages across every sender edge,
// returning how many were popped.
func (p *Port) Drain(dst []CallMsg) int {
	edges := *p.edges.Load()
	total := 0
	for _, e := range edges {
		if total >= len(dst) {
			break
		}
		total += e.ring.TryPopAll(dst[total:])
	}
	return total
}

// Depth reports how many messages are currently queued across every
// sender edge, for the queue.depth observable gauge.
func (p *Port) Depth() int {
	edges := *p.edges.Load()
	total := 0
	for _, e := range edges {
		total += e.ring.Len()
	}
	return total
}

// Registry is the process-wide QueuePool equivalent: a growable,
// never-shrinking slice of ports guarded by the objectpool two-phase
// discipline — a lock-free scan over the slots already published,
// falling back to a mutex-protected append only on a miss.
type Registry struct {
	mu    sync.Mutex
	count atomic.Int64
	ports atomic.Pointer[[]*Port]
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	r := &Registry{}
	empty := make([]*Port, 0, 32)
	r.ports.Store(&empty)
	return r
}

func (r *Registry) find(loopID uint64) *Port {
	slots := *r.ports.Load()
	n := int(r.count.Load())
	for i := 0; i < n && i < len(slots); i++ {
		if slots[i].loopID == loopID {
			return slots[i]
		}
	}
	return nil
}

// RegisterPort returns the existing port for loopID, or creates one
// whose edges are sized to capacity (falling back to
// DefaultPortCapacity when 0) the first time each sender appears.
func (r *Registry) RegisterPort(loopID uint64, capacity uint32) *Port {
	if p := r.find(loopID); p != nil {
		return p
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check: another goroutine may have registered loopID while we
	// waited for the lock.
	if p := r.find(loopID); p != nil {
		return p
	}

	if capacity == 0 {
		capacity = DefaultPortCapacity
	}
	port := newPort(loopID, capacity)

	old := *r.ports.Load()
	next := make([]*Port, len(old), len(old)+1)
	copy(next, old)
	next = append(next, port)
	r.ports.Store(&next)
	r.count.Store(int64(len(next)))
	return port
}

// Port returns the registered port for loopID, or nil.
func (r *Registry) Port(loopID uint64) *Port {
	return r.find(loopID)
}

// UnregisterPort removes loopID's port, if any. Existing CallMsg
// producers racing a concurrent unregister may still observe the old
// port and push into it; that queue is simply never drained again —
// disconnect never cancels in-flight work.
func (r *Registry) UnregisterPort(loopID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := *r.ports.Load()
	idx := -1
	for i, p := range old {
		if p.loopID == loopID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	next := make([]*Port, 0, len(old)-1)
	next = append(next, old[:idx]...)
	next = append(next, old[idx+1:]...)
	r.ports.Store(&next)
	r.count.Store(int64(len(next)))
}
