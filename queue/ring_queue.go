// Package queue implements the single-producer/single-consumer bounded
// ring buffer that backs every loop-to-loop message edge. One ring is
// shared by exactly one sender and one receiver; fan-in/fan-out across
// many loops is built on top by giving every (sender, receiver) pair
// its own ring (see package ipc).
package queue

import (
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/cpu"

	"github.com/ikorsukov/signalcore/internal/bits"
	"github.com/ikorsukov/signalcore/internal/infra"
)

const cacheLinePad = unsafe.Sizeof(cpu.CacheLinePad{})

// producerSide and consumerSide are padded to their own cache lines so
// the producer's write_pos and the consumer's read_pos never share a
// line; without the padding, every push/pop pair would ping-pong the
// line between cores via MESI invalidation.
type producerSide struct {
	_        [cacheLinePad]byte
	writePos uint64
	_        [cacheLinePad - unsafe.Sizeof(uint64(0))]byte
}

type consumerSide struct {
	_       [cacheLinePad]byte
	readPos uint64
	_       [cacheLinePad - unsafe.Sizeof(uint64(0))]byte
}

// RingQueue is a bounded SPSC ring buffer. Capacity is rounded up to
// the next power of two so index masking replaces modulo.
type RingQueue[T any] struct {
	buf  []T
	mask uint64
	cap  uint64
	prod producerSide
	cons consumerSide
}

// NewRingQueue builds a ring able to hold at least capacity items.
func NewRingQueue[T any](capacity uint32) *RingQueue[T] {
	c := bits.RoundupPowOf2ByCeil(capacity)
	return &RingQueue[T]{
		buf:  make([]T, c),
		mask: uint64(c - 1),
		cap:  uint64(c),
	}
}

// Cap reports the ring's fixed capacity.
func (q *RingQueue[T]) Cap() int {
	return int(q.cap)
}

// Len reports the number of items currently queued. Safe to call from
// either side; the result may be stale by the time the caller reacts.
func (q *RingQueue[T]) Len() int {
	w := atomic.LoadUint64(&q.prod.writePos)
	r := atomic.LoadUint64(&q.cons.readPos)
	return int(w - r)
}

// TryPush appends an item. Returns false if the ring is full; callers
// that must never drop a message treat false as a programmer error
// and panic with an *ErrorStack.
func (q *RingQueue[T]) TryPush(item T) bool {
	w := atomic.LoadUint64(&q.prod.writePos)
	r := atomic.LoadUint64(&q.cons.readPos)
	if w-r >= q.cap {
		return false
	}
	q.buf[w&q.mask] = item
	atomic.StoreUint64(&q.prod.writePos, w+1)
	return true
}

// MustPush is TryPush, panicking via infra.NewErrorStack on overflow.
func (q *RingQueue[T]) MustPush(item T) {
	if !q.TryPush(item) {
		panic(infra.NewErrorStack("queue: capacity %d exceeded", q.cap))
	}
}

// TryPop removes and returns the oldest item. ok is false if the ring
// is empty.
func (q *RingQueue[T]) TryPop() (item T, ok bool) {
	r := atomic.LoadUint64(&q.cons.readPos)
	w := atomic.LoadUint64(&q.prod.writePos)
	if r >= w {
		return item, false
	}
	item = q.buf[r&q.mask]
	atomic.StoreUint64(&q.cons.readPos, r+1)
	return item, true
}

// TryPopAll drains every currently available item into dst, returning
// the number popped. Used by Loop.ProcessEvents to batch-drain a port
// in one pass instead of one atomic op per message.
func (q *RingQueue[T]) TryPopAll(dst []T) int {
	r := atomic.LoadUint64(&q.cons.readPos)
	w := atomic.LoadUint64(&q.prod.writePos)
	n := int(w - r)
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = q.buf[(r+uint64(i))&q.mask]
	}
	atomic.StoreUint64(&q.cons.readPos, r+uint64(n))
	return n
}
