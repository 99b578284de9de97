package channel

import (
	"sync"

	"github.com/ikorsukov/signalcore/asyncable"
	"github.com/ikorsukov/signalcore/loop"
)

// closer backs Close/OnClose for every facade below: an internal
// Channel0 owned by the same facade, fired exactly once by Close.
type closer struct {
	once  sync.Once
	notif *core[struct{}]
}

func newCloser() *closer {
	return &closer{notif: newCore[struct{}]()}
}

// Close fires the close notification exactly once, from whatever Loop
// the caller happens to be running on; onClose subscribers registered
// on other Loops receive it on their own next ProcessEvents.
func (c *closer) Close(from *loop.Loop) {
	c.once.Do(func() {
		c.notif.send(from, Auto, struct{}{})
	})
}

func (c *closer) onClose(l *loop.Loop, subscriber *asyncable.Asyncable, fn func(), mode RegisterMode) {
	c.notif.onReceive(l, subscriber, func(struct{}) { fn() }, mode)
}

// Channel0 is a payload-less channel; Notification is built on it.
type Channel0 struct {
	core   *core[struct{}]
	closer *closer
}

// NewChannel0 constructs a ready-to-use, payload-less channel.
func NewChannel0() *Channel0 {
	return &Channel0{core: newCore[struct{}](), closer: newCloser()}
}

func (c *Channel0) ID() uint64 { return c.core.ID() }

func (c *Channel0) Send(l *loop.Loop, mode SendMode) { c.core.send(l, mode, struct{}{}) }

func (c *Channel0) OnReceive(l *loop.Loop, subscriber *asyncable.Asyncable, f func(), mode RegisterMode) {
	c.core.onReceive(l, subscriber, func(struct{}) { f() }, mode)
}

func (c *Channel0) ResetOnReceive(l *loop.Loop, subscriber *asyncable.Asyncable) {
	c.core.disconnect(l, subscriber)
}

func (c *Channel0) Close(l *loop.Loop) { c.closer.Close(l) }

func (c *Channel0) OnClose(l *loop.Loop, subscriber *asyncable.Asyncable, f func(), mode RegisterMode) {
	c.closer.onClose(l, subscriber, f, mode)
}

func (c *Channel0) IsConnected() bool { return c.core.isConnected() }

// Channel1 carries a single typed payload.
type Channel1[A any] struct {
	core   *core[A]
	closer *closer
}

func NewChannel1[A any]() *Channel1[A] {
	return &Channel1[A]{core: newCore[A](), closer: newCloser()}
}

func (c *Channel1[A]) ID() uint64 { return c.core.ID() }

func (c *Channel1[A]) Send(l *loop.Loop, mode SendMode, a A) { c.core.send(l, mode, a) }

func (c *Channel1[A]) OnReceive(l *loop.Loop, subscriber *asyncable.Asyncable, f func(A), mode RegisterMode) {
	c.core.onReceive(l, subscriber, f, mode)
}

func (c *Channel1[A]) ResetOnReceive(l *loop.Loop, subscriber *asyncable.Asyncable) {
	c.core.disconnect(l, subscriber)
}

func (c *Channel1[A]) Close(l *loop.Loop) { c.closer.Close(l) }

func (c *Channel1[A]) OnClose(l *loop.Loop, subscriber *asyncable.Asyncable, f func(), mode RegisterMode) {
	c.closer.onClose(l, subscriber, f, mode)
}

func (c *Channel1[A]) IsConnected() bool { return c.core.isConnected() }

// pair2/pair3 are the "opaque bag" trait payloads: in place of true
// variadic generics, Channel2/Channel3 pack their arguments into one
// of these before handing them to core[T], then unpack on delivery.
type pair2[A, B any] struct {
	a A
	b B
}

type pair3[A, B, C any] struct {
	a A
	b B
	c C
}

// Channel2 carries two typed payload values.
type Channel2[A, B any] struct {
	core   *core[pair2[A, B]]
	closer *closer
}

func NewChannel2[A, B any]() *Channel2[A, B] {
	return &Channel2[A, B]{core: newCore[pair2[A, B]](), closer: newCloser()}
}

func (c *Channel2[A, B]) ID() uint64 { return c.core.ID() }

func (c *Channel2[A, B]) Send(l *loop.Loop, mode SendMode, a A, b B) {
	c.core.send(l, mode, pair2[A, B]{a: a, b: b})
}

func (c *Channel2[A, B]) OnReceive(l *loop.Loop, subscriber *asyncable.Asyncable, f func(A, B), mode RegisterMode) {
	c.core.onReceive(l, subscriber, func(p pair2[A, B]) { f(p.a, p.b) }, mode)
}

func (c *Channel2[A, B]) ResetOnReceive(l *loop.Loop, subscriber *asyncable.Asyncable) {
	c.core.disconnect(l, subscriber)
}

func (c *Channel2[A, B]) Close(l *loop.Loop) { c.closer.Close(l) }

func (c *Channel2[A, B]) OnClose(l *loop.Loop, subscriber *asyncable.Asyncable, f func(), mode RegisterMode) {
	c.closer.onClose(l, subscriber, f, mode)
}

func (c *Channel2[A, B]) IsConnected() bool { return c.core.isConnected() }

// Channel3 carries three typed payload values.
type Channel3[A, B, C any] struct {
	core   *core[pair3[A, B, C]]
	closer *closer
}

func NewChannel3[A, B, C any]() *Channel3[A, B, C] {
	return &Channel3[A, B, C]{core: newCore[pair3[A, B, C]](), closer: newCloser()}
}

func (c *Channel3[A, B, C]) ID() uint64 { return c.core.ID() }

func (c *Channel3[A, B, C]) Send(l *loop.Loop, mode SendMode, a A, b B, v C) {
	c.core.send(l, mode, pair3[A, B, C]{a: a, b: b, c: v})
}

func (c *Channel3[A, B, C]) OnReceive(l *loop.Loop, subscriber *asyncable.Asyncable, f func(A, B, C), mode RegisterMode) {
	c.core.onReceive(l, subscriber, func(p pair3[A, B, C]) { f(p.a, p.b, p.c) }, mode)
}

func (c *Channel3[A, B, C]) ResetOnReceive(l *loop.Loop, subscriber *asyncable.Asyncable) {
	c.core.disconnect(l, subscriber)
}

func (c *Channel3[A, B, C]) Close(l *loop.Loop) { c.closer.Close(l) }

func (c *Channel3[A, B, C]) OnClose(l *loop.Loop, subscriber *asyncable.Asyncable, f func(), mode RegisterMode) {
	c.closer.onClose(l, subscriber, f, mode)
}

func (c *Channel3[A, B, C]) IsConnected() bool { return c.core.isConnected() }
