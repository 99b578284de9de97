package channel

import (
	"github.com/ikorsukov/signalcore/asyncable"
	"github.com/ikorsukov/signalcore/loop"
)

// Notification is a degenerate Channel0: send carries no data, fires
// are purely "something happened" signals.
type Notification struct {
	ch *Channel0
}

func NewNotification() *Notification {
	return &Notification{ch: NewChannel0()}
}

func (n *Notification) ID() uint64 { return n.ch.ID() }

func (n *Notification) Notify(l *loop.Loop, mode SendMode) { n.ch.Send(l, mode) }

func (n *Notification) OnNotify(l *loop.Loop, subscriber *asyncable.Asyncable, f func(), mode RegisterMode) {
	n.ch.OnReceive(l, subscriber, f, mode)
}

func (n *Notification) ResetOnNotify(l *loop.Loop, subscriber *asyncable.Asyncable) {
	n.ch.ResetOnReceive(l, subscriber)
}

func (n *Notification) Close(l *loop.Loop) { n.ch.Close(l) }

func (n *Notification) OnClose(l *loop.Loop, subscriber *asyncable.Asyncable, f func(), mode RegisterMode) {
	n.ch.OnClose(l, subscriber, f, mode)
}

func (n *Notification) IsConnected() bool { return n.ch.IsConnected() }
