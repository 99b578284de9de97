// Package notifylist implements a NotifyList façade: a plain ordered
// sequence paired with a ChangedNotify exposing five independent
// channels. No automatic emission on mutation — the producer
// explicitly fires the notifier. A C++ rendition of this subclasses
// std::vector<T> directly; this module wraps a slice instead of
// embedding one, since Go has no inheritance.
package notifylist

import (
	"github.com/ikorsukov/signalcore/asyncable"
	"github.com/ikorsukov/signalcore/channel"
	"github.com/ikorsukov/signalcore/loop"
)

// ChangedNotify composes the five independent channels a NotifyList's
// producer fires explicitly; no diffing, no reactivity.
type ChangedNotify[T any] struct {
	changed      *channel.Notification
	itemChanged  *channel.Channel1[T]
	itemAdded    *channel.Channel1[T]
	itemRemoved  *channel.Channel1[T]
	itemReplaced *channel.Channel2[T, T]
}

// NewChangedNotify builds a ready-to-use notifier.
func NewChangedNotify[T any]() *ChangedNotify[T] {
	return &ChangedNotify[T]{
		changed:      channel.NewNotification(),
		itemChanged:  channel.NewChannel1[T](),
		itemAdded:    channel.NewChannel1[T](),
		itemRemoved:  channel.NewChannel1[T](),
		itemReplaced: channel.NewChannel2[T, T](),
	}
}

func (n *ChangedNotify[T]) Changed() *channel.Notification       { return n.changed }
func (n *ChangedNotify[T]) ItemChanged() *channel.Channel1[T]     { return n.itemChanged }
func (n *ChangedNotify[T]) ItemAdded() *channel.Channel1[T]       { return n.itemAdded }
func (n *ChangedNotify[T]) ItemRemoved() *channel.Channel1[T]     { return n.itemRemoved }
func (n *ChangedNotify[T]) ItemReplaced() *channel.Channel2[T, T] { return n.itemReplaced }

func (n *ChangedNotify[T]) NotifyChanged(l *loop.Loop)              { n.changed.Notify(l, channel.Auto) }
func (n *ChangedNotify[T]) NotifyItemChanged(l *loop.Loop, item T)  { n.itemChanged.Send(l, channel.Auto, item) }
func (n *ChangedNotify[T]) NotifyItemAdded(l *loop.Loop, item T)    { n.itemAdded.Send(l, channel.Auto, item) }
func (n *ChangedNotify[T]) NotifyItemRemoved(l *loop.Loop, item T)  { n.itemRemoved.Send(l, channel.Auto, item) }
func (n *ChangedNotify[T]) NotifyItemReplaced(l *loop.Loop, oldItem, newItem T) {
	n.itemReplaced.Send(l, channel.Auto, oldItem, newItem)
}

// NotifyList is an ordinary ordered sequence paired with a
// ChangedNotify. It never emits automatically; callers mutate Items
// and then call the matching Notify* method themselves.
type NotifyList[T any] struct {
	Items  []T
	notify *ChangedNotify[T]
}

// New constructs an empty list backed by its own ChangedNotify.
func New[T any]() *NotifyList[T] {
	return &NotifyList[T]{notify: NewChangedNotify[T]()}
}

// NewFrom wraps an existing slice with a caller-supplied notifier,
// mirroring the original's NotifyList(vector, shared_ptr<ChangedNotify>)
// constructor.
func NewFrom[T any](items []T, notify *ChangedNotify[T]) *NotifyList[T] {
	return &NotifyList[T]{Items: items, notify: notify}
}

// SetNotify replaces the backing notifier.
func (l *NotifyList[T]) SetNotify(n *ChangedNotify[T]) { l.notify = n }

func (l *NotifyList[T]) OnChanged(lp *loop.Loop, caller *asyncable.Asyncable, f func(), mode channel.RegisterMode) {
	if l.notify == nil {
		return
	}
	l.notify.Changed().OnNotify(lp, caller, f, mode)
}

func (l *NotifyList[T]) ResetOnChanged(lp *loop.Loop, caller *asyncable.Asyncable) {
	if l.notify == nil {
		return
	}
	l.notify.Changed().ResetOnNotify(lp, caller)
}

func (l *NotifyList[T]) OnItemChanged(lp *loop.Loop, caller *asyncable.Asyncable, f func(T), mode channel.RegisterMode) {
	if l.notify == nil {
		return
	}
	l.notify.ItemChanged().OnReceive(lp, caller, f, mode)
}

func (l *NotifyList[T]) ResetOnItemChanged(lp *loop.Loop, caller *asyncable.Asyncable) {
	if l.notify == nil {
		return
	}
	l.notify.ItemChanged().ResetOnReceive(lp, caller)
}

func (l *NotifyList[T]) OnItemAdded(lp *loop.Loop, caller *asyncable.Asyncable, f func(T), mode channel.RegisterMode) {
	if l.notify == nil {
		return
	}
	l.notify.ItemAdded().OnReceive(lp, caller, f, mode)
}

func (l *NotifyList[T]) ResetOnItemAdded(lp *loop.Loop, caller *asyncable.Asyncable) {
	if l.notify == nil {
		return
	}
	l.notify.ItemAdded().ResetOnReceive(lp, caller)
}

func (l *NotifyList[T]) OnItemRemoved(lp *loop.Loop, caller *asyncable.Asyncable, f func(T), mode channel.RegisterMode) {
	if l.notify == nil {
		return
	}
	l.notify.ItemRemoved().OnReceive(lp, caller, f, mode)
}

func (l *NotifyList[T]) ResetOnItemRemoved(lp *loop.Loop, caller *asyncable.Asyncable) {
	if l.notify == nil {
		return
	}
	l.notify.ItemRemoved().ResetOnReceive(lp, caller)
}

func (l *NotifyList[T]) OnItemReplaced(lp *loop.Loop, caller *asyncable.Asyncable, f func(old, new T), mode channel.RegisterMode) {
	if l.notify == nil {
		return
	}
	l.notify.ItemReplaced().OnReceive(lp, caller, f, mode)
}

func (l *NotifyList[T]) ResetOnItemReplaced(lp *loop.Loop, caller *asyncable.Asyncable) {
	if l.notify == nil {
		return
	}
	l.notify.ItemReplaced().ResetOnReceive(lp, caller)
}

// Append adds an item to the sequence. The caller is responsible for
// firing NotifyItemAdded/NotifyChanged — mutation never auto-notifies.
func (l *NotifyList[T]) Append(item T) {
	l.Items = append(l.Items, item)
}

// RemoveAt removes the item at index i. The caller fires
// NotifyItemRemoved/NotifyChanged explicitly.
func (l *NotifyList[T]) RemoveAt(i int) {
	l.Items = append(l.Items[:i], l.Items[i+1:]...)
}

// Len returns the number of items currently in the sequence.
func (l *NotifyList[T]) Len() int { return len(l.Items) }
