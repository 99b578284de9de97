// Package asyncable implements a bidirectional subscriber-lifetime
// protocol: a subscriber tracks every channel it has connected to, and
// a channel tracks every subscriber connected to it. Either side
// tearing down notifies the other, so neither is ever left holding a
// dangling reference.
//
// A C++ rendition of this relies on destructors to call this
// automatically. Go has no destructors, so the tracked side must call
// Close() explicitly — the Go-native substitute.
package asyncable

import "sync"

// IConnectable is implemented by anything a subscriber can connect to
// (channel.Channel1/2/3, channel.Notification, ...). It lets an
// Asyncable ask the other side to forget about it without either
// package importing the other.
type IConnectable interface {
	DisconnectAsyncable(subscriber *Asyncable, registrationLoop uint64)
}

// Asyncable is embedded by (or held alongside) anything that connects
// to channels: it remembers every connection so Close can unwind them
// all in one call, and subscriber-initiated Disconnect keeps the
// bookkeeping in sync from this side.
type Asyncable struct {
	mu       sync.Mutex
	connects map[IConnectable]uint64 // connectable -> loop ID it was registered under
	closed   bool
}

// Connect records that this subscriber connected to c under loopID.
// Called by channel.core when a subscriber is added, not by user code.
func (a *Asyncable) Connect(c IConnectable, loopID uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.connects == nil {
		a.connects = make(map[IConnectable]uint64, 4)
	}
	a.connects[c] = loopID
}

// Disconnect forgets a single connection. Called by channel.core when
// a subscriber is removed, not by user code.
func (a *Asyncable) Disconnect(c IConnectable) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.connects, c)
}

// IsConnected reports whether c is currently tracked.
func (a *Asyncable) IsConnected(c IConnectable) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.connects[c]
	return ok
}

// ConnectedLoop reports the loop ID this subscriber registered under
// for c, if any. A channel uses this to find a subscriber's existing
// registration regardless of which of the channel's per-Loop tables it
// actually lives in.
func (a *Asyncable) ConnectedLoop(c IConnectable) (loopID uint64, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	loopID, ok = a.connects[c]
	return loopID, ok
}

// Close disconnects every tracked channel, telling each one to forget
// this subscriber. Idempotent. This is the explicit stand-in for the
// C++ destructor calling disconnectAll().
func (a *Asyncable) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	connects := a.connects
	a.connects = nil
	a.mu.Unlock()

	for c, loopID := range connects {
		c.DisconnectAsyncable(a, loopID)
	}
}
