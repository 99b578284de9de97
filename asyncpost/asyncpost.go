// Package asyncpost implements "post to Loop": a global
// (sendLoop, recvLoop) -> edge map tracking a caller set per edge, so
// a call can be silently dropped if its caller was torn down before
// dispatch.
package asyncpost

import (
	"sync"

	"github.com/ikorsukov/signalcore/asyncable"
	"github.com/ikorsukov/signalcore/internal/kv"
	"github.com/ikorsukov/signalcore/loop"
)

type pairKey struct {
	send uint64
	recv uint64
}

// edge tracks which callers are still alive for one (send, recv)
// Loop pair. It implements asyncable.IConnectable so a caller's
// Close() automatically forgets it here too.
type edge struct {
	mu      sync.Mutex
	callers map[*asyncable.Asyncable]struct{}
}

func (e *edge) connect(fromID uint64, caller *asyncable.Asyncable) {
	e.mu.Lock()
	_, already := e.callers[caller]
	if !already {
		e.callers[caller] = struct{}{}
	}
	e.mu.Unlock()

	if !already {
		caller.Connect(e, fromID)
	}
}

func (e *edge) isConnected(caller *asyncable.Asyncable) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.callers[caller]
	return ok
}

func (e *edge) disconnect(caller *asyncable.Asyncable) {
	e.mu.Lock()
	delete(e.callers, caller)
	e.mu.Unlock()
}

// DisconnectAsyncable implements asyncable.IConnectable.
func (e *edge) DisconnectAsyncable(subscriber *asyncable.Asyncable, _ uint64) {
	e.disconnect(subscriber)
}

var (
	edgeMu sync.Mutex
	edges  = kv.NewThreadSafeMap[pairKey, *edge]()
)

func edgeFor(send, recv uint64) *edge {
	key := pairKey{send: send, recv: recv}
	if e, ok := edges.Get(key); ok {
		return e
	}
	edgeMu.Lock()
	defer edgeMu.Unlock()
	if e, ok := edges.Get(key); ok {
		return e
	}
	e := &edge{callers: make(map[*asyncable.Asyncable]struct{}, 4)}
	edges.AddOrUpdate(key, e)
	return e
}

// Call posts fn to run on target's next ProcessEvents, invoked once.
// If caller is non-nil and has been Close()d before target dispatches
// it, fn is silently dropped instead of running — the Go-native
// substitute for validating a possibly-dangling C++ pointer.
func Call(from *loop.Loop, caller *asyncable.Asyncable, target *loop.Loop, fn func()) {
	fromID := uint64(0)
	if from != nil {
		fromID = from.ID()
	}
	e := edgeFor(fromID, target.ID())
	if caller != nil {
		e.connect(fromID, caller)
	}

	loop.Post(from, target, func() {
		if caller != nil && !e.isConnected(caller) {
			return
		}
		fn()
	})
}
