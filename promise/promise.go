// Package promise implements a one-shot Promise façade: a pair of
// channels (resolve, reject) plus a has-reject flag, and a body that
// is statically steered toward calling exactly one terminator.
//
// Go has no variadic generics and no private-constructor-plus-friend
// trick, so two things differ from a classic C++ rendition: the
// resolved value is a single type parameter T (an opaque bag for
// multi-value promises, the same accommodation the channel package
// makes), and the Result attestation type is only a *soft*
// attestation — a caller can still produce a zero Result via
// `var r promise.Result` without calling Resolve/Reject.
package promise

import (
	"github.com/ikorsukov/signalcore/asyncable"
	"github.com/ikorsukov/signalcore/asyncpost"
	"github.com/ikorsukov/signalcore/channel"
	"github.com/ikorsukov/signalcore/loop"
)

// PromiseType selects how the body is executed.
type PromiseType int

const (
	// AsyncByPromise posts the body to run on l's next ProcessEvents,
	// i.e. after the constructing call returns.
	AsyncByPromise PromiseType = iota
	// AsyncByBody runs the body inline, synchronously.
	AsyncByBody
)

// Result is a dummy attestation value: a Body is only well-formed if
// it returns the Result produced by calling Resolve or Reject.
type Result struct{ _ struct{} }

// Resolve is the terminator a Body calls to fulfil the promise.
type Resolve[T any] func(val T) Result

// Reject is the terminator a Body calls to fail the promise.
type Reject func(code int, msg string) Result

// Body is a promise constructor body accepting both terminators.
type Body[T any] func(resolve Resolve[T], reject Reject) Result

// BodyResolveOnly is a promise constructor body for promises that
// never reject (has_reject == false in the original).
type BodyResolveOnly[T any] func(resolve Resolve[T]) Result

// Promise is the Go-native, single-payload-type stand-in for the
// C++ Promise<T...>.
type Promise[T any] struct {
	resolveCh *channel.Channel1[T]
	rejectCh  *channel.Channel2[int, string]
	hasReject bool
}

// New constructs a promise with both terminators available.
func New[T any](l *loop.Loop, body Body[T], kind PromiseType) *Promise[T] {
	p := &Promise[T]{
		resolveCh: channel.NewChannel1[T](),
		rejectCh:  channel.NewChannel2[int, string](),
		hasReject: true,
	}
	run := func() {
		body(p.resolve(l), p.reject(l))
	}
	dispatch(l, run, kind)
	return p
}

// NewResolveOnly constructs a promise with no reject path; OnReject
// becomes a benign no-op.
func NewResolveOnly[T any](l *loop.Loop, body BodyResolveOnly[T], kind PromiseType) *Promise[T] {
	p := &Promise[T]{
		resolveCh: channel.NewChannel1[T](),
		hasReject: false,
	}
	run := func() {
		body(p.resolve(l))
	}
	dispatch(l, run, kind)
	return p
}

func dispatch(l *loop.Loop, run func(), kind PromiseType) {
	switch kind {
	case AsyncByPromise:
		asyncpost.Call(l, nil, l, run)
	case AsyncByBody:
		run()
	}
}

func (p *Promise[T]) resolve(l *loop.Loop) Resolve[T] {
	return func(val T) Result {
		p.resolveCh.Send(l, channel.Auto, val)
		return Result{}
	}
}

func (p *Promise[T]) reject(l *loop.Loop) Reject {
	return func(code int, msg string) Result {
		if p.hasReject && p.rejectCh != nil {
			p.rejectCh.Send(l, channel.Auto, code, msg)
		}
		return Result{}
	}
}

// OnResolve registers a resolve handler. "Fulfilled before subscribe"
// is not latched: a handler registered after resolution will not fire
// — an intentional asymmetry with JS-style promises.
func (p *Promise[T]) OnResolve(l *loop.Loop, subscriber *asyncable.Asyncable, f func(T)) *Promise[T] {
	p.resolveCh.OnReceive(l, subscriber, f, channel.SetOnce)
	return p
}

// OnReject registers a reject handler. A no-op if this promise was
// constructed via NewResolveOnly.
func (p *Promise[T]) OnReject(l *loop.Loop, subscriber *asyncable.Asyncable, f func(int, string)) *Promise[T] {
	if !p.hasReject || p.rejectCh == nil {
		return p
	}
	p.rejectCh.OnReceive(l, subscriber, f, channel.SetOnce)
	return p
}
