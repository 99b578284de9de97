package promise

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ikorsukov/signalcore/asyncable"
	"github.com/ikorsukov/signalcore/loop"
)

func TestPromise_AsyncByPromise_ResolvesAfterSubscribe(t *testing.T) {
	l := loop.NewLoop()
	defer l.Close()

	sub := &asyncable.Asyncable{}
	got := -1
	p := New[int](l, func(resolve Resolve[int], reject Reject) Result {
		return resolve(42)
	}, AsyncByPromise)
	p.OnResolve(l, sub, func(v int) { got = v })

	l.ProcessEvents()
	assert.Equal(t, 42, got)
}

func TestPromise_FulfilledBeforeSubscribeIsNotLatched(t *testing.T) {
	l := loop.NewLoop()
	defer l.Close()

	p := New[int](l, func(resolve Resolve[int], reject Reject) Result {
		return resolve(1)
	}, AsyncByBody)

	sub := &asyncable.Asyncable{}
	got := -1
	p.OnResolve(l, sub, func(v int) { got = v })

	assert.Equal(t, -1, got, "a subscriber registered after resolution must never fire")
}

func TestPromise_Reject(t *testing.T) {
	l := loop.NewLoop()
	defer l.Close()

	sub := &asyncable.Asyncable{}
	var code int
	var msg string
	p := New[int](l, func(resolve Resolve[int], reject Reject) Result {
		return reject(7, "boom")
	}, AsyncByPromise)
	p.OnReject(l, sub, func(c int, m string) { code, msg = c, m })

	l.ProcessEvents()
	assert.Equal(t, 7, code)
	assert.Equal(t, "boom", msg)
}

func TestPromise_ResolveOnlyOnRejectIsNoOp(t *testing.T) {
	l := loop.NewLoop()
	defer l.Close()

	p := NewResolveOnly[int](l, func(resolve Resolve[int]) Result {
		return resolve(5)
	}, AsyncByBody)

	sub := &asyncable.Asyncable{}
	called := false
	assert.NotPanics(t, func() {
		p.OnReject(l, sub, func(int, string) { called = true })
	})
	assert.False(t, called)
}
