package ipc

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterIsIdempotent(t *testing.T) {
	r := NewRegistry()
	p1 := r.RegisterPort(1, 16)
	p2 := r.RegisterPort(1, 16)
	assert.Same(t, p1, p2)
	assert.Nil(t, r.Port(2))
}

func TestRegistry_PushDrain(t *testing.T) {
	r := NewRegistry()
	p := r.RegisterPort(7, 4)

	called := 0
	p.Push(CallMsg{Fn: CallableFunc(func() { called++ }), FromLoop: 1})
	p.Push(CallMsg{Fn: CallableFunc(func() { called++ }), FromLoop: 1})

	dst := make([]CallMsg, 4)
	n := p.Drain(dst)
	require.Equal(t, 2, n)
	for i := 0; i < n; i++ {
		dst[i].Fn.Call()
	}
	assert.Equal(t, 2, called)
}

func TestRegistry_UnregisterPort(t *testing.T) {
	r := NewRegistry()
	r.RegisterPort(3, 8)
	require.NotNil(t, r.Port(3))
	r.UnregisterPort(3)
	assert.Nil(t, r.Port(3))
}

func TestPort_PushOverflowPanics(t *testing.T) {
	r := NewRegistry()
	p := r.RegisterPort(9, 1)
	p.Push(CallMsg{Fn: CallableFunc(func() {})})
	assert.Panics(t, func() {
		p.Push(CallMsg{Fn: CallableFunc(func() {})})
	})
}

// TestPort_ConcurrentSendersUseSeparateEdges sends from many distinct
// FromLoop values into the same Port concurrently. Each sender gets its
// own edge, so unlike a single shared ring this must never lose or
// corrupt a message under -race.
func TestPort_ConcurrentSendersUseSeparateEdges(t *testing.T) {
	r := NewRegistry()
	p := r.RegisterPort(100, 256)

	const senders = 16
	const perSender = 200

	var received atomic.Int64
	var wg sync.WaitGroup
	wg.Add(senders)
	for s := 0; s < senders; s++ {
		fromLoop := uint64(s + 1)
		go func() {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				p.Push(CallMsg{Fn: CallableFunc(func() { received.Add(1) }), FromLoop: fromLoop})
			}
		}()
	}
	wg.Wait()

	// Drain from a single goroutine, as the owning Loop would, once
	// every sender has finished pushing.
	dst := make([]CallMsg, senders*perSender)
	n := p.Drain(dst)
	for i := 0; i < n; i++ {
		dst[i].Fn.Call()
	}

	assert.Equal(t, senders*perSender, n)
	assert.EqualValues(t, senders*perSender, received.Load())
	assert.Equal(t, 0, p.Depth())
}
