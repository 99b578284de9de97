package channel

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikorsukov/signalcore/asyncable"
	"github.com/ikorsukov/signalcore/loop"
)

// 1. Single Loop, single subscriber.
func TestScenario_SingleLoopSingleSubscriber(t *testing.T) {
	l := loop.NewLoop()
	defer l.Close()

	c := NewChannel1[int]()
	var sub asyncable.Asyncable
	r := 0
	c.OnReceive(l, &sub, func(v int) { r = v }, SetOnce)

	c.Send(l, Auto, 42)
	assert.Equal(t, 42, r)
}

// 2. Reset inside callback.
func TestScenario_ResetInsideCallback(t *testing.T) {
	l := loop.NewLoop()
	defer l.Close()

	c := NewChannel1[int]()
	var sub asyncable.Asyncable
	count := 0
	c.OnReceive(l, &sub, func(int) {
		count++
		c.ResetOnReceive(l, &sub)
	}, SetOnce)

	c.Send(l, Auto, 1)
	c.Send(l, Auto, 2)
	assert.Equal(t, 1, count)
}

// 3. Explicit subscriber teardown (Go substitute for scope destruction).
func TestScenario_CloseDisconnectsSubscriber(t *testing.T) {
	l := loop.NewLoop()
	defer l.Close()

	c := NewChannel1[int]()
	sub := &asyncable.Asyncable{}
	r := 0
	c.OnReceive(l, sub, func(v int) { r = v }, SetOnce)

	c.Send(l, Auto, 1)
	assert.Equal(t, 1, r)
	assert.True(t, c.IsConnected())

	sub.Close()
	assert.False(t, c.IsConnected())

	c.Send(l, Auto, 2)
	assert.Equal(t, 1, r, "send after subscriber close must be a no-op")
}

// 4. Cross-Loop receive: sender Loop B posts, receiver Loop A pumps.
func TestScenario_CrossLoopReceive(t *testing.T) {
	a := loop.NewLoop()
	b := loop.NewLoop()
	defer a.Close()
	defer b.Close()

	c := NewChannel1[int]()
	var sub asyncable.Asyncable
	var got int32 = -1
	c.OnReceive(a, &sub, func(v int) { atomic.StoreInt32(&got, int32(v)) }, SetOnce)

	go c.Send(b, Auto, 42)

	for i := 0; i < 100 && atomic.LoadInt32(&got) == -1; i++ {
		a.ProcessEvents()
		time.Sleep(time.Millisecond)
	}
	assert.EqualValues(t, 42, atomic.LoadInt32(&got))
}

// 5. Cross-Loop send to a subscriber pumping its own Loop.
func TestScenario_CrossLoopSendToPumpingSubscriber(t *testing.T) {
	a := loop.NewLoop()
	defer a.Close()

	c := NewChannel2[int, int]()
	var sub asyncable.Asyncable
	var gotX, gotY int32 = -1, -1
	c.OnReceive(a, &sub, func(x, y int) {
		atomic.StoreInt32(&gotX, int32(x))
		atomic.StoreInt32(&gotY, int32(y))
	}, SetOnce)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				a.ProcessEvents()
				time.Sleep(time.Millisecond)
			}
		}
	}()

	c.Send(nil, Auto, 42, 73)

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&gotX) == 42 && atomic.LoadInt32(&gotY) == 73
	}, time.Second, time.Millisecond)
	close(done)
}

// 6. Mid-dispatch subscription mutation: a subscriber added inside a
// callback is observed starting with the next send, not the current one.
func TestScenario_MidDispatchSubscriptionMutation(t *testing.T) {
	l := loop.NewLoop()
	defer l.Close()

	c := NewChannel1[int]()
	var sub1, sub2 asyncable.Asyncable
	secondCount := 0
	added := false
	c.OnReceive(l, &sub1, func(int) {
		if !added {
			added = true
			c.OnReceive(l, &sub2, func(int) { secondCount++ }, SetOnce)
		}
	}, SetOnce)

	c.Send(l, Auto, 1)
	assert.Equal(t, 0, secondCount, "subscriber added mid-pass must not see the pass that added it")

	c.Send(l, Auto, 2)
	assert.Equal(t, 1, secondCount)
}

func TestOnReceiveDisconnectRoundTripIsIdempotent(t *testing.T) {
	l := loop.NewLoop()
	defer l.Close()

	c := NewChannel1[int]()
	sub := &asyncable.Asyncable{}
	c.OnReceive(l, sub, func(int) {}, SetOnce)
	assert.True(t, c.IsConnected())

	c.ResetOnReceive(l, sub)
	assert.False(t, c.IsConnected())

	// disconnecting twice must not panic or go negative.
	c.ResetOnReceive(l, sub)
	assert.False(t, c.IsConnected())
	assert.GreaterOrEqual(t, c.core.enabledCount.Load(), int64(0))
}

func TestSetOnceViolationPanics(t *testing.T) {
	l := loop.NewLoop()
	defer l.Close()

	c := NewChannel1[int]()
	sub := &asyncable.Asyncable{}
	c.OnReceive(l, sub, func(int) {}, SetOnce)

	assert.Panics(t, func() {
		c.OnReceive(l, sub, func(int) {}, SetOnce)
	})
}

func TestAsyncSetReplacesExistingCallback(t *testing.T) {
	l := loop.NewLoop()
	defer l.Close()

	c := NewChannel1[int]()
	sub := &asyncable.Asyncable{}
	first, second := 0, 0
	c.OnReceive(l, sub, func(int) { first++ }, SetOnce)
	c.OnReceive(l, sub, func(int) { second++ }, AsyncSet)

	c.Send(l, Auto, 1)
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}

// A subscriber registering on a second Loop must be seen as already
// registered channel-wide, not just within whichever Loop's table
// happens to hold the first record.
func TestOnReceiveDuplicateAcrossLoopsPanics(t *testing.T) {
	a := loop.NewLoop()
	b := loop.NewLoop()
	defer a.Close()
	defer b.Close()

	c := NewChannel1[int]()
	sub := &asyncable.Asyncable{}
	c.OnReceive(a, sub, func(int) {}, SetOnce)

	assert.Panics(t, func() {
		c.OnReceive(b, sub, func(int) {}, SetOnce)
	})
}

func TestOnReceiveDuplicateAcrossLoopsAsyncSetFiresOnce(t *testing.T) {
	a := loop.NewLoop()
	b := loop.NewLoop()
	defer a.Close()
	defer b.Close()

	c := NewChannel1[int]()
	sub := &asyncable.Asyncable{}
	var onA, onB int32
	c.OnReceive(a, sub, func(int) { atomic.AddInt32(&onA, 1) }, SetOnce)
	c.OnReceive(b, sub, func(int) { atomic.AddInt32(&onB, 1) }, AsyncSet)

	c.Send(b, Auto, 1)
	a.ProcessEvents()
	b.ProcessEvents()

	assert.EqualValues(t, 0, atomic.LoadInt32(&onA), "replaced registration on the first Loop must not fire")
	assert.EqualValues(t, 1, atomic.LoadInt32(&onB))
}

func TestNotificationCloseFiresOnce(t *testing.T) {
	l := loop.NewLoop()
	defer l.Close()

	n := NewNotification()
	sub := &asyncable.Asyncable{}
	fired := 0
	n.OnClose(l, sub, func() { fired++ }, SetOnce)

	n.Close(l)
	n.Close(l)
	assert.Equal(t, 1, fired)
}
