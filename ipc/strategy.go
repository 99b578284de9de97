package ipc

import (
	"runtime"

	"github.com/ikorsukov/signalcore/internal/infra"
)

// BlockStrategy governs how Loop.ProcessEventsBlocking waits for the
// next message once a port is empty.
type BlockStrategy interface {
	// WaitFor blocks until ready() reports true, or returns false if
	// the strategy gave up (e.g. Done fired).
	WaitFor(ready func() bool, done <-chan struct{}) bool
}

const (
	activeSpin  = 4
	passiveSpin = 2
)

// SpinWaitStrategy busy-spins briefly, then yields the P via
// runtime.Gosched, then yields the OS thread on every further check;
// it never sleeps — the classic escalation ahead of a disruptor-style
// consumer.
type SpinWaitStrategy struct{}

func (SpinWaitStrategy) WaitFor(ready func() bool, done <-chan struct{}) bool {
	counter := 0
	for {
		if ready() {
			return true
		}
		select {
		case <-done:
			return false
		default:
		}

		switch {
		case counter < activeSpin:
			infra.ProcYield(30)
		case counter < activeSpin+passiveSpin:
			runtime.Gosched()
		default:
			infra.OsYield()
		}
		counter++
	}
}
