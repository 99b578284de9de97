package asyncpost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikorsukov/signalcore/asyncable"
	"github.com/ikorsukov/signalcore/loop"
)

func TestCall_RunsOnceOnTargetLoop(t *testing.T) {
	from := loop.NewLoop()
	target := loop.NewLoop()
	defer from.Close()
	defer target.Close()

	called := 0
	Call(from, nil, target, func() { called++ })

	n := target.ProcessEvents()
	require.Equal(t, 1, n)
	assert.Equal(t, 1, called)
}

func TestCall_DroppedWhenCallerClosedBeforeDispatch(t *testing.T) {
	from := loop.NewLoop()
	target := loop.NewLoop()
	defer from.Close()
	defer target.Close()

	caller := &asyncable.Asyncable{}
	called := 0
	Call(from, caller, target, func() { called++ })

	caller.Close()
	target.ProcessEvents()

	assert.Equal(t, 0, called)
}

func TestCall_RunsWhenCallerStillAlive(t *testing.T) {
	from := loop.NewLoop()
	target := loop.NewLoop()
	defer from.Close()
	defer target.Close()

	caller := &asyncable.Asyncable{}
	called := 0
	Call(from, caller, target, func() { called++ })

	target.ProcessEvents()
	assert.Equal(t, 1, called)
}
