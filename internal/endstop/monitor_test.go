package endstop_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Alibirb/gogrind/internal/axis"
	"github.com/Alibirb/gogrind/internal/bus"
	"github.com/Alibirb/gogrind/internal/endstop"
	"github.com/Alibirb/gogrind/internal/hal"
)

func testEndstops() map[axis.EndstopID]int {
	return map[axis.EndstopID]int{
		{Axis: axis.X, End: axis.Min}: 20,
		{Axis: axis.X, End: axis.Max}: 21,
		{Axis: axis.Y, End: axis.Min}: 13,
		{Axis: axis.Y, End: axis.Max}: 27,
		{Axis: axis.Z, End: axis.Max}: 26,
	}
}

func TestMonitorBroadcastsInitialSnapshotOnStartup(t *testing.T) {
	gpio := hal.NewMockGPIO()
	gpio.Inject(21, true) // X Max endstop already pressed at boot

	send, recv := bus.NewChannel()
	m := endstop.New(gpio, testEndstops(), []*bus.Sender{send}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = m.Run(ctx)
		close(done)
	}()

	seen := make(map[axis.EndstopID]bool)
	deadline := time.After(time.Second)
	for len(seen) < len(testEndstops()) {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for initial snapshot, got %d/%d", len(seen), len(testEndstops()))
		default:
		}
		msg, state := recv.TryRecv()
		if state == bus.Ok {
			hit := msg.(bus.EndstopHit)
			seen[hit.Endstop] = hit.Pressed
			continue
		}
		time.Sleep(time.Millisecond)
	}

	assert.True(t, seen[axis.EndstopID{Axis: axis.X, End: axis.Max}], "already-pressed endstop must be reported pressed at startup")
	assert.False(t, seen[axis.EndstopID{Axis: axis.X, End: axis.Min}])

	cancel()
	<-done
}

func TestMonitorDispatchesEdgeTransitions(t *testing.T) {
	gpio := hal.NewMockGPIO()
	send, recv := bus.NewChannel()
	m := endstop.New(gpio, testEndstops(), []*bus.Sender{send}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = m.Run(ctx)
		close(done)
	}()

	// Drain the initial snapshot.
	deadline := time.After(time.Second)
	drained := 0
	for drained < len(testEndstops()) {
		select {
		case <-deadline:
			t.Fatal("timed out draining initial snapshot")
		default:
		}
		if _, state := recv.TryRecv(); state == bus.Ok {
			drained++
		} else {
			time.Sleep(time.Millisecond)
		}
	}

	gpio.Inject(20, true)

	var hit bus.EndstopHit
	deadline = time.After(time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for edge transition")
		default:
		}
		msg, state := recv.TryRecv()
		if state == bus.Ok {
			hit = msg.(bus.EndstopHit)
			break
		}
		time.Sleep(time.Millisecond)
	}

	require.Equal(t, axis.EndstopID{Axis: axis.X, End: axis.Min}, hit.Endstop)
	assert.True(t, hit.Pressed)

	cancel()
	<-done
}
