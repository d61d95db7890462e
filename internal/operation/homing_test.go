package operation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alibirb/gogrind/internal/axis"
	"github.com/Alibirb/gogrind/internal/bus"
)

func testCommonData(t *testing.T) (*CommonData, *bus.Receiver) {
	t.Helper()
	send, recv := bus.NewChannel()
	return NewCommonData(axis.Default(), send), recv
}

func drainAll(recv *bus.Receiver) []bus.Message {
	var out []bus.Message
	for {
		msg, state := recv.TryRecv()
		if state != bus.Ok {
			return out
		}
		out = append(out, msg)
	}
}

func TestHomingCompletesEnvelope(t *testing.T) {
	data, recv := testCommonData(t)
	data.Envelope = axis.WorkEnvelope{MinX: -256, MaxX: 256, MinY: -256, MaxY: 256}
	h := NewHoming(data)
	drainAll(recv) // first move command

	// XMinus completes at -12.0
	h.Data().Position = axis.Position{X: -12.0}
	h.HandleMessage(bus.MovementComplete{Axis: axis.X, EndstopHit: true})
	drainAll(recv)

	// XPlus completes at +34.0
	h.Data().Position = axis.Position{X: 34.0}
	h.HandleMessage(bus.MovementComplete{Axis: axis.X, EndstopHit: true})
	drainAll(recv)

	// YMinus completes at -7.5
	h.Data().Position = axis.Position{X: 34.0, Y: -7.5}
	h.HandleMessage(bus.MovementComplete{Axis: axis.Y, EndstopHit: true})
	drainAll(recv)

	// YPlus completes at +15.2
	h.Data().Position = axis.Position{X: 34.0, Y: 15.2}
	h.HandleMessage(bus.MovementComplete{Axis: axis.Y, EndstopHit: true})

	env := h.Data().Envelope
	assert.Equal(t, -12.0, env.MinX)
	assert.Equal(t, 34.0, env.MaxX)
	assert.Equal(t, -7.5, env.MinY)
	assert.Equal(t, 15.2, env.MaxY)

	next := h.Pending()
	require.NotNil(t, next)
	assert.Equal(t, "manual_control", next.Name())
}

func TestHomingReArmsOnMissedEndstop(t *testing.T) {
	data, recv := testCommonData(t)
	h := NewHoming(data)
	drainAll(recv)

	h.HandleMessage(bus.MovementComplete{Axis: axis.X, EndstopHit: false})
	msgs := drainAll(recv)
	require.Len(t, msgs, 1)
	move, ok := msgs[0].(bus.MoveAxisRelative)
	require.True(t, ok)
	assert.Equal(t, axis.X, move.Axis)
	assert.Equal(t, -homingDistance, move.DistanceIn, "still homing X Min, same direction")
	assert.Nil(t, h.Pending())
}

func TestHomingZIsNeverHomed(t *testing.T) {
	data, recv := testCommonData(t)
	h := NewHoming(data)
	drainAll(recv)

	// Walk the sequence and confirm no move ever targets Z.
	h.Data().Position = axis.Position{X: -12}
	h.HandleMessage(bus.MovementComplete{Axis: axis.X, EndstopHit: true})
	moves := drainAll(recv)
	for _, m := range moves {
		if mv, ok := m.(bus.MoveAxisRelative); ok {
			assert.NotEqual(t, axis.Z, mv.Axis)
		}
	}
}
