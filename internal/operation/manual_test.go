package operation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alibirb/gogrind/internal/axis"
	"github.com/Alibirb/gogrind/internal/bus"
)

func TestManualControlForwardsJogAndSpindleCommands(t *testing.T) {
	data, recv := testCommonData(t)
	m := NewManualControl(data)

	m.HandleMessage(bus.MoveAxisRelative{Axis: axis.X, DistanceIn: 1, SpeedIPS: 1})
	m.HandleMessage(bus.SpindleControl{On: true})

	msgs := drainAll(recv)
	require.Len(t, msgs, 2)
	assert.IsType(t, bus.MoveAxisRelative{}, msgs[0])
	assert.IsType(t, bus.SpindleControl{}, msgs[1])
	assert.Nil(t, m.Pending())
}

func TestManualControlStopDoesNotTransition(t *testing.T) {
	data, recv := testCommonData(t)
	m := NewManualControl(data)

	m.HandleMessage(bus.Stop{})

	msgs := drainAll(recv)
	require.Len(t, msgs, 1)
	assert.IsType(t, bus.Stop{}, msgs[0])
	assert.Nil(t, m.Pending(), "already idle, no transition needed")
}

func TestManualControlTransitionsOnStartHomingAndStartCut(t *testing.T) {
	data, _ := testCommonData(t)
	m := NewManualControl(data)

	m.HandleMessage(bus.StartHoming{})
	next := m.Pending()
	require.NotNil(t, next)
	assert.Equal(t, "homing", next.Name())

	data2, _ := testCommonData(t)
	m2 := NewManualControl(data2)
	m2.HandleMessage(bus.StartSurfaceGrinderCut{Params: axis.CutParameters{DepthOfCut: 1, FeedPerPass: 1, StrokeSpeed: 1, TotalDepth: 1}})
	next2 := m2.Pending()
	require.NotNil(t, next2)
	assert.Equal(t, "surface_grind_cut", next2.Name())
}

func TestManualControlUpdatesPositionAndEndstopReplicas(t *testing.T) {
	data, _ := testCommonData(t)
	m := NewManualControl(data)

	m.HandleMessage(bus.CurrentPosition{Position: axis.Position{X: 1, Y: 2, Z: 3}})
	assert.Equal(t, axis.Position{X: 1, Y: 2, Z: 3}, m.Data().Position)

	id := axis.EndstopID{Axis: axis.X, End: axis.Min}
	m.HandleMessage(bus.EndstopHit{Endstop: id, Pressed: true})
	assert.True(t, m.Data().Endstops.IsHit(id))
}
