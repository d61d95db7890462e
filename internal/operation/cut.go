package operation

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/Alibirb/gogrind/internal/axis"
	"github.com/Alibirb/gogrind/internal/bus"
	"github.com/Alibirb/gogrind/internal/logger"
)

// cutState is the nine-state multi-pass climb-grind raster.
type cutState int

const (
	cutIdle cutState = iota
	cutToStartingPositionX
	cutToStartingPositionY
	cutSpindleSpinUp
	cutXCut
	cutXReturn
	cutYReturn
	cutYOut
	cutZDown
)

func (s cutState) String() string {
	switch s {
	case cutIdle:
		return "idle"
	case cutToStartingPositionX:
		return "to_starting_position_x"
	case cutToStartingPositionY:
		return "to_starting_position_y"
	case cutSpindleSpinUp:
		return "spindle_spin_up"
	case cutXCut:
		return "x_cut"
	case cutXReturn:
		return "x_return"
	case cutYReturn:
		return "y_return"
	case cutYOut:
		return "y_out"
	case cutZDown:
		return "z_down"
	default:
		return "unknown"
	}
}

// spindleSpinUpDuration is how long the spindle runs before a pass starts
// cutting.
const spindleSpinUpDuration = 3 * time.Second

// Cut drives a multi-pass surface grind: it strokes X across the
// envelope, steps Y by feed_per_pass each return, and steps Z down by
// depth_of_cut once every Y pass completes a full sweep, until the total
// requested depth has been removed.
type Cut struct {
	Base
	params            axis.CutParameters
	state             cutState
	spindleStartedAt  time.Time
	startingHeight    float64
	log               *zap.Logger
}

// NewCut starts the cut cycle, recording the current Z height as the
// reference for total_depth and immediately commanding the first move.
func NewCut(data *CommonData, params axis.CutParameters) *Cut {
	c := &Cut{Base: NewBase(data), log: logger.WithProcedure("surface_grind_cut")}
	c.startCut(params)
	return c
}

func (c *Cut) Name() string { return "surface_grind_cut" }

func (c *Cut) startCut(params axis.CutParameters) {
	c.params = params
	c.startingHeight = c.Data().Position.Get(axis.Z)
	c.setState(cutToStartingPositionX)
}

func (c *Cut) inProgress() bool { return c.state != cutIdle }

func (c *Cut) HandleMessage(msg bus.Message) {
	c.Data().applyReplica(msg)

	switch msg.(type) {
	case bus.MovementComplete:
		if c.inProgress() {
			c.advanceState()
		}
	case bus.Stop:
		c.setState(cutIdle)
	}
}

func (c *Cut) Update() {
	if c.state == cutSpindleSpinUp && time.Since(c.spindleStartedAt) >= spindleSpinUpDuration {
		c.advanceState()
	}
}

func (c *Cut) advanceState() {
	c.setState(c.nextState())
}

func (c *Cut) nextState() cutState {
	switch c.state {
	case cutIdle:
		return cutIdle
	case cutToStartingPositionX:
		return cutToStartingPositionY
	case cutToStartingPositionY:
		return cutSpindleSpinUp
	case cutSpindleSpinUp:
		return cutXCut
	case cutXCut:
		return cutXReturn
	case cutXReturn:
		if c.reachedExtent(axis.Y, axis.Min) {
			return cutYReturn
		}
		return cutYOut
	case cutYOut:
		return cutXCut
	case cutYReturn:
		if c.closeEnough(axis.Z, c.startingHeight-c.params.TotalDepth) {
			return cutIdle
		}
		return cutZDown
	case cutZDown:
		return cutXCut
	default:
		return cutIdle
	}
}

func (c *Cut) setState(state cutState) {
	c.log.Info("cut state", zap.String("state", state.String()))
	c.state = state
	switch state {
	case cutIdle:
		c.Stop()
	case cutToStartingPositionX:
		c.moveAxisToExtent(axis.X, axis.Min)
	case cutToStartingPositionY:
		c.moveAxisToExtent(axis.Y, axis.Max)
	case cutSpindleSpinUp:
		c.setSpindleOn(true)
	case cutXCut:
		c.moveAxisToExtent(axis.X, axis.Max)
	case cutXReturn:
		c.moveAxisToExtent(axis.X, axis.Min)
	case cutYOut:
		c.moveRelative(axis.Y, -math.Min(c.params.FeedPerPass, c.distanceToExtent(axis.Y, axis.Min)))
	case cutYReturn:
		c.moveAxisToExtent(axis.Y, axis.Max)
	case cutZDown:
		c.moveRelative(axis.Z, -math.Min(c.params.DepthOfCut, c.depthRemaining()))
	}
}

func (c *Cut) setSpindleOn(on bool) {
	c.Data().Send.Send(bus.SpindleControl{On: on})
	c.spindleStartedAt = time.Now()
}

func (c *Cut) moveAxisToExtent(a axis.Axis, end axis.End) {
	c.moveToPosition(a, c.Data().Envelope.GetExtent(a, end))
}

func (c *Cut) moveToPosition(a axis.Axis, position float64) {
	c.Data().Send.Send(bus.GoToPosition{Axis: a, PositionIn: position, SpeedIPS: c.params.StrokeSpeed})
}

func (c *Cut) moveRelative(a axis.Axis, distance float64) {
	c.Data().Send.Send(bus.MoveAxisRelative{Axis: a, DistanceIn: distance, SpeedIPS: c.params.StrokeSpeed})
}

func (c *Cut) depthRemaining() float64 {
	return math.Abs((c.startingHeight - c.params.TotalDepth) - c.Data().Position.Get(axis.Z))
}

func (c *Cut) reachedExtent(a axis.Axis, end axis.End) bool {
	if c.Data().Endstops.IsHit(axis.EndstopID{Axis: a, End: end}) {
		return true
	}
	pos := c.Data().Position.Get(a)
	extent := c.Data().Envelope.GetExtent(a, end)
	if end == axis.Min {
		return pos <= extent
	}
	return pos >= extent
}

func (c *Cut) closeEnough(a axis.Axis, position float64) bool {
	cfg := c.Data().Config.Motors[a]
	return cfg.InchesToSteps(position) == cfg.InchesToSteps(c.Data().Position.Get(a))
}

func (c *Cut) distanceToExtent(a axis.Axis, end axis.End) float64 {
	return math.Abs(c.Data().Envelope.GetExtent(a, end) - c.Data().Position.Get(a))
}
