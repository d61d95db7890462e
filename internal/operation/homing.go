package operation

import (
	"go.uber.org/zap"

	"github.com/Alibirb/gogrind/internal/axis"
	"github.com/Alibirb/gogrind/internal/bus"
	"github.com/Alibirb/gogrind/internal/logger"
)

// homingState is the four-state machine homing steps through.
type homingState int

const (
	homingXMinus homingState = iota
	homingXPlus
	homingYMinus
	homingYPlus
)

func (s homingState) String() string {
	switch s {
	case homingXMinus:
		return "x_minus"
	case homingXPlus:
		return "x_plus"
	case homingYMinus:
		return "y_minus"
	case homingYPlus:
		return "y_plus"
	default:
		return "unknown"
	}
}

// homingDistance is the large relative move homing drives each axis by;
// it's well beyond any real travel, so it reliably runs into the limit
// switch rather than running out of motion first.
const homingDistance = 256.0

// Homing discovers the X and Y work-envelope extents by driving each axis
// into its limit switches in turn. Z has no Min endstop on this machine
// and is deliberately not homed.
type Homing struct {
	Base
	state homingState
	log   *zap.Logger
}

// NewHoming starts the homing sequence, immediately commanding the first
// move (toward X's Min endstop).
func NewHoming(data *CommonData) *Homing {
	h := &Homing{Base: NewBase(data), log: logger.WithProcedure("homing")}
	h.setState(homingXMinus)
	return h
}

func (h *Homing) Name() string { return "homing" }

func (h *Homing) HandleMessage(msg bus.Message) {
	h.Data().applyReplica(msg)

	switch m := msg.(type) {
	case bus.MovementComplete:
		h.handleMovementComplete(m)
	case bus.Stop:
		h.Stop()
	}
}

func (h *Homing) Update() {}

func (h *Homing) handleMovementComplete(msg bus.MovementComplete) {
	if !msg.EndstopHit {
		// Ran out of travel without reaching the switch; re-arm the same move.
		h.setState(h.state)
		return
	}

	switch h.state {
	case homingXMinus:
		h.Data().Envelope.SetExtent(axis.X, axis.Min, h.Data().Position.Get(axis.X))
		h.setState(homingXPlus)
	case homingXPlus:
		h.Data().Envelope.SetExtent(axis.X, axis.Max, h.Data().Position.Get(axis.X))
		h.setState(homingYMinus)
	case homingYMinus:
		h.Data().Envelope.SetExtent(axis.Y, axis.Min, h.Data().Position.Get(axis.Y))
		h.setState(homingYPlus)
	case homingYPlus:
		h.Data().Envelope.SetExtent(axis.Y, axis.Max, h.Data().Position.Get(axis.Y))
		h.Stop()
	}
}

func (h *Homing) setState(state homingState) {
	h.log.Info("homing state", zap.String("state", state.String()))
	h.state = state
	switch state {
	case homingXMinus:
		h.moveTowardsExtent(axis.X, axis.Min)
	case homingXPlus:
		h.moveTowardsExtent(axis.X, axis.Max)
	case homingYMinus:
		h.moveTowardsExtent(axis.Y, axis.Min)
	case homingYPlus:
		h.moveTowardsExtent(axis.Y, axis.Max)
	}
}

func (h *Homing) moveTowardsExtent(a axis.Axis, end axis.End) {
	distance := homingDistance
	if end == axis.Min {
		distance = -homingDistance
	}
	h.Data().Send.Send(bus.MoveAxisRelative{Axis: a, DistanceIn: distance, SpeedIPS: h.homingSpeed(a)})
}

func (h *Homing) homingSpeed(a axis.Axis) float64 {
	return h.Data().Config.Motors[a].DefaultSpeedIPS
}
