package operation

import "github.com/Alibirb/gogrind/internal/bus"

// ManualControl is the idle procedure: it simply forwards jog and
// spindle commands to the motor loop and updates the shared replicas.
// It's both the manager's starting procedure and the target every other
// procedure's generic Stop transitions back to.
type ManualControl struct {
	Base
}

// NewManualControl builds the idle procedure from data (already cloned
// by the caller, if coming from a transition).
func NewManualControl(data *CommonData) *ManualControl {
	return &ManualControl{Base: NewBase(data)}
}

func (c *ManualControl) Name() string { return "manual_control" }

// Stop overrides the generic behavior: we're already idle, so there's
// nothing to transition to. The motor loop still needs the Stop message
// to halt any in-progress jog.
func (c *ManualControl) Stop() {
	c.Data().Send.Send(bus.Stop{})
}

func (c *ManualControl) HandleMessage(msg bus.Message) {
	c.Data().applyReplica(msg)

	switch m := msg.(type) {
	case bus.GoToPosition:
		c.Data().Send.Send(m)
	case bus.MoveAxisRelative:
		c.Data().Send.Send(m)
	case bus.SpindleControl:
		c.Data().Send.Send(m)
	case bus.Stop:
		c.Stop()
	case bus.StartHoming:
		c.transitionTo(NewHoming(c.Data().Clone()))
	case bus.StartSurfaceGrinderCut:
		c.transitionTo(NewCut(c.Data().Clone(), m.Params))
	}
}

func (c *ManualControl) Update() {}
