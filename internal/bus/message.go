// Package bus defines the typed message union that connects the four
// control loops (endstop monitor, motor driver, operation controller, and
// any UI collaborator) and the unbounded, multi-producer/single-consumer
// channel they exchange it over.
package bus

import (
	"github.com/Alibirb/gogrind/internal/axis"
)

// Message is the tagged union of every event that crosses the bus. Each
// concrete type below is one variant; consumers type-switch on it.
type Message interface {
	messageKind() string
}

// CurrentPosition broadcasts the motor loop's authoritative position.
type CurrentPosition struct {
	Position axis.Position
}

// EndstopHit reports a transition (press or release) of one limit switch.
type EndstopHit struct {
	Endstop axis.EndstopID
	Pressed bool
}

// GoToPosition commands an axis to move to an absolute position.
type GoToPosition struct {
	Axis        axis.Axis
	PositionIn  float64
	SpeedIPS    float64
}

// MoveAxisRelative commands an axis to move by a relative distance.
type MoveAxisRelative struct {
	Axis       axis.Axis
	DistanceIn float64
	SpeedIPS   float64
}

// MovementComplete reports that an axis's commanded motion ended, either
// because it reached its target or because an endstop stopped it.
type MovementComplete struct {
	Axis        axis.Axis
	EndstopHit  bool
}

// SpindleControl drives the spindle enable line.
type SpindleControl struct {
	On bool
}

// StartHoming requests the homing procedure.
type StartHoming struct{}

// StartSurfaceGrinderCut requests the multi-pass cut procedure.
type StartSurfaceGrinderCut struct {
	Params axis.CutParameters
}

// Stop requests an immediate halt of all motion and a return to manual
// (idle) control.
type Stop struct{}

func (CurrentPosition) messageKind() string { return "CurrentPosition" }
func (EndstopHit) messageKind() string { return "EndstopHit" }
func (GoToPosition) messageKind() string { return "GoToPosition" }
func (MoveAxisRelative) messageKind() string { return "MoveAxisRelative" }
func (MovementComplete) messageKind() string { return "MovementComplete" }
func (SpindleControl) messageKind() string { return "SpindleControl" }
func (StartHoming) messageKind() string { return "StartHoming" }
func (StartSurfaceGrinderCut) messageKind() string { return "StartSurfaceGrinderCut" }
func (Stop) messageKind() string { return "Stop" }

// Kind returns a short, stable name for msg's concrete type, for logging.
func Kind(msg Message) string {
	if msg == nil {
		return "<nil>"
	}
	return msg.messageKind()
}
