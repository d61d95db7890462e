// Package operation hosts the operation controller: a single active
// procedure (idle/manual jog, homing, surface-grind cut) that owns the
// machine's logical job state and issues motion primitives to the motor
// loop. Exactly one procedure runs at a time; transitions are whole-value
// swaps rather than back-pointers, so there is never a cycle to unwind.
package operation

import (
	"github.com/Alibirb/gogrind/internal/axis"
	"github.com/Alibirb/gogrind/internal/bus"
)

// CommonData is the state every procedure shares: a config snapshot, the
// replicated endstop and position state, the send handle to the motor
// loop, and the (possibly still sentinel-bounded) work envelope. It is
// not shared by pointer across procedures - Clone is called at every
// transition so each procedure's mutations stay local to it.
type CommonData struct {
	Config   axis.MachineConfig
	Endstops axis.EndstopState
	Position axis.Position
	Send     *bus.Sender
	Envelope axis.WorkEnvelope
}

// NewCommonData builds the initial common data the manual-control
// procedure starts with.
func NewCommonData(cfg axis.MachineConfig, send *bus.Sender) *CommonData {
	return &CommonData{
		Config:   cfg,
		Endstops: make(axis.EndstopState),
		Send:     send,
		Envelope: axis.NewWorkEnvelope(),
	}
}

// Clone returns a deep-enough copy for handing to a freshly constructed
// procedure: the endstop replica is copied so the new procedure can't
// mutate the old one's view, everything else is copied by value.
func (d *CommonData) Clone() *CommonData {
	endstops := make(axis.EndstopState, len(d.Endstops))
	for id, pressed := range d.Endstops {
		endstops[id] = pressed
	}
	return &CommonData{
		Config:   d.Config,
		Endstops: endstops,
		Position: d.Position,
		Send:     d.Send,
		Envelope: d.Envelope,
	}
}

// applyReplica updates the position/endstop replicas from a bus message,
// if it carries one. Every procedure applies this identically before its
// own handling runs, mirroring the repeated CurrentPosition/EndstopHit
// cases duplicated across the original's procedure implementations.
func (d *CommonData) applyReplica(msg bus.Message) {
	switch m := msg.(type) {
	case bus.CurrentPosition:
		d.Position = m.Position
	case bus.EndstopHit:
		d.Endstops = d.Endstops.Set(m.Endstop, m.Pressed)
	}
}
