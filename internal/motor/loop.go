// Package motor implements the motor driver loop: it owns the three
// per-axis stepper controllers and the spindle line, translating motion
// commands into ramp-profiled step pulses while watching for endstops and
// reporting position.
package motor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Alibirb/gogrind/internal/axis"
	"github.com/Alibirb/gogrind/internal/bus"
	"github.com/Alibirb/gogrind/internal/hal"
)

// tickInterval is both the simulated ramp timestep and the sleep at the
// bottom of the loop, keeping the two in lockstep.
const tickInterval = 2 * time.Millisecond

// Loop is the motor driver control loop.
type Loop struct {
	gpio        hal.GPIOProvider
	recv        *bus.Receiver
	senders     []*bus.Sender
	spindlePin  int
	axes        map[axis.Axis]*AxisController
	endstops    axis.EndstopState
	lastPos     axis.Position
	log         *zap.Logger
}

// New builds the motor loop from a machine config, requesting GPIO lines
// for every axis and the spindle. senders fans position and
// movement-complete broadcasts out to every interested consumer - in
// practice the operation controller and, optionally, the UI's event
// bridge - mirroring the endstop monitor's own fan-out.
func New(gpio hal.GPIOProvider, cfg axis.MachineConfig, recv *bus.Receiver, senders []*bus.Sender, log *zap.Logger) (*Loop, error) {
	l := &Loop{
		gpio:       gpio,
		recv:       recv,
		senders:    senders,
		spindlePin: cfg.SpindleEnablePin,
		axes:       make(map[axis.Axis]*AxisController, len(axis.Axes)),
		endstops:   make(axis.EndstopState),
		log:        log,
	}
	for _, a := range axis.Axes {
		ac, err := NewAxisController(gpio, cfg.Motors[a])
		if err != nil {
			return nil, err
		}
		l.axes[a] = ac
	}
	if err := gpio.SetMode(cfg.SpindleEnablePin, hal.Output); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Loop) handle(msg bus.Message) {
	switch m := msg.(type) {
	case bus.EndstopHit:
		l.endstops = l.endstops.Set(m.Endstop, m.Pressed)
	case bus.GoToPosition:
		l.axes[m.Axis].StartMoveTo(m.PositionIn, m.SpeedIPS)
	case bus.MoveAxisRelative:
		l.axes[m.Axis].StartMoveRelative(m.DistanceIn, m.SpeedIPS)
	case bus.SpindleControl:
		l.setSpindle(m.On)
	case bus.Stop:
		l.stopAll()
	default:
		// CurrentPosition, MovementComplete, StartSurfaceGrinderCut,
		// StartHoming: not consumed by the motor loop.
	}
}

func (l *Loop) setSpindle(on bool) {
	if err := l.gpio.DigitalWrite(l.spindlePin, on); err != nil {
		l.log.Error("failed to drive spindle line", zap.Bool("on", on), zap.Error(err))
	}
}

func (l *Loop) stopAll() {
	for _, a := range axis.Axes {
		l.axes[a].StopMove()
	}
	l.setSpindle(false)
}

func (l *Loop) checkEndstops() {
	for _, a := range axis.Axes {
		ac := l.axes[a]
		if !ac.IsMoving() {
			continue
		}
		id := axis.EndstopID{Axis: a, End: ac.Direction()}
		if !l.endstops.IsHit(id) {
			continue
		}
		l.log.Info("endstop hit, stopping axis", zap.String("axis", a.String()), zap.String("end", ac.Direction().String()))
		ac.StopMove()
		l.broadcast(bus.MovementComplete{Axis: a, EndstopHit: true})
	}
}

func (l *Loop) broadcast(msg bus.Message) {
	for _, s := range l.senders {
		s.Send(msg)
	}
}

func (l *Loop) updateControllers(dtMs float64) {
	for _, a := range axis.Axes {
		ac := l.axes[a]
		wasMoving := ac.IsMoving()
		stillMoving, err := ac.Update(dtMs)
		if err != nil {
			l.log.Error("error updating axis", zap.String("axis", a.String()), zap.Error(err))
			ac.StopMove()
			continue
		}
		if wasMoving && !stillMoving {
			l.broadcast(bus.MovementComplete{Axis: a, EndstopHit: false})
		}
	}
}

func (l *Loop) sendPositionUpdate() {
	pos := axis.Position{
		X: l.axes[axis.X].Position(),
		Y: l.axes[axis.Y].Position(),
		Z: l.axes[axis.Z].Position(),
	}
	if pos != l.lastPos {
		l.broadcast(bus.CurrentPosition{Position: pos})
		l.lastPos = pos
	}
}

// Run executes the drain -> check endstops -> update -> report -> yield
// loop until the bus disconnects or ctx is cancelled. On either exit it
// performs an orderly shutdown: stop every axis and de-energize the
// spindle.
func (l *Loop) Run(ctx context.Context) {
	dtMs := float64(tickInterval / time.Millisecond)
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.shutdown("context cancelled")
			return
		default:
		}

		if l.recv.Drain(l.handle) == bus.Disconnected {
			l.shutdown("bus disconnected")
			return
		}

		l.checkEndstops()
		l.updateControllers(dtMs)
		l.sendPositionUpdate()

		select {
		case <-ctx.Done():
			l.shutdown("context cancelled")
			return
		case <-ticker.C:
		}
	}
}

func (l *Loop) shutdown(reason string) {
	l.log.Info("motor loop shutting down", zap.String("reason", reason))
	l.stopAll()
	for _, s := range l.senders {
		s.Close()
	}
}
