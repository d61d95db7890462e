// Package endstop implements the endstop-monitor peer: it watches every
// configured limit switch for both-edge transitions and fans out an
// EndstopHit message for each one to every interested consumer (the motor
// driver loop and the operation controller).
package endstop

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Alibirb/gogrind/internal/axis"
	"github.com/Alibirb/gogrind/internal/bus"
	"github.com/Alibirb/gogrind/internal/hal"
)

// Monitor watches the configured endstop lines and broadcasts their state.
type Monitor struct {
	gpio     hal.GPIOProvider
	endstops map[axis.EndstopID]int
	senders  []*bus.Sender
	log      *zap.Logger
}

// New builds a Monitor. senders must be cloned ahead of time (via
// Sender.Clone) so this monitor's eventual Close doesn't affect the other
// consumers' view of the bus.
func New(gpio hal.GPIOProvider, endstops map[axis.EndstopID]int, senders []*bus.Sender, log *zap.Logger) *Monitor {
	return &Monitor{gpio: gpio, endstops: endstops, senders: senders, log: log}
}

func (m *Monitor) broadcast(id axis.EndstopID, pressed bool) {
	msg := bus.EndstopHit{Endstop: id, Pressed: pressed}
	for _, s := range m.senders {
		s.Send(msg)
	}
}

// Run requests an edge watch on every configured endstop line, first
// synthesizing and broadcasting an EndstopHit reflecting each line's
// boot-time level. Without this initial snapshot, a switch that is
// already pressed when the process starts (e.g. the machine powered on
// sitting against a limit) would never be reported until it next
// transitions, leaving consumers assuming it was clear. Run blocks until
// ctx is cancelled, since go-gpiocdev delivers events on its own
// goroutine per requested line.
func (m *Monitor) Run(ctx context.Context) error {
	lineToID := make(map[int]axis.EndstopID, len(m.endstops))
	for id, pin := range m.endstops {
		lineToID[pin] = id
	}

	for id, pin := range m.endstops {
		if err := m.gpio.SetMode(pin, hal.Input); err != nil {
			return fmt.Errorf("endstop %s: setting pin %d as input: %w", id, pin, err)
		}
		initial, err := m.gpio.DigitalRead(pin)
		if err != nil {
			return fmt.Errorf("endstop %s: reading initial level of pin %d: %w", id, pin, err)
		}
		m.log.Info("initial endstop snapshot", zap.String("endstop", id.String()), zap.Bool("pressed", initial))
		m.broadcast(id, initial)
	}

	for id, pin := range m.endstops {
		id := id
		if err := m.gpio.WatchEdge(pin, hal.EdgeBoth, func(pin int, value bool) {
			endstopID, ok := lineToID[pin]
			if !ok {
				return
			}
			m.log.Debug("endstop edge", zap.String("endstop", endstopID.String()), zap.Bool("pressed", value))
			m.broadcast(endstopID, value)
		}); err != nil {
			return fmt.Errorf("endstop %s: watching pin %d: %w", id, pin, err)
		}
	}

	<-ctx.Done()
	for _, s := range m.senders {
		s.Close()
	}
	return m.gpio.Close()
}
