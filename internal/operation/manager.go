package operation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Alibirb/gogrind/internal/axis"
	"github.com/Alibirb/gogrind/internal/bus"
)

// tickInterval paces Update calls and the idle-loop yield.
const tickInterval = 5 * time.Millisecond

// Manager hosts exactly one active Procedure and swaps it whenever the
// procedure queues a transition.
type Manager struct {
	current Procedure
	recv    *bus.Receiver
	log     *zap.Logger
}

// New builds the manager, starting in manual control.
func New(cfg axis.MachineConfig, send *bus.Sender, recv *bus.Receiver, log *zap.Logger) *Manager {
	return &Manager{
		current: NewManualControl(NewCommonData(cfg, send)),
		recv:    recv,
		log:     log,
	}
}

func (m *Manager) handle(msg bus.Message) {
	m.current.HandleMessage(msg)
	m.checkTransition()
}

func (m *Manager) checkTransition() {
	next := m.current.Pending()
	if next == nil {
		return
	}
	m.log.Info("procedure transition", zap.String("from", m.current.Name()), zap.String("to", next.Name()))
	m.current = next
}

// Run executes the drain -> update -> yield loop until the bus
// disconnects or ctx is cancelled, at which point it stops the active
// procedure (halting the motor loop) and returns.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.shutdown("context cancelled")
			return
		default:
		}

		if m.recv.Drain(m.handle) == bus.Disconnected {
			m.shutdown("bus disconnected")
			return
		}

		m.current.Update()
		m.checkTransition()

		select {
		case <-ctx.Done():
			m.shutdown("context cancelled")
			return
		case <-ticker.C:
		}
	}
}

func (m *Manager) shutdown(reason string) {
	m.log.Info("operation controller shutting down", zap.String("reason", reason))
	m.current.Stop()
	m.checkTransition()
}
