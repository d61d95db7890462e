package operation

import "github.com/Alibirb/gogrind/internal/bus"

// Procedure is the uniform interface the manager drives. Exactly one
// concrete implementation is active at a time.
type Procedure interface {
	// Name identifies the procedure for logging.
	Name() string
	// Data returns the procedure's common data.
	Data() *CommonData
	// HandleMessage processes one bus message.
	HandleMessage(msg bus.Message)
	// Update runs time-based logic once per loop iteration.
	Update()
	// Stop forces an immediate halt. The default behavior (see Base.Stop)
	// sends Stop to the motor loop and transitions to manual control;
	// manual control overrides this to stay put.
	Stop()
	// Pending returns and clears the next procedure to swap in, or nil if
	// this procedure wants to keep running.
	Pending() Procedure
}

// Base implements the bookkeeping every concrete procedure needs:
// holding the common data pointer and the pending-transition slot.
// Concrete procedures embed Base and implement Name/HandleMessage/Update
// (and, where it should differ, Stop).
type Base struct {
	data *CommonData
	next Procedure
}

// NewBase wraps data for a concrete procedure to embed.
func NewBase(data *CommonData) Base {
	return Base{data: data}
}

func (b *Base) Data() *CommonData { return b.data }

// Pending returns and clears any queued transition.
func (b *Base) Pending() Procedure {
	n := b.next
	b.next = nil
	return n
}

// transitionTo queues next to replace the owning procedure once the
// current message/update cycle finishes.
func (b *Base) transitionTo(next Procedure) {
	b.next = next
}

// Stop implements the generic stop behavior: halt the motor loop and
// return control to manual/idle. Procedures that need different
// behavior (manual control itself) shadow this with their own Stop.
func (b *Base) Stop() {
	b.data.Send.Send(bus.Stop{})
	b.transitionTo(NewManualControl(b.data.Clone()))
}
