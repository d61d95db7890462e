// Package hal provides the hardware abstraction the core motion components
// are built against. The only hardware surface the grinder core needs is
// digital GPIO: step/direction/enable/spindle outputs and edge-watched
// endstop inputs. Each caller opens and owns its own provider instance -
// there is no global singleton, since the concurrency model partitions GPIO
// chip ownership per thread (the endstop monitor owns the endstop lines, the
// motor loop owns the step/direction/enable/spindle lines).
package hal

// PinMode is the direction a GPIO line is requested in.
type PinMode int

const (
	Input PinMode = iota
	Output
)

// EdgeMode selects which transitions WatchEdge reports.
type EdgeMode int

const (
	EdgeNone EdgeMode = iota
	EdgeRising
	EdgeFalling
	EdgeBoth
)

// GPIOProvider is the digital I/O surface consumed by the endstop monitor
// and the motor driver loop.
type GPIOProvider interface {
	// SetMode requests pin as Input or Output, releasing any prior request.
	SetMode(pin int, mode PinMode) error
	// DigitalRead returns the current level of pin.
	DigitalRead(pin int) (bool, error)
	// DigitalWrite drives pin high (true) or low (false). Pin must be Output.
	DigitalWrite(pin int, value bool) error
	// WatchEdge requests pin as an edge-notified input and invokes callback
	// from a background goroutine on every matching transition. Passing
	// EdgeNone cancels any existing watch and leaves the pin a plain input.
	WatchEdge(pin int, edge EdgeMode, callback func(pin int, value bool)) error
	// ActivePins reports every pin currently under request and its mode.
	ActivePins() map[int]PinMode
	// Close releases every line requested through this provider.
	Close() error
}
