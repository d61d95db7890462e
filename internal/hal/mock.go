package hal

import "sync"

// MockGPIO is an in-memory GPIOProvider used by tests (no physical GPIO
// chip available). Writes are recorded and DigitalRead reflects the last
// written/injected value.
type MockGPIO struct {
	mu       sync.Mutex
	pinModes map[int]PinMode
	values   map[int]bool
	watchers map[int]func(pin int, value bool)
}

// NewMockGPIO returns an empty mock provider.
func NewMockGPIO() *MockGPIO {
	return &MockGPIO{
		pinModes: make(map[int]PinMode),
		values:   make(map[int]bool),
		watchers: make(map[int]func(pin int, value bool)),
	}
}

func (m *MockGPIO) SetMode(pin int, mode PinMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pinModes[pin] = mode
	return nil
}

func (m *MockGPIO) DigitalRead(pin int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[pin], nil
}

func (m *MockGPIO) DigitalWrite(pin int, value bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[pin] = value
	return nil
}

func (m *MockGPIO) WatchEdge(pin int, edge EdgeMode, callback func(pin int, value bool)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if edge == EdgeNone {
		delete(m.watchers, pin)
		return nil
	}
	m.pinModes[pin] = Input
	m.watchers[pin] = callback
	return nil
}

func (m *MockGPIO) ActivePins() map[int]PinMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int]PinMode, len(m.pinModes))
	for k, v := range m.pinModes {
		out[k] = v
	}
	return out
}

func (m *MockGPIO) Close() error {
	return nil
}

// Inject sets pin's level and, if a watcher is registered, invokes it -
// simulating a physical edge for tests.
func (m *MockGPIO) Inject(pin int, value bool) {
	m.mu.Lock()
	m.values[pin] = value
	cb := m.watchers[pin]
	m.mu.Unlock()
	if cb != nil {
		cb(pin, value)
	}
}
