//go:build linux
// +build linux

package hal

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"
)

// GpiocdevGPIO implements GPIOProvider using the Linux GPIO character device
// interface via go-gpiocdev. It works against any gpiochipN exposed by the
// kernel, character-device or RP1-southbridge alike.
type GpiocdevGPIO struct {
	mu       sync.Mutex
	chipName string
	lines    map[int]*gpiocdev.Line
	pinModes map[int]PinMode
}

// NewGpiocdevGPIO opens (and immediately releases) chipName to verify it
// exists, then returns a provider that requests individual lines lazily.
func NewGpiocdevGPIO(chipName string) (*GpiocdevGPIO, error) {
	c, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("failed to open GPIO chip %s: %w", chipName, err)
	}
	c.Close()

	return &GpiocdevGPIO{
		chipName: chipName,
		lines:    make(map[int]*gpiocdev.Line),
		pinModes: make(map[int]PinMode),
	}, nil
}

func (g *GpiocdevGPIO) SetMode(pin int, mode PinMode) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.closeLineLocked(pin); err != nil {
		return err
	}

	switch mode {
	case Input:
		line, err := gpiocdev.RequestLine(g.chipName, pin, gpiocdev.AsInput)
		if err != nil {
			return fmt.Errorf("failed to request pin %d as input: %w", pin, err)
		}
		g.lines[pin] = line
	case Output:
		line, err := gpiocdev.RequestLine(g.chipName, pin, gpiocdev.AsOutput(0))
		if err != nil {
			return fmt.Errorf("failed to request pin %d as output: %w", pin, err)
		}
		g.lines[pin] = line
	default:
		return fmt.Errorf("unsupported pin mode: %v", mode)
	}

	g.pinModes[pin] = mode
	return nil
}

func (g *GpiocdevGPIO) DigitalRead(pin int) (bool, error) {
	g.mu.Lock()
	line, ok := g.lines[pin]
	g.mu.Unlock()

	if !ok {
		return false, fmt.Errorf("pin %d not initialized", pin)
	}

	val, err := line.Value()
	if err != nil {
		return false, fmt.Errorf("failed to read pin %d: %w", pin, err)
	}
	return val != 0, nil
}

func (g *GpiocdevGPIO) DigitalWrite(pin int, value bool) error {
	g.mu.Lock()
	line, ok := g.lines[pin]
	g.mu.Unlock()

	if !ok {
		return fmt.Errorf("pin %d not initialized", pin)
	}

	v := 0
	if value {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		return fmt.Errorf("failed to write pin %d: %w", pin, err)
	}
	return nil
}

// WatchEdge requests pin with the kernel's both/rising/falling-edge event
// notification and delivers each event to callback from go-gpiocdev's own
// event-delivery goroutine. The level passed to callback is inferred from
// the edge type (LineEventRisingEdge vs falling) rather than re-read from
// the line, which is exact for a both-edges watch.
func (g *GpiocdevGPIO) WatchEdge(pin int, edge EdgeMode, callback func(pin int, value bool)) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.closeLineLocked(pin); err != nil {
		return err
	}

	if edge == EdgeNone {
		line, err := gpiocdev.RequestLine(g.chipName, pin, gpiocdev.AsInput)
		if err != nil {
			return fmt.Errorf("failed to request pin %d as input: %w", pin, err)
		}
		g.lines[pin] = line
		g.pinModes[pin] = Input
		return nil
	}

	pinNum := pin
	handler := func(evt gpiocdev.LineEvent) {
		callback(pinNum, evt.Type == gpiocdev.LineEventRisingEdge)
	}

	opts := []gpiocdev.LineReqOption{gpiocdev.AsInput, gpiocdev.WithEventHandler(handler)}
	switch edge {
	case EdgeRising:
		opts = append(opts, gpiocdev.WithRisingEdge)
	case EdgeFalling:
		opts = append(opts, gpiocdev.WithFallingEdge)
	case EdgeBoth:
		opts = append(opts, gpiocdev.WithBothEdges)
	}

	line, err := gpiocdev.RequestLine(g.chipName, pin, opts...)
	if err != nil {
		return fmt.Errorf("failed to watch edge on pin %d: %w", pin, err)
	}
	g.lines[pin] = line
	g.pinModes[pin] = Input

	return nil
}

// ActivePins returns a map of currently requested pins and their modes.
func (g *GpiocdevGPIO) ActivePins() map[int]PinMode {
	g.mu.Lock()
	defer g.mu.Unlock()
	result := make(map[int]PinMode, len(g.pinModes))
	for pin, mode := range g.pinModes {
		result[pin] = mode
	}
	return result
}

func (g *GpiocdevGPIO) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for pin, line := range g.lines {
		line.Close()
		delete(g.lines, pin)
	}
	g.pinModes = make(map[int]PinMode)
	return nil
}

// closeLineLocked closes the line for pin, if requested. Must be called
// with g.mu held.
func (g *GpiocdevGPIO) closeLineLocked(pin int) error {
	if line, ok := g.lines[pin]; ok {
		line.Close()
		delete(g.lines, pin)
	}
	delete(g.pinModes, pin)
	return nil
}
