package axis

import "fmt"

// MachineConfig is the full machine description: read once at startup by
// the config loader and handed to every thread as an immutable snapshot.
// It carries no YAML tags itself - internal/config owns the on-disk
// representation and converts to/from this type, keeping the domain model
// free of serialization concerns.
type MachineConfig struct {
	GPIOChip         string
	SpindleEnablePin int
	Motors           map[Axis]MotorConfig
	Endstops         map[EndstopID]int
}

// Validate checks every invariant the spec requires of a MachineConfig:
// all three axes configured, each MotorConfig internally valid, and a
// non-empty GPIO chip identifier.
func (c MachineConfig) Validate() error {
	if c.GPIOChip == "" {
		return fmt.Errorf("gpio_chip must not be empty")
	}
	for _, a := range Axes {
		mc, ok := c.Motors[a]
		if !ok {
			return fmt.Errorf("missing motor config for axis %s", a)
		}
		if err := mc.Validate(); err != nil {
			return fmt.Errorf("axis %s: %w", a, err)
		}
	}
	for _, id := range Endstops {
		if _, ok := c.Endstops[id]; !ok {
			return fmt.Errorf("missing endstop pin for %s", id)
		}
	}
	return nil
}

// Default returns the compiled-in MachineConfig used when no config file
// can be read at startup.
func Default() MachineConfig {
	return MachineConfig{
		GPIOChip:         "/dev/gpiochip0",
		SpindleEnablePin: 6,
		Motors: map[Axis]MotorConfig{
			X: {StepsPerRevolution: 200, RevsPerInch: 1.0, DefaultSpeedIPS: 1.0, EnablePin: 17, StepPin: 18, DirectionPin: 19},
			Y: {StepsPerRevolution: 200, RevsPerInch: 1.0, DefaultSpeedIPS: 1.0, EnablePin: 24, StepPin: 25, DirectionPin: 22},
			Z: {StepsPerRevolution: 200, RevsPerInch: 1.0, DefaultSpeedIPS: 1.0, EnablePin: 23, StepPin: 12, DirectionPin: 16},
		},
		Endstops: map[EndstopID]int{
			{Axis: X, End: Min}: 20,
			{Axis: X, End: Max}: 21,
			{Axis: Y, End: Min}: 13,
			{Axis: Y, End: Max}: 27,
			{Axis: Z, End: Max}: 26,
		},
	}
}
