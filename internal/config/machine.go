// Package config loads and canonicalizes the on-disk MachineConfig and
// holds the small set of operator-tunable runtime settings (HTTP listen
// address, log level, GPIO chip override) that sit alongside it.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Alibirb/gogrind/internal/axis"
)

// yamlMotorConfig mirrors axis.MotorConfig for serialization.
type yamlMotorConfig struct {
	StepsPerRevolution int     `yaml:"steps_per_revolution"`
	RevsPerInch        float64 `yaml:"revs_per_inch"`
	Reversed           bool    `yaml:"reversed"`
	DefaultSpeedIPS    float64 `yaml:"default_speed_ips"`
	EnablePin          int     `yaml:"enable_pin"`
	StepPin            int     `yaml:"step_pin"`
	DirectionPin       int     `yaml:"direction_pin"`
}

// yamlMachineConfig mirrors axis.MachineConfig for serialization. Motors
// and Endstops are keyed by lower-case names (x/y/z, x_min/x_max/...)
// rather than by the domain's struct keys, since those don't round-trip
// through YAML scalars cleanly.
type yamlMachineConfig struct {
	GPIOChip         string                     `yaml:"gpio_chip"`
	SpindleEnablePin int                        `yaml:"spindle_enable_pin"`
	Motors           map[string]yamlMotorConfig `yaml:"motors"`
	Endstops         map[string]int             `yaml:"endstops"`
}

func axisName(a axis.Axis) string {
	return strings.ToLower(a.String())
}

func parseAxis(name string) (axis.Axis, error) {
	switch strings.ToLower(name) {
	case "x":
		return axis.X, nil
	case "y":
		return axis.Y, nil
	case "z":
		return axis.Z, nil
	default:
		return 0, fmt.Errorf("unknown axis %q", name)
	}
}

func endstopName(id axis.EndstopID) string {
	end := "min"
	if id.End == axis.Max {
		end = "max"
	}
	return axisName(id.Axis) + "_" + end
}

func parseEndstop(name string) (axis.EndstopID, error) {
	parts := strings.SplitN(name, "_", 2)
	if len(parts) != 2 {
		return axis.EndstopID{}, fmt.Errorf("malformed endstop key %q, want axis_min or axis_max", name)
	}
	a, err := parseAxis(parts[0])
	if err != nil {
		return axis.EndstopID{}, err
	}
	var end axis.End
	switch strings.ToLower(parts[1]) {
	case "min":
		end = axis.Min
	case "max":
		end = axis.Max
	default:
		return axis.EndstopID{}, fmt.Errorf("unknown endstop end %q in key %q", parts[1], name)
	}
	return axis.EndstopID{Axis: a, End: end}, nil
}

func toYAML(cfg axis.MachineConfig) yamlMachineConfig {
	y := yamlMachineConfig{
		GPIOChip:         cfg.GPIOChip,
		SpindleEnablePin: cfg.SpindleEnablePin,
		Motors:           make(map[string]yamlMotorConfig, len(cfg.Motors)),
		Endstops:         make(map[string]int, len(cfg.Endstops)),
	}
	for a, mc := range cfg.Motors {
		y.Motors[axisName(a)] = yamlMotorConfig{
			StepsPerRevolution: mc.StepsPerRevolution,
			RevsPerInch:        mc.RevsPerInch,
			Reversed:           mc.Reversed,
			DefaultSpeedIPS:    mc.DefaultSpeedIPS,
			EnablePin:          mc.EnablePin,
			StepPin:            mc.StepPin,
			DirectionPin:       mc.DirectionPin,
		}
	}
	for id, pin := range cfg.Endstops {
		y.Endstops[endstopName(id)] = pin
	}
	return y
}

func fromYAML(y yamlMachineConfig) (axis.MachineConfig, error) {
	cfg := axis.MachineConfig{
		GPIOChip:         y.GPIOChip,
		SpindleEnablePin: y.SpindleEnablePin,
		Motors:           make(map[axis.Axis]axis.MotorConfig, len(y.Motors)),
		Endstops:         make(map[axis.EndstopID]int, len(y.Endstops)),
	}
	for name, mc := range y.Motors {
		a, err := parseAxis(name)
		if err != nil {
			return axis.MachineConfig{}, fmt.Errorf("motors: %w", err)
		}
		cfg.Motors[a] = axis.MotorConfig{
			StepsPerRevolution: mc.StepsPerRevolution,
			RevsPerInch:        mc.RevsPerInch,
			Reversed:           mc.Reversed,
			DefaultSpeedIPS:    mc.DefaultSpeedIPS,
			EnablePin:          mc.EnablePin,
			StepPin:            mc.StepPin,
			DirectionPin:       mc.DirectionPin,
		}
	}
	for name, pin := range y.Endstops {
		id, err := parseEndstop(name)
		if err != nil {
			return axis.MachineConfig{}, fmt.Errorf("endstops: %w", err)
		}
		cfg.Endstops[id] = pin
	}
	return cfg, nil
}

// LoadMachineConfig reads and strictly decodes the MachineConfig at path.
// Unknown keys are rejected. Any read or decode error (missing file,
// malformed YAML, unknown key, failed invariant) is returned alongside the
// compiled-in default config, so the caller can log the error and fall
// back to Default() rather than fail startup outright.
func LoadMachineConfig(path string) (axis.MachineConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return axis.Default(), fmt.Errorf("opening config %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var y yamlMachineConfig
	if err := dec.Decode(&y); err != nil {
		return axis.Default(), fmt.Errorf("decoding config %s: %w", path, err)
	}

	cfg, err := fromYAML(y)
	if err != nil {
		return axis.Default(), fmt.Errorf("converting config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return axis.Default(), fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveMachineConfig canonicalizes cfg's on-disk format by writing it back
// through the same yamlMachineConfig representation LoadMachineConfig
// reads, at 0o644.
func SaveMachineConfig(path string, cfg axis.MachineConfig) error {
	out, err := yaml.Marshal(toYAML(cfg))
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
