package motor

import (
	"fmt"

	"github.com/Alibirb/gogrind/internal/axis"
	"github.com/Alibirb/gogrind/internal/hal"
)

// AxisController drives one stepper axis: it owns the axis's GPIO lines
// and step ramp, and exposes the start/stop/update vocabulary the motor
// loop commands it with.
type AxisController struct {
	gpio        hal.GPIOProvider
	cfg         axis.MotorConfig
	ramp        *stepRamp
	lastWritten int

	movementInProgress bool
	direction          axis.End
	targetStep         int
	maxStepsPerMs      float64
}

// NewAxisController requests cfg's enable/step/direction lines as outputs
// and enables the driver.
func NewAxisController(gpio hal.GPIOProvider, cfg axis.MotorConfig) (*AxisController, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("motor config: %w", err)
	}
	for _, pin := range []int{cfg.EnablePin, cfg.StepPin, cfg.DirectionPin} {
		if err := gpio.SetMode(pin, hal.Output); err != nil {
			return nil, fmt.Errorf("requesting pin %d as output: %w", pin, err)
		}
	}
	if err := gpio.DigitalWrite(cfg.EnablePin, true); err != nil {
		return nil, fmt.Errorf("enabling driver: %w", err)
	}

	return &AxisController{
		gpio:      gpio,
		cfg:       cfg,
		ramp:      newStepRamp(),
		direction: axis.Min,
	}, nil
}

// StartMoveTo arms the axis to move to an absolute position, at speedIPS
// inches per second (or the configured default if speedIPS <= 0).
func (c *AxisController) StartMoveTo(positionIn, speedIPS float64) {
	c.startMoveToStep(c.cfg.InchesToSteps(positionIn), speedIPS)
}

// StartMoveRelative arms the axis to move distanceIn inches from its
// current position.
func (c *AxisController) StartMoveRelative(distanceIn, speedIPS float64) {
	c.startMoveToStep(c.ramp.CurrentStep()+c.cfg.InchesToSteps(distanceIn), speedIPS)
}

func (c *AxisController) startMoveToStep(targetStep int, speedIPS float64) {
	if targetStep < c.ramp.CurrentStep() {
		c.direction = axis.Min
	} else {
		c.direction = axis.Max
	}
	if speedIPS <= 0 {
		speedIPS = c.cfg.DefaultSpeedIPS
	}
	c.targetStep = targetStep
	c.maxStepsPerMs = c.cfg.StepsPerMillisecond(speedIPS)
	c.movementInProgress = true
}

// StopMove halts the axis at its current step, if it is moving, and marks
// it no longer in progress. No deceleration phase is run: with
// movementInProgress false, Update does not advance the ramp again until
// a new move is commanded, sidestepping the stop quirk a real
// stepper-timing library can exhibit.
func (c *AxisController) StopMove() {
	if !c.movementInProgress {
		return
	}
	c.startMoveToStep(c.ramp.CurrentStep(), c.cfg.DefaultSpeedIPS)
	c.movementInProgress = false
}

// Update advances the step ramp by dtMs milliseconds and writes the
// resulting direction/step pin levels. It returns whether the axis is
// still moving.
func (c *AxisController) Update(dtMs float64) (bool, error) {
	if !c.movementInProgress {
		return false, nil
	}
	c.movementInProgress = c.ramp.Advance(dtMs, c.maxStepsPerMs, c.targetStep)
	if err := c.writeStep(); err != nil {
		return c.movementInProgress, err
	}
	return c.movementInProgress, nil
}

func (c *AxisController) writeStep() error {
	// c.direction is in raw step space, where InchesToSteps has already
	// applied the reversed flag, so it maps to the pin level unchanged.
	dirHigh := c.direction == axis.Max
	if err := c.gpio.DigitalWrite(c.cfg.DirectionPin, dirHigh); err != nil {
		return fmt.Errorf("writing direction pin: %w", err)
	}

	cur := c.ramp.CurrentStep()
	if cur == c.lastWritten {
		return nil
	}
	if err := c.gpio.DigitalWrite(c.cfg.StepPin, true); err != nil {
		return fmt.Errorf("writing step pin high: %w", err)
	}
	if err := c.gpio.DigitalWrite(c.cfg.StepPin, false); err != nil {
		return fmt.Errorf("writing step pin low: %w", err)
	}
	c.lastWritten = cur
	return nil
}

// Direction reports the axis's current commanded travel direction in
// physical/user-position space, i.e. which endstop (if any) the carriage
// is travelling toward. c.direction itself tracks raw step-space
// direction for writeStep's pin-level computation; reversed axes invert
// raw step direction relative to physical travel, same as the dir pin.
func (c *AxisController) Direction() axis.End {
	physical := c.direction
	if c.cfg.Reversed {
		physical = physical.Opposite()
	}
	return physical
}

// Position reports the axis's current position in inches.
func (c *AxisController) Position() float64 {
	return c.cfg.StepsToInches(c.ramp.CurrentStep())
}

// IsMoving reports whether a commanded move is in progress.
func (c *AxisController) IsMoving() bool {
	return c.movementInProgress
}
