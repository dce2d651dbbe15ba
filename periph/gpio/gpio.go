// Package gpio maps basic GPIO operations onto daemon commands.
package gpio

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dGPIO/periph"
	"github.com/ValentinKolb/dGPIO/rpc/common"
)

const (
	MaxGPIO       = 53
	MaxUserGPIO   = 31
	MaxDutyCycle  = 40000
	MinPulseWidth = 500
	MaxPulseWidth = 2500
)

// Mode is the function of a gpio
type Mode uint32

const (
	ModeInput  Mode = 0
	ModeOutput Mode = 1
	ModeAlt0   Mode = 4
	ModeAlt1   Mode = 5
	ModeAlt2   Mode = 6
	ModeAlt3   Mode = 7
	ModeAlt4   Mode = 3
	ModeAlt5   Mode = 2
)

func (m Mode) String() string {
	switch m {
	case ModeInput:
		return "input"
	case ModeOutput:
		return "output"
	case ModeAlt0:
		return "alt0"
	case ModeAlt1:
		return "alt1"
	case ModeAlt2:
		return "alt2"
	case ModeAlt3:
		return "alt3"
	case ModeAlt4:
		return "alt4"
	case ModeAlt5:
		return "alt5"
	default:
		return fmt.Sprintf("mode(%d)", uint32(m))
	}
}

// ParseMode converts a mode name to a Mode
func ParseMode(s string) (Mode, error) {
	for m := Mode(0); m <= 7; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("invalid mode %q. must be one of input, output, alt0-alt5", s)
}

// Pull is the pull up/down resistor setting
type Pull uint32

const (
	PullOff  Pull = 0
	PullDown Pull = 1
	PullUp   Pull = 2
)

// ParsePull converts a pull name to a Pull
func ParsePull(s string) (Pull, error) {
	switch s {
	case "off":
		return PullOff, nil
	case "down":
		return PullDown, nil
	case "up":
		return PullUp, nil
	default:
		return 0, fmt.Errorf("invalid pull %q. must be one of off, down, up", s)
	}
}

// GPIO exposes the basic gpio commands
type GPIO struct {
	c periph.Caller
}

// New creates the gpio facade on top of a caller
func New(c periph.Caller) *GPIO {
	return &GPIO{c: c}
}

func checkGPIO(pin uint32) error {
	if pin > MaxGPIO {
		return fmt.Errorf("gpio %d out of range 0-%d", pin, MaxGPIO)
	}
	return nil
}

func checkUserGPIO(pin uint32) error {
	if pin > MaxUserGPIO {
		return fmt.Errorf("gpio %d out of range 0-%d", pin, MaxUserGPIO)
	}
	return nil
}

// SetMode sets the mode of a gpio
func (g *GPIO) SetMode(ctx context.Context, pin uint32, mode Mode) error {
	if err := checkGPIO(pin); err != nil {
		return err
	}
	if mode > 7 {
		return fmt.Errorf("invalid mode %d", uint32(mode))
	}
	_, err := g.c.Call(ctx, common.OpMODES, pin, uint32(mode))
	return err
}

// Mode returns the mode of a gpio
func (g *GPIO) Mode(ctx context.Context, pin uint32) (Mode, error) {
	if err := checkGPIO(pin); err != nil {
		return 0, err
	}
	res, err := g.c.Call(ctx, common.OpMODEG, pin, 0)
	if err != nil {
		return 0, err
	}
	return Mode(res.Value), nil
}

// SetPull sets the pull up/down resistor of a gpio
func (g *GPIO) SetPull(ctx context.Context, pin uint32, pull Pull) error {
	if err := checkGPIO(pin); err != nil {
		return err
	}
	if pull > PullUp {
		return fmt.Errorf("invalid pull %d", uint32(pull))
	}
	_, err := g.c.Call(ctx, common.OpPUD, pin, uint32(pull))
	return err
}

// Read returns the level (0 or 1) of a gpio
func (g *GPIO) Read(ctx context.Context, pin uint32) (int, error) {
	if err := checkGPIO(pin); err != nil {
		return 0, err
	}
	res, err := g.c.Call(ctx, common.OpREAD, pin, 0)
	if err != nil {
		return 0, err
	}
	return int(res.Value), nil
}

// Write sets the level of a gpio, any non-zero level is high
func (g *GPIO) Write(ctx context.Context, pin uint32, level int) error {
	if err := checkGPIO(pin); err != nil {
		return err
	}
	var l uint32
	if level != 0 {
		l = 1
	}
	_, err := g.c.Call(ctx, common.OpWRITE, pin, l)
	return err
}

// SetPWM starts pwm on a gpio with the given dutycycle (0 = off)
func (g *GPIO) SetPWM(ctx context.Context, pin uint32, duty uint32) error {
	if err := checkUserGPIO(pin); err != nil {
		return err
	}
	if duty > MaxDutyCycle {
		return fmt.Errorf("dutycycle %d out of range 0-%d", duty, MaxDutyCycle)
	}
	_, err := g.c.Call(ctx, common.OpPWM, pin, duty)
	return err
}

// SetServo starts servo pulses on a gpio (0 = off, otherwise 500-2500 us)
func (g *GPIO) SetServo(ctx context.Context, pin uint32, pulseWidth uint32) error {
	if err := checkUserGPIO(pin); err != nil {
		return err
	}
	if pulseWidth != 0 && (pulseWidth < MinPulseWidth || pulseWidth > MaxPulseWidth) {
		return fmt.Errorf("pulsewidth %d out of range %d-%d", pulseWidth, MinPulseWidth, MaxPulseWidth)
	}
	_, err := g.c.Call(ctx, common.OpSERVO, pin, pulseWidth)
	return err
}

// Tick returns the daemon's microsecond tick, which wraps every ~72 minutes
func (g *GPIO) Tick(ctx context.Context) (uint32, error) {
	return periph.Unsigned(g.c.Call(ctx, common.OpTICK, 0, 0))
}

// HardwareRevision returns the board revision of the daemon's host
func (g *GPIO) HardwareRevision(ctx context.Context) (uint32, error) {
	return periph.Unsigned(g.c.Call(ctx, common.OpHWVER, 0, 0))
}

// DaemonVersion returns the version of the daemon
func (g *GPIO) DaemonVersion(ctx context.Context) (uint32, error) {
	res, err := g.c.Call(ctx, common.OpPIGPV, 0, 0)
	if err != nil {
		return 0, err
	}
	return uint32(res.Value), nil
}
