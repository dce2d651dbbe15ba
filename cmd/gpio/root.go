package gpio

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dGPIO/cmd/util"
	"github.com/ValentinKolb/dGPIO/periph/gpio"
	"github.com/ValentinKolb/dGPIO/rpc/client"
	"github.com/spf13/cobra"
	"strconv"
)

var (
	dispatcher *client.Dispatcher
	pins       *gpio.GPIO

	// GPIOCommands represents the gpio command group
	GPIOCommands = &cobra.Command{
		Use:                "gpio",
		Short:              "Perform basic gpio operations",
		PersistentPreRunE:  setupGPIOClient,
		PersistentPostRunE: closeGPIOClient,
	}
)

func init() {
	util.SetupClientFlags(GPIOCommands)

	GPIOCommands.AddCommand(readCmd)
	GPIOCommands.AddCommand(writeCmd)
	GPIOCommands.AddCommand(modeCmd)
	GPIOCommands.AddCommand(setModeCmd)
	GPIOCommands.AddCommand(pullCmd)
	GPIOCommands.AddCommand(pwmCmd)
	GPIOCommands.AddCommand(servoCmd)
	GPIOCommands.AddCommand(infoCmd)
}

// setupGPIOClient connects to the daemon
func setupGPIOClient(cmd *cobra.Command, _ []string) error {
	d, err := util.Connect(cmd)
	if err != nil {
		return err
	}
	dispatcher = d
	pins = gpio.New(d)
	return nil
}

func closeGPIOClient(_ *cobra.Command, _ []string) error {
	if dispatcher == nil {
		return nil
	}
	return dispatcher.Close()
}

var (
	readCmd = &cobra.Command{
		Use:   "read [gpio]",
		Short: "Reads the level of a gpio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pin, err := util.ParseUint32("gpio", args[0])
			if err != nil {
				return err
			}
			level, err := pins.Read(context.Background(), pin)
			if err != nil {
				return err
			}
			fmt.Println(level)
			return nil
		},
	}
	writeCmd = &cobra.Command{
		Use:   "write [gpio] [level]",
		Short: "Sets the level of a gpio (0 or 1)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pin, err := util.ParseUint32("gpio", args[0])
			if err != nil {
				return err
			}
			level, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("level must be a number: %w", err)
			}
			return pins.Write(context.Background(), pin, level)
		},
	}
	modeCmd = &cobra.Command{
		Use:   "mode [gpio]",
		Short: "Prints the mode of a gpio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pin, err := util.ParseUint32("gpio", args[0])
			if err != nil {
				return err
			}
			mode, err := pins.Mode(context.Background(), pin)
			if err != nil {
				return err
			}
			fmt.Println(mode)
			return nil
		},
	}
	setModeCmd = &cobra.Command{
		Use:   "set-mode [gpio] [mode]",
		Short: "Sets the mode of a gpio (input, output, alt0-alt5)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pin, err := util.ParseUint32("gpio", args[0])
			if err != nil {
				return err
			}
			mode, err := gpio.ParseMode(args[1])
			if err != nil {
				return err
			}
			return pins.SetMode(context.Background(), pin, mode)
		},
	}
	pullCmd = &cobra.Command{
		Use:   "pull [gpio] [off|down|up]",
		Short: "Sets the pull up/down resistor of a gpio",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pin, err := util.ParseUint32("gpio", args[0])
			if err != nil {
				return err
			}
			pull, err := gpio.ParsePull(args[1])
			if err != nil {
				return err
			}
			return pins.SetPull(context.Background(), pin, pull)
		},
	}
	pwmCmd = &cobra.Command{
		Use:   "pwm [gpio] [dutycycle]",
		Short: "Starts pwm on a gpio (dutycycle 0 stops it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pin, err := util.ParseUint32("gpio", args[0])
			if err != nil {
				return err
			}
			duty, err := util.ParseUint32("dutycycle", args[1])
			if err != nil {
				return err
			}
			return pins.SetPWM(context.Background(), pin, duty)
		},
	}
	servoCmd = &cobra.Command{
		Use:   "servo [gpio] [pulsewidth]",
		Short: "Starts servo pulses on a gpio (pulsewidth in us, 0 stops them)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pin, err := util.ParseUint32("gpio", args[0])
			if err != nil {
				return err
			}
			width, err := util.ParseUint32("pulsewidth", args[1])
			if err != nil {
				return err
			}
			return pins.SetServo(context.Background(), pin, width)
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Prints daemon version, hardware revision and current tick",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			version, err := pins.DaemonVersion(ctx)
			if err != nil {
				return err
			}
			revision, err := pins.HardwareRevision(ctx)
			if err != nil {
				return err
			}
			tick, err := pins.Tick(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("endpoint:          %s\n", dispatcher.Endpoint())
			fmt.Printf("daemon version:    %d\n", version)
			fmt.Printf("hardware revision: 0x%x\n", revision)
			fmt.Printf("tick:              %d\n", tick)
			return nil
		},
	}
)
