package i2c

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dGPIO/cmd/util"
	"github.com/ValentinKolb/dGPIO/periph/i2c"
	"github.com/ValentinKolb/dGPIO/rpc/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	dispatcher *client.Dispatcher

	// I2CCommands represents the i2c command group. Every command opens the
	// device given by --bus and --address, runs and closes it again.
	I2CCommands = &cobra.Command{
		Use:                "i2c",
		Short:              "Perform i2c / smbus operations",
		PersistentPreRunE:  setupI2CClient,
		PersistentPostRunE: closeI2CClient,
	}
)

func init() {
	util.SetupClientFlags(I2CCommands)

	key := "bus"
	I2CCommands.PersistentFlags().Uint32(key, 1, util.WrapString("The i2c bus of the device"))
	key = "address"
	I2CCommands.PersistentFlags().String(key, "", util.WrapString("The 7-bit address of the device (e.g. 0x53)"))
	_ = I2CCommands.MarkPersistentFlagRequired(key)

	I2CCommands.AddCommand(readByteCmd)
	I2CCommands.AddCommand(writeByteCmd)
	I2CCommands.AddCommand(readByteDataCmd)
	I2CCommands.AddCommand(writeByteDataCmd)
	I2CCommands.AddCommand(readWordDataCmd)
	I2CCommands.AddCommand(writeWordDataCmd)
	I2CCommands.AddCommand(readBlockCmd)
	I2CCommands.AddCommand(readI2CBlockCmd)
	I2CCommands.AddCommand(writeI2CBlockCmd)
	I2CCommands.AddCommand(readDeviceCmd)
	I2CCommands.AddCommand(writeDeviceCmd)
	I2CCommands.AddCommand(blockProcessCallCmd)
}

// setupI2CClient connects to the daemon
func setupI2CClient(cmd *cobra.Command, _ []string) error {
	d, err := util.Connect(cmd)
	if err != nil {
		return err
	}
	dispatcher = d
	return nil
}

func closeI2CClient(_ *cobra.Command, _ []string) error {
	if dispatcher == nil {
		return nil
	}
	return dispatcher.Close()
}

// withDevice opens the configured device, runs fn and closes the device
func withDevice(fn func(ctx context.Context, dev *i2c.Device) error) error {
	address, err := util.ParseUint32("address", viper.GetString("address"))
	if err != nil {
		return err
	}

	ctx := context.Background()
	dev, err := i2c.Open(ctx, dispatcher, viper.GetUint32("bus"), address, 0)
	if err != nil {
		return err
	}

	fnErr := fn(ctx, dev)
	if err := dev.Close(ctx); err != nil && fnErr == nil {
		return err
	}
	return fnErr
}

func parseReg(s string) (byte, error) {
	v, err := util.ParseUint32("register", s)
	if err != nil {
		return 0, err
	}
	if v > 0xFF {
		return 0, fmt.Errorf("register 0x%x out of range 0x00-0xff", v)
	}
	return byte(v), nil
}

var (
	readByteCmd = &cobra.Command{
		Use:   "read-byte",
		Short: "Reads a single byte from the device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDevice(func(ctx context.Context, dev *i2c.Device) error {
				v, err := dev.ReadByte(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("0x%02x\n", v)
				return nil
			})
		},
	}
	writeByteCmd = &cobra.Command{
		Use:   "write-byte [value]",
		Short: "Writes a single byte to the device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := util.ParseBytes(args)
			if err != nil {
				return err
			}
			return withDevice(func(ctx context.Context, dev *i2c.Device) error {
				return dev.WriteByte(ctx, data[0])
			})
		},
	}
	readByteDataCmd = &cobra.Command{
		Use:   "read-byte-data [register]",
		Short: "Reads a byte from a register",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := parseReg(args[0])
			if err != nil {
				return err
			}
			return withDevice(func(ctx context.Context, dev *i2c.Device) error {
				v, err := dev.ReadByteData(ctx, reg)
				if err != nil {
					return err
				}
				fmt.Printf("0x%02x\n", v)
				return nil
			})
		},
	}
	writeByteDataCmd = &cobra.Command{
		Use:   "write-byte-data [register] [value]",
		Short: "Writes a byte to a register",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := parseReg(args[0])
			if err != nil {
				return err
			}
			data, err := util.ParseBytes(args[1:])
			if err != nil {
				return err
			}
			return withDevice(func(ctx context.Context, dev *i2c.Device) error {
				return dev.WriteByteData(ctx, reg, data[0])
			})
		},
	}
	readWordDataCmd = &cobra.Command{
		Use:   "read-word-data [register]",
		Short: "Reads a 16-bit word from a register",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := parseReg(args[0])
			if err != nil {
				return err
			}
			return withDevice(func(ctx context.Context, dev *i2c.Device) error {
				v, err := dev.ReadWordData(ctx, reg)
				if err != nil {
					return err
				}
				fmt.Printf("0x%04x\n", v)
				return nil
			})
		},
	}
	writeWordDataCmd = &cobra.Command{
		Use:   "write-word-data [register] [value]",
		Short: "Writes a 16-bit word to a register",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := parseReg(args[0])
			if err != nil {
				return err
			}
			v, err := util.ParseUint32("value", args[1])
			if err != nil {
				return err
			}
			if v > 0xFFFF {
				return fmt.Errorf("value 0x%x out of range 0x0000-0xffff", v)
			}
			return withDevice(func(ctx context.Context, dev *i2c.Device) error {
				return dev.WriteWordData(ctx, reg, uint16(v))
			})
		},
	}
	readBlockCmd = &cobra.Command{
		Use:   "read-block [register]",
		Short: "Reads an smbus block from a register",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := parseReg(args[0])
			if err != nil {
				return err
			}
			return withDevice(func(ctx context.Context, dev *i2c.Device) error {
				data, err := dev.ReadBlockData(ctx, reg)
				if err != nil {
					return err
				}
				fmt.Println(util.FormatBytes(data))
				return nil
			})
		},
	}
	readI2CBlockCmd = &cobra.Command{
		Use:   "read-i2c-block [register] [count]",
		Short: "Reads count bytes starting at a register",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := parseReg(args[0])
			if err != nil {
				return err
			}
			count, err := util.ParseUint32("count", args[1])
			if err != nil {
				return err
			}
			return withDevice(func(ctx context.Context, dev *i2c.Device) error {
				data, err := dev.ReadI2CBlockData(ctx, reg, count)
				if err != nil {
					return err
				}
				fmt.Println(util.FormatBytes(data))
				return nil
			})
		},
	}
	writeI2CBlockCmd = &cobra.Command{
		Use:   "write-i2c-block [register] [bytes...]",
		Short: "Writes bytes starting at a register",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := parseReg(args[0])
			if err != nil {
				return err
			}
			data, err := util.ParseBytes(args[1:])
			if err != nil {
				return err
			}
			return withDevice(func(ctx context.Context, dev *i2c.Device) error {
				return dev.WriteI2CBlockData(ctx, reg, data)
			})
		},
	}
	readDeviceCmd = &cobra.Command{
		Use:   "read-device [count]",
		Short: "Reads count bytes straight from the device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := util.ParseUint32("count", args[0])
			if err != nil {
				return err
			}
			return withDevice(func(ctx context.Context, dev *i2c.Device) error {
				data, err := dev.ReadDevice(ctx, count)
				if err != nil {
					return err
				}
				fmt.Println(util.FormatBytes(data))
				return nil
			})
		},
	}
	writeDeviceCmd = &cobra.Command{
		Use:   "write-device [bytes...]",
		Short: "Writes bytes straight to the device",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := util.ParseBytes(args)
			if err != nil {
				return err
			}
			return withDevice(func(ctx context.Context, dev *i2c.Device) error {
				return dev.WriteDevice(ctx, data)
			})
		},
	}
	blockProcessCallCmd = &cobra.Command{
		Use:   "block-process-call [register] [bytes...]",
		Short: "Writes a block to a register and prints the block the device answers with",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := parseReg(args[0])
			if err != nil {
				return err
			}
			data, err := util.ParseBytes(args[1:])
			if err != nil {
				return err
			}
			return withDevice(func(ctx context.Context, dev *i2c.Device) error {
				out, err := dev.BlockProcessCall(ctx, reg, data)
				if err != nil {
					return err
				}
				fmt.Println(util.FormatBytes(out))
				return nil
			})
		},
	}
)
