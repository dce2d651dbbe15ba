package cmd

import (
	"fmt"
	"github.com/ValentinKolb/dGPIO/cmd/gpio"
	"github.com/ValentinKolb/dGPIO/cmd/i2c"
	"github.com/ValentinKolb/dGPIO/cmd/perf"
	"github.com/ValentinKolb/dGPIO/cmd/raw"
	"github.com/ValentinKolb/dGPIO/cmd/util"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dgpio",
		Short: "client for the pigpio daemon",
		Long: fmt.Sprintf(`dGPIO (v%s)

A client for the pigpio daemon socket interface written in Go. Commands
are sent over one TCP connection, one at a time, in the order they were
issued.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dGPIO",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dGPIO v%s\n", Version)
		},
	}
)

func init() {
	cobra.OnInitialize(util.InitClientConfig)

	// Add Commands
	RootCmd.AddCommand(raw.ExecCmd)
	RootCmd.AddCommand(raw.CommandsCmd)
	RootCmd.AddCommand(gpio.GPIOCommands)
	RootCmd.AddCommand(i2c.I2CCommands)
	RootCmd.AddCommand(perf.PerfCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
