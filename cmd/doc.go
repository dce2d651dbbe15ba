// Package cmd implements the command-line interface of dGPIO, a client for
// the pigpio daemon. It provides a hierarchical command structure on top of
// the rpc/client dispatcher.
//
// The package is organized into several subpackages:
//
//   - raw: Sends any command of the daemon's command table (exec) and lists the table (commands)
//   - gpio: Commands for gpio operations (read, write, mode, pwm, servo, etc.)
//   - i2c: Commands for i2c / smbus operations on one device
//   - perf: Measures round trips against a running daemon
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See dgpio -help for a list of all commands.
package cmd
