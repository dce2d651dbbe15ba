// Package rpc provides the client side of the pigpio daemon socket protocol.
// It is the communication layer between applications and the daemon, which
// controls the GPIO, I2C, SPI and serial hardware of its host.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the opcode and error-code tables, the Command and Result
//     types, configuration structures, and logging.
//
//   - codec: The binary frame format. Encodes a command into a request frame
//     and decodes scalar and block replies.
//
//   - transport: Network communication abstractions. One TCP connection per
//     client with bounded-retry establishment and exact-size reads.
//
//   - client: The dispatcher, the single serialization point through which
//     every command reaches the daemon.
package rpc
