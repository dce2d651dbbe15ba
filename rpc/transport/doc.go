// Package transport defines the connection abstraction between the client and
// the daemon. It provides a common contract that the dispatcher depends on, so
// that the network medium and its socket options stay replaceable.
//
// Key Components:
//
//   - IRPCClientTransport: Interface for the single connection to the daemon,
//     with bounded-retry establishment, full-frame writes and exact-size reads.
//
// Implementations live in the base package (medium independent logic) and the
// tcp package (the daemon's socket interface).
package transport
