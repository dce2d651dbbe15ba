// Package tcp implements the TCP transport to the daemon's socket interface.
// It provides the concrete connector for the base package: dialing with an
// optional timeout and applying the configured socket options (TCP_NODELAY,
// keep-alive, linger, socket buffer sizes).
//
// See the base package documentation for the retry and error semantics.
package tcp
