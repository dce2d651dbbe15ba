package transport

import (
	"github.com/ValentinKolb/dGPIO/rpc/common"
	"time"
)

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the connection to the daemon.
//
// A transport holds exactly one connection and is not safe for concurrent
// use: the daemon correlates replies with requests only by their order on the
// stream, so a single owner must send a request and read its full reply before
// the next request is sent.
type IRPCClientTransport interface {
	// Connect establishes the connection, retrying with a fixed backoff up to
	// the configured number of attempts. Exhausting the attempts returns a
	// *common.ConnectError.
	Connect(config common.ClientConfig) error
	// Send writes the full frame. Any failure wraps common.ErrIO.
	Send(frame []byte) error
	// RecvExactly blocks until exactly n bytes were received. A peer that
	// closes mid-frame fails with common.ErrIO, an expired deadline with
	// common.ErrTimeout.
	RecvExactly(n int) ([]byte, error)
	// SetReplyDeadline sets the deadline for the following reads, the zero
	// value removes it
	SetReplyDeadline(t time.Time) error
	// Endpoint returns the address of the daemon
	Endpoint() string
	// Close closes the connection
	Close() error
}
