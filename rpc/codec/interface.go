package codec

import "github.com/ValentinKolb/dGPIO/rpc/common"

// FrameReader is the receive side of a connection. RecvExactly must block
// until exactly n bytes were read or fail.
type FrameReader interface {
	RecvExactly(n int) ([]byte, error)
}

// IFrameCodec is the interface for the wire codec of the daemon protocol
type IFrameCodec interface {
	// Encode serializes a command into its wire frame.
	// No validation of the opcode is performed.
	Encode(cmd common.Command) []byte
	// Decode reads the reply to a command with the given opcode from r and
	// applies the daemon's error convention. A *common.DaemonError is returned
	// for negative result codes, errors wrapping common.ErrIO for anything
	// that leaves the stream unusable.
	Decode(op common.Opcode, r FrameReader) (common.Result, error)
	// Name returns the name of the codec (e.g. "native")
	Name() string
}
