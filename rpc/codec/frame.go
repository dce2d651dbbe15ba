package codec

import (
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/dGPIO/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
	"strings"
)

// HeaderSize is the size of the request and the reply header: four 32-bit words
const HeaderSize = 16

var Logger = logger.GetLogger("codec")

// NewNativeCodec creates a codec using the byte order of the host. This is
// what the daemon expects when it runs on the same machine.
func NewNativeCodec() IFrameCodec {
	return NewCodec(binary.NativeEndian, "native", common.DefaultMaxBlockSize)
}

// NewCodec creates a codec with an explicit byte order. Block replies larger
// than maxBlockSize are rejected, 0 disables the limit.
func NewCodec(order binary.ByteOrder, name string, maxBlockSize int) IFrameCodec {
	return &frameCodec{
		order:        order,
		name:         name,
		maxBlockSize: maxBlockSize,
	}
}

// NewCodecFromConfig creates the codec described by the client configuration
func NewCodecFromConfig(config common.ClientConfig) (IFrameCodec, error) {
	switch strings.ToLower(config.ByteOrder) {
	case "native", "":
		return NewCodec(binary.NativeEndian, "native", config.MaxBlockSize), nil
	case "little":
		return NewCodec(binary.LittleEndian, "little", config.MaxBlockSize), nil
	case "big":
		return NewCodec(binary.BigEndian, "big", config.MaxBlockSize), nil
	default:
		return nil, fmt.Errorf("invalid byte order %s. must be one of native, little, big", config.ByteOrder)
	}
}

// frameCodec implements IFrameCodec for the daemon's fixed header format
type frameCodec struct {
	order        binary.ByteOrder
	name         string
	maxBlockSize int
}

// --------------------------------------------------------------------------
// Interface Methods (docu see codec.IFrameCodec)
// --------------------------------------------------------------------------

func (c *frameCodec) Name() string {
	return c.name
}

// Encode writes the frame with the format:
// - 4 bytes: opcode
// - 4 bytes: p1
// - 4 bytes: p2
// - 4 bytes: extension length in bytes
// - 4 bytes per extension word
// - raw extension bytes
func (c *frameCodec) Encode(cmd common.Command) []byte {
	extLen := cmd.ExtLen()
	frame := make([]byte, HeaderSize+extLen)

	c.order.PutUint32(frame[0:4], uint32(cmd.Op))
	c.order.PutUint32(frame[4:8], cmd.P1)
	c.order.PutUint32(frame[8:12], cmd.P2)
	c.order.PutUint32(frame[12:16], uint32(extLen))

	pos := HeaderSize
	for i := 0; i < cmd.NumWords(); i++ {
		c.order.PutUint32(frame[pos:pos+4], cmd.Word(i))
		pos += 4
	}

	cmd.CopyRaw(frame[pos:])
	return frame
}

func (c *frameCodec) Decode(op common.Opcode, r FrameReader) (common.Result, error) {
	header, err := r.RecvExactly(HeaderSize)
	if err != nil {
		return common.Result{}, err
	}
	word := c.order.Uint32(header[12:16])

	if !op.IsBlock() {
		return common.HandleResult(op, word)
	}

	// block reply: the 4th word is the payload length, unless the daemon
	// reported an error, in which case no payload follows
	if int32(word) < 0 {
		return common.HandleResult(op, word)
	}

	length := int(word)
	if c.maxBlockSize > 0 && length > c.maxBlockSize {
		return common.Result{}, fmt.Errorf("%w: %s reply declares %d bytes, limit is %d", common.ErrIO, op, length, c.maxBlockSize)
	}

	if length == 0 {
		return common.BlockResult([]byte{}), nil
	}

	payload, err := r.RecvExactly(length)
	if err != nil {
		return common.Result{}, err
	}

	Logger.Debugf("%s: received block of %d bytes", op, length)
	return common.BlockResult(payload), nil
}
