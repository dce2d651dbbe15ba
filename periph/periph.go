// Package periph holds thin peripheral facades on top of the dispatcher.
// Each facade maps its operations to opcodes and parameter shapes, checks the
// argument ranges the daemon documents and interprets the typed result. None
// of them touch the wire format, they only use the Caller primitive.
package periph

import (
	"context"
	"github.com/ValentinKolb/dGPIO/rpc/common"
)

// Caller is the call primitive the facades are built on.
// *client.Dispatcher implements it.
type Caller interface {
	Call(ctx context.Context, op common.Opcode, p1, p2 uint32, words ...uint32) (common.Result, error)
	CallRaw(ctx context.Context, op common.Opcode, p1, p2 uint32, words []uint32, raw []byte) (common.Result, error)
}

// Unsigned returns the result word of a command whose result is an unsigned
// value (e.g. the tick counter). Such results may have the sign bit set and
// are then reported as a *common.DaemonError by the dispatcher; the raw bit
// pattern is recovered from it.
func Unsigned(res common.Result, err error) (uint32, error) {
	if err != nil {
		if derr, ok := common.AsDaemonError(err); ok {
			return derr.Raw, nil
		}
		return 0, err
	}
	return uint32(res.Value), nil
}
