// Package codec implements the wire format of the daemon's socket protocol.
//
// A request is a 16 byte header of four unsigned 32-bit words (opcode, p1,
// p2, extension length) followed by the extension. Extension words are packed
// as 32-bit words in the codec's byte order, raw extension bytes follow them
// without alignment.
//
// A reply is a 16 byte header whose first three words echo the request. The
// fourth word is interpreted depending on the opcode:
//
//   - scalar opcodes: the signed result, negative values are error codes
//
//   - block opcodes (common.Opcode.IsBlock): the byte length of a payload
//     that follows the header. The decoder reads the header and the payload
//     with two sized reads, it never relies on the boundaries of a single
//     socket read.
//
// The daemon uses the byte order of the machine it runs on. NewNativeCodec
// covers the common case of a local daemon, NewCodec allows an explicit byte
// order for remote daemons.
package codec
