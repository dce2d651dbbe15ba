package common

import (
	"fmt"
	"slices"
)

// --------------------------------------------------------------------------
// Command Structure
// --------------------------------------------------------------------------

// Command is one request to the daemon. A command is immutable once built,
// use NewCommand or BuildCommand to create one.
type Command struct {
	Op Opcode
	P1 uint32
	P2 uint32

	words []uint32 // packed as 32-bit words
	raw   []byte   // appended after the words without alignment
}

// NewCommand creates a command whose extension consists of 32-bit words.
// It panics if the extension does not match the opcode's shape, use
// BuildCommand for input that is not known at compile time.
func NewCommand(op Opcode, p1, p2 uint32, words ...uint32) Command {
	cmd, err := BuildCommand(op, p1, p2, words, nil)
	if err != nil {
		panic(err)
	}
	return cmd
}

// BuildCommand creates a command after checking the extension against the opcode's shape
func BuildCommand(op Opcode, p1, p2 uint32, words []uint32, raw []byte) (Command, error) {
	if err := op.Shape().Check(len(words), len(raw)); err != nil {
		return Command{}, fmt.Errorf("%s: %w", op, err)
	}
	return Command{
		Op:    op,
		P1:    p1,
		P2:    p2,
		words: slices.Clone(words),
		raw:   slices.Clone(raw),
	}, nil
}

// Words returns a copy of the extension words
func (c Command) Words() []uint32 {
	return slices.Clone(c.words)
}

// Raw returns a copy of the raw extension bytes
func (c Command) Raw() []byte {
	return slices.Clone(c.raw)
}

// NumWords returns the number of extension words
func (c Command) NumWords() int {
	return len(c.words)
}

// Word returns the i-th extension word
func (c Command) Word(i int) uint32 {
	return c.words[i]
}

// ExtLen returns the byte length of the extension
func (c Command) ExtLen() int {
	return 4*len(c.words) + len(c.raw)
}

// CopyRaw copies the raw extension bytes into dst
func (c Command) CopyRaw(dst []byte) int {
	return copy(dst, c.raw)
}

func (c Command) String() string {
	if c.ExtLen() == 0 {
		return fmt.Sprintf("%s(%d, %d)", c.Op, c.P1, c.P2)
	}
	return fmt.Sprintf("%s(%d, %d, words=%v, raw=%d bytes)", c.Op, c.P1, c.P2, c.words, len(c.raw))
}

// --------------------------------------------------------------------------
// Result Structure
// --------------------------------------------------------------------------

// ResultKind distinguishes the two reply shapes of the protocol
type ResultKind uint8

const (
	ResultScalar ResultKind = iota // single non-negative integer
	ResultBlock                    // variable-length payload
)

func (k ResultKind) String() string {
	switch k {
	case ResultScalar:
		return "scalar"
	case ResultBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Result is the successful outcome of a command
type Result struct {
	Kind ResultKind
	// Value is the scalar result, for block results the payload length
	Value int32
	// Block is the payload of a block result
	Block []byte
}

// ScalarResult creates a scalar result
func ScalarResult(v int32) Result {
	return Result{Kind: ResultScalar, Value: v}
}

// BlockResult creates a block result
func BlockResult(payload []byte) Result {
	return Result{Kind: ResultBlock, Value: int32(len(payload)), Block: payload}
}

func (r Result) String() string {
	if r.Kind == ResultBlock {
		return fmt.Sprintf("block(%d bytes)", len(r.Block))
	}
	return fmt.Sprintf("scalar(%d)", r.Value)
}

// --------------------------------------------------------------------------
// Error Mapping
// --------------------------------------------------------------------------

// HandleResult applies the daemon's result convention to a raw reply word:
// non-negative values are a success, negative values are an error code.
func HandleResult(op Opcode, raw uint32) (Result, error) {
	v := int32(raw)
	if v < 0 {
		return Result{}, &DaemonError{Op: op, Code: ErrorCode(v), Raw: raw}
	}
	return ScalarResult(v), nil
}
