package common

import (
	"errors"
	"testing"
)

// TestBuildCommand tests command construction and shape validation
func TestBuildCommand(t *testing.T) {
	words := []uint32{7}
	cmd, err := BuildCommand(OpI2CO, 1, 0x53, words, nil)
	if err != nil {
		t.Fatalf("BuildCommand failed: %v", err)
	}

	// the command must not alias the caller's slice
	words[0] = 99
	if cmd.Word(0) != 7 {
		t.Errorf("Word(0) = %d, want 7", cmd.Word(0))
	}
	if cmd.NumWords() != 1 || cmd.ExtLen() != 4 {
		t.Errorf("NumWords() = %d, ExtLen() = %d; want 1, 4", cmd.NumWords(), cmd.ExtLen())
	}

	_, err = BuildCommand(OpI2CO, 1, 0x53, nil, nil)
	if !errors.Is(err, ErrBadShape) {
		t.Errorf("expected ErrBadShape, got %v", err)
	}
}

// TestExtLen tests the extension length for the different shapes
func TestExtLen(t *testing.T) {
	tests := []struct {
		name  string
		cmd   Command
		want  int
		words int
	}{
		{name: "none", cmd: NewCommand(OpTICK, 0, 0), want: 0},
		{name: "one word", cmd: NewCommand(OpI2CO, 1, 0x53, 0), want: 4, words: 1},
		{name: "many words", cmd: NewCommand(OpWVAG, 0, 0, 1, 2, 3, 4, 5, 6), want: 24, words: 6},
		{name: "raw", cmd: mustBuild(t, OpI2CWD, 3, 0, nil, []byte{1, 2, 3}), want: 3},
		{name: "words and raw", cmd: mustBuild(t, OpWVAS, 4, 9600, []uint32{8, 0, 0}, []byte{0xAA}), want: 13, words: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cmd.ExtLen(); got != tt.want {
				t.Errorf("ExtLen() = %d, want %d", got, tt.want)
			}
			if got := tt.cmd.NumWords(); got != tt.words {
				t.Errorf("NumWords() = %d, want %d", got, tt.words)
			}
		})
	}
}

// TestNewCommandPanics verifies that NewCommand rejects a bad shape
func TestNewCommandPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewCommand should panic for a bad shape")
		}
	}()
	NewCommand(OpTICK, 0, 0, 1)
}

// TestBlockResult tests the block result helper
func TestBlockResult(t *testing.T) {
	res := BlockResult([]byte{1, 2, 3})
	if res.Kind != ResultBlock || res.Value != 3 || len(res.Block) != 3 {
		t.Errorf("BlockResult = %+v", res)
	}
	if res.String() != "block(3 bytes)" {
		t.Errorf("String() = %q", res.String())
	}
}

func mustBuild(t *testing.T, op Opcode, p1, p2 uint32, words []uint32, raw []byte) Command {
	t.Helper()
	cmd, err := BuildCommand(op, p1, p2, words, raw)
	if err != nil {
		t.Fatalf("BuildCommand(%s) failed: %v", op, err)
	}
	return cmd
}
