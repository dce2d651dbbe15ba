package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/ValentinKolb/dGPIO/rpc/common"
)

// fakeReader serves a byte stream and records the size of every request
type fakeReader struct {
	data      []byte
	requested []int
}

func (r *fakeReader) RecvExactly(n int) ([]byte, error) {
	r.requested = append(r.requested, n)
	if len(r.data) < n {
		return nil, io.ErrUnexpectedEOF
	}
	out := r.data[:n]
	r.data = r.data[n:]
	return out, nil
}

// reply builds a reply header with the given 4th word
func reply(order binary.ByteOrder, op common.Opcode, word uint32, payload []byte) []byte {
	buf := make([]byte, HeaderSize, HeaderSize+len(payload))
	order.PutUint32(buf[0:4], uint32(op))
	order.PutUint32(buf[12:16], word)
	return append(buf, payload...)
}

func words(order binary.ByteOrder, frame []byte) []uint32 {
	out := make([]uint32, len(frame)/4)
	for i := range out {
		out[i] = order.Uint32(frame[i*4:])
	}
	return out
}

// TestEncode tests the frame layout for word extensions
func TestEncode(t *testing.T) {
	c := NewCodec(binary.LittleEndian, "little", 0)

	tests := []struct {
		name string
		cmd  common.Command
		want []uint32
	}{
		{
			name: "no extension",
			cmd:  common.NewCommand(common.OpTICK, 0, 0),
			want: []uint32{16, 0, 0, 0},
		},
		{
			name: "i2c open",
			cmd:  common.NewCommand(common.OpI2CO, 1, 0x53, 0),
			want: []uint32{54, 1, 0x53, 4, 0},
		},
		{
			name: "i2c read block data",
			cmd:  common.NewCommand(common.OpI2CRI, 3, 0x32, 6),
			want: []uint32{67, 3, 0x32, 4, 6},
		},
		{
			name: "variable words",
			cmd:  common.NewCommand(common.OpWVAG, 0, 0, 1, 2, 3, 4, 5, 6),
			want: []uint32{28, 0, 0, 24, 1, 2, 3, 4, 5, 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := c.Encode(tt.cmd)
			if len(frame) != HeaderSize+4*tt.cmd.NumWords() {
				t.Fatalf("frame length = %d, want %d", len(frame), HeaderSize+4*tt.cmd.NumWords())
			}
			got := words(binary.LittleEndian, frame)
			if len(got) != len(tt.want) {
				t.Fatalf("frame words = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("word %d = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// TestEncodeRaw tests unaligned raw extension bytes
func TestEncodeRaw(t *testing.T) {
	c := NewCodec(binary.BigEndian, "big", 0)
	cmd, err := common.BuildCommand(common.OpWVAS, 4, 9600, []uint32{8, 0, 0}, []byte{0xDE, 0xAD, 0xBE})
	if err != nil {
		t.Fatalf("BuildCommand failed: %v", err)
	}

	frame := c.Encode(cmd)
	if len(frame) != HeaderSize+15 {
		t.Fatalf("frame length = %d, want %d", len(frame), HeaderSize+15)
	}
	if got := binary.BigEndian.Uint32(frame[12:16]); got != 15 {
		t.Errorf("extension length = %d, want 15", got)
	}
	if got := binary.BigEndian.Uint32(frame[16:20]); got != 8 {
		t.Errorf("first word = %d, want 8", got)
	}
	if !bytes.Equal(frame[28:], []byte{0xDE, 0xAD, 0xBE}) {
		t.Errorf("raw bytes = %x", frame[28:])
	}
}

// TestEncodeNative verifies the default codec uses the host byte order
func TestEncodeNative(t *testing.T) {
	frame := NewNativeCodec().Encode(common.NewCommand(common.OpREAD, 4, 0))
	if got := binary.NativeEndian.Uint32(frame[0:4]); got != uint32(common.OpREAD) {
		t.Errorf("opcode word = %d, want %d", got, common.OpREAD)
	}
	if got := binary.NativeEndian.Uint32(frame[4:8]); got != 4 {
		t.Errorf("p1 word = %d, want 4", got)
	}
}

// TestDecodeScalar tests scalar replies
func TestDecodeScalar(t *testing.T) {
	c := NewCodec(binary.LittleEndian, "little", 0)

	t.Run("success", func(t *testing.T) {
		r := &fakeReader{data: reply(binary.LittleEndian, common.OpI2CO, 5, nil)}
		res, err := c.Decode(common.OpI2CO, r)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if res.Kind != common.ResultScalar || res.Value != 5 {
			t.Errorf("Decode = %v, want scalar(5)", res)
		}
		if len(r.requested) != 1 || r.requested[0] != HeaderSize {
			t.Errorf("requested sizes = %v, want [16]", r.requested)
		}
	})

	t.Run("daemon error", func(t *testing.T) {
		r := &fakeReader{data: reply(binary.LittleEndian, common.OpI2CO, uint32(0xFFFFFFE7), nil)}
		_, err := c.Decode(common.OpI2CO, r)
		derr, ok := common.AsDaemonError(err)
		if !ok {
			t.Fatalf("expected a DaemonError, got %v", err)
		}
		if derr.Code != -25 || derr.Reason() != "bad_handle" {
			t.Errorf("DaemonError = %+v", derr)
		}
	})

	t.Run("short header", func(t *testing.T) {
		r := &fakeReader{data: make([]byte, 10)}
		if _, err := c.Decode(common.OpI2CO, r); err == nil {
			t.Error("expected an error for a short header")
		}
	})
}

// TestDecodeBlock tests block replies
func TestDecodeBlock(t *testing.T) {
	c := NewCodec(binary.LittleEndian, "little", 64)

	t.Run("payload", func(t *testing.T) {
		payload := []byte{0x10, 0x20, 0x30, 0x40, 0x50, 0x60}
		r := &fakeReader{data: reply(binary.LittleEndian, common.OpI2CRI, 6, payload)}
		res, err := c.Decode(common.OpI2CRI, r)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if res.Kind != common.ResultBlock || res.Value != 6 || !bytes.Equal(res.Block, payload) {
			t.Errorf("Decode = %+v", res)
		}
		if len(r.requested) != 2 || r.requested[0] != HeaderSize || r.requested[1] != 6 {
			t.Errorf("requested sizes = %v, want [16 6]", r.requested)
		}
	})

	t.Run("empty", func(t *testing.T) {
		r := &fakeReader{data: reply(binary.LittleEndian, common.OpI2CRD, 0, nil)}
		res, err := c.Decode(common.OpI2CRD, r)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if res.Kind != common.ResultBlock || len(res.Block) != 0 {
			t.Errorf("Decode = %+v, want empty block", res)
		}
		if len(r.requested) != 1 {
			t.Errorf("requested sizes = %v, want [16]", r.requested)
		}
	})

	t.Run("error code", func(t *testing.T) {
		// -83 i2c_read_failed
		r := &fakeReader{data: reply(binary.LittleEndian, common.OpI2CRK, uint32(0xFFFFFFAD), nil)}
		_, err := c.Decode(common.OpI2CRK, r)
		derr, ok := common.AsDaemonError(err)
		if !ok {
			t.Fatalf("expected a DaemonError, got %v", err)
		}
		if derr.Reason() != "i2c_read_failed" {
			t.Errorf("Reason() = %q, want i2c_read_failed", derr.Reason())
		}
		if len(r.requested) != 1 {
			t.Errorf("no payload must be read after an error, requested %v", r.requested)
		}
	})

	t.Run("too large", func(t *testing.T) {
		r := &fakeReader{data: reply(binary.LittleEndian, common.OpI2CRD, 65, make([]byte, 65))}
		_, err := c.Decode(common.OpI2CRD, r)
		if !errors.Is(err, common.ErrIO) {
			t.Errorf("expected ErrIO, got %v", err)
		}
	})

	t.Run("truncated payload", func(t *testing.T) {
		r := &fakeReader{data: reply(binary.LittleEndian, common.OpI2CRD, 8, []byte{1, 2, 3})}
		if _, err := c.Decode(common.OpI2CRD, r); err == nil {
			t.Error("expected an error for a truncated payload")
		}
	})
}

// TestNewCodecFromConfig tests the byte order selection
func TestNewCodecFromConfig(t *testing.T) {
	for _, order := range []string{"native", "little", "big", "BIG", ""} {
		config := common.DefaultClientConfig()
		config.ByteOrder = order
		if _, err := NewCodecFromConfig(config); err != nil {
			t.Errorf("byte order %q: %v", order, err)
		}
	}

	config := common.DefaultClientConfig()
	config.ByteOrder = "middle"
	if _, err := NewCodecFromConfig(config); err == nil {
		t.Error("expected an error for an invalid byte order")
	}
}
