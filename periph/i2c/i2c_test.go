package i2c

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/ValentinKolb/dGPIO/rpc/common"
)

// fakeCaller records commands and answers with a fixed result
type fakeCaller struct {
	calls  []common.Command
	result common.Result
	err    error
}

func (f *fakeCaller) Call(ctx context.Context, op common.Opcode, p1, p2 uint32, words ...uint32) (common.Result, error) {
	return f.CallRaw(ctx, op, p1, p2, words, nil)
}

func (f *fakeCaller) CallRaw(_ context.Context, op common.Opcode, p1, p2 uint32, words []uint32, raw []byte) (common.Result, error) {
	cmd, err := common.BuildCommand(op, p1, p2, words, raw)
	if err != nil {
		return common.Result{}, err
	}
	f.calls = append(f.calls, cmd)
	return f.result, f.err
}

func (f *fakeCaller) last(t *testing.T) common.Command {
	t.Helper()
	if len(f.calls) == 0 {
		t.Fatal("no command was sent")
	}
	return f.calls[len(f.calls)-1]
}

// TestOpen tests opening a device
func TestOpen(t *testing.T) {
	c := &fakeCaller{result: common.ScalarResult(5)}

	dev, err := Open(context.Background(), c, 1, 0x53, 0)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if dev.Handle != 5 || dev.Bus != 1 || dev.Address != 0x53 {
		t.Errorf("device = %+v", dev)
	}

	cmd := c.last(t)
	if cmd.Op != common.OpI2CO || cmd.P1 != 1 || cmd.P2 != 0x53 || cmd.NumWords() != 1 || cmd.Word(0) != 0 {
		t.Errorf("sent %s, want I2CO(1, 83, words=[0])", cmd)
	}
}

// TestOpenErrors tests argument checks and daemon failures on open
func TestOpenErrors(t *testing.T) {
	c := &fakeCaller{}
	if _, err := Open(context.Background(), c, 1, 0x80, 0); err == nil {
		t.Error("expected an error for an 8-bit address")
	}
	if len(c.calls) != 0 {
		t.Error("an invalid address must not reach the daemon")
	}

	derr := &common.DaemonError{Op: common.OpI2CO, Code: -75}
	c = &fakeCaller{err: derr}
	if _, err := Open(context.Background(), c, 1, 0x53, 0); !errors.Is(err, derr) {
		t.Errorf("expected the daemon error, got %v", err)
	}
}

// TestScalarOperations tests the mapping of the word sized operations
func TestScalarOperations(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		run   func(d *Device) error
		op    common.Opcode
		p2    uint32
		words []uint32
	}{
		{"close", func(d *Device) error { return d.Close(ctx) }, common.OpI2CC, 0, nil},
		{"write quick", func(d *Device) error { return d.WriteQuick(ctx, 1) }, common.OpI2CWQ, 1, nil},
		{"read byte", func(d *Device) error { _, err := d.ReadByte(ctx); return err }, common.OpI2CRS, 0, nil},
		{"write byte", func(d *Device) error { return d.WriteByte(ctx, 0xAA) }, common.OpI2CWS, 0xAA, nil},
		{"read byte data", func(d *Device) error { _, err := d.ReadByteData(ctx, 0x2D); return err }, common.OpI2CRB, 0x2D, nil},
		{"write byte data", func(d *Device) error { return d.WriteByteData(ctx, 0x2D, 0x08) }, common.OpI2CWB, 0x2D, []uint32{0x08}},
		{"read word data", func(d *Device) error { _, err := d.ReadWordData(ctx, 0x32); return err }, common.OpI2CRW, 0x32, nil},
		{"write word data", func(d *Device) error { return d.WriteWordData(ctx, 0x32, 0xBEEF) }, common.OpI2CWW, 0x32, []uint32{0xBEEF}},
		{"process call", func(d *Device) error { _, err := d.ProcessCall(ctx, 0x01, 0x1234); return err }, common.OpI2CPC, 0x01, []uint32{0x1234}},
		{"read i2c block", func(d *Device) error { _, err := d.ReadI2CBlockData(ctx, 0x32, 6); return err }, common.OpI2CRI, 0x32, []uint32{6}},
		{"read block", func(d *Device) error { _, err := d.ReadBlockData(ctx, 0x10); return err }, common.OpI2CRK, 0x10, nil},
		{"read device", func(d *Device) error { _, err := d.ReadDevice(ctx, 4); return err }, common.OpI2CRD, 4, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeCaller{}
			dev := Attach(c, 7)
			if err := tt.run(dev); err != nil {
				t.Fatalf("failed: %v", err)
			}
			cmd := c.last(t)
			if cmd.Op != tt.op || cmd.P1 != 7 || cmd.P2 != tt.p2 {
				t.Errorf("sent %s, want %s(7, %d)", cmd, tt.op, tt.p2)
			}
			words := cmd.Words()
			if len(words) != len(tt.words) {
				t.Fatalf("words = %v, want %v", words, tt.words)
			}
			for i := range words {
				if words[i] != tt.words[i] {
					t.Errorf("word %d = %d, want %d", i, words[i], tt.words[i])
				}
			}
		})
	}
}

// TestBlockWrites tests the operations carrying raw bytes
func TestBlockWrites(t *testing.T) {
	ctx := context.Background()
	data := []byte{0x01, 0x02, 0x03}

	tests := []struct {
		name string
		run  func(d *Device) error
		op   common.Opcode
		p2   uint32
	}{
		{"write block", func(d *Device) error { return d.WriteBlockData(ctx, 0x10, data) }, common.OpI2CWK, 0x10},
		{"write i2c block", func(d *Device) error { return d.WriteI2CBlockData(ctx, 0x10, data) }, common.OpI2CWI, 0x10},
		{"block process call", func(d *Device) error { _, err := d.BlockProcessCall(ctx, 0x10, data); return err }, common.OpI2CPK, 0x10},
		{"write device", func(d *Device) error { return d.WriteDevice(ctx, data) }, common.OpI2CWD, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeCaller{}
			if err := tt.run(Attach(c, 3)); err != nil {
				t.Fatalf("failed: %v", err)
			}
			cmd := c.last(t)
			if cmd.Op != tt.op || cmd.P1 != 3 || cmd.P2 != tt.p2 {
				t.Errorf("sent %s, want %s(3, %d)", cmd, tt.op, tt.p2)
			}
			if !bytes.Equal(cmd.Raw(), data) || cmd.NumWords() != 0 {
				t.Errorf("extension = words %v raw %x, want raw %x", cmd.Words(), cmd.Raw(), data)
			}
		})
	}
}

// TestBlockResults verifies that the block payload is returned
func TestBlockResults(t *testing.T) {
	payload := []byte{0xE5, 0x00, 0x01, 0x02, 0x03, 0x04}
	c := &fakeCaller{result: common.BlockResult(payload)}
	dev := Attach(c, 1)

	got, err := dev.ReadI2CBlockData(context.Background(), 0x32, 6)
	if err != nil {
		t.Fatalf("ReadI2CBlockData failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("ReadI2CBlockData = %x, want %x", got, payload)
	}
}

// TestRangeChecks verifies that out of range arguments never reach the daemon
func TestRangeChecks(t *testing.T) {
	ctx := context.Background()
	c := &fakeCaller{}
	dev := Attach(c, 1)

	if err := dev.WriteQuick(ctx, 2); err == nil {
		t.Error("WriteQuick(2) should fail")
	}
	if _, err := dev.ReadI2CBlockData(ctx, 0, 0); err == nil {
		t.Error("ReadI2CBlockData with count 0 should fail")
	}
	if _, err := dev.ReadI2CBlockData(ctx, 0, 33); err == nil {
		t.Error("ReadI2CBlockData with count 33 should fail")
	}
	if err := dev.WriteBlockData(ctx, 0, make([]byte, 33)); err == nil {
		t.Error("WriteBlockData with 33 bytes should fail")
	}
	if err := dev.WriteI2CBlockData(ctx, 0, nil); err == nil {
		t.Error("WriteI2CBlockData without data should fail")
	}
	if len(c.calls) != 0 {
		t.Errorf("%d commands reached the daemon", len(c.calls))
	}

	// empty transfers are no-ops
	if got, err := dev.ReadDevice(ctx, 0); err != nil || len(got) != 0 {
		t.Errorf("ReadDevice(0) = %v, %v", got, err)
	}
	if err := dev.WriteDevice(ctx, nil); err != nil {
		t.Errorf("WriteDevice(nil) = %v", err)
	}
	if len(c.calls) != 0 {
		t.Errorf("empty transfers sent %d commands", len(c.calls))
	}
}
