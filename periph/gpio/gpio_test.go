package gpio

import (
	"context"
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

// TestCommands tests the mapping of the gpio operations
func TestCommands(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		run    func(g *GPIO) error
		op     common.Opcode
		p1, p2 uint32
	}{
		{"set mode", func(g *GPIO) error { return g.SetMode(ctx, 17, ModeOutput) }, common.OpMODES, 17, 1},
		{"set alt5", func(g *GPIO) error { return g.SetMode(ctx, 14, ModeAlt5) }, common.OpMODES, 14, 2},
		{"get mode", func(g *GPIO) error { _, err := g.Mode(ctx, 17); return err }, common.OpMODEG, 17, 0},
		{"pull up", func(g *GPIO) error { return g.SetPull(ctx, 4, PullUp) }, common.OpPUD, 4, 2},
		{"read", func(g *GPIO) error { _, err := g.Read(ctx, 4); return err }, common.OpREAD, 4, 0},
		{"write high", func(g *GPIO) error { return g.Write(ctx, 4, 5) }, common.OpWRITE, 4, 1},
		{"write low", func(g *GPIO) error { return g.Write(ctx, 4, 0) }, common.OpWRITE, 4, 0},
		{"pwm", func(g *GPIO) error { return g.SetPWM(ctx, 18, 128) }, common.OpPWM, 18, 128},
		{"servo", func(g *GPIO) error { return g.SetServo(ctx, 18, 1500) }, common.OpSERVO, 18, 1500},
		{"servo off", func(g *GPIO) error { return g.SetServo(ctx, 18, 0) }, common.OpSERVO, 18, 0},
		{"version", func(g *GPIO) error { _, err := g.DaemonVersion(ctx); return err }, common.OpPIGPV, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeCaller{}
			if err := tt.run(New(c)); err != nil {
				t.Fatalf("failed: %v", err)
			}
			if len(c.calls) != 1 {
				t.Fatalf("sent %d commands, want 1", len(c.calls))
			}
			cmd := c.calls[0]
			if cmd.Op != tt.op || cmd.P1 != tt.p1 || cmd.P2 != tt.p2 || cmd.ExtLen() != 0 {
				t.Errorf("sent %s, want %s(%d, %d)", cmd, tt.op, tt.p1, tt.p2)
			}
		})
	}
}

// TestRangeChecks verifies that out of range arguments never reach the daemon
func TestRangeChecks(t *testing.T) {
	ctx := context.Background()
	c := &fakeCaller{}
	g := New(c)

	checks := map[string]error{
		"mode gpio":  g.SetMode(ctx, 54, ModeInput),
		"mode value": g.SetMode(ctx, 4, Mode(8)),
		"pull value": g.SetPull(ctx, 4, Pull(3)),
		"pwm gpio":   g.SetPWM(ctx, 32, 10),
		"pwm duty":   g.SetPWM(ctx, 18, MaxDutyCycle+1),
		"servo low":  g.SetServo(ctx, 18, 499),
		"servo high": g.SetServo(ctx, 18, 2501),
		"write gpio": g.Write(ctx, 60, 1),
	}
	for name, err := range checks {
		if err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
	if len(c.calls) != 0 {
		t.Errorf("%d commands reached the daemon", len(c.calls))
	}
}

// TestTick verifies that tick values with the sign bit set are recovered
func TestTick(t *testing.T) {
	raw := uint32(0x80000010)
	c := &fakeCaller{err: &common.DaemonError{Op: common.OpTICK, Code: common.ErrorCode(int32(raw)), Raw: raw}}

	got, err := New(c).Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
	if got != raw {
		t.Errorf("Tick = 0x%x, want 0x%x", got, raw)
	}

	c = &fakeCaller{result: common.ScalarResult(1234)}
	if got, err := New(c).HardwareRevision(context.Background()); err != nil || got != 1234 {
		t.Errorf("HardwareRevision = %d, %v; want 1234", got, err)
	}
}

// TestParse tests the name parsers used by the command line
func TestParse(t *testing.T) {
	for m := Mode(0); m <= 7; m++ {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%s) = %d, %v", m, got, err)
		}
	}
	if _, err := ParseMode("alt9"); err == nil {
		t.Error("ParseMode(alt9) should fail")
	}
	if p, err := ParsePull("down"); err != nil || p != PullDown {
		t.Errorf("ParsePull(down) = %d, %v", p, err)
	}
	if _, err := ParsePull("sideways"); err == nil {
		t.Error("ParsePull(sideways) should fail")
	}
}
