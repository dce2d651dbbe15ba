// Package i2c maps SMBus and raw I2C device operations onto daemon commands.
//
// A device is opened once with Open, which yields a daemon-side handle; every
// further operation passes that handle as the first command parameter.
package i2c

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dGPIO/periph"
	"github.com/ValentinKolb/dGPIO/rpc/common"
)

const (
	// MaxAddress is the largest 7-bit device address
	MaxAddress = 0x7F
	// MaxBlock is the largest SMBus block transfer
	MaxBlock = 32
)

// Device is an open I2C device
type Device struct {
	c       periph.Caller
	Handle  uint32
	Bus     uint32
	Address uint32
}

// Open opens the device at address on bus. Flags are reserved by the daemon and should be 0.
func Open(ctx context.Context, c periph.Caller, bus, address, flags uint32) (*Device, error) {
	if address > MaxAddress {
		return nil, fmt.Errorf("i2c address 0x%02X out of range 0x00-0x%02X", address, MaxAddress)
	}
	res, err := c.Call(ctx, common.OpI2CO, bus, address, flags)
	if err != nil {
		return nil, err
	}
	return &Device{c: c, Handle: uint32(res.Value), Bus: bus, Address: address}, nil
}

// Attach wraps a handle that was opened elsewhere
func Attach(c periph.Caller, handle uint32) *Device {
	return &Device{c: c, Handle: handle}
}

// Close releases the handle
func (d *Device) Close(ctx context.Context) error {
	_, err := d.c.Call(ctx, common.OpI2CC, d.Handle, 0)
	return err
}

// WriteQuick sends a single bit as the read/write flag
func (d *Device) WriteQuick(ctx context.Context, bit uint32) error {
	if bit > 1 {
		return fmt.Errorf("quick bit must be 0 or 1")
	}
	_, err := d.c.Call(ctx, common.OpI2CWQ, d.Handle, bit)
	return err
}

// ReadByte reads a single byte without register
func (d *Device) ReadByte(ctx context.Context) (byte, error) {
	res, err := d.c.Call(ctx, common.OpI2CRS, d.Handle, 0)
	if err != nil {
		return 0, err
	}
	return byte(res.Value), nil
}

// WriteByte writes a single byte without register
func (d *Device) WriteByte(ctx context.Context, value byte) error {
	_, err := d.c.Call(ctx, common.OpI2CWS, d.Handle, uint32(value))
	return err
}

// ReadByteData reads a byte from a register
func (d *Device) ReadByteData(ctx context.Context, reg byte) (byte, error) {
	res, err := d.c.Call(ctx, common.OpI2CRB, d.Handle, uint32(reg))
	if err != nil {
		return 0, err
	}
	return byte(res.Value), nil
}

// WriteByteData writes a byte to a register
func (d *Device) WriteByteData(ctx context.Context, reg, value byte) error {
	_, err := d.c.Call(ctx, common.OpI2CWB, d.Handle, uint32(reg), uint32(value))
	return err
}

// ReadWordData reads a 16-bit word from a register
func (d *Device) ReadWordData(ctx context.Context, reg byte) (uint16, error) {
	res, err := d.c.Call(ctx, common.OpI2CRW, d.Handle, uint32(reg))
	if err != nil {
		return 0, err
	}
	return uint16(res.Value), nil
}

// WriteWordData writes a 16-bit word to a register
func (d *Device) WriteWordData(ctx context.Context, reg byte, value uint16) error {
	_, err := d.c.Call(ctx, common.OpI2CWW, d.Handle, uint32(reg), uint32(value))
	return err
}

// ProcessCall writes a word to a register and reads the word the device answers with
func (d *Device) ProcessCall(ctx context.Context, reg byte, value uint16) (uint16, error) {
	res, err := d.c.Call(ctx, common.OpI2CPC, d.Handle, uint32(reg), uint32(value))
	if err != nil {
		return 0, err
	}
	return uint16(res.Value), nil
}

// ReadBlockData reads an SMBus block, the device decides its length
func (d *Device) ReadBlockData(ctx context.Context, reg byte) ([]byte, error) {
	res, err := d.c.Call(ctx, common.OpI2CRK, d.Handle, uint32(reg))
	if err != nil {
		return nil, err
	}
	return res.Block, nil
}

// WriteBlockData writes an SMBus block of up to 32 bytes
func (d *Device) WriteBlockData(ctx context.Context, reg byte, data []byte) error {
	if err := checkBlock(data); err != nil {
		return err
	}
	_, err := d.c.CallRaw(ctx, common.OpI2CWK, d.Handle, uint32(reg), nil, data)
	return err
}

// BlockProcessCall writes a block of up to 32 bytes and reads the block the device answers with
func (d *Device) BlockProcessCall(ctx context.Context, reg byte, data []byte) ([]byte, error) {
	if err := checkBlock(data); err != nil {
		return nil, err
	}
	res, err := d.c.CallRaw(ctx, common.OpI2CPK, d.Handle, uint32(reg), nil, data)
	if err != nil {
		return nil, err
	}
	return res.Block, nil
}

// ReadI2CBlockData reads count bytes starting at a register
func (d *Device) ReadI2CBlockData(ctx context.Context, reg byte, count uint32) ([]byte, error) {
	if count == 0 || count > MaxBlock {
		return nil, fmt.Errorf("block count %d out of range 1-%d", count, MaxBlock)
	}
	res, err := d.c.Call(ctx, common.OpI2CRI, d.Handle, uint32(reg), count)
	if err != nil {
		return nil, err
	}
	return res.Block, nil
}

// WriteI2CBlockData writes up to 32 bytes starting at a register
func (d *Device) WriteI2CBlockData(ctx context.Context, reg byte, data []byte) error {
	if err := checkBlock(data); err != nil {
		return err
	}
	_, err := d.c.CallRaw(ctx, common.OpI2CWI, d.Handle, uint32(reg), nil, data)
	return err
}

// ReadDevice reads count bytes straight from the device
func (d *Device) ReadDevice(ctx context.Context, count uint32) ([]byte, error) {
	if count == 0 {
		return []byte{}, nil
	}
	res, err := d.c.Call(ctx, common.OpI2CRD, d.Handle, count)
	if err != nil {
		return nil, err
	}
	return res.Block, nil
}

// WriteDevice writes bytes straight to the device
func (d *Device) WriteDevice(ctx context.Context, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	_, err := d.c.CallRaw(ctx, common.OpI2CWD, d.Handle, 0, nil, data)
	return err
}

func checkBlock(data []byte) error {
	if len(data) == 0 || len(data) > MaxBlock {
		return fmt.Errorf("block length %d out of range 1-%d", len(data), MaxBlock)
	}
	return nil
}
