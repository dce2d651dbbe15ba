package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Opcode Type Definition
// --------------------------------------------------------------------------

// Opcode is the numeric command identifier understood by the daemon.
type Opcode uint32

// String returns the mnemonic of the opcode (e.g. "I2CO").
func (o Opcode) String() string {
	if info, ok := opcodeTable[o]; ok {
		return info.name
	}
	return fmt.Sprintf("OP(%d)", uint32(o))
}

// IsKnown reports whether the opcode is part of the command table
func (o Opcode) IsKnown() bool {
	_, ok := opcodeTable[o]
	return ok
}

// IsBlock reports whether the reply to this opcode carries a variable-length
// payload instead of a single scalar result. Membership is an exact match
// against a fixed set.
func (o Opcode) IsBlock() bool {
	_, ok := blockOpcodes[o]
	return ok
}

// Shape returns the extension shape a command with this opcode must carry.
// Unknown opcodes accept any extension.
func (o Opcode) Shape() Shape {
	if info, ok := opcodeTable[o]; ok {
		return info.shape
	}
	return Shape{VarWords: true, Raw: true}
}

// MarshalJSON implements the json.Marshaller interface for Opcode.
// This allows Opcode to be serialized as its mnemonic in JSON.
func (o Opcode) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for Opcode.
func (o *Opcode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	op, ok := LookupOpcode(s)
	if !ok {
		return fmt.Errorf("unknown opcode: %s", s)
	}
	*o = op
	return nil
}

// --------------------------------------------------------------------------
// Lookup
// --------------------------------------------------------------------------

// LookupOpcode resolves a mnemonic (case-insensitive) to its opcode.
func LookupOpcode(name string) (Opcode, bool) {
	op, ok := opcodeNames[strings.ToUpper(strings.TrimSpace(name))]
	return op, ok
}

// MustOpcode resolves a mnemonic to its opcode and panics if the name is not
// part of the table. An unknown name is a programming error.
func MustOpcode(name string) Opcode {
	op, ok := LookupOpcode(name)
	if !ok {
		panic(fmt.Sprintf("unknown command name: %q", name))
	}
	return op
}

// Opcodes returns all known opcodes in ascending order.
func Opcodes() []Opcode {
	ops := make([]Opcode, 0, len(opcodeTable))
	for op := Opcode(0); op <= OpWVCAP; op++ {
		if _, ok := opcodeTable[op]; ok {
			ops = append(ops, op)
		}
	}
	return ops
}

// --------------------------------------------------------------------------
// Extension Shape
// --------------------------------------------------------------------------

// Shape describes the extension a command must carry.
type Shape struct {
	// Words is the number of fixed 32-bit words
	Words int
	// VarWords allows any number of additional 32-bit words
	VarWords bool
	// Raw allows unaligned trailing bytes after the words
	Raw bool
}

// Check verifies an extension of the given size against the shape
func (s Shape) Check(words, raw int) error {
	if s.VarWords {
		if words < s.Words {
			return fmt.Errorf("%w: need at least %d extension words, got %d", ErrBadShape, s.Words, words)
		}
	} else if words != s.Words {
		return fmt.Errorf("%w: need %d extension words, got %d", ErrBadShape, s.Words, words)
	}
	if raw > 0 && !s.Raw {
		return fmt.Errorf("%w: command takes no raw extension bytes, got %d", ErrBadShape, raw)
	}
	return nil
}

var (
	shapeNone     = Shape{}
	shapeOneWord  = Shape{Words: 1}
	shapeVarWords = Shape{VarWords: true}
	shapeRaw      = Shape{Raw: true}
)

// --------------------------------------------------------------------------
// Opcode Constants
// --------------------------------------------------------------------------

const (
	// Basic GPIO

	OpMODES Opcode = 0 // set gpio mode
	OpMODEG Opcode = 1 // get gpio mode
	OpPUD   Opcode = 2 // set pull up/down
	OpREAD  Opcode = 3 // read gpio level
	OpWRITE Opcode = 4 // write gpio level
	OpPWM   Opcode = 5 // set pwm dutycycle
	OpPRS   Opcode = 6 // set pwm range
	OpPFS   Opcode = 7 // set pwm frequency
	OpSERVO Opcode = 8 // set servo pulsewidth
	OpWDOG  Opcode = 9 // set watchdog

	// Bank operations

	OpBR1   Opcode = 10
	OpBR2   Opcode = 11
	OpBC1   Opcode = 12
	OpBC2   Opcode = 13
	OpBS1   Opcode = 14
	OpBS2   Opcode = 15
	OpTICK  Opcode = 16
	OpHWVER Opcode = 17
	OpNO    Opcode = 18
	OpNB    Opcode = 19
	OpNP    Opcode = 20
	OpNC    Opcode = 21
	OpPRG   Opcode = 22
	OpPFG   Opcode = 23
	OpPRRG  Opcode = 24
	OpHELP  Opcode = 25
	OpPIGPV Opcode = 26

	// Waveforms

	OpWVCLR Opcode = 27
	OpWVAG  Opcode = 28
	OpWVAS  Opcode = 29
	OpWVGO  Opcode = 30
	OpWVGOR Opcode = 31
	OpWVBSY Opcode = 32
	OpWVHLT Opcode = 33
	OpWVSM  Opcode = 34
	OpWVSP  Opcode = 35
	OpWVSC  Opcode = 36
	OpTRIG  Opcode = 37

	// Scripts

	OpPROC  Opcode = 38
	OpPROCD Opcode = 39
	OpPROCR Opcode = 40
	OpPROCS Opcode = 41
	OpSLRO  Opcode = 42
	OpSLR   Opcode = 43
	OpSLRC  Opcode = 44
	OpPROCP Opcode = 45
	OpMICS  Opcode = 46
	OpMILS  Opcode = 47
	OpPARSE Opcode = 48
	OpWVCRE Opcode = 49
	OpWVDEL Opcode = 50
	OpWVTX  Opcode = 51
	OpWVTXR Opcode = 52
	OpWVNEW Opcode = 53

	// I2C

	OpI2CO  Opcode = 54 // open device
	OpI2CC  Opcode = 55 // close device
	OpI2CRD Opcode = 56 // raw device read
	OpI2CWD Opcode = 57 // raw device write
	OpI2CWQ Opcode = 58 // write quick
	OpI2CRS Opcode = 59 // read byte
	OpI2CWS Opcode = 60 // write byte
	OpI2CRB Opcode = 61 // read byte data
	OpI2CWB Opcode = 62 // write byte data
	OpI2CRW Opcode = 63 // read word data
	OpI2CWW Opcode = 64 // write word data
	OpI2CRK Opcode = 65 // read block data
	OpI2CWK Opcode = 66 // write block data
	OpI2CRI Opcode = 67 // read i2c block data
	OpI2CWI Opcode = 68 // write i2c block data
	OpI2CPC Opcode = 69 // process call
	OpI2CPK Opcode = 70 // block process call

	// SPI and serial

	OpSPIO  Opcode = 71
	OpSPIC  Opcode = 72
	OpSPIR  Opcode = 73
	OpSPIW  Opcode = 74
	OpSPIX  Opcode = 75
	OpSERO  Opcode = 76
	OpSERC  Opcode = 77
	OpSERRB Opcode = 78
	OpSERWB Opcode = 79
	OpSERR  Opcode = 80
	OpSERW  Opcode = 81
	OpSERDA Opcode = 82

	// Misc

	OpGDC   Opcode = 83
	OpGPW   Opcode = 84
	OpHC    Opcode = 85
	OpHP    Opcode = 86
	OpCF1   Opcode = 87
	OpCF2   Opcode = 88
	OpBI2CC Opcode = 89
	OpBI2CO Opcode = 90
	OpBI2CZ Opcode = 91
	OpI2CZ  Opcode = 92
	OpWVCHA Opcode = 93
	OpSLRI  Opcode = 94
	OpCGI   Opcode = 95
	OpCSI   Opcode = 96
	OpFG    Opcode = 97
	OpFN    Opcode = 98
	OpNOIB  Opcode = 99
	OpWVTXM Opcode = 100
	OpWVTAT Opcode = 101
	OpPADS  Opcode = 102
	OpPADG  Opcode = 103
	OpFO    Opcode = 104
	OpFC    Opcode = 105
	OpFR    Opcode = 106
	OpFW    Opcode = 107
	OpFS    Opcode = 108
	OpFL    Opcode = 109
	OpSHELL Opcode = 110
	OpBSPIC Opcode = 111
	OpBSPIO Opcode = 112
	OpBSPIX Opcode = 113
	OpBSCX  Opcode = 114
	OpEVM   Opcode = 115
	OpEVT   Opcode = 116
	OpPROCU Opcode = 117
	OpWVCAP Opcode = 118
)

// --------------------------------------------------------------------------
// Tables
// --------------------------------------------------------------------------

type opcodeInfo struct {
	name  string
	shape Shape
}

// opcodeTable lists every command. Commands not listed with a shape carry no extension.
var opcodeTable = map[Opcode]opcodeInfo{
	OpMODES: {"MODES", shapeNone},
	OpMODEG: {"MODEG", shapeNone},
	OpPUD:   {"PUD", shapeNone},
	OpREAD:  {"READ", shapeNone},
	OpWRITE: {"WRITE", shapeNone},
	OpPWM:   {"PWM", shapeNone},
	OpPRS:   {"PRS", shapeNone},
	OpPFS:   {"PFS", shapeNone},
	OpSERVO: {"SERVO", shapeNone},
	OpWDOG:  {"WDOG", shapeNone},
	OpBR1:   {"BR1", shapeNone},
	OpBR2:   {"BR2", shapeNone},
	OpBC1:   {"BC1", shapeNone},
	OpBC2:   {"BC2", shapeNone},
	OpBS1:   {"BS1", shapeNone},
	OpBS2:   {"BS2", shapeNone},
	OpTICK:  {"TICK", shapeNone},
	OpHWVER: {"HWVER", shapeNone},
	OpNO:    {"NO", shapeNone},
	OpNB:    {"NB", shapeNone},
	OpNP:    {"NP", shapeNone},
	OpNC:    {"NC", shapeNone},
	OpPRG:   {"PRG", shapeNone},
	OpPFG:   {"PFG", shapeNone},
	OpPRRG:  {"PRRG", shapeNone},
	OpHELP:  {"HELP", shapeNone},
	OpPIGPV: {"PIGPV", shapeNone},
	OpWVCLR: {"WVCLR", shapeNone},
	OpWVAG:  {"WVAG", shapeVarWords}, // 3 words per pulse
	OpWVAS:  {"WVAS", Shape{Words: 3, Raw: true}},
	OpWVGO:  {"WVGO", shapeNone},
	OpWVGOR: {"WVGOR", shapeNone},
	OpWVBSY: {"WVBSY", shapeNone},
	OpWVHLT: {"WVHLT", shapeNone},
	OpWVSM:  {"WVSM", shapeNone},
	OpWVSP:  {"WVSP", shapeNone},
	OpWVSC:  {"WVSC", shapeNone},
	OpTRIG:  {"TRIG", shapeOneWord},
	OpPROC:  {"PROC", shapeRaw},
	OpPROCD: {"PROCD", shapeNone},
	OpPROCR: {"PROCR", shapeVarWords},
	OpPROCS: {"PROCS", shapeNone},
	OpSLRO:  {"SLRO", shapeOneWord},
	OpSLR:   {"SLR", shapeNone},
	OpSLRC:  {"SLRC", shapeNone},
	OpPROCP: {"PROCP", shapeNone},
	OpMICS:  {"MICS", shapeNone},
	OpMILS:  {"MILS", shapeNone},
	OpPARSE: {"PARSE", shapeRaw},
	OpWVCRE: {"WVCRE", shapeNone},
	OpWVDEL: {"WVDEL", shapeNone},
	OpWVTX:  {"WVTX", shapeNone},
	OpWVTXR: {"WVTXR", shapeNone},
	OpWVNEW: {"WVNEW", shapeNone},
	OpI2CO:  {"I2CO", shapeOneWord},
	OpI2CC:  {"I2CC", shapeNone},
	OpI2CRD: {"I2CRD", shapeNone},
	OpI2CWD: {"I2CWD", shapeRaw},
	OpI2CWQ: {"I2CWQ", shapeNone},
	OpI2CRS: {"I2CRS", shapeNone},
	OpI2CWS: {"I2CWS", shapeNone},
	OpI2CRB: {"I2CRB", shapeNone},
	OpI2CWB: {"I2CWB", shapeOneWord},
	OpI2CRW: {"I2CRW", shapeNone},
	OpI2CWW: {"I2CWW", shapeOneWord},
	OpI2CRK: {"I2CRK", shapeNone},
	OpI2CWK: {"I2CWK", shapeRaw},
	OpI2CRI: {"I2CRI", shapeOneWord},
	OpI2CWI: {"I2CWI", shapeRaw},
	OpI2CPC: {"I2CPC", shapeOneWord},
	OpI2CPK: {"I2CPK", shapeRaw},
	OpSPIO:  {"SPIO", shapeOneWord},
	OpSPIC:  {"SPIC", shapeNone},
	OpSPIR:  {"SPIR", shapeNone},
	OpSPIW:  {"SPIW", shapeRaw},
	OpSPIX:  {"SPIX", shapeRaw},
	OpSERO:  {"SERO", shapeRaw},
	OpSERC:  {"SERC", shapeNone},
	OpSERRB: {"SERRB", shapeNone},
	OpSERWB: {"SERWB", shapeNone},
	OpSERR:  {"SERR", shapeNone},
	OpSERW:  {"SERW", shapeRaw},
	OpSERDA: {"SERDA", shapeNone},
	OpGDC:   {"GDC", shapeNone},
	OpGPW:   {"GPW", shapeNone},
	OpHC:    {"HC", shapeNone},
	OpHP:    {"HP", shapeOneWord},
	OpCF1:   {"CF1", shapeNone},
	OpCF2:   {"CF2", shapeRaw},
	OpBI2CC: {"BI2CC", shapeNone},
	OpBI2CO: {"BI2CO", shapeOneWord},
	OpBI2CZ: {"BI2CZ", shapeRaw},
	OpI2CZ:  {"I2CZ", shapeRaw},
	OpWVCHA: {"WVCHA", shapeRaw},
	OpSLRI:  {"SLRI", shapeNone},
	OpCGI:   {"CGI", shapeNone},
	OpCSI:   {"CSI", shapeNone},
	OpFG:    {"FG", shapeNone},
	OpFN:    {"FN", shapeOneWord},
	OpNOIB:  {"NOIB", shapeNone},
	OpWVTXM: {"WVTXM", shapeNone},
	OpWVTAT: {"WVTAT", shapeNone},
	OpPADS:  {"PADS", shapeNone},
	OpPADG:  {"PADG", shapeNone},
	OpFO:    {"FO", shapeRaw},
	OpFC:    {"FC", shapeNone},
	OpFR:    {"FR", shapeNone},
	OpFW:    {"FW", shapeRaw},
	OpFS:    {"FS", shapeOneWord},
	OpFL:    {"FL", shapeRaw},
	OpSHELL: {"SHELL", shapeRaw},
	OpBSPIC: {"BSPIC", shapeNone},
	OpBSPIO: {"BSPIO", Shape{Words: 5}},
	OpBSPIX: {"BSPIX", shapeRaw},
	OpBSCX:  {"BSCX", shapeRaw},
	OpEVM:   {"EVM", shapeNone},
	OpEVT:   {"EVT", shapeNone},
	OpPROCU: {"PROCU", shapeVarWords},
	OpWVCAP: {"WVCAP", shapeNone},
}

// blockOpcodes are the commands whose reply header announces a payload length
var blockOpcodes = map[Opcode]struct{}{
	OpI2CRD: {},
	OpI2CRK: {},
	OpI2CRI: {},
	OpI2CPK: {},
	OpI2CZ:  {},
	OpBI2CZ: {},
	OpBSCX:  {},
	OpBSPIX: {},
	OpCF2:   {},
	OpFL:    {},
	OpFR:    {},
	OpPROCP: {},
	OpSERR:  {},
	OpSLR:   {},
	OpSPIR:  {},
	OpSPIX:  {},
}

// opcodeNames is the inverse of opcodeTable, built once at init
var opcodeNames = func() map[string]Opcode {
	names := make(map[string]Opcode, len(opcodeTable))
	for op, info := range opcodeTable {
		if _, dup := names[info.name]; dup {
			panic(fmt.Sprintf("duplicate command name %s", info.name))
		}
		names[info.name] = op
	}
	return names
}()
