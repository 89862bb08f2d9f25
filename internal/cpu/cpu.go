// Package cpu implements the Chip16 instruction interpreter: register and
// flag state, the 256-entry opcode dispatch table, and the handlers for
// every opcode family.
package cpu

import (
	"fmt"

	"github.com/RetroCodeRamen/chip16/internal/audio"
	"github.com/RetroCodeRamen/chip16/internal/debug"
	"github.com/RetroCodeRamen/chip16/internal/video"
)

// MemoryInterface defines the memory access the CPU needs.
type MemoryInterface interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, value uint8)
	Read16(addr uint16) uint16
	Write16(addr uint16, value uint16)
}

// VideoInterface defines the GPU operations reachable from opcodes.
type VideoInterface interface {
	CLS()
	SetBG(bg uint8)
	SetSpriteSize(w, h uint8)
	SetFlip(hflip, vflip bool)
	Draw(mem video.MemoryReader, x0, y0 int16, addr uint16) bool
	LoadPalette(mem video.MemoryReader, addr uint16)
}

// AudioInterface defines the synthesizer operations reachable from opcodes.
type AudioInterface interface {
	Stop()
	PlayFixed(freqHz float64, durationMs uint16)
	PlayCustom(freqHz float64, durationMs uint16)
	SetADSR(attackIdx, decayIdx, volumeIdx, sustainIdx uint8, waveform audio.Waveform)
}

// RNGSource is the minimal random source RND needs; *rand.Rand satisfies it.
type RNGSource interface {
	Intn(n int) int
}

// LoggerInterface defines the logging hook the CPU calls after each fetch.
type LoggerInterface interface {
	LogCPUf(level debug.LogLevel, format string, args ...interface{})
}

// State is the complete architectural state of the CPU.
type State struct {
	R  [16]int16
	PC uint16
	SP uint16

	C, Z, O, N bool
}

// Flag byte layout written by PUSHF / read by POPF.
const (
	flagBitC = 1
	flagBitZ = 2
	flagBitO = 6
	flagBitN = 7
)

// StackInit is the stack pointer's reset value; the stack grows upward
// from here.
const StackInit = 0xFDF0

// CPU couples architectural state to the collaborators its opcodes drive.
type CPU struct {
	State State

	Mem   MemoryInterface
	Video VideoInterface
	Audio AudioInterface
	RNG   RNGSource
	Log   LoggerInterface

	// VBlankLatch is true for exactly the first instruction executed
	// after a frame boundary; VBLNK spins until this is set.
	VBlankLatch bool
}

// New creates a CPU wired to its memory, video, audio, and RNG
// collaborators.
func New(mem MemoryInterface, video VideoInterface, audio AudioInterface, rng RNGSource, log LoggerInterface) *CPU {
	c := &CPU{Mem: mem, Video: video, Audio: audio, RNG: rng, Log: log}
	c.Reset()
	return c
}

// Reset zeroes registers and flags and resets the stack pointer. The
// caller must set State.PC separately (from the ROM's entry point).
func (c *CPU) Reset() {
	c.State.R = [16]int16{}
	c.State.SP = StackInit
	c.State.C, c.State.Z, c.State.O, c.State.N = false, false, false, false
	c.VBlankLatch = false
}

// SetEntryPoint sets the program counter to the ROM's declared start
// address.
func (c *CPU) SetEntryPoint(pc uint16) {
	c.State.PC = pc
}

// fetch reads the 4 bytes at PC without advancing it.
func (c *CPU) fetch() (opcode, operand uint8, hhll uint16) {
	b0 := c.Mem.Read8(c.State.PC)
	b1 := c.Mem.Read8(c.State.PC + 1)
	b2 := c.Mem.Read8(c.State.PC + 2)
	b3 := c.Mem.Read8(c.State.PC + 3)
	return b0, b1, uint16(b2) | uint16(b3)<<8
}

// Step fetches, advances PC by 4, and dispatches one instruction. Opcode
// handlers that branch overwrite PC again after this advance, per
// per the opcode's branch semantics.
func (c *CPU) Step() error {
	opcode, operand, hhll := c.fetch()
	c.State.PC += 4

	rx := operand & 0xF
	ry := (operand >> 4) & 0xF

	if c.Log != nil {
		c.Log.LogCPUf(debug.LogLevelTrace, "pc=%04X op=%02X operand=%02X hhll=%04X", c.State.PC-4, opcode, operand, hhll)
	}

	return c.dispatch(opcode, rx, ry, hhll)
}

func (c *CPU) dispatch(opcode, rx, ry uint8, hhll uint16) error {
	switch opcode {
	case 0x00:
		return nil // NOP
	case 0x01:
		return c.executeCLS()
	case 0x02:
		return c.executeVBLNK()
	case 0x03:
		return c.executeBGC(hhll)
	case 0x04:
		return c.executeSPR(hhll)
	case 0x05:
		return c.executeDRWImm(rx, ry, hhll)
	case 0x06:
		return c.executeDRWReg(rx, ry, hhll)
	case 0x07:
		return c.executeRND(rx, hhll)
	case 0x08:
		return c.executeFLIP(hhll)
	case 0x09:
		return c.executeSND0()
	case 0x0A:
		return c.executeSNDFixed(500, hhll)
	case 0x0B:
		return c.executeSNDFixed(1000, hhll)
	case 0x0C:
		return c.executeSNDFixed(1500, hhll)
	case 0x0D:
		return c.executeSNP(rx, hhll)
	case 0x0E:
		return c.executeSNG(rx, ry, hhll)

	case 0x10:
		return c.executeJMPImm(hhll)
	case 0x11:
		return c.executeJMC(hhll)
	case 0x12:
		return c.executeJx(rx, hhll)
	case 0x13:
		return c.executeJME(rx, ry, hhll)
	case 0x14:
		return c.executeCALLImm(hhll)
	case 0x15:
		return c.executeRET()
	case 0x16:
		return c.executeJMPReg(rx)
	case 0x17:
		return c.executeCx(rx, hhll)
	case 0x18:
		return c.executeCALLReg(rx)

	case 0x20:
		return c.executeLDIReg(rx, hhll)
	case 0x21:
		return c.executeLDISP(hhll)
	case 0x22:
		return c.executeLDMImm(rx, hhll)
	case 0x23:
		return c.executeLDMReg(rx, ry)
	case 0x24:
		return c.executeMOV(rx, ry)

	case 0x30:
		return c.executeSTMImm(rx, hhll)
	case 0x31:
		return c.executeSTMReg(rx, ry)

	case 0x40:
		return c.executeADD(rx, int16(hhll))
	case 0x41:
		return c.executeADD(rx, c.State.R[ry])
	case 0x42:
		return c.executeADD3(rx, ry, uint8(hhll)&0xF)

	case 0x50:
		return c.executeSUB(rx, int16(hhll), false)
	case 0x51:
		return c.executeSUB(rx, c.State.R[ry], false)
	case 0x52:
		return c.executeSUB3(rx, ry, uint8(hhll)&0xF)
	case 0x53:
		return c.executeSUB(rx, int16(hhll), true)
	case 0x54:
		return c.executeSUB(rx, c.State.R[ry], true)

	case 0x60:
		return c.executeAND(rx, int16(hhll), false)
	case 0x61:
		return c.executeAND(rx, c.State.R[ry], false)
	case 0x62:
		return c.executeAND3(rx, ry, uint8(hhll)&0xF)
	case 0x63:
		return c.executeAND(rx, int16(hhll), true)
	case 0x64:
		return c.executeAND(rx, c.State.R[ry], true)

	case 0x70:
		return c.executeOR(rx, int16(hhll))
	case 0x71:
		return c.executeOR(rx, c.State.R[ry])
	case 0x72:
		return c.executeOR3(rx, ry, uint8(hhll)&0xF)

	case 0x80:
		return c.executeXOR(rx, int16(hhll))
	case 0x81:
		return c.executeXOR(rx, c.State.R[ry])
	case 0x82:
		return c.executeXOR3(rx, ry, uint8(hhll)&0xF)

	case 0x90:
		return c.executeMUL(rx, int16(hhll))
	case 0x91:
		return c.executeMUL(rx, c.State.R[ry])
	case 0x92:
		return c.executeMUL3(rx, ry, uint8(hhll)&0xF)

	case 0xA0:
		return c.executeDIV(rx, int16(hhll))
	case 0xA1:
		return c.executeDIV(rx, c.State.R[ry])
	case 0xA2:
		return c.executeDIV3(rx, ry, uint8(hhll)&0xF)
	case 0xA3:
		return c.executeMOD(rx, int16(hhll))
	case 0xA4:
		return c.executeMOD(rx, c.State.R[ry])
	case 0xA5:
		return c.executeMOD3(rx, ry, uint8(hhll)&0xF)
	case 0xA6:
		return c.executeREM(rx, int16(hhll))
	case 0xA7:
		return c.executeREM(rx, c.State.R[ry])
	case 0xA8:
		return c.executeREM3(rx, ry, uint8(hhll)&0xF)

	case 0xB0:
		return c.executeSHL(rx, uint8(hhll)&0xF)
	case 0xB1:
		return c.executeSHR(rx, uint8(hhll)&0xF)
	case 0xB2:
		return c.executeSAR(rx, uint8(hhll)&0xF)
	case 0xB3:
		return c.executeSHL(rx, uint8(c.State.R[ry])&0xF)
	case 0xB4:
		return c.executeSHR(rx, uint8(c.State.R[ry])&0xF)
	case 0xB5:
		return c.executeSAR(rx, uint8(c.State.R[ry])&0xF)

	case 0xC0:
		return c.executePUSH(rx)
	case 0xC1:
		return c.executePOP(rx)
	case 0xC2:
		return c.executePUSHALL()
	case 0xC3:
		return c.executePOPALL()
	case 0xC4:
		return c.executePUSHF()
	case 0xC5:
		return c.executePOPF()

	case 0xD0:
		return c.executePALImm(hhll)
	case 0xD1:
		return c.executePALReg(rx)

	case 0xE0:
		return c.executeNOT(rx, rx)
	case 0xE1:
		return c.executeNOT(rx, ry)
	case 0xE2:
		return c.executeNEG(rx, rx)
	case 0xE3:
		return c.executeNEG(rx, ry)
	case 0xE4:
		return c.executeNOTImm(rx, hhll)
	case 0xE5:
		return c.executeNEGImm(rx, hhll)

	default:
		return fmt.Errorf("cpu: invalid opcode 0x%02X at pc=0x%04X", opcode, c.State.PC-4)
	}
}

func (c *CPU) updateFlagsZN(result int16) {
	c.State.Z = result == 0
	c.State.N = result < 0
}

// evalCondition evaluates the 15 Jx/Cx condition codes (0x0-0xE); 0xF is
// an error.
func (c *CPU) evalCondition(code uint8) (bool, error) {
	s := &c.State
	switch code {
	case 0x0:
		return s.Z, nil
	case 0x1:
		return !s.Z, nil
	case 0x2:
		return s.N, nil
	case 0x3:
		return !s.N, nil
	case 0x4:
		return !s.Z && !s.N, nil
	case 0x5:
		return s.O, nil
	case 0x6:
		return !s.O, nil
	case 0x7:
		return !s.C && !s.Z, nil
	case 0x8:
		return !s.C, nil
	case 0x9:
		return s.C, nil
	case 0xA:
		return s.C || s.Z, nil
	case 0xB:
		return s.O == s.N && !s.Z, nil
	case 0xC:
		return s.O == s.N, nil
	case 0xD:
		return s.O != s.N, nil
	case 0xE:
		return s.O != s.N || s.Z, nil
	default:
		return false, fmt.Errorf("cpu: invalid condition code 0x%X at pc=0x%04X", code, c.State.PC-4)
	}
}
