// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package in

const (
	// Data processing
	AND = DataProc(0x0 << 21)
	EOR = DataProc(0x1 << 21)
	SUB = DataProc(0x2 << 21)
	RSB = DataProc(0x3 << 21)
	ADD = DataProc(0x4 << 21)
	ADC = DataProc(0x5 << 21)
	SBC = DataProc(0x6 << 21)
	RSC = DataProc(0x7 << 21)
	ORR = DataProc(0xc << 21)
	BIC = DataProc(0xe << 21)

	// Data processing without destination (S bit implied)
	TST = Compare(0x8<<21 | 1<<20)
	TEQ = Compare(0x9<<21 | 1<<20)
	CMP = Compare(0xa<<21 | 1<<20)
	CMN = Compare(0xb<<21 | 1<<20)

	// Data processing without first operand
	MOV = Move(0xd << 21)
	MVN = Move(0xf << 21)

	// Load/store word and unsigned byte (immediate offset)
	STR  = Mem(1<<26 | 0<<22 | 0<<20)
	LDR  = Mem(1<<26 | 0<<22 | 1<<20)
	STRB = Mem(1<<26 | 1<<22 | 0<<20)
	LDRB = Mem(1<<26 | 1<<22 | 1<<20)

	// Branch (immediate)
	B  = Branch(5<<25 | 0<<24)
	BL = Branch(5<<25 | 1<<24)

	// Branch and exchange (register)
	BX  = BranchReg(0x12fff1 << 4)
	BLX = BranchReg(0x12fff3 << 4)

	// Status register access
	MRS    = StatusRead(0x10f << 16)
	MSR    = StatusWrite(0x120f << 12)
	MSRimm = StatusWriteImm(0x320f << 12)

	// Coprocessor register transfer
	MCR = Coproc(0xe<<24 | 0<<20 | 1<<4)
	MRC = Coproc(0xe<<24 | 1<<20 | 1<<4)
)

// NOP is "mov r0, r0".
const NOP = 0xe1a00000

const (
	immBit = 1 << 25
	sBit   = 1 << 20
)

// DataProc is a data-processing instruction with destination and first
// operand registers.
type DataProc uint32

func (op DataProc) RdRnImm(c Cond, d, n Reg, imm Imm) uint32 {
	return c.bits() | uint32(op) | immBit | rn(n) | rd(d) | uint32(imm)
}

func (op DataProc) RdRnRm(c Cond, d, n, m Reg) uint32 {
	return c.bits() | uint32(op) | rn(n) | rd(d) | rm(m)
}

func (op DataProc) RdRnRmShift(c Cond, d, n, m Reg, s Shift, amount uint32) uint32 {
	return c.bits() | uint32(op) | rn(n) | rd(d) | shifted(m, s, amount)
}

// S returns the flag-setting variant.
func (op DataProc) S() DataProc { return op | sBit }

type Compare uint32

func (op Compare) RnImm(c Cond, n Reg, imm Imm) uint32 {
	return c.bits() | uint32(op) | immBit | rn(n) | uint32(imm)
}

func (op Compare) RnRm(c Cond, n, m Reg) uint32 {
	return c.bits() | uint32(op) | rn(n) | rm(m)
}

type Move uint32

func (op Move) RdImm(c Cond, d Reg, imm Imm) uint32 {
	return c.bits() | uint32(op) | immBit | rd(d) | uint32(imm)
}

func (op Move) RdRm(c Cond, d, m Reg) uint32 {
	return c.bits() | uint32(op) | rd(d) | rm(m)
}

func (op Move) RdRmShift(c Cond, d, m Reg, s Shift, amount uint32) uint32 {
	return c.bits() | uint32(op) | rd(d) | shifted(m, s, amount)
}

// Index selects the addressing mode of a load or store.
type Index uint32

const (
	Offset  = Index(1<<24 | 0<<21) // [Rn, #off]
	PreIdx  = Index(1<<24 | 1<<21) // [Rn, #off]!
	PostIdx = Index(0<<24 | 0<<21) // [Rn], #off
)

type Mem uint32

// RtRnI12 encodes an immediate-offset access.  The offset is a signed byte
// count in [-4095, 4095].
func (op Mem) RtRnI12(c Cond, t, n Reg, off int32, x Index) uint32 {
	u, i := imm12(off)
	return c.bits() | uint32(op) | uint32(x) | u | rn(n) | rd(t) | i
}

// Literal encodes a PC-relative load or store.  disp is the byte distance
// from the instruction to the literal.
func (op Mem) Literal(c Cond, t Reg, disp int32) uint32 {
	return op.RtRnI12(c, t, PC, disp-pipelineOffset, Offset)
}

const pipelineOffset = 8

type Branch uint32

// Disp encodes a branch to an address disp bytes away from the branch
// instruction.
func (op Branch) Disp(c Cond, disp int32) uint32 {
	if disp&3 != 0 {
		panic("in: misaligned branch displacement")
	}
	return c.bits() | uint32(op) | Int24((disp-pipelineOffset)>>2)
}

// BranchDisp decodes the displacement of a B or BL instruction word.
func BranchDisp(insn uint32) int32 {
	return int32(insn<<8)>>6 + pipelineOffset
}

type BranchReg uint32

func (op BranchReg) Rm(c Cond, m Reg) uint32 {
	return c.bits() | uint32(op) | rm(m)
}

// PSR selection for status register access.
type PSR uint32

const (
	CPSR = PSR(0 << 22)
	SPSR = PSR(1 << 22)
)

type StatusRead uint32

func (op StatusRead) Rd(c Cond, d Reg, p PSR) uint32 {
	return c.bits() | uint32(op) | uint32(p) | rd(d)
}

type StatusWrite uint32

// FieldsRm encodes MSR with a register source.  fields is the 4-bit field
// mask (bit 0 control, bit 1 extension, bit 2 status, bit 3 flags).
func (op StatusWrite) FieldsRm(c Cond, p PSR, fields uint32, m Reg) uint32 {
	return c.bits() | uint32(op) | uint32(p) | (fields&15)<<16 | rm(m)
}

type StatusWriteImm uint32

func (op StatusWriteImm) FieldsImm(c Cond, p PSR, fields uint32, imm Imm) uint32 {
	return c.bits() | uint32(op) | uint32(p) | (fields&15)<<16 | uint32(imm)
}

type Coproc uint32

// Op encodes "mcr/mrc p<cp>, opc1, Rt, c<crn>, c<crm>, opc2".
func (op Coproc) Op(c Cond, cp, opc1 uint32, t Reg, crn, crm, opc2 uint32) uint32 {
	return c.bits() | uint32(op) | (opc1&7)<<21 | (crn&15)<<16 | rd(t) | (cp&15)<<8 | (opc2&7)<<5 | crm&15
}
