// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package in encodes A32 instructions.
package in

import (
	"math/bits"
	"strconv"
)

type Cond uint32

const (
	EQ = Cond(0x0) // equal to
	NE = Cond(0x1) // not equal to
	CS = Cond(0x2) // carry set
	CC = Cond(0x3) // carry clear
	MI = Cond(0x4) // minus, negative
	PL = Cond(0x5) // positive or zero
	VS = Cond(0x6) // signed overflow
	VC = Cond(0x7) // no signed overflow
	HI = Cond(0x8) // greater than (unsigned)
	LS = Cond(0x9) // less than or equal to (unsigned)
	GE = Cond(0xa) // greater than or equal to (signed)
	LT = Cond(0xb) // less than (signed)
	GT = Cond(0xc) // greater than (signed)
	LE = Cond(0xd) // less than or equal to (signed)
	AL = Cond(0xe) // always

	HS = CS // greater than or equal to (unsigned)
	LO = CC // less than (unsigned)
)

func (c Cond) bits() uint32 { return uint32(c) << 28 }

// Invert returns the opposite condition.  AL has no opposite.
func (c Cond) Invert() Cond {
	if c == AL {
		panic("in: AL condition cannot be inverted")
	}
	return c ^ 1
}

type Reg uint32

const (
	R0  = Reg(0)
	R1  = Reg(1)
	R2  = Reg(2)
	R3  = Reg(3)
	R4  = Reg(4)
	R5  = Reg(5)
	R6  = Reg(6)
	R7  = Reg(7)
	R8  = Reg(8)
	R9  = Reg(9)
	R10 = Reg(10)
	R11 = Reg(11)
	R12 = Reg(12)
	SP  = Reg(13)
	LR  = Reg(14)
	PC  = Reg(15)
)

func (r Reg) String() string {
	switch r {
	case SP:
		return "sp"
	case LR:
		return "lr"
	case PC:
		return "pc"
	}
	return "r" + strconv.Itoa(int(r))
}

func rd(r Reg) uint32 { return uint32(r&15) << 12 }
func rn(r Reg) uint32 { return uint32(r&15) << 16 }
func rm(r Reg) uint32 { return uint32(r & 15) }

// Imm is a data-processing immediate operand: an 8-bit value and a 4-bit
// rotation (rotate right by twice the field).
type Imm uint32

// EncodeImm finds the rotated-immediate form of v.  The smallest rotation is
// chosen, matching what assemblers emit.
func EncodeImm(v uint32) (imm Imm, ok bool) {
	for rot := uint32(0); rot < 16; rot++ {
		if x := bits.RotateLeft32(v, int(2*rot)); x <= 0xff {
			return Imm(rot<<8 | x), true
		}
	}
	return 0, false
}

// Value decodes the operand.
func (imm Imm) Value() uint32 {
	return bits.RotateLeft32(uint32(imm)&0xff, -int(imm>>8&15)*2)
}

type Shift uint32

const (
	LSL = Shift(0)
	LSR = Shift(1)
	ASR = Shift(2)
	ROR = Shift(3)
)

// shifted encodes "Rm, <shift> #amount".
func shifted(r Reg, s Shift, amount uint32) uint32 {
	return (amount&31)<<7 | uint32(s&3)<<5 | rm(r)
}

func imm12(off int32) (u, bits uint32) {
	if off < 0 {
		off = -off
	} else {
		u = 1 << 23
	}
	if off > 0xfff {
		panic("in: load/store offset out of range")
	}
	return u, uint32(off)
}

// Int24 checks that a branch displacement in words fits the 24-bit field.
func Int24(i int32) uint32 {
	if i < -(1<<23) || i >= 1<<23 {
		panic("in: branch displacement out of range")
	}
	return uint32(i) & 0xffffff
}
