// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emu

import (
	"math/bits"

	"github.com/armboot/pieboot/arm"
)

// reg reads a register operand of the instruction at pc.
func (m *Machine) reg(pc uint32, n uint32) uint32 {
	if n == 15 {
		return pc + arm.PipelineOffset
	}
	return m.R[n]
}

func (m *Machine) cond(c uint32) bool {
	var (
		n  = m.cpsr&arm.N != 0
		z  = m.cpsr&arm.Z != 0
		cf = m.cpsr&arm.C != 0
		v  = m.cpsr&arm.V != 0
	)

	switch c {
	case 0x0:
		return z
	case 0x1:
		return !z
	case 0x2:
		return cf
	case 0x3:
		return !cf
	case 0x4:
		return n
	case 0x5:
		return !n
	case 0x6:
		return v
	case 0x7:
		return !v
	case 0x8:
		return cf && !z
	case 0x9:
		return !cf || z
	case 0xa:
		return n == v
	case 0xb:
		return n != v
	case 0xc:
		return !z && n == v
	case 0xd:
		return z || n != v
	default:
		return true
	}
}

// exec returns false if the instruction is undefined or outside the
// supported subset.
func (m *Machine) exec(pc, insn uint32) bool {
	c := insn >> 28
	if c == 0xf {
		return false
	}
	if !m.cond(c) {
		return true
	}

	switch {
	case insn&0x0ffffff0 == 0x012fff10: // BX
		m.R[15] = m.reg(pc, insn&15) &^ 1
		return true

	case insn&0x0ffffff0 == 0x012fff30: // BLX (register)
		target := m.reg(pc, insn&15) &^ 1
		m.R[14] = pc + 4
		m.R[15] = target
		return true

	case insn&0x0fbf0fff == 0x010f0000: // MRS
		if insn&(1<<22) != 0 {
			return false
		}
		d := insn >> 12 & 15
		if d == 15 {
			return false
		}
		m.R[d] = uint32(m.cpsr)
		return true

	case insn&0x0fb0fff0 == 0x0120f000: // MSR (register)
		return m.msr(insn, m.reg(pc, insn&15))

	case insn&0x0fb0f000 == 0x0320f000: // MSR (immediate)
		return m.msr(insn, bits.RotateLeft32(insn&0xff, -int(insn>>8&15)*2))

	case insn&0x0c000000 == 0x00000000:
		return m.dataProc(pc, insn)

	case insn&0x0c000000 == 0x04000000:
		return m.loadStore(pc, insn)

	case insn&0x0e000000 == 0x0a000000: // B, BL
		if insn&(1<<24) != 0 {
			m.R[14] = pc + 4
		}
		m.R[15] = pc + uint32(int32(insn<<8)>>6) + arm.PipelineOffset
		return true

	case insn&0x0f000010 == 0x0e000010: // MCR, MRC
		return m.coproc(insn)
	}

	return false
}

func (m *Machine) msr(insn, value uint32) bool {
	if insn&(1<<22) != 0 {
		return false // SPSR
	}

	mask := arm.Masked(insn >> 16 & 15)
	if !m.cpsr.Mode().Privileged() {
		mask &= 0xff000000
	}

	p := m.cpsr&^mask | arm.PSR(value)&mask
	if !p.Mode().Valid() {
		return false
	}

	m.SetCPSR(p)
	return true
}

// shifter computes the second operand and the shifter carry-out.
func (m *Machine) shifter(pc, insn uint32) (value uint32, carry bool, ok bool) {
	carry = m.cpsr&arm.C != 0

	if insn&(1<<25) != 0 {
		rot := int(insn>>8&15) * 2
		value = bits.RotateLeft32(insn&0xff, -rot)
		if rot != 0 {
			carry = value>>31 != 0
		}
		return value, carry, true
	}

	if insn&(1<<4) != 0 {
		return 0, false, false // Register-specified shift, multiply, extra load/store.
	}

	x := m.reg(pc, insn&15)
	amount := insn >> 7 & 31

	switch insn >> 5 & 3 {
	case 0: // LSL
		if amount == 0 {
			return x, carry, true
		}
		return x << amount, x>>(32-amount)&1 != 0, true

	case 1: // LSR
		if amount == 0 {
			return 0, x>>31 != 0, true
		}
		return x >> amount, x>>(amount-1)&1 != 0, true

	case 2: // ASR
		if amount == 0 {
			if int32(x) < 0 {
				return 0xffffffff, true, true
			}
			return 0, false, true
		}
		return uint32(int32(x) >> amount), x>>(amount-1)&1 != 0, true

	default: // ROR, RRX
		if amount == 0 {
			var in uint32
			if carry {
				in = 1 << 31
			}
			return in | x>>1, x&1 != 0, true
		}
		return bits.RotateLeft32(x, -int(amount)), x>>(amount-1)&1 != 0, true
	}
}

func addWithCarry(x, y uint32, carryIn bool) (result uint32, carry, overflow bool) {
	var c uint32
	if carryIn {
		c = 1
	}
	result, c = bits.Add32(x, y, c)
	carry = c != 0
	overflow = (x^result)&(y^result)>>31 != 0
	return
}

func (m *Machine) dataProc(pc, insn uint32) bool {
	op2, shiftCarry, ok := m.shifter(pc, insn)
	if !ok {
		return false
	}

	var (
		opcode = insn >> 21 & 15
		s      = insn&(1<<20) != 0
		n      = m.reg(pc, insn>>16&15)
		d      = insn >> 12 & 15
		cin    = m.cpsr&arm.C != 0
	)

	var result uint32
	var arithmetic bool
	carry := shiftCarry
	overflow := m.cpsr&arm.V != 0
	write := true

	switch opcode {
	case 0x0: // AND
		result = n & op2
	case 0x1: // EOR
		result = n ^ op2
	case 0x2: // SUB
		result, carry, overflow = addWithCarry(n, ^op2, true)
		arithmetic = true
	case 0x3: // RSB
		result, carry, overflow = addWithCarry(op2, ^n, true)
		arithmetic = true
	case 0x4: // ADD
		result, carry, overflow = addWithCarry(n, op2, false)
		arithmetic = true
	case 0x5: // ADC
		result, carry, overflow = addWithCarry(n, op2, cin)
		arithmetic = true
	case 0x6: // SBC
		result, carry, overflow = addWithCarry(n, ^op2, cin)
		arithmetic = true
	case 0x7: // RSC
		result, carry, overflow = addWithCarry(op2, ^n, cin)
		arithmetic = true
	case 0x8: // TST
		result = n & op2
		write = false
	case 0x9: // TEQ
		result = n ^ op2
		write = false
	case 0xa: // CMP
		result, carry, overflow = addWithCarry(n, ^op2, true)
		arithmetic = true
		write = false
	case 0xb: // CMN
		result, carry, overflow = addWithCarry(n, op2, false)
		arithmetic = true
		write = false
	case 0xc: // ORR
		result = n | op2
	case 0xd: // MOV
		result = op2
	case 0xe: // BIC
		result = n &^ op2
	case 0xf: // MVN
		result = ^op2
	}

	if !write && !s {
		return false
	}

	if write {
		if d == 15 {
			if s {
				return false // Exception return.
			}
			m.R[15] = result &^ 3
			return true
		}
		m.R[d] = result
	}

	if s {
		p := m.cpsr &^ (arm.N | arm.Z | arm.C)
		if result>>31 != 0 {
			p |= arm.N
		}
		if result == 0 {
			p |= arm.Z
		}
		if carry {
			p |= arm.C
		}
		if arithmetic {
			p &^= arm.V
			if overflow {
				p |= arm.V
			}
		}
		m.cpsr = p
	}

	return true
}

func (m *Machine) loadStore(pc, insn uint32) bool {
	if insn&(1<<25) != 0 {
		return false // Register offset.
	}

	var (
		pre    = insn&(1<<24) != 0
		up     = insn&(1<<23) != 0
		isByte = insn&(1<<22) != 0
		wback  = insn&(1<<21) != 0
		load   = insn&(1<<20) != 0
		rn     = insn >> 16 & 15
		rt     = insn >> 12 & 15
		off    = insn & 0xfff
	)

	if !pre && wback {
		return false // Unprivileged access.
	}
	if (wback || !pre) && (rn == 15 || rn == rt) {
		return false
	}

	base := m.reg(pc, rn)
	offsetAddr := base - off
	if up {
		offsetAddr = base + off
	}

	addr := base
	if pre {
		addr = offsetAddr
	}

	if load {
		var value uint32
		if isByte {
			value = uint32(m.Memory.Load8(addr))
		} else {
			value = m.Memory.Load32(addr)
		}

		if wback || !pre {
			m.R[rn] = offsetAddr
		}
		if rt == 15 {
			if isByte {
				return false
			}
			m.R[15] = value &^ 1
		} else {
			m.R[rt] = value
		}
	} else {
		value := m.reg(pc, rt)
		if isByte {
			m.Memory.Store8(addr, uint8(value))
		} else {
			m.Memory.Store32(addr, value)
		}

		if wback || !pre {
			m.R[rn] = offsetAddr
		}
	}

	return true
}

func (m *Machine) coproc(insn uint32) bool {
	op := CacheOp{
		Read:   insn&(1<<20) != 0,
		Coproc: insn >> 8 & 15,
		Opc1:   insn >> 21 & 7,
		CRn:    insn >> 16 & 15,
		CRm:    insn & 15,
		Opc2:   insn >> 5 & 7,
	}
	rt := insn >> 12 & 15

	if op.Coproc != 15 || rt == 15 {
		return false
	}

	if op.Read {
		if op.Opc1 == 0 && op.CRn == 0 && op.CRm == 0 && op.Opc2 == 0 {
			op.Value = MainID
		}
		m.R[rt] = op.Value
	} else {
		op.Value = m.R[rt]
	}

	m.CacheOps = append(m.CacheOps, op)
	return true
}

// MainID is the CP15 c0 identification of ARM926EJ-S.
const MainID = 0x41069265
