// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package emu interprets the subset of the A32 instruction set which
// generated boot code uses.
package emu

import (
	"errors"
	"fmt"

	"github.com/armboot/pieboot/arm"
	"github.com/armboot/pieboot/internal/pan"
	"github.com/armboot/pieboot/mem"
	"golang.org/x/xerrors"
)

var (
	ErrUndefined = errors.New("undefined instruction")
	ErrStepLimit = errors.New("step limit reached")
)

// Hook runs Go code in place of a subroutine.  Execution continues at the
// link register when the hook returns.
type Hook func(m *Machine)

// CacheOp is a coprocessor register transfer.
type CacheOp struct {
	Read   bool
	Coproc uint32
	Opc1   uint32
	CRn    uint32
	CRm    uint32
	Opc2   uint32
	Value  uint32
}

// Machine state.  R[15] holds the address of the next instruction.
type Machine struct {
	R      [16]uint32
	Memory mem.Memory

	cpsr    arm.PSR
	banks   [numBanks]bank
	usrHigh [5]uint32 // r8-r12 while in FIQ mode.
	fiqHigh [5]uint32 // r8-r12 while in other modes.
	hooks   map[uint32]Hook

	CacheOps []CacheOp
	Steps    int
}

type bank struct {
	sp uint32
	lr uint32
}

const numBanks = 6

func bankIndex(m arm.Mode) int {
	switch m {
	case arm.FIQ:
		return 1
	case arm.IRQ:
		return 2
	case arm.Supervisor:
		return 3
	case arm.Abort:
		return 4
	case arm.Undefined:
		return 5
	default:
		return 0
	}
}

// New machine in reset state: supervisor mode with interrupts disabled.
func New(m mem.Memory) *Machine {
	return &Machine{
		Memory: m,
		cpsr:   arm.PSR(arm.Supervisor) | arm.I | arm.F,
	}
}

// Hook installs a hook at an address.
func (m *Machine) Hook(addr uint32, h Hook) {
	if m.hooks == nil {
		m.hooks = make(map[uint32]Hook)
	}
	m.hooks[addr] = h
}

func (m *Machine) CPSR() arm.PSR {
	return m.cpsr
}

// SetCPSR switches register banks if the mode changes.  The mode must be
// valid.
func (m *Machine) SetCPSR(p arm.PSR) {
	from := m.cpsr.Mode()
	to := p.Mode()
	if !to.Valid() {
		panic(fmt.Sprintf("invalid processor mode %#x", uint32(to)))
	}

	if from != to {
		if from == arm.FIQ {
			copy(m.fiqHigh[:], m.R[8:13])
			copy(m.R[8:13], m.usrHigh[:])
		} else if to == arm.FIQ {
			copy(m.usrHigh[:], m.R[8:13])
			copy(m.R[8:13], m.fiqHigh[:])
		}

		m.banks[bankIndex(from)] = bank{m.R[13], m.R[14]}
		b := m.banks[bankIndex(to)]
		m.R[13] = b.sp
		m.R[14] = b.lr
	}

	m.cpsr = p
}

// BankedSP returns the stack pointer of a mode without switching to it.
func (m *Machine) BankedSP(mode arm.Mode) uint32 {
	if bankIndex(mode) == bankIndex(m.cpsr.Mode()) {
		return m.R[13]
	}
	return m.banks[bankIndex(mode)].sp
}

// BankedLR returns the link register of a mode without switching to it.
func (m *Machine) BankedLR(mode arm.Mode) uint32 {
	if bankIndex(mode) == bankIndex(m.cpsr.Mode()) {
		return m.R[14]
	}
	return m.banks[bankIndex(mode)].lr
}

// Call sets up the link register so that the subroutine at addr returns to
// ret, and runs until then.
func (m *Machine) Call(addr, ret uint32, limit int) error {
	m.R[14] = ret
	m.R[15] = addr
	return m.Run(ret, limit)
}

// Run until the program counter equals stop.  Memory faults are returned as
// *mem.Fault errors, and undefined instructions as errors wrapping
// ErrUndefined.
func (m *Machine) Run(stop uint32, limit int) (err error) {
	defer func() {
		if x := recover(); x != nil {
			err = pan.Error(x)
		}
	}()

	for steps := 0; ; steps++ {
		pc := m.R[15]
		if pc == stop {
			return nil
		}
		if steps >= limit {
			return ErrStepLimit
		}
		m.Steps++

		if h := m.hooks[pc]; h != nil {
			h(m)
			m.R[15] = m.R[14] &^ 1
			continue
		}

		insn := m.Memory.Load32(pc)
		m.R[15] = pc + 4

		if !m.exec(pc, insn) {
			return xerrors.Errorf("%#08x: %08x: %w", pc, insn, ErrUndefined)
		}
	}
}

// The entry.CPU interface.

// Here returns the address of the next instruction.
func (m *Machine) Here() uint32     { return m.R[15] }
func (m *Machine) SP() uint32       { return m.R[13] }
func (m *Machine) SetSP(x uint32)   { m.R[13] = x }
func (m *Machine) LR() uint32       { return m.R[14] }
func (m *Machine) SetLR(x uint32)   { m.R[14] = x }
func (m *Machine) PSR() arm.PSR     { return m.cpsr }
func (m *Machine) SetPSR(p arm.PSR) { m.SetCPSR(p) }

// FlushDataCache records the same operations as generated code.
func (m *Machine) FlushDataCache() {
	m.CacheOps = append(m.CacheOps,
		CacheOp{Coproc: 15, CRn: 7, CRm: 6},
		CacheOp{Coproc: 15, CRn: 7, CRm: 10, Opc2: 4},
	)
}
