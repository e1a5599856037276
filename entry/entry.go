// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package entry models the self-relocating entry thunk of a position-
// independent bare-metal image.
//
// The thunk is normally machine code generated by the root package.  This
// package expresses the same sequence over the CPU and mem.Memory interfaces,
// which keeps the ordering rules testable and lets a host-side simulator
// (or a Go runtime that already owns the processor) boot an image the same
// way.
package entry

import (
	"github.com/armboot/pieboot/arm"
	"github.com/armboot/pieboot/mem"
	"github.com/armboot/pieboot/reloc"
)

// CPU is the platform-specific primitive.  Here is the only source of
// position information: it returns the runtime address of the thunk's first
// instruction, which on hardware comes from PC-relative arithmetic.
type CPU interface {
	Here() uint32
	SP() uint32
	SetSP(uint32)
	LR() uint32
	SetLR(uint32)
	PSR() arm.PSR
	SetPSR(arm.PSR)
	FlushDataCache()
}

// Symbols are the link-time addresses the thunk consumes.  None of them is
// meaningful before the load base offset has been added.
type Symbols struct {
	Entry    uint32 // Address the thunk was linked at.
	GOTStart uint32
	GOTEnd   uint32
	BSSStart uint32
	BSSEnd   uint32
	StackTop uint32
}

// Config fixes the shape of the thunk.  It is a build-time choice; nothing in
// the sequence branches on data.
type Config struct {
	CacheFlush bool
	ModeSwitch bool
	Mode       arm.Mode
}

var DefaultConfig = Config{
	Mode: arm.Supervisor,
}

// Thunk boots one image.  It is not reentrant: Enter panics with ErrReentered
// if called again before the previous call has returned.
type Thunk struct {
	Config
	Symbols
	Memory mem.Memory

	slot Slot
}

// Enter runs the boot sequence and calls main once on a private stack.  When
// Enter returns, SP, LR and (with ModeSwitch) the mode field hold the values
// they had on entry, also if main panics.
//
// With ModeSwitch a zero Mode means supervisor mode.  Enter panics with
// ErrInvalidMode before touching anything if Mode is not a privileged mode.
func (t *Thunk) Enter(cpu CPU, main func()) {
	var mode arm.Mode
	if t.ModeSwitch {
		mode = t.effectiveMode()
	}

	offset := reloc.LoadOffset(cpu.Here(), t.Entry)

	if t.CacheFlush {
		cpu.FlushDataCache()
	}

	ctx := t.slot.Save(cpu, t.ModeSwitch)
	defer ctx.Restore(cpu)

	reloc.Walk(t.Memory, offset.Apply(t.GOTStart), offset.Apply(t.GOTEnd), offset)

	if t.ModeSwitch {
		cpu.SetPSR(ctx.PSR.WithMode(mode))
	}

	// The stack pointer is banked, so it is installed after the mode switch.
	cpu.SetSP(offset.Apply(t.StackTop))

	reloc.ZeroFill(t.Memory, offset.Apply(t.BSSStart), offset.Apply(t.BSSEnd))

	main()
}

func (c *Config) effectiveMode() arm.Mode {
	m := c.Mode
	if m == 0 {
		m = DefaultConfig.Mode
	}
	if !m.Valid() || !m.Privileged() {
		panic(ErrInvalidMode)
	}
	return m
}

// Busy reports whether Enter is in progress.
func (t *Thunk) Busy() bool {
	return t.slot.Busy()
}
