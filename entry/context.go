// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package entry

import (
	"errors"

	"github.com/armboot/pieboot/arm"
)

var (
	ErrReentered   = errors.New("entry: saved context slot is already in use")
	ErrNotAcquired = errors.New("entry: saved context slot is not in use")
	ErrInvalidMode = errors.New("entry: mode switch target is not a privileged mode")
)

// Slot is the storage for one saved execution context.  Only one context may
// be live at a time; acquiring a busy slot is a precondition violation and
// panics with ErrReentered.
type Slot struct {
	busy bool
	ctx  Context
}

// Context holds the caller state captured at entry.
type Context struct {
	slot *Slot

	SP      uint32
	LR      uint32
	PSR     arm.PSR
	HasMode bool // PSR was captured and its mode field will be restored.
}

// Save captures the caller's stack pointer and return address, and the status
// word when withMode is set.  The returned context must be restored exactly
// once, typically with defer.
func (s *Slot) Save(cpu CPU, withMode bool) *Context {
	if s.busy {
		panic(ErrReentered)
	}
	s.busy = true

	s.ctx = Context{
		slot: s,
		SP:   cpu.SP(),
		LR:   cpu.LR(),
	}
	if withMode {
		s.ctx.PSR = cpu.PSR()
		s.ctx.HasMode = true
	}
	return &s.ctx
}

// Busy reports whether a context is live.
func (s *Slot) Busy() bool {
	return s.busy
}

// Restore puts the captured state back and releases the slot.  The mode field
// is restored first, since SP and LR are banked per mode and must be written
// in the caller's mode.
func (c *Context) Restore(cpu CPU) {
	if c.slot == nil || !c.slot.busy {
		panic(ErrNotAcquired)
	}

	if c.HasMode {
		cpu.SetPSR(arm.RestoreMode(cpu.PSR(), c.PSR))
	}
	cpu.SetSP(c.SP)
	cpu.SetLR(c.LR)

	c.slot.busy = false
	c.slot = nil
}
