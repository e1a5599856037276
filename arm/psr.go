// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arm

import (
	"fmt"
)

// PSR is a program status register value (CPSR or SPSR).
type PSR uint32

const (
	ModeMask = PSR(0x1f)

	T = PSR(1 << 5) // Thumb state
	F = PSR(1 << 6) // FIQ disable
	I = PSR(1 << 7) // IRQ disable
	Q = PSR(1 << 27)
	V = PSR(1 << 28)
	C = PSR(1 << 29)
	Z = PSR(1 << 30)
	N = PSR(1 << 31)

	FlagsMask   = N | Z | C | V | Q
	ControlMask = PSR(0xff)
)

// Field masks used by MSR (the "c", "x", "s" and "f" suffixes).
const (
	FieldControl   = 1 << 0
	FieldExtension = 1 << 1
	FieldStatus    = 1 << 2
	FieldFlags     = 1 << 3
)

func (p PSR) Mode() Mode {
	return Mode(p & ModeMask)
}

// WithMode overwrites the mode field only.
func (p PSR) WithMode(m Mode) PSR {
	return p&^ModeMask | PSR(m)&ModeMask
}

// RestoreMode puts the mode field of saved back into current without touching
// any other bit.
func RestoreMode(current, saved PSR) PSR {
	return current.WithMode(saved.Mode())
}

// Masked returns the bits of p selected by an MSR field mask.
func Masked(fields uint32) PSR {
	var m PSR
	for i := 0; i < 4; i++ {
		if fields&(1<<i) != 0 {
			m |= PSR(0xff) << (8 * i)
		}
	}
	return m
}

func (p PSR) String() string {
	flags := []byte("nzcvq")
	for i, bit := range []PSR{N, Z, C, V, Q} {
		if p&bit != 0 {
			flags[i] -= 'a' - 'A'
		}
	}
	return fmt.Sprintf("%s %s %#08x", flags, p.Mode(), uint32(p))
}
