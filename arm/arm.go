// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package arm describes the parts of the 32-bit ARM processor state that the
// entry thunk touches: the program status register and its mode field.
package arm

import (
	"fmt"
)

// PipelineOffset is the distance between an instruction's address and the
// value it reads from the program counter in ARM state.  Two instructions are
// fetched ahead of the one executing, each 4 bytes wide.
const PipelineOffset = 8

// WordSize is the pointer width of the target.
const WordSize = 4

// Mode is the value of the processor mode field (PSR bits 4:0).
type Mode uint32

const (
	User       = Mode(0x10)
	FIQ        = Mode(0x11)
	IRQ        = Mode(0x12)
	Supervisor = Mode(0x13)
	Abort      = Mode(0x17)
	Undefined  = Mode(0x1b)
	System     = Mode(0x1f)
)

var modeNames = map[Mode]string{
	User:       "usr",
	FIQ:        "fiq",
	IRQ:        "irq",
	Supervisor: "svc",
	Abort:      "abt",
	Undefined:  "und",
	System:     "sys",
}

// ParseMode accepts the conventional three-letter mode names.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if s == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown processor mode: %q", s)
}

func (m Mode) String() string {
	if s, found := modeNames[m]; found {
		return s
	}
	return fmt.Sprintf("mode(%#x)", uint32(m))
}

// Valid reports whether m is one of the architected modes.
func (m Mode) Valid() bool {
	_, found := modeNames[m]
	return found
}

// Privileged reports whether m may write the mode field.
func (m Mode) Privileged() bool {
	return m.Valid() && m != User
}

// Banked reports whether m has its own stack pointer and link register.  User
// and System share theirs.
func (m Mode) Banked() bool {
	return m.Valid() && m != User && m != System
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid processor mode: %#x", uint32(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) (err error) {
	*m, err = ParseMode(string(b))
	return
}
