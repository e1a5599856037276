// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mem

import (
	"fmt"
)

// Access is one recorded memory operation.
type Access struct {
	Write bool
	Size  int
	Addr  uint32
	Value uint32
}

func (a Access) String() string {
	op := "R"
	if a.Write {
		op = "W"
	}
	return fmt.Sprintf("%s%d %#08x %#x", op, a.Size*8, a.Addr, a.Value)
}

// Trace records every access made through it.
type Trace struct {
	Memory
	Log []Access
}

func (t *Trace) Load32(addr uint32) uint32 {
	v := t.Memory.Load32(addr)
	t.Log = append(t.Log, Access{false, 4, addr, v})
	return v
}

func (t *Trace) Store32(addr uint32, value uint32) {
	t.Log = append(t.Log, Access{true, 4, addr, value})
	t.Memory.Store32(addr, value)
}

func (t *Trace) Load8(addr uint32) uint8 {
	v := t.Memory.Load8(addr)
	t.Log = append(t.Log, Access{false, 1, addr, uint32(v)})
	return v
}

func (t *Trace) Store8(addr uint32, value uint8) {
	t.Log = append(t.Log, Access{true, 1, addr, uint32(value)})
	t.Memory.Store8(addr, value)
}

// Writes returns the recorded stores.
func (t *Trace) Writes() (writes []Access) {
	for _, a := range t.Log {
		if a.Write {
			writes = append(writes, a)
		}
	}
	return
}

// Reset discards the log.
func (t *Trace) Reset() {
	t.Log = t.Log[:0]
}
