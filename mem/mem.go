// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mem provides the 32-bit address space the boot code operates on.
//
// On the target, Raw accesses physical memory directly.  On a host, Flat and
// Bus model RAM and memory-mapped devices so that relocation, zero-fill and
// driver logic can be exercised as ordinary code.
package mem

import (
	"fmt"
)

// DevMem is the conventional physical memory device.
const DevMem = "/dev/mem"

// Memory is a little-endian 32-bit address space.  Word accesses must be
// aligned.
type Memory interface {
	Load32(addr uint32) uint32
	Store32(addr uint32, value uint32)
	Load8(addr uint32) uint8
	Store8(addr uint32, value uint8)
}

// Fault is raised (through the internal panic zone) when an access hits an
// unmapped or misaligned address.  Memory implementations cannot return
// errors; callers which can recover them do so at their API boundary.
type Fault struct {
	Addr  uint32
	Size  int
	Write bool
}

func (f *Fault) Error() string {
	op := "load"
	if f.Write {
		op = "store"
	}
	return fmt.Sprintf("memory fault: %d-byte %s at %#08x", f.Size, op, f.Addr)
}
