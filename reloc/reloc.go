// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package reloc implements the two table passes a position-independent image
// makes over itself before anything else runs: patching the offset table (the
// GOT) by the load displacement, and clearing the zero-initialized region (the
// BSS).
//
// Both passes check their bounds before touching memory, so an empty range
// (start >= end) performs no access at all.
package reloc

import (
	"github.com/armboot/pieboot/arm"
	"github.com/armboot/pieboot/mem"
)

// Offset is the load base offset: runtime load address minus the link-time
// base address.  It is computed once per boot and applies to every link-time
// address of the image.
type Offset int32

// LoadOffset derives the offset from a runtime address and the link-time
// address of the same location.
func LoadOffset(runtime, link uint32) Offset {
	return Offset(runtime - link)
}

// Apply converts a link-time address into a runtime address.
//
//go:nosplit
func (o Offset) Apply(link uint32) uint32 {
	return link + uint32(o)
}

// Walk adds o to every word in the offset table [start, end).  Table length is
// a multiple of the word size by construction; a trailing partial word is not
// touched.
//
//go:nosplit
func Walk(m mem.Memory, start, end uint32, o Offset) {
	for addr := start; addr < end && end-addr >= arm.WordSize; addr += arm.WordSize {
		m.Store32(addr, o.Apply(m.Load32(addr)))
	}
}

// ZeroFill writes (end-start)/4 zero words over [start, end).
//
//go:nosplit
func ZeroFill(m mem.Memory, start, end uint32) {
	for addr := start; addr < end && end-addr >= arm.WordSize; addr += arm.WordSize {
		m.Store32(addr, 0)
	}
}
