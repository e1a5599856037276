// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mem

import (
	"encoding/binary"

	"github.com/armboot/pieboot/internal/pan"
)

// Flat is RAM spanning [Origin, Origin+len(Data)).
type Flat struct {
	Origin uint32
	Data   []byte
}

// NewFlat allocates size bytes of zeroed RAM at origin.
func NewFlat(origin uint32, size int) *Flat {
	return &Flat{origin, make([]byte, size)}
}

// Memtop is the first address past the end of the region.
func (f *Flat) Memtop() uint32 {
	return f.Origin + uint32(len(f.Data))
}

// Contains reports whether n bytes at addr are inside the region.
func (f *Flat) Contains(addr uint32, n int) bool {
	return addr >= f.Origin && uint64(addr-f.Origin)+uint64(n) <= uint64(len(f.Data))
}

func (f *Flat) slice(addr uint32, n int, write bool) []byte {
	if !f.Contains(addr, n) || addr&uint32(n-1) != 0 {
		pan.Panic(&Fault{addr, n, write})
	}
	offset := addr - f.Origin
	return f.Data[offset : offset+uint32(n)]
}

func (f *Flat) Load32(addr uint32) uint32 {
	return binary.LittleEndian.Uint32(f.slice(addr, 4, false))
}

func (f *Flat) Store32(addr uint32, value uint32) {
	binary.LittleEndian.PutUint32(f.slice(addr, 4, true), value)
}

func (f *Flat) Load8(addr uint32) uint8 {
	return f.slice(addr, 1, false)[0]
}

func (f *Flat) Store8(addr uint32, value uint8) {
	f.slice(addr, 1, true)[0] = value
}

// Copy bytes into the region at addr.
func (f *Flat) Copy(addr uint32, b []byte) {
	if !f.Contains(addr, len(b)) {
		pan.Panic(&Fault{addr, len(b), true})
	}
	copy(f.Data[addr-f.Origin:], b)
}
