// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mem

import (
	"sort"

	"github.com/armboot/pieboot/internal/pan"
)

// Device is a memory-mapped peripheral.  Offsets are relative to the base
// address the device is mapped at.
type Device interface {
	Read32(offset uint32) uint32
	Write32(offset uint32, value uint32)
	Write8(offset uint32, value uint8)
}

type mapping struct {
	base uint32
	size uint32
	ram  *Flat
	dev  Device
}

func (m *mapping) contains(addr uint32) bool {
	return addr >= m.base && addr-m.base < m.size
}

func (m *mapping) end() uint64 {
	return uint64(m.base) + uint64(m.size)
}

// Bus routes accesses to RAM regions and devices.  Regions must not overlap.
type Bus struct {
	maps []mapping
}

// MapRAM adds a RAM region.
func (b *Bus) MapRAM(f *Flat) {
	b.add(mapping{base: f.Origin, size: uint32(len(f.Data)), ram: f})
}

// MapDevice adds a device occupying [base, base+size).
func (b *Bus) MapDevice(base, size uint32, d Device) {
	b.add(mapping{base: base, size: size, dev: d})
}

func (b *Bus) add(m mapping) {
	for i := range b.maps {
		other := &b.maps[i]
		if uint64(m.base) < other.end() && uint64(other.base) < m.end() {
			panic("overlapping memory regions")
		}
	}
	b.maps = append(b.maps, m)
	sort.Slice(b.maps, func(i, j int) bool { return b.maps[i].base < b.maps[j].base })
}

func (b *Bus) lookup(addr uint32, n int, write bool) *mapping {
	i := sort.Search(len(b.maps), func(i int) bool {
		return b.maps[i].end() > uint64(addr)
	})
	if i < len(b.maps) && b.maps[i].contains(addr) {
		return &b.maps[i]
	}
	pan.Panic(&Fault{addr, n, write})
	return nil
}

func (b *Bus) Load32(addr uint32) uint32 {
	m := b.lookup(addr, 4, false)
	if m.ram != nil {
		return m.ram.Load32(addr)
	}
	return m.dev.Read32(addr - m.base)
}

func (b *Bus) Store32(addr uint32, value uint32) {
	m := b.lookup(addr, 4, true)
	if m.ram != nil {
		m.ram.Store32(addr, value)
		return
	}
	m.dev.Write32(addr-m.base, value)
}

// Load8 from a device reads the containing word and extracts the byte lane.
func (b *Bus) Load8(addr uint32) uint8 {
	m := b.lookup(addr, 1, false)
	if m.ram != nil {
		return m.ram.Load8(addr)
	}
	offset := addr - m.base
	return uint8(m.dev.Read32(offset&^3) >> (8 * (offset & 3)))
}

func (b *Bus) Store8(addr uint32, value uint8) {
	m := b.lookup(addr, 1, true)
	if m.ram != nil {
		m.ram.Store8(addr, value)
		return
	}
	m.dev.Write8(addr-m.base, value)
}
