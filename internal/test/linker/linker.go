// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linker lays out an assembled thunk as a complete program image,
// the way a linker script would, so that tests can run it.
package linker

import (
	"encoding/binary"
	"fmt"

	"github.com/armboot/pieboot"
	"github.com/armboot/pieboot/entry"
	"github.com/armboot/pieboot/internal/isa/arm/in"
	"github.com/armboot/pieboot/mem"
)

// Fill is the contents of uninitialized memory.
const Fill = 0xdeadbeef

// Layout of the image.  The program's main function is a single return
// instruction placed after the text; tests typically hook it.
type Layout struct {
	Base      uint32   // Link-time address of the first instruction.
	GOT       []uint32 // Link-time pointers.
	BSSSize   uint32   // Need not be a multiple of 4.
	StackSize uint32
}

// Image is a linked program.
type Image struct {
	Symbols map[string]uint32 // Link-time addresses.
	Data    []byte            // Text, main, data and GOT.
	Size    uint32            // Including .bss and stack.

	config pieboot.Config
}

func align(x uint32) uint32 {
	return (x + 3) &^ 3
}

// Link an object.
func Link(obj *pieboot.Object, l Layout) (*Image, error) {
	c := obj.Config

	var (
		textEnd  = l.Base + uint32(len(obj.Text))
		mainAddr = textEnd
		dataAddr = mainAddr + 4
		gotStart = align(dataAddr + uint32(len(obj.Data)))
		gotEnd   = gotStart + uint32(4*len(l.GOT))
		bssStart = gotEnd
		bssEnd   = bssStart + l.BSSSize
		stackTop = align(bssEnd) + l.StackSize
	)

	img := &Image{
		Symbols: map[string]uint32{
			c.Entry:                    l.Base,
			c.Main:                     mainAddr,
			pieboot.SavedContextSymbol: dataAddr,
			c.GOTStart:                 gotStart,
			c.GOTEnd:                   gotEnd,
			c.BSSStart:                 bssStart,
			c.BSSEnd:                   bssEnd,
			c.StackTop:                 stackTop,
		},
		Data:   make([]byte, gotEnd-l.Base),
		Size:   stackTop - l.Base,
		config: c,
	}

	copy(img.Data, obj.Text)
	binary.LittleEndian.PutUint32(img.Data[mainAddr-l.Base:], in.BX.Rm(in.AL, in.LR))
	copy(img.Data[dataAddr-l.Base:], obj.Data)
	for i, p := range l.GOT {
		binary.LittleEndian.PutUint32(img.Data[gotStart-l.Base+uint32(i*4):], p)
	}

	for _, r := range obj.Relocs {
		addr, found := img.Symbols[r.Symbol]
		if !found {
			return nil, fmt.Errorf("undefined symbol: %s", r.Symbol)
		}
		b := img.Data[r.Offset:]
		binary.LittleEndian.PutUint32(b, binary.LittleEndian.Uint32(b)+addr)
	}

	return img, nil
}

// Base is the link-time address of the image.
func (img *Image) Base() uint32 {
	return img.Symbols[img.config.Entry]
}

// Symbol returns a link-time address.
func (img *Image) Symbol(name string) uint32 {
	addr, found := img.Symbols[name]
	if !found {
		panic(name)
	}
	return addr
}

// Main is the link-time address of the program entry function.
func (img *Image) Main() uint32 {
	return img.Symbols[img.config.Main]
}

// EntrySymbols for running the image with the entry package.
func (img *Image) EntrySymbols() entry.Symbols {
	c := img.config
	return entry.Symbols{
		Entry:    img.Symbols[c.Entry],
		GOTStart: img.Symbols[c.GOTStart],
		GOTEnd:   img.Symbols[c.GOTEnd],
		BSSStart: img.Symbols[c.BSSStart],
		BSSEnd:   img.Symbols[c.BSSEnd],
		StackTop: img.Symbols[c.StackTop],
	}
}

// Load the image at an address.  Memory past the initialized part is filled
// with garbage.
func (img *Image) Load(ram *mem.Flat, addr uint32) {
	ram.Copy(addr, img.Data)
	for a := addr + uint32(len(img.Data)); a+4 <= addr+img.Size; a += 4 {
		ram.Store32(a, Fill)
	}
}
