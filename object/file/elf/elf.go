// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package elf writes an assembled thunk as an ELF32 relocatable object for
// little-endian ARM, to be linked into the program image.
package elf

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"io"

	"github.com/armboot/pieboot"
	"github.com/armboot/pieboot/object/file/internal"
)

const (
	eabiVersion5 = 0x05000000 // EF_ARM_EABI_VER5
	shfInfoLink  = 0x40       // SHF_INFO_LINK

	headerSize  = 52
	sectionSize = 40
	symbolSize  = 16
	relSize     = 8
)

// Section header indexes.
const (
	secNull = iota
	secText
	secData
	secRelText
	secSymtab
	secStrtab
	secShstrtab
	numSections
)

// Local symbol table indexes.  Globals follow.
const (
	symNull = iota
	symText
	symData
	symCode
	symLiterals
	symContext
	firstGlobal
)

type File internal.File

// WriteTo writes the contents of a relocatable object.
func (f *File) WriteTo(w io.Writer) (n int64, err error) {
	var b bytes.Buffer
	f.writeTo(&b)
	m, err := w.Write(b.Bytes())
	n = int64(m)
	return
}

type strtab struct {
	bytes.Buffer
}

func newStrtab() *strtab {
	t := new(strtab)
	t.WriteByte(0)
	return t
}

func (t *strtab) add(s string) uint32 {
	offset := uint32(t.Len())
	t.WriteString(s)
	t.WriteByte(0)
	return offset
}

func (f *File) writeTo(b *bytes.Buffer) {
	var (
		obj     = f.Object
		config  = obj.Config
		symstr = newStrtab()
		symbols []elf.Sym32
		index   = make(map[string]uint32)
	)

	symbols = append(symbols,
		elf.Sym32{},
		elf.Sym32{Info: elf.ST_INFO(elf.STB_LOCAL, elf.STT_SECTION), Shndx: secText},
		elf.Sym32{Info: elf.ST_INFO(elf.STB_LOCAL, elf.STT_SECTION), Shndx: secData},
		elf.Sym32{Name: symstr.add("$a"), Info: elf.ST_INFO(elf.STB_LOCAL, elf.STT_NOTYPE), Shndx: secText},
		elf.Sym32{Name: symstr.add("$d"), Value: uint32(obj.Pool), Info: elf.ST_INFO(elf.STB_LOCAL, elf.STT_NOTYPE), Shndx: secText},
		elf.Sym32{Name: symstr.add(pieboot.SavedContextSymbol), Size: uint32(len(obj.Data)), Info: elf.ST_INFO(elf.STB_LOCAL, elf.STT_OBJECT), Shndx: secData},
	)
	index[pieboot.SavedContextSymbol] = symContext

	index[config.Entry] = uint32(len(symbols))
	symbols = append(symbols, elf.Sym32{
		Name:  symstr.add(config.Entry),
		Size:  uint32(obj.Pool),
		Info:  elf.ST_INFO(elf.STB_GLOBAL, elf.STT_FUNC),
		Shndx: secText,
	})

	for _, name := range obj.Symbols {
		index[name] = uint32(len(symbols))
		symbols = append(symbols, elf.Sym32{
			Name:  symstr.add(name),
			Info:  elf.ST_INFO(elf.STB_GLOBAL, elf.STT_NOTYPE),
			Shndx: uint16(elf.SHN_UNDEF),
		})
	}

	var rels []elf.Rel32
	for _, r := range obj.Relocs {
		sym, found := index[r.Symbol]
		if !found {
			panic("relocation refers to unknown symbol: " + r.Symbol)
		}
		rels = append(rels, elf.Rel32{
			Off:  uint32(r.Offset),
			Info: elf.R_INFO32(sym, uint32(elf.R_ARM_ABS32)),
		})
	}

	names := newStrtab()
	var (
		textName     = names.add(".text")
		dataName     = names.add(".data")
		relTextName  = names.add(".rel.text")
		symtabName   = names.add(".symtab")
		strtabName   = names.add(".strtab")
		shstrtabName = names.add(".shstrtab")
	)

	var (
		textOffset     = headerSize
		dataOffset     = roundSize(textOffset+len(obj.Text), 4)
		relTextOffset  = roundSize(dataOffset+len(obj.Data), 4)
		symtabOffset   = relTextOffset + relSize*len(rels)
		strtabOffset   = symtabOffset + symbolSize*len(symbols)
		shstrtabOffset = strtabOffset + symstr.Len()
		sectionsOffset = roundSize(shstrtabOffset+names.Len(), 4)
	)

	// File header
	binary.Write(b, binary.LittleEndian, elf.Header32{
		Ident: [elf.EI_NIDENT]byte{
			0:              0x7f,
			1:              'E',
			2:              'L',
			3:              'F',
			elf.EI_CLASS:   byte(elf.ELFCLASS32),
			elf.EI_DATA:    byte(elf.ELFDATA2LSB),
			elf.EI_VERSION: byte(elf.EV_CURRENT),
		},
		Type:      uint16(elf.ET_REL),
		Machine:   uint16(elf.EM_ARM),
		Version:   uint32(elf.EV_CURRENT),
		Flags:     eabiVersion5,
		Shoff:     uint32(sectionsOffset),
		Ehsize:    headerSize,
		Shentsize: sectionSize,
		Shnum:     numSections,
		Shstrndx:  secShstrtab,
	})

	// Text
	if b.Len() != textOffset {
		panic(b.Len())
	}
	b.Write(obj.Text)

	align(b, 4)

	// Data
	if b.Len() != dataOffset {
		panic(b.Len())
	}
	b.Write(obj.Data)

	align(b, 4)

	// Relocations
	if b.Len() != relTextOffset {
		panic(b.Len())
	}
	binary.Write(b, binary.LittleEndian, rels)

	// Symbols
	binary.Write(b, binary.LittleEndian, symbols)

	// Strings
	b.Write(symstr.Bytes())
	b.Write(names.Bytes())

	align(b, 4)

	// Section headers
	if b.Len() != sectionsOffset {
		panic(b.Len())
	}
	binary.Write(b, binary.LittleEndian, []elf.Section32{
		secNull: {},
		secText: {
			Name:      textName,
			Type:      uint32(elf.SHT_PROGBITS),
			Flags:     uint32(elf.SHF_ALLOC | elf.SHF_EXECINSTR),
			Off:       uint32(textOffset),
			Size:      uint32(len(obj.Text)),
			Addralign: 4,
		},
		secData: {
			Name:      dataName,
			Type:      uint32(elf.SHT_PROGBITS),
			Flags:     uint32(elf.SHF_ALLOC | elf.SHF_WRITE),
			Off:       uint32(dataOffset),
			Size:      uint32(len(obj.Data)),
			Addralign: 4,
		},
		secRelText: {
			Name:      relTextName,
			Type:      uint32(elf.SHT_REL),
			Flags:     shfInfoLink,
			Off:       uint32(relTextOffset),
			Size:      uint32(relSize * len(rels)),
			Link:      secSymtab,
			Info:      secText,
			Addralign: 4,
			Entsize:   relSize,
		},
		secSymtab: {
			Name:      symtabName,
			Type:      uint32(elf.SHT_SYMTAB),
			Off:       uint32(symtabOffset),
			Size:      uint32(symbolSize * len(symbols)),
			Link:      secStrtab,
			Info:      firstGlobal,
			Addralign: 4,
			Entsize:   symbolSize,
		},
		secStrtab: {
			Name:      strtabName,
			Type:      uint32(elf.SHT_STRTAB),
			Off:       uint32(strtabOffset),
			Size:      uint32(symstr.Len()),
			Addralign: 1,
		},
		secShstrtab: {
			Name:      shstrtabName,
			Type:      uint32(elf.SHT_STRTAB),
			Off:       uint32(shstrtabOffset),
			Size:      uint32(names.Len()),
			Addralign: 1,
		},
	})
}

func align(b *bytes.Buffer, alignment int) {
	l := roundSize(b.Len(), alignment)
	for b.Len() < l {
		b.WriteByte(0)
	}
}

func roundSize(value, alignment int) int {
	return (value + alignment - 1) &^ (alignment - 1)
}
