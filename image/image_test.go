// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package image

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/armboot/pieboot"
	"github.com/armboot/pieboot/entry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
	. "import.name/testing/mustr"
)

// testELF builds a minimal executable with an optional .bss section and
// absolute symbols.
func testELF(bssSize uint32, symbols map[string]uint32) []byte {
	var (
		strtab   = []byte{0}
		shstrtab = []byte{0}
		syms     = []elf.Sym32{{}}
	)

	addName := func(tab *[]byte, s string) uint32 {
		offset := uint32(len(*tab))
		*tab = append(append(*tab, s...), 0)
		return offset
	}

	var names []string
	for name := range symbols {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		syms = append(syms, elf.Sym32{
			Name:  addName(&strtab, name),
			Value: symbols[name],
			Info:  elf.ST_INFO(elf.STB_GLOBAL, elf.STT_NOTYPE),
			Shndx: uint16(elf.SHN_ABS),
		})
	}

	var symbuf bytes.Buffer
	binary.Write(&symbuf, binary.LittleEndian, syms)

	sections := []elf.Section32{{}}
	if bssSize > 0 {
		sections = append(sections, elf.Section32{
			Name:      addName(&shstrtab, ".bss"),
			Type:      uint32(elf.SHT_NOBITS),
			Flags:     uint32(elf.SHF_ALLOC | elf.SHF_WRITE),
			Addr:      0x9000,
			Size:      bssSize,
			Addralign: 4,
		})
	}

	const headerSize = 52
	symOff := uint32(headerSize)
	strOff := symOff + uint32(symbuf.Len())

	symtabIndex := uint32(len(sections))
	sections = append(sections,
		elf.Section32{
			Name:      addName(&shstrtab, ".symtab"),
			Type:      uint32(elf.SHT_SYMTAB),
			Off:       symOff,
			Size:      uint32(symbuf.Len()),
			Link:      symtabIndex + 1,
			Info:      1,
			Addralign: 4,
			Entsize:   16,
		},
		elf.Section32{
			Name:      addName(&shstrtab, ".strtab"),
			Type:      uint32(elf.SHT_STRTAB),
			Off:       strOff,
			Size:      uint32(len(strtab)),
			Addralign: 1,
		},
	)
	shstrOff := strOff + uint32(len(strtab))
	sections = append(sections, elf.Section32{
		Name:      addName(&shstrtab, ".shstrtab"),
		Type:      uint32(elf.SHT_STRTAB),
		Off:       shstrOff,
		Size:      0, // Set below.
		Addralign: 1,
	})
	sections[len(sections)-1].Size = uint32(len(shstrtab))
	shOff := (shstrOff + uint32(len(shstrtab)) + 3) &^ 3

	var b bytes.Buffer
	binary.Write(&b, binary.LittleEndian, elf.Header32{
		Ident: [elf.EI_NIDENT]byte{
			0:              0x7f,
			1:              'E',
			2:              'L',
			3:              'F',
			elf.EI_CLASS:   byte(elf.ELFCLASS32),
			elf.EI_DATA:    byte(elf.ELFDATA2LSB),
			elf.EI_VERSION: byte(elf.EV_CURRENT),
		},
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_ARM),
		Version:   uint32(elf.EV_CURRENT),
		Shoff:     shOff,
		Ehsize:    headerSize,
		Shentsize: 40,
		Shnum:     uint16(len(sections)),
		Shstrndx:  uint16(len(sections) - 1),
	})
	b.Write(symbuf.Bytes())
	b.Write(strtab)
	b.Write(shstrtab)
	for b.Len() < int(shOff) {
		b.WriteByte(0)
	}
	binary.Write(&b, binary.LittleEndian, sections)
	return b.Bytes()
}

func openELF(t *testing.T, data []byte) *elf.File {
	t.Helper()
	f := Must(t, R(elf.NewFile(bytes.NewReader(data))))
	t.Cleanup(func() { f.Close() })
	return f
}

var testSymbols = map[string]uint32{
	"_start":      0x8000,
	"__got_start": 0x8400,
	"__got_end":   0x8410,
	"__bss_start": 0x9000,
	"__bss_end":   0x9123,
	"__stack_top": 0xa000,
}

func TestBSSSize(t *testing.T) {
	assert.Equal(t, uint64(0x123), BSSSize(openELF(t, testELF(0x123, testSymbols))))
	assert.Equal(t, uint64(0), BSSSize(openELF(t, testELF(0, testSymbols))))
}

func TestAddBSS(t *testing.T) {
	var out bytes.Buffer
	n := Must(t, R(AddBSS(&out, bytes.NewReader([]byte{1, 2, 3}), 5)))

	assert.Equal(t, int64(8), n)
	assert.Equal(t, []byte{1, 2, 3, 0, 0, 0, 0, 0}, out.Bytes())
}

func TestAddBSSFile(t *testing.T) {
	dir := t.TempDir()
	elfPath := filepath.Join(dir, "kernel.elf")
	binPath := filepath.Join(dir, "kernel.bin")
	outPath := filepath.Join(dir, "kernel.img")

	require.NoError(t, os.WriteFile(elfPath, testELF(0x10, testSymbols), 0o644))
	require.NoError(t, os.WriteFile(binPath, []byte("text"), 0o644))
	require.NoError(t, AddBSSFile(elfPath, binPath, outPath))

	data := Must(t, R(os.ReadFile(outPath)))
	assert.Equal(t, append([]byte("text"), make([]byte, 0x10)...), data)

	err := AddBSSFile(elfPath, filepath.Join(dir, "missing.bin"), outPath)
	assert.True(t, xerrors.Is(err, os.ErrNotExist), "%v", err)
}

func TestLinkSymbols(t *testing.T) {
	f := openELF(t, testELF(0x123, testSymbols))

	syms := Must(t, R(LinkSymbols(f, nil)))
	assert.Equal(t, entry.Symbols{
		Entry:    0x8000,
		GOTStart: 0x8400,
		GOTEnd:   0x8410,
		BSSStart: 0x9000,
		BSSEnd:   0x9123,
		StackTop: 0xa000,
	}, syms)

	assert.Equal(t, Regions{GOTEntries: 4, BSSSize: 0x123}, RegionsOf(syms))
}

func TestLinkSymbolsMissing(t *testing.T) {
	f := openELF(t, testELF(0, testSymbols))

	_, err := LinkSymbols(f, &pieboot.Config{StackTop: "_estack"})
	assert.True(t, xerrors.Is(err, ErrNoSymbol), "%v", err)
	assert.Contains(t, err.Error(), "_estack")
}
