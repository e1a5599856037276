// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package image prepares linked programs for loading.  A flat binary
// produced by objcopy lacks the .bss section; the thunk zeroes it at run
// time, but the loader must reserve the memory.
package image

import (
	"debug/elf"
	"io"
	"os"

	"github.com/armboot/pieboot"
	"github.com/armboot/pieboot/entry"
	"golang.org/x/xerrors"
)

var ErrNoSymbol = xerrors.New("symbol not found")

// BSSSize returns the size of the .bss section, or 0 if there is none.
func BSSSize(f *elf.File) uint64 {
	if s := f.Section(".bss"); s != nil {
		return s.Size
	}
	return 0
}

type zeroReader struct{}

func (zeroReader) Read(b []byte) (int, error) {
	clear(b)
	return len(b), nil
}

// AddBSS copies a flat binary and appends bssSize zero bytes.
func AddBSS(w io.Writer, bin io.Reader, bssSize uint64) (n int64, err error) {
	n, err = io.Copy(w, bin)
	if err != nil {
		return
	}

	m, err := io.CopyN(w, zeroReader{}, int64(bssSize))
	n += m
	return
}

// AddBSSFile writes the contents of binPath followed by zeros for the .bss
// section described in elfPath.  The output is extended by truncation, so the
// zeros may be stored sparsely.
func AddBSSFile(elfPath, binPath, outPath string) (err error) {
	f, err := elf.Open(elfPath)
	if err != nil {
		return xerrors.Errorf("reading ELF file: %w", err)
	}
	defer f.Close()

	bssSize := BSSSize(f)

	in, err := os.Open(binPath)
	if err != nil {
		return xerrors.Errorf("reading binary: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return xerrors.Errorf("creating output: %w", err)
	}
	defer func() {
		if e := out.Close(); err == nil && e != nil {
			err = xerrors.Errorf("closing output: %w", e)
		}
	}()

	n, err := io.Copy(out, in)
	if err != nil {
		return xerrors.Errorf("copying binary: %w", err)
	}

	if err := out.Truncate(n + int64(bssSize)); err != nil {
		return xerrors.Errorf("extending output: %w", err)
	}

	return nil
}

// LinkSymbols reads the link-time addresses of the symbols the thunk uses.
func LinkSymbols(f *elf.File, config *pieboot.Config) (syms entry.Symbols, err error) {
	if config == nil {
		config = &pieboot.DefaultConfig
	}
	c := config.Effective()

	table, err := f.Symbols()
	if err != nil {
		return syms, xerrors.Errorf("reading symbol table: %w", err)
	}

	values := make(map[string]uint32)
	for _, s := range table {
		if s.Section != elf.SHN_UNDEF {
			values[s.Name] = uint32(s.Value)
		}
	}

	for _, x := range []struct {
		name string
		dest *uint32
	}{
		{c.Entry, &syms.Entry},
		{c.GOTStart, &syms.GOTStart},
		{c.GOTEnd, &syms.GOTEnd},
		{c.BSSStart, &syms.BSSStart},
		{c.BSSEnd, &syms.BSSEnd},
		{c.StackTop, &syms.StackTop},
	} {
		value, found := values[x.name]
		if !found {
			return syms, xerrors.Errorf("%s: %w", x.name, ErrNoSymbol)
		}
		*x.dest = value
	}

	return syms, nil
}

// Regions describes the sizes implied by the boundary symbols.
type Regions struct {
	GOTEntries int
	BSSSize    uint32
}

func RegionsOf(syms entry.Symbols) (r Regions) {
	if syms.GOTEnd > syms.GOTStart {
		r.GOTEntries = int(syms.GOTEnd-syms.GOTStart) / 4
	}
	if syms.BSSEnd > syms.BSSStart {
		r.BSSSize = syms.BSSEnd - syms.BSSStart
	}
	return
}
