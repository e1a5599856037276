// Copyright (c) 2016 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dump prints listings of generated code.  Instructions are
// disassembled when the package is built with cgo; otherwise only the
// instruction words are shown.
package dump

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/armboot/pieboot"
)

type line struct {
	addr uint32
	word uint32
	asm  string
}

// Text writes a listing of instructions, assuming that text is located at
// addr.
func Text(w io.Writer, text []byte, addr uint32) error {
	lines, err := disassemble(text, addr)
	if err != nil {
		return err
	}
	return writeLines(w, lines)
}

// Object writes a listing of an assembled thunk with its literal pool.  The
// text is assumed to be located at addr.
func Object(w io.Writer, obj *pieboot.Object, addr uint32) error {
	lines, err := disassemble(obj.Text[:obj.Pool], addr)
	if err != nil {
		return err
	}

	relocs := make(map[int32]string)
	for _, r := range obj.Relocs {
		relocs[r.Offset] = r.Symbol
	}

	for offset := obj.Pool; int(offset) < len(obj.Text); offset += 4 {
		word := binary.LittleEndian.Uint32(obj.Text[offset:])
		asm := fmt.Sprintf(".word\t%#08x", word)
		if name, found := relocs[offset]; found {
			asm += "\t; R_ARM_ABS32 " + name
		}
		lines = append(lines, line{addr + uint32(offset), word, asm})
	}

	fmt.Fprintf(w, "%s:\n", obj.Config.Entry)
	return writeLines(w, lines)
}

func writeLines(w io.Writer, lines []line) error {
	for _, l := range lines {
		s := fmt.Sprintf("%08x:\t%08x", l.addr, l.word)
		if l.asm != "" {
			s += "\t" + strings.TrimSpace(l.asm)
		}
		if _, err := fmt.Fprintln(w, s); err != nil {
			return err
		}
	}
	return nil
}

func words(text []byte, addr uint32) (lines []line) {
	for i := 0; i+4 <= len(text); i += 4 {
		lines = append(lines, line{addr + uint32(i), binary.LittleEndian.Uint32(text[i:]), ""})
	}
	return
}
