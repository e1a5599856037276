// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build cgo

package dump

import (
	"fmt"
	"regexp"

	"github.com/knightsc/gapstone"
)

const (
	csArch = gapstone.CS_ARCH_ARM
	csMode = gapstone.CS_MODE_ARM
)

var (
	r4 = regexp.MustCompile(`\br4\b`)
	r5 = regexp.MustCompile(`\br5\b`)
)

func disassemble(text []byte, addr uint32) (lines []line, err error) {
	engine, err := gapstone.New(csArch, csMode)
	if err != nil {
		return
	}
	defer engine.Close()

	lines = words(text, addr)

	for i := 0; i < len(lines); {
		insns, _ := engine.Disasm(text[i*4:], uint64(addr)+uint64(i*4), 0)
		if len(insns) == 0 {
			// Undecodable word.
			lines[i].asm = fmt.Sprintf(".word\t%#08x", lines[i].word)
			i++
			continue
		}

		for _, insn := range insns {
			op := r4.ReplaceAllString(insn.OpStr, "offset")
			op = r5.ReplaceAllString(op, "context")
			lines[i].asm = insn.Mnemonic + "\t" + op
			i++
		}
	}

	return lines, nil
}
