// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arm

import (
	"encoding/binary"
	"fmt"

	"github.com/armboot/pieboot/internal/gen/link"
	"github.com/armboot/pieboot/internal/isa/arm/in"
	"github.com/pkg/errors"
)

const (
	MaxBranchDisp  = 32 * 1024 * 1024 // Unconditional and conditional branch distance.
	MaxLiteralDisp = 4095 + 8         // Immediate offset of PC-relative load.
)

// UpdateBranches points every branch site of a bound label to its address.
func UpdateBranches(text []byte, l *link.L) {
	labelAddr := l.FinalAddr()
	for _, branchAddr := range l.Sites {
		updateBranchInsn(text, branchAddr, labelAddr)
	}
}

func updateBranchInsn(text []byte, branchAddr, labelAddr int32) {
	insn := binary.LittleEndian.Uint32(text[branchAddr:])

	if (insn>>25)&7 != 5 {
		panic(fmt.Sprintf("unknown branch instruction encoding: %#08x", insn))
	}

	cond := in.Cond(insn >> 28)
	op := in.Branch(insn & (7<<25 | 1<<24))
	insn = op.Disp(cond, labelAddr-branchAddr)

	binary.LittleEndian.PutUint32(text[branchAddr:], insn)
}

// updateLiteralLoad points a PC-relative load at a literal.
func updateLiteralLoad(text []byte, loadAddr, literalAddr int32) {
	insn := binary.LittleEndian.Uint32(text[loadAddr:])

	if insn&0x0f3f0000 != 0x051f0000 {
		panic(fmt.Sprintf("unknown literal load instruction encoding: %#08x", insn))
	}

	disp := literalAddr - loadAddr
	if disp < 0 || disp > MaxLiteralDisp {
		panic(errors.Errorf("literal at %#x is out of reach of load at %#x", literalAddr, loadAddr))
	}

	cond := in.Cond(insn >> 28)
	op := in.Mem(insn & (3<<26 | 1<<22 | 1<<20))
	insn = op.Literal(cond, in.Reg(insn>>12&15), disp)

	binary.LittleEndian.PutUint32(text[loadAddr:], insn)
}
