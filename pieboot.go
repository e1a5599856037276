// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pieboot

import (
	"encoding/binary"

	"github.com/armboot/pieboot/arm"
	"github.com/armboot/pieboot/buffer"
	"github.com/armboot/pieboot/internal/gen/link"
	asm "github.com/armboot/pieboot/internal/isa/arm"
	"github.com/armboot/pieboot/internal/isa/arm/in"
	"github.com/armboot/pieboot/internal/pan"
)

// Layout of the saved context slot in the data section.
const (
	ContextSP   = 0
	ContextLR   = 4
	ContextPSR  = 8
	ContextSize = 12
)

// Reloc is an R_ARM_ABS32 relocation of a word in the text section.  The
// addend is stored in place.
type Reloc struct {
	Offset int32
	Symbol string
}

// Object code of a thunk.
type Object struct {
	Text    []byte  // Instructions followed by the literal pool.
	Pool    int32   // Offset of the literal pool in Text.
	Data    []byte  // Zero-initialized saved context slot.
	Relocs  []Reloc // Literal pool words.
	Symbols []string
	Config  Config // Effective configuration.
}

// Words of the text section.
func (o *Object) Words() []uint32 {
	ws := make([]uint32, len(o.Text)/4)
	for i := range ws {
		ws[i] = binary.LittleEndian.Uint32(o.Text[i*4:])
	}
	return ws
}

// Assemble the entry thunk.  A nil config means DefaultConfig.
func Assemble(config *Config) (obj *Object, err error) {
	if config == nil {
		config = &DefaultConfig
	}
	c := config.Effective()

	if err = c.Validate(); err != nil {
		return
	}

	defer func() {
		if err = pan.Error(recover()); err != nil {
			obj = nil
		}
	}()

	a := asm.New(buffer.NewLimited(nil, c.MaxTextSize))
	pool, relocs := emit(a, &c)

	obj = &Object{
		Text:    a.Text.Bytes(),
		Pool:    pool,
		Data:    make([]byte, ContextSize),
		Symbols: c.Externals(),
		Config:  c,
	}
	for _, r := range relocs {
		obj.Relocs = append(obj.Relocs, Reloc{r.Offset, r.Symbol})
	}
	return
}

func imm(v uint32) in.Imm {
	return pan.Must(encodeImm(v))
}

func encodeImm(v uint32) (in.Imm, error) {
	i, ok := in.EncodeImm(v)
	if !ok {
		return 0, configError("Mode", "value %#x cannot be encoded as immediate", v)
	}
	return i, nil
}

func emit(a *asm.Assembler, c *Config) (pool int32, relocs []asm.Reloc) {
	const (
		r0  = asm.RegScratch0
		r1  = asm.RegScratch1
		r2  = asm.RegScratch2
		r3  = asm.RegScratch3
		off = asm.RegOffset
		ctx = asm.RegContext
		sp  = asm.RegStack
		lr  = asm.RegLink
		al  = in.AL
	)

	// Runtime address of the first instruction, minus its link-time address.
	a.Insn(in.SUB.RdRnImm(al, off, in.PC, imm(arm.PipelineOffset)))
	a.LoadAddr(al, r0, c.Entry, 0)
	a.Insn(in.SUB.RdRnRm(al, off, off, r0))

	if c.CacheFlush {
		a.Insn(in.MOV.RdImm(al, r0, imm(0)))
		a.Insn(in.MCR.Op(al, 15, 0, r0, 7, 6, 0))  // Invalidate data cache.
		a.Insn(in.MCR.Op(al, 15, 0, r0, 7, 10, 4)) // Drain write buffer.
	}

	a.LoadAddr(al, ctx, SavedContextSymbol, 0)
	a.Insn(in.ADD.RdRnRm(al, ctx, ctx, off))
	a.Insn(in.STR.RtRnI12(al, sp, ctx, ContextSP, in.Offset))
	a.Insn(in.STR.RtRnI12(al, lr, ctx, ContextLR, in.Offset))
	if c.ModeSwitch {
		a.Insn(in.MRS.Rd(al, r0, in.CPSR))
		a.Insn(in.STR.RtRnI12(al, r0, ctx, ContextPSR, in.Offset))
	}

	// Relocate global offset table entries.
	emitRange(a, c.GOTStart, c.GOTEnd, "got", func() {
		a.Insn(in.LDR.RtRnI12(al, r2, r0, 0, in.Offset))
		a.Insn(in.ADD.RdRnRm(al, r2, r2, off))
	})

	if c.ModeSwitch {
		a.Insn(in.MRS.Rd(al, r0, in.CPSR))
		a.Insn(in.BIC.RdRnImm(al, r0, r0, imm(uint32(arm.ModeMask))))
		a.Insn(in.ORR.RdRnImm(al, r0, r0, imm(uint32(c.Mode))))
		a.Insn(in.MSR.FieldsRm(al, in.CPSR, arm.FieldControl, r0))
	}

	// Stack pointer is banked; it must be set in the mode main runs in.
	a.LoadAddr(al, r0, c.StackTop, 0)
	a.Insn(in.ADD.RdRnRm(al, sp, r0, off))

	a.Insn(in.MOV.RdImm(al, r2, imm(0)))
	emitRange(a, c.BSSStart, c.BSSEnd, "bss", nil)

	a.LoadAddr(al, r3, c.Main, 0)
	a.Insn(in.ADD.RdRnRm(al, r3, r3, off))
	a.Insn(in.BLX.Rm(al, r3))

	// Only the mode field is put back; interrupt masks and flags are left as
	// main left them.  SP and LR are banked, so they are loaded afterwards.
	if c.ModeSwitch {
		a.Insn(in.LDR.RtRnI12(al, r0, ctx, ContextPSR, in.Offset))
		a.Insn(in.MRS.Rd(al, r1, in.CPSR))
		a.Insn(in.BIC.RdRnImm(al, r1, r1, imm(uint32(arm.ModeMask))))
		a.Insn(in.AND.RdRnImm(al, r0, r0, imm(uint32(arm.ModeMask))))
		a.Insn(in.ORR.RdRnRm(al, r1, r1, r0))
		a.Insn(in.MSR.FieldsRm(al, in.CPSR, arm.FieldControl, r1))
	}
	a.Insn(in.LDR.RtRnI12(al, sp, ctx, ContextSP, in.Offset))
	a.Insn(in.LDR.RtRnI12(al, lr, ctx, ContextLR, in.Offset))
	a.Insn(in.BX.Rm(al, lr))

	return a.Finish()
}

// emitRange emits a loop over the words in [start, end) with r0 as the
// cursor.  body computes the value to be stored into r2; without body r2 is
// stored as is.  A trailing partial word is not touched.
func emitRange(a *asm.Assembler, start, end, name string, body func()) {
	const (
		r0  = asm.RegScratch0
		r1  = asm.RegScratch1
		r2  = asm.RegScratch2
		r3  = asm.RegScratch3
		off = asm.RegOffset
		al  = in.AL
	)

	var (
		loop = link.L{Name: name + "_loop"}
		done = link.L{Name: name + "_done"}
	)

	a.LoadAddr(al, r0, start, 0)
	a.LoadAddr(al, r1, end, 0)
	a.Insn(in.ADD.RdRnRm(al, r0, r0, off))
	a.Insn(in.ADD.RdRnRm(al, r1, r1, off))

	a.Bind(&loop)
	a.Insn(in.CMP.RnRm(al, r0, r1))
	a.Branch(in.HS, &done)
	a.Insn(in.SUB.RdRnRm(al, r3, r1, r0))
	a.Insn(in.CMP.RnImm(al, r3, imm(arm.WordSize)))
	a.Branch(in.LO, &done)
	if body != nil {
		body()
	}
	a.Insn(in.STR.RtRnI12(al, r2, r0, arm.WordSize, in.PostIdx))
	a.Branch(al, &loop)
	a.Bind(&done)
}
