// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package arm assembles A32 code with labels and a literal pool.
package arm

import (
	"github.com/armboot/pieboot/internal/code"
	"github.com/armboot/pieboot/internal/gen/link"
	"github.com/armboot/pieboot/internal/isa/arm/in"
)

// Reloc is an absolute 32-bit relocation of a literal pool word.
type Reloc struct {
	Offset int32
	Symbol string
}

type literal struct {
	symbol string
	value  uint32
	sites  []int32
}

type literalKey struct {
	symbol string
	value  uint32
}

// Assembler emits instructions into a code buffer.  The zero value is not
// usable; Text must be initialized.
type Assembler struct {
	Text code.Buf

	literals []*literal
	index    map[literalKey]*literal
	pending  []*link.L
}

func New(b code.Buffer) *Assembler {
	return &Assembler{
		Text: code.Buf{Buffer: b},
	}
}

func (a *Assembler) Addr() int32 {
	return a.Text.Addr
}

func (a *Assembler) Insn(word uint32) {
	a.Text.PutUint32(word)
}

// Branch to a label.  Forward branches are patched when the label is bound.
func (a *Assembler) Branch(c in.Cond, l *link.L) {
	a.branch(in.B, c, l)
}

// Call a label with link.
func (a *Assembler) Call(c in.Cond, l *link.L) {
	a.branch(in.BL, c, l)
}

func (a *Assembler) branch(op in.Branch, c in.Cond, l *link.L) {
	addr := a.Addr()
	if l.Bound {
		a.Insn(op.Disp(c, l.Addr-addr))
		return
	}

	l.AddSite(addr)
	a.pending = append(a.pending, l)
	a.Insn(op.Disp(c, 8))
}

// Bind a label to the current address.
func (a *Assembler) Bind(l *link.L) {
	l.Bind(a.Addr())
	UpdateBranches(a.Text.Bytes(), l)
}

// LoadWord loads a constant from the literal pool.
func (a *Assembler) LoadWord(c in.Cond, t in.Reg, value uint32) {
	a.load(c, t, "", value)
}

// LoadAddr loads the link-time address of a symbol (plus addend) from the
// literal pool.  The literal is subject to relocation.
func (a *Assembler) LoadAddr(c in.Cond, t in.Reg, symbol string, addend uint32) {
	if symbol == "" {
		panic("symbol name is empty")
	}
	a.load(c, t, symbol, addend)
}

func (a *Assembler) load(c in.Cond, t in.Reg, symbol string, value uint32) {
	if a.index == nil {
		a.index = make(map[literalKey]*literal)
	}

	key := literalKey{symbol, value}
	lit := a.index[key]
	if lit == nil {
		lit = &literal{symbol: symbol, value: value}
		a.index[key] = lit
		a.literals = append(a.literals, lit)
	}

	lit.sites = append(lit.sites, a.Addr())
	a.Insn(in.LDR.Literal(c, t, 8))
}

// Finish checks that every branch target was bound, and emits the literal
// pool.  The pool's offset is returned with the relocations of its words.
func (a *Assembler) Finish() (pool int32, relocs []Reloc) {
	for _, l := range a.pending {
		l.FinalAddr()
	}

	pool = a.Addr()
	for _, lit := range a.literals {
		addr := a.Addr()
		a.Insn(lit.value)
		if lit.symbol != "" {
			relocs = append(relocs, Reloc{addr, lit.symbol})
		}

		text := a.Text.Bytes()
		for _, site := range lit.sites {
			updateLiteralLoad(text, site, addr)
		}
	}

	a.literals = nil
	a.index = nil
	a.pending = nil
	return
}
