// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pieboot_test

import (
	"fmt"
	"testing"

	"github.com/armboot/pieboot"
	"github.com/armboot/pieboot/arm"
	"github.com/armboot/pieboot/entry"
	"github.com/armboot/pieboot/internal/emu"
	"github.com/armboot/pieboot/internal/test/linker"
	"github.com/armboot/pieboot/mem"
	"github.com/armboot/pieboot/reloc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	. "import.name/testing/mustr"
)

const (
	ramSize    = 0x100000
	linkBase   = 0x8000
	callerSP   = 0xf0000
	callerLR   = 0xfffffff0
	stepLimit  = 10000
	callerMode = arm.System
)

var testLayout = linker.Layout{
	Base:      linkBase,
	GOT:       []uint32{linkBase, linkBase + 0x40, 0, 0x7ffffffc, 0x12345678},
	BSSSize:   0x40,
	StackSize: 0x400,
}

// storeWatch records the number of cache operations performed before the
// first store.
type storeWatch struct {
	mem.Memory
	m      *emu.Machine
	before int
	stored bool
}

func (w *storeWatch) Store32(addr, value uint32) {
	if !w.stored {
		w.stored = true
		w.before = len(w.m.CacheOps)
	}
	w.Memory.Store32(addr, value)
}

type boot struct {
	img    *linker.Image
	ram    *mem.Flat
	trace  *mem.Trace
	m      *emu.Machine
	load   uint32
	offset reloc.Offset
	watch  *storeWatch
}

func newBoot(t *testing.T, config *pieboot.Config, layout linker.Layout, load uint32) *boot {
	t.Helper()

	obj := Must(t, R(pieboot.Assemble(config)))
	img := Must(t, R(linker.Link(obj, layout)))

	ram := mem.NewFlat(0, ramSize)
	img.Load(ram, load)

	watch := &storeWatch{Memory: ram}
	trace := &mem.Trace{Memory: watch}
	m := emu.New(trace)
	watch.m = m

	m.SetCPSR(arm.PSR(callerMode) | arm.I | arm.F | arm.Z | arm.C)
	m.R[13] = callerSP

	return &boot{
		img:    img,
		ram:    ram,
		trace:  trace,
		m:      m,
		load:   load,
		offset: reloc.LoadOffset(load, linkBase),
		watch:  watch,
	}
}

func (b *boot) addr(symbol string) uint32 {
	return b.offset.Apply(b.img.Symbol(symbol))
}

func (b *boot) hookMain(f func()) {
	b.m.Hook(b.offset.Apply(b.img.Main()), func(*emu.Machine) { f() })
}

func (b *boot) run(t *testing.T) {
	t.Helper()
	require.NoError(t, b.m.Call(b.load, callerLR, stepLimit))
}

var loadAddrs = []uint32{linkBase, 0x40000, 0x1000, 0x7ff00}

func TestBoot(t *testing.T) {
	for _, load := range loadAddrs {
		t.Run(fmt.Sprintf("%#x", load), func(t *testing.T) {
			b := newBoot(t, nil, testLayout, load)
			entryPSR := b.m.CPSR()

			calls := 0
			b.hookMain(func() {
				calls++

				assert.Equal(t, b.addr("__stack_top"), b.m.SP())
				assert.Equal(t, callerMode, b.m.CPSR().Mode())

				gotStart := b.addr("__got_start")
				for i, p := range testLayout.GOT {
					assert.Equal(t, b.offset.Apply(p), b.ram.Load32(gotStart+uint32(i*4)), "GOT[%d]", i)
				}

				for addr := b.addr("__bss_start"); addr < b.addr("__bss_end"); addr += 4 {
					assert.Equal(t, uint32(0), b.ram.Load32(addr), "%#x", addr)
				}
				assert.Equal(t, uint32(linker.Fill), b.ram.Load32(b.addr("__bss_end")))

				// Callee-saved registers survive; main may clobber the rest.
				b.m.R[0] = 0xbad
				b.m.R[1] = 0xbad
				b.m.R[2] = 0xbad
				b.m.R[3] = 0xbad
				b.m.R[12] = 0xbad
				b.m.SetCPSR(b.m.CPSR() &^ (arm.Z | arm.C) | arm.N)
			})

			b.run(t)

			assert.Equal(t, 1, calls)
			assert.Equal(t, uint32(callerLR), b.m.R[15])
			assert.Equal(t, uint32(callerSP), b.m.SP())
			assert.Equal(t, uint32(callerLR), b.m.LR())
			assert.Equal(t, entryPSR.Mode(), b.m.CPSR().Mode())
			assert.Equal(t, entryPSR&arm.ControlMask, b.m.CPSR()&arm.ControlMask)
		})
	}
}

func TestBootWritesOnlyOwnRegions(t *testing.T) {
	b := newBoot(t, nil, testLayout, 0x40000)
	b.hookMain(func() {})
	b.run(t)

	var (
		ctx      = b.addr(pieboot.SavedContextSymbol)
		gotStart = b.addr("__got_start")
		bssEnd   = b.addr("__bss_end")
	)

	writes := b.trace.Writes()
	require.Len(t, writes, 2+len(testLayout.GOT)+int(testLayout.BSSSize/4))

	for _, w := range writes {
		inContext := w.Addr >= ctx && w.Addr < ctx+pieboot.ContextSize
		inGOTOrBSS := w.Addr >= gotStart && w.Addr < bssEnd
		assert.True(t, inContext || inGOTOrBSS, "%s", w)
	}

	// The slot holds the caller's SP and LR.
	assert.Equal(t, uint32(callerSP), b.ram.Load32(ctx+pieboot.ContextSP))
	assert.Equal(t, uint32(callerLR), b.ram.Load32(ctx+pieboot.ContextLR))
}

func TestBootEmptyRanges(t *testing.T) {
	layout := testLayout
	layout.GOT = nil
	layout.BSSSize = 0

	b := newBoot(t, nil, layout, 0x40000)
	b.hookMain(func() {})
	b.run(t)

	ctx := b.addr(pieboot.SavedContextSymbol)
	for _, w := range b.trace.Writes() {
		assert.True(t, w.Addr >= ctx && w.Addr < ctx+pieboot.ContextSize, "%s", w)
	}
}

func TestBootPartialBSSWord(t *testing.T) {
	layout := testLayout
	layout.BSSSize = 0x42

	b := newBoot(t, nil, layout, 0x40000)
	b.hookMain(func() {
		start := b.addr("__bss_start")
		assert.Equal(t, uint32(0), b.ram.Load32(start+0x3c))
		assert.Equal(t, uint32(linker.Fill), b.ram.Load32(start+0x40))
	})
	b.run(t)
}

func TestBootModeSwitch(t *testing.T) {
	for _, mode := range []arm.Mode{arm.Supervisor, arm.IRQ, arm.Abort, arm.Undefined, arm.System} {
		t.Run(mode.String(), func(t *testing.T) {
			b := newBoot(t, &pieboot.Config{ModeSwitch: true, Mode: mode}, testLayout, 0x40000)
			entryPSR := b.m.CPSR()

			var returned arm.PSR
			b.hookMain(func() {
				assert.Equal(t, mode, b.m.CPSR().Mode())
				assert.Equal(t, entryPSR&(arm.I|arm.F|arm.T), b.m.CPSR()&(arm.I|arm.F|arm.T))
				assert.Equal(t, b.addr("__stack_top"), b.m.SP())

				// Unmask IRQs and leave some condition flags behind.
				b.m.SetCPSR(b.m.CPSR()&^(arm.I|arm.N|arm.Z|arm.C|arm.V) | arm.N | arm.V)
				returned = b.m.CPSR()
			})

			b.run(t)

			psr := b.m.CPSR()
			assert.Equal(t, callerMode, psr.Mode())
			assert.Equal(t, returned.WithMode(callerMode), psr, "%v", psr)
			assert.Zero(t, psr&arm.I, "IRQs unmasked by main stay unmasked")
			assert.NotZero(t, psr&arm.F)
			assert.Equal(t, arm.N|arm.V, psr&(arm.N|arm.Z|arm.C|arm.V))
			assert.Equal(t, uint32(callerSP), b.m.SP())
			assert.Equal(t, uint32(callerLR), b.m.LR())
			if mode != callerMode {
				// The stack stays installed in the banked register.
				assert.Equal(t, b.addr("__stack_top"), b.m.BankedSP(mode))
			}

			ctx := b.addr(pieboot.SavedContextSymbol)
			assert.Equal(t, uint32(entryPSR), b.ram.Load32(ctx+pieboot.ContextPSR))
		})
	}
}

func TestBootCacheFlush(t *testing.T) {
	b := newBoot(t, &pieboot.Config{CacheFlush: true}, testLayout, 0x40000)
	b.hookMain(func() {})
	b.run(t)

	flushed := emu.New(nil)
	flushed.FlushDataCache()

	assert.Equal(t, flushed.CacheOps, b.m.CacheOps)
	assert.True(t, b.watch.stored)
	assert.Equal(t, 2, b.watch.before)
}

// TestBootMatchesEntry runs the machine code and the entry package's Go
// rendition of the same sequence on identical images.
func TestBootMatchesEntry(t *testing.T) {
	for _, config := range []pieboot.Config{
		{},
		{CacheFlush: true},
		{ModeSwitch: true, Mode: arm.Abort},
	} {
		code := newBoot(t, &config, testLayout, 0x40000)
		gocode := newBoot(t, &config, testLayout, 0x40000)

		var codeMain, goMain []byte
		snapshot := func(b *boot) []byte {
			start := b.addr("__got_start") - b.ram.Origin
			end := b.addr("__bss_end") - b.ram.Origin
			return append([]byte(nil), b.ram.Data[start:end]...)
		}

		// Both renditions of main leave the same status bits behind.
		leave := func(m *emu.Machine) {
			m.SetCPSR(m.CPSR()&^(arm.I|arm.N|arm.Z|arm.C|arm.V) | arm.N)
		}

		code.hookMain(func() {
			codeMain = snapshot(code)
			leave(code.m)
		})
		code.run(t)

		th := entry.Thunk{
			Config: entry.Config{
				CacheFlush: config.CacheFlush,
				ModeSwitch: config.ModeSwitch,
				Mode:       config.Effective().Mode,
			},
			Symbols: gocode.img.EntrySymbols(),
			Memory:  gocode.m.Memory,
		}

		gocode.m.R[14] = callerLR
		gocode.m.R[15] = gocode.load
		th.Enter(gocode.m, func() {
			assert.Equal(t, code.addr("__stack_top"), gocode.m.SP())
			goMain = snapshot(gocode)
			leave(gocode.m)
		})

		assert.Equal(t, codeMain, goMain)
		assert.Equal(t, code.m.SP(), gocode.m.SP())
		assert.Equal(t, code.m.LR(), gocode.m.LR())
		assert.Equal(t, code.m.CPSR(), gocode.m.CPSR(), "%v", config)
		assert.Zero(t, code.m.CPSR()&arm.I)
		assert.Equal(t, code.m.CacheOps, gocode.m.CacheOps)
	}
}
