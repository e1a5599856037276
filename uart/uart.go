// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package uart drives PrimeCell PL011 serial controllers.
//
// Channels are numbered from zero in the order their base addresses were
// given to New.  Every operation silently does nothing when the channel
// number is out of range; ReadChar returns zero in that case.
//
// Register updates are read-modify-write so that reserved bits keep their
// values, and the data register is accessed a byte at a time.  Transmission
// and reception poll the flag register, so PutChar and ReadChar may block
// until the controller is ready.
package uart

import (
	"io"

	"github.com/armboot/pieboot/mem"
)

// Base addresses of the three UARTs of the Versatile Application Baseboard.
var VersatileBases = []uint32{
	0x101f1000,
	0x101f2000,
	0x101f3000,
}

// Register offsets.
const (
	RegDR    = 0x00
	RegRSR   = 0x04 // Shared with ECR.
	RegFR    = 0x18
	RegILPR  = 0x20
	RegIBRD  = 0x24
	RegFBRD  = 0x28
	RegLCRH  = 0x2c
	RegCR    = 0x30
	RegIFLS  = 0x34
	RegIMSC  = 0x38
	RegRIS   = 0x3c
	RegMIS   = 0x40
	RegICR   = 0x44
	RegDMACR = 0x48

	RegSize = 0x1000 // Address space occupied by one controller.
)

// Control register bits.
const (
	CtlUARTEN = 1 << 0
	CtlSIREN  = 1 << 1
	CtlSIRLP  = 1 << 2
	CtlLBE    = 1 << 7
	CtlTXE    = 1 << 8
	CtlRXE    = 1 << 9
	CtlDTR    = 1 << 10
	CtlRTS    = 1 << 11
	CtlOUT1   = 1 << 12
	CtlOUT2   = 1 << 13
	CtlRTSEn  = 1 << 14
	CtlCTSEn  = 1 << 15
)

// Interrupt mask bits.
const (
	IntRIMIM  = 1 << 0
	IntCTSMIM = 1 << 1
	IntDCDMIM = 1 << 2
	IntDSRMIM = 1 << 3
	IntRXIM   = 1 << 4
	IntTXIM   = 1 << 5
	IntRTIM   = 1 << 6
	IntFEIM   = 1 << 7
	IntPEIM   = 1 << 8
	IntBEIM   = 1 << 9
	IntOEIM   = 1 << 10

	IntAll = IntRIMIM | IntCTSMIM | IntDCDMIM | IntDSRMIM | IntRXIM | IntTXIM | IntRTIM | IntFEIM | IntPEIM | IntBEIM | IntOEIM
)

// Flag register bits.
const (
	FlagCTS  = 1 << 0
	FlagDSR  = 1 << 1
	FlagDCD  = 1 << 2
	FlagBUSY = 1 << 3
	FlagRXFE = 1 << 4
	FlagTXFF = 1 << 5
	FlagRXFF = 1 << 6
	FlagTXFE = 1 << 7
	FlagRI   = 1 << 8
)

var nullText = []byte("<NULL>\n")

// Driver owns a fixed set of controllers.
type Driver struct {
	m     mem.Memory
	bases []uint32
}

// New driver for controllers at the given base addresses.
func New(m mem.Memory, bases ...uint32) *Driver {
	return &Driver{m, append([]uint32(nil), bases...)}
}

func (d *Driver) NumChannels() int { return len(d.bases) }

// Valid reports whether nr names a controller.  Callers which need to tell a
// dropped operation apart from a performed one check this first.
func (d *Driver) Valid(nr uint8) bool {
	return int(nr) < len(d.bases)
}

func (d *Driver) reg(nr uint8, offset uint32) uint32 {
	return d.bases[nr] + offset
}

func (d *Driver) setBits(nr uint8, offset, mask uint32) {
	addr := d.reg(nr, offset)
	d.m.Store32(addr, d.m.Load32(addr)|mask)
}

func (d *Driver) clearBits(nr uint8, offset, mask uint32) {
	addr := d.reg(nr, offset)
	d.m.Store32(addr, d.m.Load32(addr)&^mask)
}

func (d *Driver) readBits(nr uint8, offset, mask uint32) uint32 {
	return d.m.Load32(d.reg(nr, offset)) & mask
}

// Init leaves the controller enabled for transmission only, with all
// interrupt sources masked.
func (d *Driver) Init(nr uint8) {
	if !d.Valid(nr) {
		return
	}

	// The controller must be disabled while it is being reconfigured.
	d.clearBits(nr, RegCR, CtlUARTEN)

	d.setBits(nr, RegCR, CtlTXE)
	d.clearBits(nr, RegCR, CtlSIREN|CtlSIRLP|CtlLBE|CtlRXE|CtlDTR)
	d.clearBits(nr, RegCR, CtlRTS|CtlOUT1|CtlOUT2|CtlRTSEn|CtlCTSEn)

	d.clearBits(nr, RegIMSC, IntRIMIM|IntCTSMIM|IntDCDMIM|IntDSRMIM|IntRXIM|IntTXIM)
	d.clearBits(nr, RegIMSC, IntRTIM|IntFEIM|IntPEIM|IntBEIM|IntOEIM)

	d.setBits(nr, RegCR, CtlUARTEN)
}

// putChar trusts nr.
func (d *Driver) putChar(nr uint8, c byte) {
	for d.readBits(nr, RegFR, FlagTXFF) != 0 {
	}

	d.m.Store8(d.reg(nr, RegDR), c)
}

// PutChar transmits one byte, waiting while the transmit FIFO is full.
func (d *Driver) PutChar(nr uint8, c byte) {
	if !d.Valid(nr) {
		return
	}
	d.putChar(nr, c)
}

// Print transmits text up to its first NUL byte.  A nil slice is printed as
// "<NULL>" followed by a newline.
func (d *Driver) Print(nr uint8, text []byte) {
	if !d.Valid(nr) {
		return
	}

	if text == nil {
		text = nullText
	}

	for _, c := range text {
		if c == 0 {
			break
		}
		d.putChar(nr, c)
	}
}

// PrintString is like Print.
func (d *Driver) PrintString(nr uint8, s string) {
	if !d.Valid(nr) {
		return
	}

	for i := 0; i < len(s) && s[i] != 0; i++ {
		d.putChar(nr, s[i])
	}
}

func (d *Driver) EnableUART(nr uint8) {
	if d.Valid(nr) {
		d.setBits(nr, RegCR, CtlUARTEN)
	}
}

func (d *Driver) DisableUART(nr uint8) {
	if d.Valid(nr) {
		d.clearBits(nr, RegCR, CtlUARTEN)
	}
}

// updateControl modifies control register bits with the controller
// disabled, and re-enables it only if it was enabled before.
func (d *Driver) updateControl(nr uint8, set bool, mask uint32) {
	if !d.Valid(nr) {
		return
	}

	enabled := d.readBits(nr, RegCR, CtlUARTEN)
	d.clearBits(nr, RegCR, CtlUARTEN)

	if set {
		d.setBits(nr, RegCR, mask)
	} else {
		d.clearBits(nr, RegCR, mask)
	}

	if enabled != 0 {
		d.setBits(nr, RegCR, CtlUARTEN)
	}
}

func (d *Driver) EnableTx(nr uint8)  { d.updateControl(nr, true, CtlTXE) }
func (d *Driver) DisableTx(nr uint8) { d.updateControl(nr, false, CtlTXE) }
func (d *Driver) EnableRx(nr uint8)  { d.updateControl(nr, true, CtlRXE) }
func (d *Driver) DisableRx(nr uint8) { d.updateControl(nr, false, CtlRXE) }

func (d *Driver) EnableRxInterrupt(nr uint8) {
	if d.Valid(nr) {
		d.setBits(nr, RegIMSC, IntRXIM)
	}
}

func (d *Driver) DisableRxInterrupt(nr uint8) {
	if d.Valid(nr) {
		d.clearBits(nr, RegIMSC, IntRXIM)
	}
}

// ClearRxInterrupt acknowledges a receive interrupt.  The clear register is
// write-only and zero bits have no effect, so it is written directly.
func (d *Driver) ClearRxInterrupt(nr uint8) {
	if d.Valid(nr) {
		d.m.Store32(d.reg(nr, RegICR), IntRXIM)
	}
}

// ReadChar waits until the receive FIFO is not empty and returns the next
// byte.  It returns 0 immediately for an invalid channel.
func (d *Driver) ReadChar(nr uint8) byte {
	if !d.Valid(nr) {
		return 0
	}

	for d.readBits(nr, RegFR, FlagRXFE) != 0 {
	}

	return d.m.Load8(d.reg(nr, RegDR))
}

// Writer returns an io.Writer which transmits through channel nr.  Writes to
// an invalid channel are discarded without error.
func (d *Driver) Writer(nr uint8) io.Writer {
	return writer{d, nr}
}

type writer struct {
	d  *Driver
	nr uint8
}

func (w writer) Write(b []byte) (int, error) {
	if w.d.Valid(w.nr) {
		for _, c := range b {
			w.d.putChar(w.nr, c)
		}
	}
	return len(b), nil
}
