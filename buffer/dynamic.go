// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"encoding/binary"

	"github.com/armboot/pieboot/internal/pan"
)

// Dynamic is a variable-capacity buffer with an optional size limit.  The
// default value is a valid, unlimited buffer.
type Dynamic struct {
	buf     []byte
	maxSize int // Zero means unlimited.
}

// NewDynamic buffer.  The slice must be empty.
func NewDynamic(b []byte) *Dynamic {
	return NewLimited(b, 0)
}

// NewLimited buffer which may not grow beyond maxSize bytes.  Zero maxSize
// means unlimited.  The slice must be empty.
func NewLimited(b []byte, maxSize int) *Dynamic {
	if len(b) != 0 {
		panic("slice must be empty")
	}
	return &Dynamic{b, maxSize}
}

// Len doesn't panic.
func (d *Dynamic) Len() int {
	return len(d.buf)
}

// Bytes doesn't panic.
func (d *Dynamic) Bytes() []byte {
	return d.buf
}

// PutUint32 panics with ErrSizeLimit if the limit would be exceeded.
func (d *Dynamic) PutUint32(word uint32) {
	binary.LittleEndian.PutUint32(d.Extend(4), word)
}

// Extend panics with ErrSizeLimit if the limit would be exceeded.
func (d *Dynamic) Extend(n int) []byte {
	offset := len(d.buf)
	size := offset + n
	if d.maxSize > 0 && size > d.maxSize {
		pan.Panic(ErrSizeLimit)
	}

	if size <= cap(d.buf) {
		d.buf = d.buf[:size]
	} else {
		newCap := 2*cap(d.buf) + n
		if d.maxSize > 0 && newCap > d.maxSize {
			newCap = d.maxSize
		}
		b := make([]byte, size, newCap)
		copy(b, d.buf)
		d.buf = b
	}

	return d.buf[offset:]
}

// Uint32At panics with ErrAlignment if offset is not a multiple of 4.
func (d *Dynamic) Uint32At(offset int) uint32 {
	return uint32At(d.buf, offset)
}

// PutUint32At panics with ErrAlignment if offset is not a multiple of 4.
func (d *Dynamic) PutUint32At(offset int, word uint32) {
	putUint32At(d.buf, offset, word)
}
