// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"encoding/binary"

	"github.com/armboot/pieboot/internal/pan"
)

// Static is a fixed-capacity buffer, for emitting into a reserved region such
// as a boot ROM slot.  The default value is a zero-capacity buffer.
type Static struct {
	buf []byte
}

// MakeStatic buffer.  The slice's length is discarded; its capacity is the
// limit.
//
// This function can be used in field initializer expressions.  The initialized
// field must not be copied.
func MakeStatic(b []byte) Static {
	return Static{b[:0]}
}

// NewStatic buffer.
func NewStatic(b []byte) *Static {
	s := MakeStatic(b)
	return &s
}

// Cap doesn't panic.
func (s *Static) Cap() int {
	return cap(s.buf)
}

// Len doesn't panic.
func (s *Static) Len() int {
	return len(s.buf)
}

// Bytes doesn't panic.
func (s *Static) Bytes() []byte {
	return s.buf
}

// PutUint32 panics with ErrStaticSize if 4 bytes cannot be appended.
func (s *Static) PutUint32(word uint32) {
	binary.LittleEndian.PutUint32(s.Extend(4), word)
}

// Extend panics with ErrStaticSize if n bytes cannot be appended.
func (s *Static) Extend(n int) []byte {
	offset := len(s.buf)
	size := offset + n
	if size > cap(s.buf) {
		pan.Panic(ErrStaticSize)
	}
	s.buf = s.buf[:size]
	return s.buf[offset:]
}

// Uint32At panics with ErrAlignment if offset is not a multiple of 4.
func (s *Static) Uint32At(offset int) uint32 {
	return uint32At(s.buf, offset)
}

// PutUint32At panics with ErrAlignment if offset is not a multiple of 4.
func (s *Static) PutUint32At(offset int, word uint32) {
	putUint32At(s.buf, offset, word)
}
