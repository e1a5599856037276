// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package buffer implements the code buffers used by the thunk assembler.
//
// A32 text is a sequence of little-endian 32-bit words.  Besides appending,
// the buffers support reading and overwriting a word at an aligned offset,
// which is how forward branches and literal loads are patched once their
// targets are known.
package buffer

import (
	"encoding/binary"

	"github.com/armboot/pieboot/internal/pan"
)

func wordAt(b []byte, offset int) []byte {
	if offset&3 != 0 {
		pan.Panic(ErrAlignment)
	}
	return b[offset : offset+4]
}

func uint32At(b []byte, offset int) uint32 {
	return binary.LittleEndian.Uint32(wordAt(b, offset))
}

func putUint32At(b []byte, offset int, word uint32) {
	binary.LittleEndian.PutUint32(wordAt(b, offset), word)
}
