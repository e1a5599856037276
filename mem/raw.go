// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mem

import (
	"unsafe"
)

// Raw accesses the physical address space of the machine it runs on.  It is
// only meaningful on the bare-metal target, before or without an MMU.
type Raw struct{}

var _ Memory = Raw{}

//go:nosplit
func (Raw) Load32(addr uint32) uint32 {
	return *(*uint32)(unsafe.Pointer(uintptr(addr)))
}

//go:nosplit
func (Raw) Store32(addr uint32, value uint32) {
	*(*uint32)(unsafe.Pointer(uintptr(addr))) = value
}

//go:nosplit
func (Raw) Load8(addr uint32) uint8 {
	return *(*uint8)(unsafe.Pointer(uintptr(addr)))
}

//go:nosplit
func (Raw) Store8(addr uint32, value uint8) {
	*(*uint8)(unsafe.Pointer(uintptr(addr))) = value
}
