// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mem

import (
	"os"
	"sync/atomic"
	"unsafe"

	"github.com/armboot/pieboot/internal/pan"
	"golang.org/x/sys/unix"
)

// Window maps a physical address range into the process, so that drivers
// written against Memory can poke at real peripherals from Linux (for example
// a PL011 on a development board).  Addresses passed to its methods are
// physical addresses.
type Window struct {
	base uint32
	page []byte
	skew uint32 // Distance from page start to base.
}

// OpenWindow maps size bytes of physical memory starting at base.
func OpenWindow(path string, base uint32, size int) (*Window, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_SYNC|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	defer unix.Close(fd)

	pageSize := uint32(unix.Getpagesize())
	pageBase := base &^ (pageSize - 1)
	skew := base - pageBase

	b, err := unix.Mmap(fd, int64(pageBase), int(skew)+size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, &os.PathError{Op: "mmap", Path: path, Err: err}
	}

	return &Window{base, b, skew}, nil
}

// Close unmaps the window.
func (w *Window) Close() error {
	if w.page == nil {
		return nil
	}
	err := unix.Munmap(w.page)
	w.page = nil
	return err
}

func (w *Window) ptr(addr uint32, n int, write bool) unsafe.Pointer {
	offset := uint64(addr) - uint64(w.base) + uint64(w.skew)
	if addr < w.base || offset+uint64(n) > uint64(len(w.page)) || addr&uint32(n-1) != 0 {
		pan.Panic(&Fault{addr, n, write})
	}
	return unsafe.Pointer(&w.page[offset])
}

func (w *Window) Load32(addr uint32) uint32 {
	return atomic.LoadUint32((*uint32)(w.ptr(addr, 4, false)))
}

func (w *Window) Store32(addr uint32, value uint32) {
	atomic.StoreUint32((*uint32)(w.ptr(addr, 4, true)), value)
}

func (w *Window) Load8(addr uint32) uint8 {
	return *(*uint8)(w.ptr(addr, 1, false))
}

func (w *Window) Store8(addr uint32, value uint8) {
	*(*uint8)(w.ptr(addr, 1, true)) = value
}
