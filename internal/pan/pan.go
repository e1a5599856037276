// Copyright (c) 2025 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pan is the panic zone shared by the assembler, the code buffers and
// the memory models.  Only panics raised through this zone are converted into
// errors; everything else keeps unwinding.
package pan

import (
	"import.name/pan"
)

var z = new(pan.Zone)

var (
	Check = z.Check
	Panic = z.Panic
	Wrap  = z.Wrap
)

// Error returns the error carried by a zone panic, or nil if x is nil.  Other
// panic values are re-panicked.
func Error(x any) error {
	return z.Error(x)
}

func Must[T any](x T, err error) T {
	Check(err)
	return x
}
