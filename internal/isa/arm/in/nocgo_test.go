// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !cgo

package in

import (
	"testing"
)

func TestDisassemble(t *testing.T) {
	t.Skip("disassembly requires cgo")
}
