// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uart_test

import (
	"github.com/armboot/pieboot/mem"
	"github.com/armboot/pieboot/uart"
)

// A program started by the entry thunk on a Versatile board reaches the
// controllers directly.  There is no output on the host.
func ExampleNew() {
	d := uart.New(mem.Raw{}, uart.VersatileBases...)
	d.Init(0)
	d.PrintString(0, "OK\n")
}
