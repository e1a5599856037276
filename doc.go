// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package pieboot generates the entry code of a position-independent
bare-metal program for 32-bit ARM.

The generated thunk finds out where the image was loaded by comparing the
program counter with the link-time address of its own first instruction.
The difference (the load base offset) is added to every global offset table
entry, to the stack top and to the .bss boundaries, so the same image can run
at any address.  The caller's stack pointer and return address are saved, the
program's main function is called on the new stack, and control returns to
the caller with its state restored.

See the Assemble function's source code for the exact instruction sequence.
The entry subpackage expresses the same sequence in Go.

# Errors

Assemble returns ConfigError values for invalid configurations.  Errors
implementing the following interface indicate that generated code doesn't fit
in the size limit:

	interface {
		BufferSizeLimit() string
	}

Other errors are internal.
*/
package pieboot
