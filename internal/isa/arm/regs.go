// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arm

import (
	"github.com/armboot/pieboot/internal/isa/arm/in"
)

// Register plan of generated boot code.  The callee-saved registers hold
// state which must survive the call to the program.
const (
	RegScratch0 = in.R0
	RegScratch1 = in.R1
	RegScratch2 = in.R2
	RegScratch3 = in.R3
	RegOffset   = in.R4 // Load base offset.
	RegContext  = in.R5 // Runtime address of the saved context slot.
	RegStack    = in.SP
	RegLink     = in.LR
)
