// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	. "import.name/testing/mustr"
)

func TestWithRestoreMode(t *testing.T) {
	for _, entry := range []PSR{
		PSR(System) | I | F,
		PSR(User) | N | C,
		PSR(IRQ) | Z | V | Q | I,
		PSR(Supervisor),
		PSR(FIQ) | T | 0x00f00000,
	} {
		for _, m := range []Mode{Supervisor, System, Abort, Undefined, IRQ, FIQ} {
			forced := entry.WithMode(m)
			assert.Equal(t, m, forced.Mode())
			assert.Equal(t, entry&^ModeMask, forced&^ModeMask, "non-mode bits changed by force")

			// Something else may disturb the flags while the mode is forced.
			disturbed := forced ^ (N | Z)

			restored := RestoreMode(disturbed, entry)
			assert.Equal(t, entry.Mode(), restored.Mode())
			assert.Equal(t, disturbed&^ModeMask, restored&^ModeMask, "non-mode bits changed by restore")
		}
	}
}

func TestMasked(t *testing.T) {
	assert.Equal(t, ControlMask, Masked(FieldControl))
	assert.Equal(t, PSR(0xff0000ff), Masked(FieldControl|FieldFlags))
	assert.Equal(t, PSR(0xffffffff), Masked(0xf))
	assert.Equal(t, PSR(0), Masked(0))
}

func TestModeText(t *testing.T) {
	for m := range modeNames {
		b := Must(t, R(m.MarshalText()))

		var m2 Mode
		assert.NoError(t, m2.UnmarshalText(b))
		assert.Equal(t, m, m2)
	}

	_, err := Mode(0x15).MarshalText()
	assert.Error(t, err)

	_, err = ParseMode("hyp")
	assert.Error(t, err)

	assert.True(t, Supervisor.Privileged())
	assert.False(t, User.Privileged())
	assert.False(t, System.Banked())
	assert.True(t, FIQ.Banked())
	assert.Equal(t, "Nzcvq svc 0x80000013", (N | PSR(Supervisor)).String())
}
