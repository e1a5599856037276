// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUARTArgs(t *testing.T) {
	code, _ := run("uart", "0")
	assert.Equal(t, 2, code)

	code, _ = run("uart", "x", "hello")
	assert.Equal(t, 1, code)

	code, _ = run("uart", "3", "hello")
	assert.Equal(t, 1, code)
}

func TestUARTNoDevice(t *testing.T) {
	devmem := filepath.Join(t.TempDir(), "mem")

	code, _ := run("-o", "board.devmem="+devmem, "uart", "0", "hello")
	assert.Equal(t, 1, code)
}
