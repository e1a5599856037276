// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdconf

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Thunk struct {
		Main       string
		ModeSwitch bool
	}
}

func TestJoinHome(t *testing.T) {
	assert.Equal(t, "", JoinHome(""))
	assert.Equal(t, "/etc/pieboot.toml", JoinHome("/etc/pieboot.toml"))
}

func TestParse(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "test.toml")
	require.NoError(t, os.WriteFile(filename, []byte("[thunk]\nmain = \"kmain\"\n"), 0o666))

	c := new(testConfig)
	flags := flag.NewFlagSet("test", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	err := Parse(c, flags, []string{"-f", filename, "-o", "thunk.modeswitch=true", "gen"}, "/nonexistent/pieboot.toml")
	require.NoError(t, err)
	assert.Equal(t, "kmain", c.Thunk.Main)
	assert.True(t, c.Thunk.ModeSwitch)
	assert.Equal(t, []string{"gen"}, flags.Args())
}

func TestParseBadKey(t *testing.T) {
	flags := flag.NewFlagSet("test", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	assert.Error(t, Parse(new(testConfig), flags, []string{"-o", "thunk.nosuchkey=1"}))
}
