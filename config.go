// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pieboot

import (
	"github.com/armboot/pieboot/arm"
)

// Symbol names used by default.  The boundary symbols are expected to be
// defined by the linker script.
const (
	DefaultEntry    = "_start"
	DefaultMain     = "main"
	DefaultGOTStart = "__got_start"
	DefaultGOTEnd   = "__got_end"
	DefaultBSSStart = "__bss_start"
	DefaultBSSEnd   = "__bss_end"
	DefaultStackTop = "__stack_top"
)

// SavedContextSymbol is the local data symbol of the saved context slot.
const SavedContextSymbol = "pieboot_saved_context"

// Config of the generated thunk.  Empty symbol names and zero Mode are
// replaced with defaults.
type Config struct {
	Entry    string // Global symbol defined at the first instruction.
	Main     string // Program entry function.
	GOTStart string
	GOTEnd   string
	BSSStart string
	BSSEnd   string
	StackTop string

	CacheFlush  bool     // Invalidate data cache and drain write buffer first.
	ModeSwitch  bool     // Run main in Mode and restore the caller's mode.
	Mode        arm.Mode // Must be privileged.
	MaxTextSize int      // Zero means unlimited.
}

var DefaultConfig = Config{
	Entry:    DefaultEntry,
	Main:     DefaultMain,
	GOTStart: DefaultGOTStart,
	GOTEnd:   DefaultGOTEnd,
	BSSStart: DefaultBSSStart,
	BSSEnd:   DefaultBSSEnd,
	StackTop: DefaultStackTop,
	Mode:     arm.Supervisor,
}

// Effective configuration with defaults filled in.
func (c Config) Effective() Config {
	fill := func(s *string, def string) {
		if *s == "" {
			*s = def
		}
	}

	fill(&c.Entry, DefaultEntry)
	fill(&c.Main, DefaultMain)
	fill(&c.GOTStart, DefaultGOTStart)
	fill(&c.GOTEnd, DefaultGOTEnd)
	fill(&c.BSSStart, DefaultBSSStart)
	fill(&c.BSSEnd, DefaultBSSEnd)
	fill(&c.StackTop, DefaultStackTop)

	if c.Mode == 0 {
		c.Mode = arm.Supervisor
	}
	return c
}

// Externals lists the symbols the thunk refers to but doesn't define, in
// order of first use.
func (c *Config) Externals() []string {
	return []string{c.GOTStart, c.GOTEnd, c.StackTop, c.BSSStart, c.BSSEnd, c.Main}
}

// Validate an effective configuration.
func (c *Config) Validate() error {
	names := map[string]string{SavedContextSymbol: "SavedContext"}

	for _, x := range []struct {
		field string
		name  string
	}{
		{"Entry", c.Entry},
		{"Main", c.Main},
		{"GOTStart", c.GOTStart},
		{"GOTEnd", c.GOTEnd},
		{"BSSStart", c.BSSStart},
		{"BSSEnd", c.BSSEnd},
		{"StackTop", c.StackTop},
	} {
		if x.name == "" {
			return configError(x.field, "symbol name is empty")
		}
		if other, found := names[x.name]; found {
			return configError(x.field, "symbol name %q is also used for %s", x.name, other)
		}
		names[x.name] = x.field
	}

	if c.ModeSwitch {
		if !c.Mode.Valid() {
			return configError("Mode", "invalid processor mode %#x", uint32(c.Mode))
		}
		if !c.Mode.Privileged() {
			return configError("Mode", "%s mode is not privileged", c.Mode)
		}
	}

	if c.MaxTextSize < 0 {
		return configError("MaxTextSize", "negative size %d", c.MaxTextSize)
	}

	return nil
}
