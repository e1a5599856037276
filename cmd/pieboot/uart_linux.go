// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/armboot/pieboot/internal/pan"
	"github.com/armboot/pieboot/mem"
	"github.com/armboot/pieboot/uart"
	"golang.org/x/xerrors"
)

func init() {
	commands["uart"] = command{
		usage: "channel text...",
		nargs: -2,
		flags: func(fs *flag.FlagSet, o *options) {
			fs.BoolVar(&o.init, "init", false, "initialize the controller first")
		},
		do: uartWrite,
	}
}

func uartWrite(c *Config, o *options, log *slog.Logger, out io.Writer, args []string) (err error) {
	nr, err := strconv.ParseUint(args[0], 0, 8)
	if err != nil {
		return xerrors.Errorf("channel: %w", err)
	}
	if int(nr) >= len(c.Board.UART) {
		return xerrors.Errorf("channel %d is not configured (%d channels)", nr, len(c.Board.UART))
	}
	base := c.Board.UART[nr]

	w, err := mem.OpenWindow(c.Board.DevMem, base, uart.RegSize)
	if err != nil {
		return
	}
	defer func() {
		if closeErr := w.Close(); err == nil {
			err = closeErr
		}
	}()

	defer func() {
		if x := recover(); x != nil {
			err = pan.Error(x)
		}
	}()

	// The window holds one controller, so it is channel 0 of the driver.
	d := uart.New(w, base)
	if o.init {
		d.Init(0)
	}

	text := strings.Join(args[1:], " ")
	if _, err = fmt.Fprintln(d.Writer(0), text); err != nil {
		return
	}

	log.Debug("uart write", "channel", nr, "base", fmt.Sprintf("%#08x", base), "size", len(text)+1)
	return
}
