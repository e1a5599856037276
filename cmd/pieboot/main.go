// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Program pieboot generates and inspects self-relocating entry code for
// position-independent bare-metal images.
package main

import (
	"debug/elf"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/armboot/pieboot"
	"github.com/armboot/pieboot/image"
	"github.com/armboot/pieboot/internal/cmdconf"
	"github.com/armboot/pieboot/internal/logging"
	"github.com/armboot/pieboot/mem"
	"github.com/armboot/pieboot/object/debug/dump"
	"github.com/armboot/pieboot/object/file"
	"github.com/armboot/pieboot/uart"
	"import.name/confi"
)

var DefaultConfigFiles = []string{
	"/etc/pieboot.toml",
	".config/pieboot.toml",
}

type Config struct {
	Thunk pieboot.Config

	Dump struct {
		Addr uint32 // Address of the first instruction in listings.
	}

	Board struct {
		DevMem string
		UART   []uint32 // Controller base addresses by channel.
	}

	Log struct {
		Journal bool
		Verbose bool
	}
}

// options holds command-specific flag values of one invocation.
type options struct {
	out  string
	init bool
}

type command struct {
	usage string
	nargs int // Negative means at least -nargs.
	flags func(*flag.FlagSet, *options)
	do    func(*Config, *options, *slog.Logger, io.Writer, []string) error
}

var commands = map[string]command{
	"addbss": {
		usage: "elffile binfile outfile",
		nargs: 3,
		do:    addBSS,
	},

	"dump": {
		nargs: 0,
		do:    dumpText,
	},

	"gen": {
		nargs: 0,
		flags: func(fs *flag.FlagSet, o *options) {
			fs.StringVar(&o.out, "out", "start.o", "object file to write")
		},
		do: gen,
	},

	"inspect": {
		usage: "elffile",
		nargs: 1,
		do:    inspect,
	},
}

const mainUsage = `Usage: %s [options] command [args]

Commands:
  addbss   append zero-initialized data to a raw binary image
  dump     print the entry code listing
  gen      write the entry code as a relocatable object
  inspect  show the boundary symbols of a linked image
  uart     write a line to a PL011 controller through physical memory (Linux)

Options:
`

func main() {
	os.Exit(mainResult(os.Args, os.Stdout))
}

func mainResult(args []string, stdout io.Writer) int {
	c := new(Config)
	c.Thunk = pieboot.DefaultConfig
	c.Board.DevMem = mem.DevMem
	c.Board.UART = append([]uint32(nil), uart.VersatileBases...)

	progname := args[0]
	flags := flag.NewFlagSet(progname, flag.ContinueOnError)
	flag.CommandLine = flags

	usage := confi.FlagUsage(nil, c)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), mainUsage, progname)
		usage()
	}

	if err := cmdconf.Parse(c, flags, args[1:], DefaultConfigFiles...); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintln(flags.Output(), err)
		return 2
	}

	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	name := flags.Arg(0)
	cmd, found := commands[name]
	if !found {
		fmt.Fprintf(flags.Output(), "%s: unknown command: %s\n", progname, name)
		flags.Usage()
		return 2
	}

	opts := new(options)
	cmdFlags := flag.NewFlagSet(name, flag.ContinueOnError)
	if cmd.flags != nil {
		cmd.flags(cmdFlags, opts)
	}
	cmdFlags.Usage = func() {
		fmt.Fprintf(cmdFlags.Output(), "Usage: %s [options] %s [flags] %s\n", progname, name, cmd.usage)
		cmdFlags.PrintDefaults()
	}
	if err := cmdFlags.Parse(flags.Args()[1:]); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if n := cmdFlags.NArg(); (cmd.nargs >= 0 && n != cmd.nargs) || n < -cmd.nargs {
		cmdFlags.Usage()
		return 2
	}

	log, err := logging.Init(c.Log.Journal, c.Log.Verbose)
	if err != nil {
		log.Error("journal initialization failed", "error", err)
		return 1
	}

	if err := cmd.do(c, opts, log, stdout, cmdFlags.Args()); err != nil {
		log.Error("command failed", "command", name, "error", err)
		return 1
	}
	return 0
}

func assemble(c *Config, log *slog.Logger) (*pieboot.Object, error) {
	obj, err := pieboot.Assemble(&c.Thunk)
	if err != nil {
		return nil, err
	}

	log.Debug("entry code assembled",
		"entry", obj.Config.Entry,
		"text", len(obj.Text),
		"pool", obj.Pool,
		"relocs", len(obj.Relocs))

	return obj, nil
}

func gen(c *Config, o *options, log *slog.Logger, out io.Writer, args []string) (err error) {
	obj, err := assemble(c, log)
	if err != nil {
		return
	}

	f, err := os.Create(o.out)
	if err != nil {
		return
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	n, err := file.New(obj).WriteTo(f)
	if err != nil {
		return
	}

	log.Info("object written", "path", o.out, "size", n)
	return
}

func dumpText(c *Config, o *options, log *slog.Logger, out io.Writer, args []string) error {
	obj, err := assemble(c, log)
	if err != nil {
		return err
	}

	return dump.Object(out, obj, c.Dump.Addr)
}

func addBSS(c *Config, o *options, log *slog.Logger, out io.Writer, args []string) error {
	if err := image.AddBSSFile(args[0], args[1], args[2]); err != nil {
		return err
	}

	log.Info("image written", "path", args[2])
	return nil
}

func inspect(c *Config, o *options, log *slog.Logger, out io.Writer, args []string) error {
	f, err := elf.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	config := c.Thunk.Effective()

	syms, err := image.LinkSymbols(f, &config)
	if err != nil {
		return err
	}

	values := map[string]uint32{
		config.Entry:    syms.Entry,
		config.GOTStart: syms.GOTStart,
		config.GOTEnd:   syms.GOTEnd,
		config.BSSStart: syms.BSSStart,
		config.BSSEnd:   syms.BSSEnd,
		config.StackTop: syms.StackTop,
	}

	var names []string
	for name := range values {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return values[names[i]] < values[names[j]] || (values[names[i]] == values[names[j]] && names[i] < names[j])
	})

	for _, name := range names {
		fmt.Fprintf(out, "%08x %s\n", values[name], name)
	}

	r := image.RegionsOf(syms)
	fmt.Fprintf(out, "got entries: %d\n", r.GOTEntries)
	fmt.Fprintf(out, "bss size:    %d\n", r.BSSSize)
	fmt.Fprintf(out, "section bss: %d\n", image.BSSSize(f))
	return nil
}
