// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdconf

import (
	"flag"
	"os"
	"path"

	"golang.org/x/xerrors"
	"import.name/confi"
)

var home = os.Getenv("HOME")

func JoinHome(dir string) string {
	if dir == "" {
		return ""
	}
	if path.IsAbs(dir) {
		return dir
	}
	if home != "" {
		return path.Join(home, dir)
	}
	return ""
}

// Parse command-line flags into the configuration object.  The default
// filename patterns can be absolute, or relative to home directory.  Missing
// default files are ignored.
func Parse(config any, flags *flag.FlagSet, args []string, defaults ...string) error {
	var absDefaults []string
	for _, p := range defaults {
		p = JoinHome(p)
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			absDefaults = append(absDefaults, p)
		}
	}

	b := confi.NewBuffer(absDefaults...)

	flags.Var(b.FileReader(), "f", "read a configuration file")
	flags.Var(b.Assigner(), "o", "set a configuration option (path.to.key=value)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if err := b.Flush(config, false); err != nil {
		return xerrors.Errorf("%s: %w", flags.Name(), err)
	}
	return nil
}
