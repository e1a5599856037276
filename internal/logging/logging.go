// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logging

import (
	"log/slog"
	"time"

	"import.name/sjournal"
)

// Init returns some kind of logger on error.  Verbose enables debug records
// of the default handler; the journal handler logs at its own level.
func Init(journal, verbose bool) (*slog.Logger, error) {
	if !journal {
		if verbose {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
		return slog.Default(), nil
	}

	opts := &sjournal.HandlerOptions{
		Delimiter:  sjournal.ColonDelimiter,
		TimeFormat: time.RFC3339Nano,
	}

	h, err := sjournal.NewHandler(opts)
	if err != nil {
		return slog.Default(), err
	}

	log := slog.New(h)

	slog.SetDefault(log)
	slog.SetLogLoggerLevel(slog.LevelInfo)

	return log, nil
}
