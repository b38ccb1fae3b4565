// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package obs configures the structured logger shared by the compiler and
// the solver. It reuses gnark's own logger package (itself backed by
// zerolog) rather than introducing a parallel logging story, and decorates
// its console output with the same isatty/colorable combination zerolog's
// own pretty-printing examples use.
package obs

import (
	"io"
	"os"
	"sync"

	"github.com/consensys/gnark/logger"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

var once sync.Once

// Init configures gnark's global logger to write to w (os.Stderr if nil). It
// is idempotent; only the first call takes effect, matching the one-shot
// process-wide setup gnark itself expects.
func Init(w io.Writer) {
	once.Do(func() {
		if w == nil {
			w = os.Stderr
		}
		out := consoleWriter(w)
		logger.Set(zerolog.New(out).With().Timestamp().Logger())
	})
}

func consoleWriter(w io.Writer) io.Writer {
	out := w
	colorize := false
	if f, ok := w.(*os.File); ok {
		colorize = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		// colorable translates ANSI escapes on Windows consoles; it only
		// applies to real files, so non-file writers (tests) pass through.
		out = colorable.NewColorable(f)
	}
	return zerolog.ConsoleWriter{Out: out, NoColor: !colorize}
}

// Logger returns gnark's configured logger, initializing a stderr default
// if Init was never called.
func Logger() *zerolog.Logger {
	Init(nil)
	l := logger.Logger()
	return &l
}
