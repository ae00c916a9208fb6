// Copyright (c) 2025 BVK Chaitanya

package cmdutil

import (
	"flag"
	"log/slog"

	"github.com/visvasity/sglog"
)

type LogFlags struct {
	logDir string
	debug  bool
}

func (lf *LogFlags) SetFlags(fset *flag.FlagSet) {
	fset.StringVar(&lf.logDir, "log-dir", "", "when non-empty, log messages are written to files in this directory")
	fset.BoolVar(&lf.debug, "debug", false, "when true, debug messages are also logged")
}

// Setup installs the default slog handler and returns a function that
// flushes the logs.
func (lf *LogFlags) Setup() func() {
	if len(lf.logDir) == 0 {
		if lf.debug {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
		return func() {}
	}

	backend := sglog.NewBackend(&sglog.Options{
		LogDirs:       []string{lf.logDir},
		LogFileHeader: true,
	})
	if lf.debug {
		backend.SetLevel(slog.LevelDebug)
	}
	slog.SetDefault(slog.New(backend.Handler()))
	return backend.Close
}
