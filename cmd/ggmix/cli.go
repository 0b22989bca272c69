package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// ExitError carries the process exit code for a failed invocation.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Message
}

type config struct {
	stage     string
	frames    int
	out       string
	every     int
	logLevel  string
	logFormat string
	welcome   bool
	realtime  bool
}

// parse processes command-line arguments. It reports whether the program
// should exit cleanly (help requested) or returns an ExitError.
func parse(args []string, output io.Writer) (*config, bool, error) {
	fs := flag.NewFlagSet("ggmix", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(output, `
ggmix - live compositing of generative visuals.

Usage:
  ggmix [options] [STAGE_FILE]

Without a stage file, -welcome installs the animated welcome screen.

Options:
`)
		fs.PrintDefaults()
	}

	var cfg config
	fs.StringVar(&cfg.stage, "stage", "", "Path to an HCL stage file.")
	fs.IntVar(&cfg.frames, "frames", 100, "Number of frames to paint.")
	fs.StringVar(&cfg.out, "out", "", "Directory for PNG frames. Empty writes nothing.")
	fs.IntVar(&cfg.every, "every", 1, "Write every Nth frame.")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "Logging level: 'debug', 'info', 'warn' or 'error'.")
	fs.StringVar(&cfg.logFormat, "log-format", "text", "Log output format: 'text' or 'json'.")
	fs.BoolVar(&cfg.welcome, "welcome", false, "Install the welcome channel and generator.")
	fs.BoolVar(&cfg.realtime, "realtime", false, "Pace frames at the max frame rate on the wall clock.")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if cfg.stage == "" && fs.NArg() > 0 {
		cfg.stage = fs.Arg(0)
	}

	if cfg.stage == "" && !cfg.welcome {
		fs.Usage()
		return nil, true, nil
	}
	if cfg.frames <= 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid frames: must be positive"}
	}
	if cfg.every <= 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid every: must be positive"}
	}

	cfg.logFormat = strings.ToLower(cfg.logFormat)
	if cfg.logFormat != "text" && cfg.logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	cfg.logLevel = strings.ToLower(cfg.logLevel)
	switch cfg.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	return &cfg, false, nil
}
