package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}

	switch args[0] {
	case "--version", "-v", "version":
		fmt.Fprintf(stdout, "solitaire-vision %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return 0
	case "--help", "-h", "help":
		printUsage(stdout)
		return 0
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		printUsage(stderr)
		return 2
	}

	inv, err := parseInvocation(args[0], args[1:], stderr)
	if err != nil {
		// flag has already reported the problem
		return 2
	}

	logger := newLogger(stderr, inv.cfg.LogLevel)
	log.Logger = logger

	if err := cmd(inv, stdout, logger); err != nil {
		logger.Error().Err(err).Str("command", args[0]).Msg("command failed")
		return 1
	}
	return 0
}

// newLogger writes human-readable logs to w. Unknown levels fall back to info.
func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "solitaire-vision - read a solitaire game state from a screenshot")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: solitaire-vision <command> [options] [screenshot]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  read        Recognize the board, save the annotated image and state JSON")
	fmt.Fprintln(w, "  detect      Print post-suppression detections and associated cards")
	fmt.Fprintln(w, "  templates   List the loaded templates")
	fmt.Fprintln(w, "  verify      Cross-check detected ranks with OCR")
	fmt.Fprintln(w, "  serve       Run the MCP server on stdin/stdout")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --version, -v    Print version information")
	fmt.Fprintln(w, "  --help, -h       Print this help message")
	fmt.Fprintln(w, "  <command> -h     Print the options of a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintln(w, "  SOLITAIRE_VISION_CONFIG=path       JSON configuration file")
	fmt.Fprintln(w, "  SOLITAIRE_VISION_LOG_LEVEL=debug   Enable debug logging")
	fmt.Fprintln(w, "  SOLITAIRE_VISION_<SETTING>         Override any setting, e.g. TEMPLATES, WORKERS")
}
