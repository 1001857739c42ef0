package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/vk/pipesgo/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := pflag.NewFlagSet("pipes", pflag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
pipes - Runs the pipeline declared in a state document.

Usage:
  pipes [options] STATE_FILE
  pipes --list

Arguments:
  STATE_FILE
    State document holding the 'pipes' list. The format follows the
    extension: .yaml, .yml, .json, .jsonc, .hcl or .cbor, optionally
    compressed with a trailing .zst or .lz4.

Options:
`)
		flagSet.PrintDefaults()
	}

	outputFlag := flagSet.StringP("output", "o", "", "Write the final state to this file. Nothing is written when empty.")
	dryRunFlag := flagSet.BoolP("dry-run", "n", false, "Resolve every pipe but skip side effects.")
	keepGoingFlag := flagSet.Bool("keep-going", false, "Continue after a pipe fails and report all failures at the end.")
	listFlag := flagSet.Bool("list", false, "List the available pipes and their parameters, then exit.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("expected a single state file, got %d arguments", flagSet.NArg())}
	}
	path := flagSet.Arg(0)
	slog.Debug("State path determined.", "path", path)

	if path == "" && !*listFlag {
		slog.Debug("No state path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		StatePath:  path,
		OutputPath: *outputFlag,
		DryRun:     *dryRunFlag,
		KeepGoing:  *keepGoingFlag,
		List:       *listFlag,
		LogFormat:  logFormat,
		LogLevel:   logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
