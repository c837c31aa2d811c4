package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/gbtgo/internal/app"
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
	flagSet := flag.NewFlagSet("gbtgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
gbtgo - Projected block template generator for a mempool snapshot.

Usage:
  gbtgo [options] [MEMPOOL_PATH...]

Arguments:
  MEMPOOL_PATH
    Snapshot file or directory. Files ending in .json, .cbor, .yaml or .yml,
    optionally followed by .zst, are loaded.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to an HCL config file or directory.")
	cFlag := flagSet.String("c", "", "Path to an HCL config file or directory (shorthand).")
	formatFlag := flagSet.String("format", "json", "Output format. Options: 'json', 'cbor' or 'yaml'.")
	outputFlag := flagSet.String("output", "", "Write the projection to this file instead of stdout. A .zst suffix compresses it.")
	oFlag := flagSet.String("o", "", "Output file (shorthand).")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	maxBlocksFlag := flagSet.Int("max-blocks", 0, "Number of blocks to project. 0 keeps the configured value.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	configPath := *configFlag
	if configPath == "" {
		configPath = *cFlag
	}
	outputPath := *outputFlag
	if outputPath == "" {
		outputPath = *oFlag
	}
	snapshotPaths := flagSet.Args()
	slog.Debug("Input paths determined.", "config", configPath, "snapshots", snapshotPaths)

	if configPath == "" && len(snapshotPaths) == 0 {
		slog.Debug("No input provided, printing usage and exiting.")
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
		SnapshotPaths:   snapshotPaths,
		ConfigPath:      configPath,
		OutputPath:      outputPath,
		OutputFormat:    *formatFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: *healthPortFlag,
		MaxBlocks:       *maxBlocksFlag,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
