package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"asnconvert/internal/config"
	apperrors "asnconvert/internal/errors"
	"asnconvert/internal/infrastructure"
	"asnconvert/pkg/contracts"
)

// UsageLine is printed when the positional arguments are wrong
const UsageLine = "Usage: convert [flags] <customer_name> <output_filename_without_extension>"

// RunCLI parses args (without the program name), runs one conversion and
// returns the process exit code. User-facing lines, including
// "Error: <message>", go to stdout.
func RunCLI(ctx context.Context, args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.Usage = func() {
		fmt.Fprintln(stdout, UsageLine)
		fs.PrintDefaults()
	}

	input := fs.String("input", "", "convert this file (.csv or .xlsx) instead of searching for one")
	dir := fs.String("dir", "", "directory searched for *.csv input (default $CONVERT_INPUT_DIR or .)")
	tz := fs.String("tz", "", "time zone of the export's dates (default $CONVERT_INPUT_TIMEZONE or Local)")
	checkHeader := fs.Bool("check-header", false, "refuse to append unless the output starts with time,Type,Customer,ASN,Value")
	version := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	if *version {
		fmt.Fprintln(stdout, contracts.BuildInfo())
		return 0
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(stdout, UsageLine)
		return apperrors.ExitCode(apperrors.NewUsageError(UsageLine))
	}

	cfg, err := config.LoadEnv()
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}
	if *dir != "" {
		cfg.Input.Dir = *dir
	}
	if *tz != "" {
		cfg.Input.Timezone = *tz
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stdout, "Error: config validation failed: %v\n", err)
		return 1
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}
	defer infrastructure.CloseLogFile()

	tel, err := infrastructure.InitializeTelemetry(cfg.Telemetry, logger)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	converter, err := New(cfg, Options{
		Logger:      logger,
		Telemetry:   tel,
		Console:     stdout,
		CheckHeader: *checkHeader,
	})
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}

	ctx = infrastructure.ContextWithRunID(ctx)
	_, err = converter.Run(ctx, Request{
		Customer:   fs.Arg(0),
		OutputBase: fs.Arg(1),
		InputPath:  *input,
	})
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return apperrors.ExitCode(err)
	}
	return 0
}
