package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"asnconvert/internal/config"
	"asnconvert/internal/dataprocessing"
	apperrors "asnconvert/internal/errors"
	"asnconvert/internal/exporter"
	"asnconvert/internal/files"
	"asnconvert/internal/infrastructure"
	"asnconvert/pkg/contracts/domain"
)

// Request describes one conversion
type Request struct {
	Customer   string
	OutputBase string
	// InputPath, when set, is converted instead of running discovery.
	InputPath string
}

// Result summarizes a successful conversion
type Result struct {
	Input       files.FileInfo
	OutputPath  string
	Action      domain.WriteAction
	RowsRead    int
	RowsWritten int
}

// Converter runs the resolve → load → normalize → reshape → write pipeline
type Converter struct {
	discovery  *files.Discovery
	normalizer *dataprocessing.Normalizer
	writer     *exporter.CSVWriter
	telemetry  *infrastructure.Telemetry
	logger     *slog.Logger
	console    io.Writer
}

// Options are the dependencies of a Converter that are not derived from config
type Options struct {
	Logger      *slog.Logger
	Telemetry   *infrastructure.Telemetry
	Console     io.Writer
	CheckHeader bool
}

// New wires a Converter from cfg. Console receives the user-facing progress
// lines; a nil Console discards them.
func New(cfg *config.Config, opts Options) (*Converter, error) {
	logger := opts.Logger
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	tel := opts.Telemetry
	if tel == nil {
		tel, err = infrastructure.InitializeTelemetry(config.TelemetryConfig{}, logger)
		if err != nil {
			return nil, err
		}
	}

	console := opts.Console
	if console == nil {
		console = io.Discard
	}

	return &Converter{
		discovery:  files.NewDiscovery(cfg.Input.Dir, logger),
		normalizer: dataprocessing.NewNormalizer(loc, logger),
		writer:     exporter.NewCSVWriter(logger, exporter.WithHeaderCheck(opts.CheckHeader)),
		telemetry:  tel,
		logger:     logger,
		console:    console,
	}, nil
}

// Run converts one export and appends it to the output. Nothing is written
// unless every earlier stage succeeded.
func (c *Converter) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	ctx = infrastructure.EnsureRunID(ctx)

	res, err := c.run(ctx, req)

	elapsed := time.Since(start)
	if err != nil {
		c.telemetry.RecordRun(ctx, string(apperrors.KindOf(err)), elapsed)
		// the user sees "Error: ..." on stdout; this record is for the log file
		c.logger.InfoContext(ctx, "Conversion failed",
			slog.String("kind", string(apperrors.KindOf(err))),
			slog.String("error", err.Error()),
			slog.Duration("duration", elapsed))
		return nil, err
	}

	c.telemetry.RecordRun(ctx, "success", elapsed)
	c.logger.InfoContext(ctx, "Conversion completed",
		slog.String("input", res.Input.Path),
		slog.String("output", res.OutputPath),
		slog.String("action", string(res.Action)),
		slog.Int("rows_read", res.RowsRead),
		slog.Int("rows_written", res.RowsWritten),
		slog.Duration("duration", elapsed))
	return res, nil
}

func (c *Converter) run(ctx context.Context, req Request) (*Result, error) {
	outputPath := files.OutputPath(req.OutputBase)

	input, err := c.resolve(ctx, req, outputPath)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(c.console, "Found input file: %s\n", input.Name)

	table, err := c.load(ctx, input)
	if err != nil {
		return nil, err
	}

	normalized, err := c.normalize(ctx, table)
	if err != nil {
		return nil, err
	}

	rows, err := c.reshape(ctx, normalized, req.Customer)
	if err != nil {
		return nil, err
	}

	action, err := c.write(ctx, outputPath, rows)
	if err != nil {
		return nil, err
	}

	switch action {
	case domain.ActionCreated:
		fmt.Fprintf(c.console, "Created new file: %s\n", outputPath)
	case domain.ActionAppended:
		fmt.Fprintf(c.console, "Appended to %s\n", outputPath)
	}

	return &Result{
		Input:       input,
		OutputPath:  outputPath,
		Action:      action,
		RowsRead:    len(table.Rows),
		RowsWritten: len(rows),
	}, nil
}

func (c *Converter) resolve(ctx context.Context, req Request, outputPath string) (input files.FileInfo, err error) {
	ctx, span := c.telemetry.StartStage(ctx, apperrors.StageResolve)
	defer func() { infrastructure.EndStage(span, err) }()

	if req.InputPath != "" {
		return files.StatInput(req.InputPath)
	}
	return c.discovery.FindInput(ctx, outputPath)
}

func (c *Converter) load(ctx context.Context, input files.FileInfo) (table *domain.Table, err error) {
	ctx, span := c.telemetry.StartStage(ctx, apperrors.StageLoad, attribute.String("convert.input", input.Path))
	defer func() { infrastructure.EndStage(span, err) }()

	table, err = dataprocessing.LoadFile(input.Path)
	if err != nil {
		return nil, err
	}
	c.telemetry.Metrics.RowsRead.Add(ctx, int64(len(table.Rows)))
	return table, nil
}

func (c *Converter) normalize(ctx context.Context, table *domain.Table) (out *domain.NormalizedTable, err error) {
	ctx, span := c.telemetry.StartStage(ctx, apperrors.StageNormalize)
	defer func() { infrastructure.EndStage(span, err) }()

	return c.normalizer.Normalize(ctx, table)
}

func (c *Converter) reshape(ctx context.Context, table *domain.NormalizedTable, customer string) (rows []domain.LongRow, err error) {
	_, span := c.telemetry.StartStage(ctx, apperrors.StageReshape, attribute.String("convert.customer", customer))
	defer func() { infrastructure.EndStage(span, err) }()

	return dataprocessing.Melt(table, customer)
}

func (c *Converter) write(ctx context.Context, outputPath string, rows []domain.LongRow) (action domain.WriteAction, err error) {
	ctx, span := c.telemetry.StartStage(ctx, apperrors.StageWrite, attribute.String("convert.output", outputPath))
	defer func() { infrastructure.EndStage(span, err) }()

	action, err = c.writer.WriteLongRows(ctx, outputPath, rows)
	if err != nil {
		return "", err
	}
	c.telemetry.Metrics.RowsWritten.Add(ctx, int64(len(rows)),
		metric.WithAttributes(attribute.String("action", string(action))))
	return action, nil
}
