package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"asnconvert/internal/config"
	"asnconvert/pkg/contracts"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	ServiceName = "asnconvert"
	MeterName   = "asnconvert"
	TracerName  = "asnconvert.convert"
)

// RunMetrics are the instruments recorded once per conversion run
type RunMetrics struct {
	RowsRead    metric.Int64Counter
	RowsWritten metric.Int64Counter
	Runs        metric.Int64Counter
	RunDuration metric.Float64Histogram
}

// Telemetry holds the tracer and meter for one process. Traces go to a
// stdouttrace file and metrics to a Prometheus textfile, each only when
// configured; instruments are always usable.
type Telemetry struct {
	Tracer  trace.Tracer
	Metrics *RunMetrics

	tracerProvider *sdktrace.TracerProvider
	traceFile      *os.File
	meterProvider  *sdkmetric.MeterProvider
	registry       *prometheus.Registry
	metricsFile    string
	logger         *slog.Logger
}

// InitializeTelemetry builds the providers described by cfg
func InitializeTelemetry(cfg config.TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = GetLogger()
	}

	res, err := resource.New(context.Background(),
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(contracts.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	t := &Telemetry{
		metricsFile: cfg.MetricsFile,
		logger:      logger,
	}

	if err := t.initializeTracing(cfg.TraceFile, res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if err := t.initializeMetrics(res); err != nil {
		t.closeTraceFile()
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.Debug("Telemetry initialized",
		slog.String("trace_file", cfg.TraceFile),
		slog.String("metrics_file", cfg.MetricsFile))

	return t, nil
}

func (t *Telemetry) initializeTracing(traceFile string, res *resource.Resource) error {
	if traceFile == "" {
		t.Tracer = noop.NewTracerProvider().Tracer(TracerName)
		return nil
	}

	f, err := os.OpenFile(traceFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open trace file %s: %w", traceFile, err)
	}
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(f),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	// A batch job exits right after the run; export spans synchronously.
	t.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	t.traceFile = f
	t.Tracer = t.tracerProvider.Tracer(TracerName, trace.WithInstrumentationVersion(contracts.Version))
	return nil
}

func (t *Telemetry) initializeMetrics(res *resource.Resource) error {
	t.registry = prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(t.registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	t.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	metrics, err := CreateRunMetrics(t.meterProvider.Meter(MeterName, metric.WithInstrumentationVersion(contracts.Version)))
	if err != nil {
		return err
	}
	t.Metrics = metrics
	return nil
}

// CreateRunMetrics registers the converter's instruments on meter
func CreateRunMetrics(meter metric.Meter) (*RunMetrics, error) {
	rowsRead, err := meter.Int64Counter(
		"convert.rows.read",
		metric.WithDescription("Wide-format rows read from the input export"),
	)
	if err != nil {
		return nil, err
	}

	rowsWritten, err := meter.Int64Counter(
		"convert.rows.written",
		metric.WithDescription("Long-format rows written to the output file"),
	)
	if err != nil {
		return nil, err
	}

	runs, err := meter.Int64Counter(
		"convert.runs",
		metric.WithDescription("Conversion runs by outcome"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"convert.run.duration",
		metric.WithDescription("Conversion run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RunMetrics{
		RowsRead:    rowsRead,
		RowsWritten: rowsWritten,
		Runs:        runs,
		RunDuration: duration,
	}, nil
}

// StartStage opens a span for one pipeline stage
func (t *Telemetry) StartStage(ctx context.Context, stage string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("convert.stage", stage))
	if runID := GetRunID(ctx); runID != "" {
		attrs = append(attrs, attribute.String("convert.run_id", runID))
	}
	return t.Tracer.Start(ctx, "convert."+stage,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// EndStage closes span, marking it failed when err is non-nil
func EndStage(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// RecordRun records the outcome of a finished run
func (t *Telemetry) RecordRun(ctx context.Context, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	t.Metrics.Runs.Add(ctx, 1, attrs)
	t.Metrics.RunDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// Shutdown flushes spans, writes the metrics textfile when configured and
// releases the providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if err := t.closeTraceFile(); err != nil {
		errs = append(errs, fmt.Errorf("close trace file: %w", err))
	}

	if t.metricsFile != "" {
		if err := prometheus.WriteToTextfile(t.metricsFile, t.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics textfile: %w", err))
		} else {
			t.logger.DebugContext(ctx, "Metrics written", slog.String("path", t.metricsFile))
		}
	}

	if t.meterProvider != nil {
		if err := t.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (t *Telemetry) closeTraceFile() error {
	if t.traceFile == nil {
		return nil
	}
	err := t.traceFile.Close()
	t.traceFile = nil
	return err
}
