package exporter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	apperrors "asnconvert/internal/errors"
	"asnconvert/internal/files"
	"asnconvert/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes long-format rows to the cumulative output file
type CSVWriter struct {
	logger      *slog.Logger
	checkHeader bool
}

// Option configures a CSVWriter
type Option func(*CSVWriter)

// WithHeaderCheck makes appends verify that the existing file starts with
// the output header. Off by default: existing files are appended to as-is.
func WithHeaderCheck(enabled bool) Option {
	return func(w *CSVWriter) {
		w.checkHeader = enabled
	}
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger, opts ...Option) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	w := &CSVWriter{logger: logger}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers []string
	Records [][]string
	Append  bool
	// Exclusive makes a non-append write fail with fs.ErrExist instead of
	// truncating an existing file.
	Exclusive bool
}

// WriteCSV writes data to filePath with the given options. Rows are
// rendered in memory first and handed to the file in a single write.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if !options.Append && len(options.Headers) > 0 {
		if err := cw.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to render records: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	switch {
	case options.Append:
		flags |= os.O_APPEND
	case options.Exclusive:
		flags |= os.O_EXCL
	default:
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(filePath, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}

	if _, err := file.Write(buf.Bytes()); err != nil {
		file.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

// WriteLongRows creates filePath with a header when it does not exist yet
// and appends to it otherwise. No header is written on append.
func (w *CSVWriter) WriteLongRows(ctx context.Context, filePath string, rows []domain.LongRow) (domain.WriteAction, error) {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = r.Record()
	}

	exists, err := files.Exists(filePath)
	if err != nil {
		return "", apperrors.NewWriteFailureError(filePath, err)
	}

	if !exists {
		err := w.WriteCSV(filePath, WriteOptions{
			Headers:   domain.OutputHeader,
			Records:   records,
			Exclusive: true,
		})
		if err == nil {
			w.logger.InfoContext(ctx, "Created output file",
				slog.String("path", filePath),
				slog.Int("record_count", len(records)))
			return domain.ActionCreated, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", apperrors.NewWriteFailureError(filePath, err)
		}
		// created by someone else since the existence check
		w.logger.WarnContext(ctx, "Output appeared during run, appending", slog.String("path", filePath))
	}

	if w.checkHeader {
		if err := VerifyHeader(filePath); err != nil {
			return "", apperrors.NewWriteFailureError(filePath, err)
		}
	}

	if err := w.WriteCSV(filePath, WriteOptions{Records: records, Append: true}); err != nil {
		return "", apperrors.NewWriteFailureError(filePath, err)
	}

	w.logger.InfoContext(ctx, "Appended to output file",
		slog.String("path", filePath),
		slog.Int("record_count", len(records)))
	return domain.ActionAppended, nil
}

// VerifyHeader checks that the first record of filePath is the output header
func VerifyHeader(filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	header, err := csv.NewReader(br).Read()
	if err == io.EOF {
		return fmt.Errorf("existing output has no header, expected %s", strings.Join(domain.OutputHeader, ","))
	}
	if err != nil {
		return fmt.Errorf("failed to read existing header: %w", err)
	}

	if strings.Join(header, ",") != strings.Join(domain.OutputHeader, ",") {
		return fmt.Errorf("existing output header %q does not match %q",
			strings.Join(header, ","), strings.Join(domain.OutputHeader, ","))
	}
	return nil
}
