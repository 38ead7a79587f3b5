package dataprocessing

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "asnconvert/internal/errors"
	"asnconvert/internal/files"
	"asnconvert/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadFile reads a wide export from disk. Files ending in .xlsx are read
// from their first sheet; everything else is parsed as CSV.
func LoadFile(path string) (*domain.Table, error) {
	if files.HasExtension(path, ".xlsx") {
		return ParseXLSX(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewUnexpectedError(apperrors.StageLoad, "failed to open input", err)
	}
	defer f.Close()

	return ParseCSV(f, path)
}

// ParseCSV reads a wide export. The first record is the header; short rows
// are padded with empty cells, longer rows are rejected. Cells are kept
// verbatim.
func ParseCSV(r io.Reader, source string) (*domain.Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewUnexpectedError(apperrors.StageLoad,
			fmt.Sprintf("%s: no columns to parse from file", filepath.Base(source)), nil)
	}
	if err != nil {
		return nil, apperrors.NewUnexpectedError(apperrors.StageLoad, "failed to read header", err)
	}

	table := &domain.Table{
		Source:  source,
		Columns: dedupeColumns(header),
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewUnexpectedError(apperrors.StageLoad, "failed to read input", err)
		}

		line, _ := reader.FieldPos(0)
		row, err := fitRow(record, len(table.Columns), line)
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, row)
		table.Lines = append(table.Lines, line)
	}

	slog.Debug("Parsed CSV export",
		slog.String("source", source),
		slog.Int("columns", len(table.Columns)),
		slog.Int("rows", len(table.Rows)))

	return table, nil
}

// ParseXLSX reads a wide export from the first sheet of a workbook. The
// first non-empty row is the header. Cells are read with their display
// formatting, so date cells must be formatted dd/mm/yyyy hh:mm:ss or stored
// as text.
func ParseXLSX(path string) (*domain.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewUnexpectedError(apperrors.StageLoad, "failed to open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewUnexpectedError(apperrors.StageLoad, "workbook has no sheets", nil)
	}
	sheetName := sheets[0]

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, apperrors.NewUnexpectedError(apperrors.StageLoad,
			fmt.Sprintf("failed to read sheet %q", sheetName), err)
	}

	headerRow := -1
	for i, row := range rows {
		if !isBlank(row) {
			headerRow = i
			break
		}
	}
	if headerRow == -1 {
		return nil, apperrors.NewUnexpectedError(apperrors.StageLoad,
			fmt.Sprintf("%s: no columns to parse from sheet %q", filepath.Base(path), sheetName), nil)
	}

	table := &domain.Table{
		Source:  path,
		Columns: dedupeColumns(rows[headerRow]),
	}
	for i := headerRow + 1; i < len(rows); i++ {
		if isBlank(rows[i]) {
			continue
		}
		row, err := fitRow(rows[i], len(table.Columns), i+1)
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, row)
		table.Lines = append(table.Lines, i+1)
	}

	slog.Debug("Parsed XLSX export",
		slog.String("source", path),
		slog.String("sheet", sheetName),
		slog.Int("columns", len(table.Columns)),
		slog.Int("rows", len(table.Rows)))

	return table, nil
}

// fitRow pads record to width. Records wider than the header are an error.
func fitRow(record []string, width, line int) ([]string, error) {
	if len(record) > width {
		return nil, apperrors.NewUnexpectedError(apperrors.StageLoad,
			fmt.Sprintf("row %d: expected %d fields, saw %d", line, width, len(record)), nil)
	}
	row := make([]string, width)
	copy(row, record)
	return row, nil
}

// dedupeColumns suffixes repeated header names with .1, .2, ... so every
// column keeps a distinct name through the reshape.
func dedupeColumns(header []string) []string {
	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, name := range header {
		if n, ok := seen[name]; ok {
			candidate := name + "." + strconv.Itoa(n)
			for {
				if _, taken := seen[candidate]; !taken {
					break
				}
				n++
				candidate = name + "." + strconv.Itoa(n)
			}
			seen[name] = n + 1
			seen[candidate] = 1
			out[i] = candidate
			continue
		}
		seen[name] = 1
		out[i] = name
	}
	return out
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
