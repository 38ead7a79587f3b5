package exporter

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "asnconvert/internal/errors"
	"asnconvert/internal/shared/testutil"
	"asnconvert/pkg/contracts/domain"
)

func sampleRows(n int) []domain.LongRow {
	rows := make([]domain.LongRow, n)
	for i := range rows {
		rows[i] = domain.LongRow{
			Time:     1672531200 + int64(i),
			Type:     "in",
			Customer: "acme",
			ASN:      "AS100",
			Value:    "5",
		}
	}
	return rows
}

func TestNewCSVWriter(t *testing.T) {
	w := NewCSVWriter(nil)
	assert.NotNil(t, w.logger)
	assert.False(t, w.checkHeader)

	w = NewCSVWriter(nil, WithHeaderCheck(true))
	assert.True(t, w.checkHeader)
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		options  WriteOptions
		want     []string
		wantErr  bool
	}{
		{
			name: "new file with headers",
			options: WriteOptions{
				Headers: []string{"Name", "Age"},
				Records: [][]string{{"John", "25"}, {"Jane", "30"}},
			},
			want: []string{"Name,Age", "John,25", "Jane,30"},
		},
		{
			name:     "append ignores headers",
			existing: "Name,Age\nJohn,25\n",
			options: WriteOptions{
				Headers: []string{"Name", "Age"},
				Records: [][]string{{"Jane", "30"}},
				Append:  true,
			},
			want: []string{"Name,Age", "John,25", "Jane,30"},
		},
		{
			name:     "truncate by default",
			existing: "old,data\n",
			options: WriteOptions{
				Headers: []string{"A"},
				Records: [][]string{{"1"}},
			},
			want: []string{"A", "1"},
		},
		{
			name:     "exclusive refuses existing file",
			existing: "old,data\n",
			options: WriteOptions{
				Headers:   []string{"A"},
				Exclusive: true,
			},
			wantErr: true,
		},
		{
			name: "fields needing quotes",
			options: WriteOptions{
				Records: [][]string{{"a,b", `say "hi"`, ""}},
			},
			want: []string{`"a,b","say ""hi""",`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.csv")
			if tt.existing != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.existing), 0644))
			}

			err := NewCSVWriter(nil).WriteCSV(path, tt.options)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, testutil.ReadLines(t, path))
		})
	}
}

func TestWriteLongRows_CreateWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined.csv")
	logger, handler := testutil.NewTestLogger(t)

	action, err := NewCSVWriter(logger).WriteLongRows(context.Background(), path, sampleRows(3))
	require.NoError(t, err)
	assert.Equal(t, domain.ActionCreated, action)

	lines := testutil.ReadLines(t, path)
	require.Len(t, lines, 4)
	assert.Equal(t, "time,Type,Customer,ASN,Value", lines[0])
	assert.Equal(t, "1672531200,in,acme,AS100,5", lines[1])

	_, ok := handler.Find("Created output file")
	assert.True(t, ok)
}

func TestWriteLongRows_AppendAddsOnlyData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined.csv")
	w := NewCSVWriter(nil)

	_, err := w.WriteLongRows(context.Background(), path, sampleRows(2))
	require.NoError(t, err)

	action, err := w.WriteLongRows(context.Background(), path, sampleRows(5))
	require.NoError(t, err)
	assert.Equal(t, domain.ActionAppended, action)

	lines := testutil.ReadLines(t, path)
	assert.Len(t, lines, 1+2+5)

	headers := 0
	for _, l := range lines {
		if l == "time,Type,Customer,ASN,Value" {
			headers++
		}
	}
	assert.Equal(t, 1, headers)
}

func TestWriteLongRows_DuplicatesAreAppended(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined.csv")
	w := NewCSVWriter(nil)
	rows := sampleRows(2)

	_, err := w.WriteLongRows(context.Background(), path, rows)
	require.NoError(t, err)
	_, err = w.WriteLongRows(context.Background(), path, rows)
	require.NoError(t, err)

	lines := testutil.ReadLines(t, path)
	require.Len(t, lines, 5)
	assert.Equal(t, lines[1:3], lines[3:5])
}

func TestWriteLongRows_AppendWithoutValidationByDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined.csv")
	require.NoError(t, os.WriteFile(path, []byte("some,other,header\n"), 0644))

	action, err := NewCSVWriter(nil).WriteLongRows(context.Background(), path, sampleRows(1))
	require.NoError(t, err)
	assert.Equal(t, domain.ActionAppended, action)
	assert.Equal(t, []string{"some,other,header", "1672531200,in,acme,AS100,5"}, testutil.ReadLines(t, path))
}

func TestWriteLongRows_HeaderCheck(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		wantErr  bool
	}{
		{name: "matching header", existing: "time,Type,Customer,ASN,Value\n"},
		{name: "matching header with BOM", existing: "\xEF\xBB\xBFtime,Type,Customer,ASN,Value\n"},
		{name: "different header", existing: "time,Customer,Type,ASN,Value\n", wantErr: true},
		{name: "empty file", existing: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "combined.csv")
			require.NoError(t, os.WriteFile(path, []byte(tt.existing), 0644))

			_, err := NewCSVWriter(nil, WithHeaderCheck(true)).WriteLongRows(context.Background(), path, sampleRows(1))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, stderrors.Is(err, apperrors.ErrWriteFailure))

				content, readErr := os.ReadFile(path)
				require.NoError(t, readErr)
				assert.Equal(t, tt.existing, string(content), "rejected append must not touch the file")
				return
			}
			require.NoError(t, err)
			assert.Len(t, testutil.ReadLines(t, path), 2)
		})
	}
}

func TestWriteLongRows_WriteFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "combined.csv")

	_, err := NewCSVWriter(nil).WriteLongRows(context.Background(), path, sampleRows(1))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindWriteFailure, apperrors.KindOf(err))
	assert.True(t, strings.Contains(err.Error(), "combined.csv"))
}

func TestWriteLongRows_EmptyRowsStillCreatesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined.csv")

	action, err := NewCSVWriter(nil).WriteLongRows(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionCreated, action)
	assert.Equal(t, []string{"time,Type,Customer,ASN,Value"}, testutil.ReadLines(t, path))
}
