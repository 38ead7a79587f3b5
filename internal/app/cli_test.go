package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"asnconvert/internal/infrastructure"
	"asnconvert/internal/shared/testutil"
)

func runCLI(t *testing.T, args ...string) (int, string) {
	t.Helper()
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	var stdout bytes.Buffer
	code := RunCLI(context.Background(), args, &stdout)
	return code, stdout.String()
}

func TestRunCLI_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no arguments", args: nil},
		{name: "one argument", args: []string{"acme"}},
		{name: "three arguments", args: []string{"acme", "combined", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := runCLI(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Equal(t, UsageLine+"\n", out)
		})
	}
}

func TestRunCLI_Version(t *testing.T) {
	code, out := runCLI(t, "-version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "1.0.0")
}

func TestRunCLI_UnknownFlag(t *testing.T) {
	code, out := runCLI(t, "-bogus", "acme", "combined")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, UsageLine)
}

func TestRunCLI_CreateThenAppend(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCSV(t, dir, "export.csv", [][]string{
		testutil.WideHeader,
		{"01/01/2023 00:00:00", "in", "5", "7"},
	})
	out := filepath.Join(dir, "combined")

	code, stdout := runCLI(t, "-dir", dir, "-tz", "UTC", "acme", out)
	require.Equal(t, 0, code, stdout)
	assert.Equal(t, "Found input file: export.csv\nCreated new file: "+out+".csv\n", stdout)

	code, stdout = runCLI(t, "-dir", dir, "-tz", "UTC", "acme", out)
	require.Equal(t, 0, code, stdout)
	assert.Equal(t, "Found input file: export.csv\nAppended to "+out+".csv\n", stdout)

	assert.Equal(t, []string{
		"time,Type,Customer,ASN,Value",
		"1672531200,in,acme,AS100,5",
		"1672531200,in,acme,AS200,7",
		"1672531200,in,acme,AS100,5",
		"1672531200,in,acme,AS200,7",
	}, testutil.ReadLines(t, out+".csv"))
}

func TestRunCLI_TimezoneFromEnvironment(t *testing.T) {
	t.Setenv("CONVERT_INPUT_TIMEZONE", "UTC")
	dir := t.TempDir()
	t.Setenv("CONVERT_INPUT_DIR", dir)
	testutil.WriteCSV(t, dir, "export.csv", [][]string{
		testutil.WideHeader,
		{"1/1/2023 0:0:0", "in", "5", "7"},
	})
	out := filepath.Join(dir, "combined")

	code, stdout := runCLI(t, "acme", out)
	require.Equal(t, 0, code, stdout)
	assert.Equal(t, "1672531200,in,acme,AS100,5", testutil.ReadLines(t, out+".csv")[1])
}

func TestRunCLI_FlagOverridesInvalidEnvironment(t *testing.T) {
	t.Setenv("CONVERT_INPUT_TIMEZONE", "Bogus/Zone")
	dir := t.TempDir()
	testutil.WriteCSV(t, dir, "export.csv", [][]string{
		testutil.WideHeader,
		{"01/01/2023 00:00:00", "in", "5", "7"},
	})
	out := filepath.Join(dir, "combined")

	code, stdout := runCLI(t, "-dir", dir, "-tz", "UTC", "acme", out)
	require.Equal(t, 0, code, stdout)
	assert.Equal(t, "1672531200,in,acme,AS100,5", testutil.ReadLines(t, out+".csv")[1])

	code, stdout = runCLI(t, "-dir", dir, "acme", out)
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stdout, "Error: config validation failed: "), stdout)
}

func TestRunCLI_MalformedDate(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCSV(t, dir, "export.csv", [][]string{
		testutil.WideHeader,
		{"2023-01-01 00:00:00", "in", "5", "7"},
	})
	out := filepath.Join(dir, "combined")

	code, stdout := runCLI(t, "-dir", dir, "-tz", "UTC", "acme", out)
	assert.Equal(t, 1, code)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Found input file: export.csv", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Error: "), lines[1])
	assert.Contains(t, lines[1], "2023-01-01 00:00:00")

	_, err := os.Stat(out + ".csv")
	assert.True(t, os.IsNotExist(err))
}

func TestRunCLI_NoInput(t *testing.T) {
	dir := t.TempDir()

	code, stdout := runCLI(t, "-dir", dir, "acme", filepath.Join(dir, "combined"))
	assert.Equal(t, 1, code)
	assert.Equal(t, "Error: No input CSV files found in "+dir+".\n", stdout)
}

func TestRunCLI_InvalidTimezone(t *testing.T) {
	dir := t.TempDir()

	code, stdout := runCLI(t, "-dir", dir, "-tz", "Nowhere/Special", "acme", filepath.Join(dir, "combined"))
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stdout, "Error: "))
}

func TestRunCLI_XLSXInput(t *testing.T) {
	dir := t.TempDir()
	xlsxPath := filepath.Join(dir, "export.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Date (dd/MM/yyyy HH:mm:ss)", "Type", "AS100"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"01/01/2023 00:00:00", "in", "5"}))
	require.NoError(t, f.SaveAs(xlsxPath))
	require.NoError(t, f.Close())

	out := filepath.Join(dir, "combined")
	code, stdout := runCLI(t, "-input", xlsxPath, "-tz", "UTC", "acme", out)
	require.Equal(t, 0, code, stdout)
	assert.Contains(t, stdout, "Found input file: export.xlsx\n")
	assert.Equal(t, []string{
		"time,Type,Customer,ASN,Value",
		"1672531200,in,acme,AS100,5",
	}, testutil.ReadLines(t, out+".csv"))
}

func TestRunCLI_TelemetryFiles(t *testing.T) {
	dir := t.TempDir()
	traceFile := filepath.Join(dir, "trace.json")
	metricsFile := filepath.Join(dir, "convert.prom")
	t.Setenv("CONVERT_TELEMETRY_TRACE_FILE", traceFile)
	t.Setenv("CONVERT_TELEMETRY_METRICS_FILE", metricsFile)
	testutil.WriteCSV(t, dir, "export.csv", [][]string{
		testutil.WideHeader,
		{"01/01/2023 00:00:00", "in", "5", "7"},
	})

	code, stdout := runCLI(t, "-dir", dir, "-tz", "UTC", "acme", filepath.Join(dir, "combined"))
	require.Equal(t, 0, code, stdout)

	trace, err := os.ReadFile(traceFile)
	require.NoError(t, err)
	for _, stage := range []string{"resolve", "load", "normalize", "reshape", "write"} {
		assert.Contains(t, string(trace), `"convert.`+stage+`"`)
	}

	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "convert_rows_read")
	assert.Contains(t, string(metrics), "convert_runs")
}
