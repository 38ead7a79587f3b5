// Package exporter writes long-format rows to the cumulative output CSV.
//
// CSVWriter.WriteLongRows creates the output with the header
// time,Type,Customer,ASN,Value when it does not exist and appends rows
// without a header when it does. Appends are not deduplicated: converting
// the same export twice adds its rows twice. There is no locking, so
// concurrent runs against one output must be serialized by the caller.
//
//	w := exporter.NewCSVWriter(logger, exporter.WithHeaderCheck(false))
//	action, err := w.WriteLongRows(ctx, "combined.csv", rows)
package exporter
