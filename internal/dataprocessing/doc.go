// Package dataprocessing turns a wide ASN export into long-format rows.
//
// The package has three steps, used in order:
//
//  1. LoadFile / ParseCSV / ParseXLSX read the export into a domain.Table.
//     Cells stay text; nothing is coerced.
//  2. Normalizer.Normalize replaces the "Date (dd/MM/yyyy HH:mm:ss)" column
//     with a "time" column of Unix seconds, reading dates in a configured zone
//     (the host zone by default).
//  3. Melt emits one domain.LongRow per (row, ASN column) pair, tagged with
//     the customer.
//
// Example:
//
//	table, err := dataprocessing.LoadFile("export.csv")
//	normalized, err := dataprocessing.NewNormalizer(time.UTC, logger).Normalize(ctx, table)
//	rows, err := dataprocessing.Melt(normalized, "acme")
//
// Every failure is an *errors.ConvertError; a malformed date or a missing
// Date/Type column fails the whole table.
package dataprocessing
