// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// log records and small CSV fixture helpers for writing wide exports and
// reading long-format output in tests.
package shared
