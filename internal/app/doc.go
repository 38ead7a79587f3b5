// Package app wires configuration, logging, telemetry and the conversion
// stages together.
//
// Converter.Run executes one conversion:
//
//	resolve → load → normalize → reshape → write
//
// Each stage runs in its own span. Any failure aborts the run before the
// output is touched, except a failure of the write itself. RunCLI is the
// command-line front end used by cmd/convert; it prints
// "Found input file: ...", "Created new file: ..." or "Appended to ..." on
// success and "Error: <message>" on failure, and returns the exit code.
//
// The app does not call os.Exit itself, so main controls the exit.
package app
