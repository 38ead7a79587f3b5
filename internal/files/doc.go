// Package files finds the export to convert and resolves output paths.
//
// Discovery scans one directory for *.csv files in lexical order and returns
// the first one that is not the output file:
//
//	d := files.NewDiscovery(".", logger)
//	in, err := d.FindInput(ctx, files.OutputPath("combined"))
//
// An empty candidate set is reported as a no_input_found error.
package files
