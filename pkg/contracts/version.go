package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the current version of the converter
	Version = "1.0.0"

	// OutputFormatVersion identifies the long-format column layout
	// time,Type,Customer,ASN,Value
	OutputFormatVersion = "v1"
)

// BuildInfo returns a one-line description of the binary
func BuildInfo() string {
	return fmt.Sprintf("asnconvert %s (output format %s, %s %s/%s)",
		Version, OutputFormatVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
