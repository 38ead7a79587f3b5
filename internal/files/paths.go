package files

import (
	"os"
	"path/filepath"
	"strings"

	"asnconvert/internal/config"
)

// OutputPath turns the base name given on the command line into the
// output file name.
func OutputPath(base string) string {
	return base + config.OutputExtension
}

// SamePath reports whether a and b name the same location. Paths are
// compared after making them absolute; existing files are also compared
// with os.SameFile so links to the output are excluded too.
func SamePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}
	infoA, errA := os.Stat(a)
	infoB, errB := os.Stat(b)
	if errA != nil || errB != nil {
		return false
	}
	return os.SameFile(infoA, infoB)
}

// Exists reports whether path exists. Errors other than "not exist" are returned.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// HasExtension reports whether path ends in ext, ignoring case
func HasExtension(path, ext string) bool {
	return strings.EqualFold(filepath.Ext(path), ext)
}
