package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "combined.csv", OutputPath("combined"))
	assert.Equal(t, "out/customer.csv", OutputPath("out/customer"))
	assert.Equal(t, "report.csv.csv", OutputPath("report.csv"))
}

func TestSamePath(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0644))

	assert.True(t, SamePath(target, filepath.Join(dir, ".", "out.csv")))
	assert.False(t, SamePath(target, filepath.Join(dir, "other.csv")))

	link := filepath.Join(dir, "link.csv")
	if err := os.Symlink(target, link); err == nil {
		assert.True(t, SamePath(link, target))
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "present.csv")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	ok, err := Exists(path)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Exists(filepath.Join(dir, "absent.csv"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasExtension(t *testing.T) {
	assert.True(t, HasExtension("a/B.XLSX", ".xlsx"))
	assert.True(t, HasExtension("a.csv", ".csv"))
	assert.False(t, HasExtension("a.csv", ".xlsx"))
}
