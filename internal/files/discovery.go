package files

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"asnconvert/internal/config"
	apperrors "asnconvert/internal/errors"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery finds candidate input exports in one directory
type Discovery struct {
	dir     string
	pattern string
	logger  *slog.Logger
}

// NewDiscovery creates a discovery instance scanning dir
func NewDiscovery(dir string, logger *slog.Logger) *Discovery {
	if dir == "" {
		dir = "."
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{dir: dir, pattern: config.InputPattern, logger: logger}
}

// Dir returns the scanned directory
func (d *Discovery) Dir() string {
	return d.dir
}

// FindCSVFiles lists regular files matching the input pattern, in the
// directory listing's lexical order. Dot-files are skipped as a shell glob
// would skip them.
func (d *Discovery) FindCSVFiles() ([]FileInfo, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", d.dir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if ok, _ := filepath.Match(d.pattern, name); !ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.Mode().IsRegular() && info.Mode()&os.ModeSymlink == 0 {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(d.dir, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	return files, nil
}

// FindInput returns the first candidate that is not the output file.
// Candidates are taken in lexical order, so the choice is deterministic.
func (d *Discovery) FindInput(ctx context.Context, outputPath string) (FileInfo, error) {
	files, err := d.FindCSVFiles()
	if err != nil {
		return FileInfo{}, apperrors.NewUnexpectedError(apperrors.StageResolve, "failed to list input candidates", err)
	}

	var candidates []FileInfo
	for _, f := range files {
		if SamePath(f.Path, outputPath) {
			d.logger.DebugContext(ctx, "Skipping output file", slog.String("file", f.Name))
			continue
		}
		candidates = append(candidates, f)
	}

	if len(candidates) == 0 {
		d.logger.InfoContext(ctx, "No input candidates",
			slog.String("dir", d.dir),
			slog.String("pattern", d.pattern))
		return FileInfo{}, apperrors.NewNoInputFoundError(d.dir)
	}

	chosen := candidates[0]
	if len(candidates) > 1 {
		names := make([]string, 0, len(candidates))
		for _, c := range candidates {
			names = append(names, c.Name)
		}
		d.logger.WarnContext(ctx, "Multiple input candidates, using the first",
			slog.String("chosen", chosen.Name),
			slog.Any("candidates", names))
	}

	d.logger.InfoContext(ctx, "Input resolved",
		slog.String("file", chosen.Path),
		slog.Int64("size", chosen.Size))

	return chosen, nil
}

// StatInput describes an explicitly named input file
func StatInput(path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileInfo{}, apperrors.NewNoInputFoundError(filepath.Dir(path)).
				WithContext("file", path)
		}
		return FileInfo{}, apperrors.NewUnexpectedError(apperrors.StageResolve, "failed to stat input", err)
	}
	if info.IsDir() {
		return FileInfo{}, apperrors.NewUnexpectedError(apperrors.StageResolve,
			fmt.Sprintf("%s is a directory, not a file", path), nil)
	}
	return FileInfo{
		Path:    path,
		Name:    filepath.Base(path),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}
