package dataprocessing

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	apperrors "asnconvert/internal/errors"
	"asnconvert/pkg/contracts/domain"
)

// DateLayout reads dd/MM/yyyy HH:mm:ss. Day, month and time fields accept
// one or two digits; the year must have four.
const DateLayout = "2/1/2006 15:4:5"

// Normalizer replaces the export's date column with Unix seconds
type Normalizer struct {
	location *time.Location
	logger   *slog.Logger
}

// NewNormalizer creates a normalizer reading dates in loc. A nil loc means
// the host local zone.
func NewNormalizer(loc *time.Location, logger *slog.Logger) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{location: loc, logger: logger}
}

// Location returns the zone dates are interpreted in
func (n *Normalizer) Location() *time.Location {
	return n.location
}

// ParseTimestamp converts one date cell to Unix seconds
func (n *Normalizer) ParseTimestamp(value string) (int64, error) {
	t, err := time.ParseInLocation(DateLayout, value, n.location)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}

// FormatTimestamp is the inverse of ParseTimestamp
func (n *Normalizer) FormatTimestamp(ts int64) string {
	return time.Unix(ts, 0).In(n.location).Format("02/01/2006 15:04:05")
}

// Normalize returns a copy of table with the date column replaced by a time
// column holding Unix seconds. A time column already present in the input is
// dropped in favor of the converted one. Any unparsable date fails the whole
// table.
func (n *Normalizer) Normalize(ctx context.Context, table *domain.Table) (*domain.NormalizedTable, error) {
	dateIdx := table.ColumnIndex(domain.DateColumn)
	if dateIdx == -1 {
		return nil, apperrors.NewMissingColumnError(apperrors.StageNormalize, domain.DateColumn)
	}

	keep := make([]int, 0, len(table.Columns))
	columns := make([]string, 0, len(table.Columns))
	for i, c := range table.Columns {
		switch {
		case i == dateIdx:
			columns = append(columns, domain.TimeColumn)
		case strings.TrimSpace(c) == domain.TimeColumn:
			n.logger.DebugContext(ctx, "Replacing input time column", slog.Int("index", i))
			continue
		default:
			columns = append(columns, c)
		}
		keep = append(keep, i)
	}

	out := &domain.NormalizedTable{
		Source:  table.Source,
		Columns: columns,
		Times:   make([]int64, 0, len(table.Rows)),
		Rows:    make([][]string, 0, len(table.Rows)),
	}

	for i, row := range table.Rows {
		ts, err := n.ParseTimestamp(row[dateIdx])
		if err != nil {
			n.logger.InfoContext(ctx, "Malformed timestamp",
				slog.Int("row", table.Line(i)),
				slog.String("value", row[dateIdx]))
			return nil, apperrors.NewMalformedTimestampError(table.Line(i), row[dateIdx], err)
		}

		normalized := make([]string, 0, len(keep))
		for _, c := range keep {
			if c == dateIdx {
				normalized = append(normalized, strconv.FormatInt(ts, 10))
				continue
			}
			normalized = append(normalized, row[c])
		}

		out.Times = append(out.Times, ts)
		out.Rows = append(out.Rows, normalized)
	}

	n.logger.DebugContext(ctx, "Timestamps normalized",
		slog.Int("rows", len(out.Rows)),
		slog.String("location", n.location.String()))

	return out, nil
}
