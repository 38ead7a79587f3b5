package dataprocessing

import (
	"fmt"

	apperrors "asnconvert/internal/errors"
	"asnconvert/pkg/contracts/domain"
)

// Melt turns a normalized wide table into long rows. time and Type are kept
// on every row; each remaining column becomes one (ASN, Value) pair. Rows
// come out in input order, and within a row in column order, so the result
// has len(Rows) * (len(Columns) - 2) entries.
func Melt(table *domain.NormalizedTable, customer string) ([]domain.LongRow, error) {
	timeIdx := table.ColumnIndex(domain.TimeColumn)
	if timeIdx == -1 {
		return nil, apperrors.NewMissingColumnError(apperrors.StageReshape, domain.TimeColumn)
	}
	typeIdx := table.ColumnIndex(domain.TypeColumn)
	if typeIdx == -1 {
		return nil, apperrors.NewMissingColumnError(apperrors.StageReshape, domain.TypeColumn)
	}
	if len(table.Times) != len(table.Rows) {
		return nil, apperrors.NewUnexpectedError(apperrors.StageReshape,
			fmt.Sprintf("%d timestamps for %d rows", len(table.Times), len(table.Rows)), nil)
	}

	asnCols := make([]int, 0, len(table.Columns))
	for i := range table.Columns {
		if i == timeIdx || i == typeIdx {
			continue
		}
		asnCols = append(asnCols, i)
	}

	out := make([]domain.LongRow, 0, len(table.Rows)*len(asnCols))
	for r, row := range table.Rows {
		for _, c := range asnCols {
			out = append(out, domain.LongRow{
				Time:     table.Times[r],
				Type:     row[typeIdx],
				Customer: customer,
				ASN:      table.Columns[c],
				Value:    row[c],
			})
		}
	}

	return out, nil
}
