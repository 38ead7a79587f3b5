package domain

import (
	"strconv"
	"strings"
)

// Column names of the wide input export and the long output file
const (
	DateColumn     = "Date (dd/MM/yyyy HH:mm:ss)"
	TypeColumn     = "Type"
	TimeColumn     = "time"
	CustomerColumn = "Customer"
	ASNColumn      = "ASN"
	ValueColumn    = "Value"
)

// OutputHeader is the fixed column order of the long-format file
var OutputHeader = []string{TimeColumn, TypeColumn, CustomerColumn, ASNColumn, ValueColumn}

// Table is a wide-format export as read from disk. Every cell is kept as text.
type Table struct {
	Source  string     `json:"source"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	// Lines[i] is the file line (CSV) or sheet row (XLSX) Rows[i] came from
	Lines []int `json:"lines,omitempty"`
}

// Line returns the source line of Rows[i]. Without recorded lines the
// header is assumed on line 1 and no line skipped.
func (t *Table) Line(i int) int {
	if i < len(t.Lines) {
		return t.Lines[i]
	}
	return i + 2
}

// ColumnIndex returns the position of name in Columns, or -1.
// Surrounding whitespace in header cells is ignored.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if strings.TrimSpace(c) == name {
			return i
		}
	}
	return -1
}

// NormalizedTable is a Table whose date column was replaced by Unix seconds.
// Times[i] belongs to Rows[i]; Columns no longer contains the date column
// but does contain TimeColumn at the date column's former position.
type NormalizedTable struct {
	Source  string     `json:"source"`
	Columns []string   `json:"columns"`
	Times   []int64    `json:"times"`
	Rows    [][]string `json:"rows"`
}

// ColumnIndex returns the position of name in Columns, or -1
func (t *NormalizedTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if strings.TrimSpace(c) == name {
			return i
		}
	}
	return -1
}

// LongRow is one (sample, series) pair of the long-format output
type LongRow struct {
	Time     int64  `json:"time"`
	Type     string `json:"type"`
	Customer string `json:"customer"`
	ASN      string `json:"asn"`
	Value    string `json:"value"`
}

// Record renders the row in OutputHeader order
func (r LongRow) Record() []string {
	return []string{
		strconv.FormatInt(r.Time, 10),
		r.Type,
		r.Customer,
		r.ASN,
		r.Value,
	}
}

// WriteAction reports what the output writer did with the destination
type WriteAction string

const (
	ActionCreated  WriteAction = "created"
	ActionAppended WriteAction = "appended"
)
