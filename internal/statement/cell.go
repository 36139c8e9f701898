package statement

import (
	"strconv"
	"strings"
)

// CellKind discriminates the raw value found in a table cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

// Cell is a tagged variant for one raw table cell. Spreadsheet readers emit
// CellNumber for numeric cells; CSV readers only ever produce text or empty.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// TextCell builds a Cell from raw text, collapsing blank strings to CellEmpty.
func TextCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{Kind: CellEmpty}
	}
	return Cell{Kind: CellText, Text: s}
}

// NumberCell builds a numeric Cell.
func NumberCell(f float64) Cell {
	return Cell{Kind: CellNumber, Number: f}
}

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// String renders the cell the way it appeared in the source, trimmed.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return strings.TrimSpace(c.Text)
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	default:
		return ""
	}
}
