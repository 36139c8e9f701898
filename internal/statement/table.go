package statement

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Table is a fully materialized tabular file: one header row plus data rows.
// Every row has cells addressed by the header positions; lookups by header
// name resolve to the first occurrence when names repeat.
type Table struct {
	Headers []string
	Rows    [][]Cell
}

// ColumnIndex returns the index of the first header with the given name, or
// -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// csvEncodings are tried in order when a CSV file is not valid UTF-8.
// ISO-8859-1 accepts any byte sequence, so in practice decoding never fails
// outright, matching how statement exports behave in the wild.
var csvEncodings = []encoding.Encoding{
	charmap.ISO8859_1,
	charmap.Windows1252,
	charmap.ISO8859_15,
}

// readCSV materializes a CSV file, recovering legacy 8-bit encodings.
func readCSV(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	return tableFromRecords(records, false), nil
}

// decodeText decodes raw bytes using the first encoding that accepts them:
// UTF-8 first, then the legacy code pages.
func decodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	for _, enc := range csvEncodings {
		decoded, err := enc.NewDecoder().Bytes(data)
		if err == nil {
			return string(decoded), nil
		}
	}
	return "", ErrUnreadableEncoding
}

// readXLSX materializes the first sheet of an .xlsx workbook.
func readXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	return tableFromRecords(rows, true), nil
}

// readXLS materializes the first sheet of a legacy .xls workbook.
func readXLS(path string) (*Table, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}

	rows := wb.ReadAllCells(65536)
	return tableFromRecords(rows, true), nil
}

// tableFromRecords turns raw string records into a Table. The first record is
// the header; short rows are padded implicitly by the extraction loop.
// Spreadsheet cells that look numeric are tagged CellNumber, mirroring how
// spreadsheet readers surface typed cells.
func tableFromRecords(records [][]string, typed bool) *Table {
	if len(records) == 0 {
		return &Table{}
	}

	t := &Table{
		Headers: records[0],
		Rows:    make([][]Cell, 0, len(records)-1),
	}
	for _, rec := range records[1:] {
		row := make([]Cell, len(rec))
		for i, raw := range rec {
			row[i] = parseCell(raw, typed)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func parseCell(raw string, typed bool) Cell {
	if typed {
		trimmed := strings.TrimSpace(raw)
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return NumberCell(f)
		}
	}
	return TextCell(raw)
}
