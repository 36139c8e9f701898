// Package statement infers the schema of bank and credit-card statement
// exports (CSV and Excel) and normalizes them into transaction records. Files
// arrive with unknown, inconsistent column layouts; the parser decides which
// columns hold the date, amount, merchant and category, normalizes the
// values, and returns a best-effort transaction list instead of failing the
// whole batch on imperfect rows.
package statement

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/personifi/personifi/internal/domain"
)

// Fatal parse failures. Each maps to ParseResult.Error; none of them is
// transient, callers retry with a different file, not the same one.
var (
	ErrUnsupportedFormat  = errors.New("Unsupported file format. Only CSV and Excel files are supported.")
	ErrUnreadableEncoding = errors.New("Could not read CSV file with any supported encoding")
	ErrEmptyFile          = errors.New("File is empty or contains no data")
	ErrNoTransactions     = errors.New("No valid transactions found in the file")
)

// maxLedgerErrors bounds how many row-level errors the result envelope
// carries; the full ledger is never exposed.
const maxLedgerErrors = 10

// ParseError records a row that hit an unexpected fault during extraction.
// Ordinary normalization rejections are silently skipped and never appear
// here.
type ParseError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Metadata describes a successful parse.
type Metadata struct {
	TotalTransactions int           `json:"total_transactions"`
	FileType          string        `json:"file_type"` // "csv" or "excel"
	ColumnMapping     ColumnMapping `json:"column_mapping"`
	Errors            []ParseError  `json:"errors"`
}

// ParseResult is the engine's sole handoff surface. On fatal failure Success
// is false, Transactions is empty and Error holds the reason; Metadata is
// only populated on success.
type ParseResult struct {
	Success      bool                 `json:"success"`
	Transactions []domain.Transaction `json:"transactions"`
	Metadata     *Metadata            `json:"metadata,omitempty"`
	Error        string               `json:"error,omitempty"`
}

// ParseStatement reads a statement file and produces the normalized
// transaction set. It is a strict linear pipeline with early-exit gates:
// extension check, text decoding, emptiness, column inference, row
// extraction, emptiness of output. The engine is stateless and safe to call
// concurrently on independent files.
func ParseStatement(path string) *ParseResult {
	fileType, read, err := readerFor(path)
	if err != nil {
		return fatal(err)
	}

	table, err := read(path)
	if err != nil {
		return fatal(err)
	}
	if len(table.Rows) == 0 {
		return fatal(ErrEmptyFile)
	}

	mapping := InferColumns(table.Headers)
	if missing := mapping.MissingRoles(); len(missing) > 0 {
		return fatal(fmt.Errorf("Missing required columns: %s", strings.Join(missing, ", ")))
	}

	txs, ledger := extractRows(table, mapping)
	if len(txs) == 0 {
		return fatal(ErrNoTransactions)
	}

	if len(ledger) > maxLedgerErrors {
		ledger = ledger[:maxLedgerErrors]
	}
	return &ParseResult{
		Success:      true,
		Transactions: txs,
		Metadata: &Metadata{
			TotalTransactions: len(txs),
			FileType:          fileType,
			ColumnMapping:     mapping,
			Errors:            ledger,
		},
	}
}

// readerFor resolves the file kind from the extension before any content is
// read.
func readerFor(path string) (string, func(string) (*Table, error), error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv", readCSV, nil
	case ".xlsx":
		return "excel", readXLSX, nil
	case ".xls":
		return "excel", readXLS, nil
	default:
		return "", nil, ErrUnsupportedFormat
	}
}

// extractRows walks the data rows in file order, applying the normalizers
// through the inferred mapping. Rows whose date, amount or merchant fail
// normalization are dropped silently, the same as blank separator lines.
// Rows too short to reach a mapped column are the exceptional case and go to
// the ledger.
func extractRows(table *Table, mapping ColumnMapping) ([]domain.Transaction, []ParseError) {
	dateIdx := table.ColumnIndex(mapping[RoleDate])
	amountIdx := table.ColumnIndex(mapping[RoleAmount])
	merchantIdx := table.ColumnIndex(mapping[RoleMerchant])

	categoryIdx := -1
	if col, ok := mapping[RoleCategory]; ok {
		categoryIdx = table.ColumnIndex(col)
	}

	var (
		txs    []domain.Transaction
		ledger []ParseError
	)
	width := maxIndex(dateIdx, amountIdx, merchantIdx)
	for i, row := range table.Rows {
		if rowEmpty(row) {
			continue
		}
		// Spreadsheet readers trim trailing cells, so a row can come back
		// shorter than the header. Losing a mapped column that way is a
		// structural fault, not a normalization failure.
		if len(row) <= width {
			ledger = append(ledger, ParseError{
				Row:     i + 1,
				Message: fmt.Sprintf("row has %d cells, mapped columns need %d", len(row), width+1),
			})
			continue
		}

		date, ok := NormalizeDate(row[dateIdx])
		if !ok {
			continue
		}
		amount, ok := NormalizeAmount(row[amountIdx])
		if !ok {
			continue
		}
		merchant := row[merchantIdx].String()
		if merchant == "" {
			continue
		}

		tx := domain.Transaction{
			Date:     date,
			Merchant: merchant,
			Amount:   amount,
		}
		if categoryIdx >= 0 && categoryIdx < len(row) && !row[categoryIdx].IsEmpty() {
			tx.Category = row[categoryIdx].String()
		}
		txs = append(txs, tx)
	}
	return txs, ledger
}

func rowEmpty(row []Cell) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

func maxIndex(idxs ...int) int {
	max := -1
	for _, i := range idxs {
		if i > max {
			max = i
		}
	}
	return max
}

func fatal(err error) *ParseResult {
	return &ParseResult{
		Success:      false,
		Transactions: []domain.Transaction{},
		Error:        err.Error(),
	}
}
