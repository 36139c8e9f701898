package domain

import (
	"github.com/shopspring/decimal"
)

func init() {
	// API clients expect amounts as bare JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Transaction is one normalized statement row. This is the exact shape the
// transaction store accepts, so no translation happens between parsing and
// persistence.
type Transaction struct {
	Date     string          `json:"date"` // YYYY-MM-DD
	Merchant string          `json:"merchant"`
	Amount   decimal.Decimal `json:"amount"` // signed: credits positive, debits negative
	Category string          `json:"category,omitempty"`
}
