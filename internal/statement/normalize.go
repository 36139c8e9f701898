package statement

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

// dateLayouts are tried in order; the first successful parse wins. Month-first
// layouts come before day-first on purpose: statement exporters overwhelmingly
// use US conventions, and a fixed order keeps the MM/DD vs DD/MM ambiguity
// deterministic.
var dateLayouts = []string{
	"2006-01-02",      // 2023-12-25
	"01/02/2006",      // 12/25/2023
	"02/01/2006",      // 25/12/2023
	"2006/01/02",      // 2023/12/25
	"01-02-2006",      // 12-25-2023
	"02-01-2006",      // 25-12-2023
	"Jan 2, 2006",     // Dec 25, 2023
	"January 2, 2006", // December 25, 2023
}

// amountStrip holds the characters removed from raw amount text before
// numeric parsing: currency glyphs, thousands separators, whitespace.
const amountStrip = "$€£¥, \t"

// NormalizeAmount converts a raw cell into a signed decimal. A value wrapped
// in parentheses is negative (accounting convention). Returns ok=false on
// empty or unparseable input; callers drop the row, they never fail the batch.
func NormalizeAmount(c Cell) (decimal.Decimal, bool) {
	switch c.Kind {
	case CellEmpty:
		return decimal.Decimal{}, false
	case CellNumber:
		return decimal.NewFromFloat(c.Number), true
	}

	s := strings.TrimSpace(c.Text)
	if s == "" {
		return decimal.Decimal{}, false
	}

	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(amountStrip, r) {
			return -1
		}
		return r
	}, s)
	s = strings.ReplaceAll(s, "(", "-")
	s = strings.ReplaceAll(s, ")", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// NormalizeDate converts a raw cell into an ISO calendar date string
// (YYYY-MM-DD). The explicit layouts are tried first; only if none match does
// the permissive parser get a chance, so `01/02/2024` always means January 2.
// Returns ok=false when nothing parses.
func NormalizeDate(c Cell) (string, bool) {
	if c.IsEmpty() {
		return "", false
	}

	s := c.String()
	if s == "" {
		return "", false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}

	// Last resort: permissive parsing for formats no exporter we have seen
	// uses but that are still unambiguous (RFC3339 timestamps and the like).
	if t, err := dateparse.ParseAny(s); err == nil {
		return t.Format("2006-01-02"), true
	}

	return "", false
}
