package statement

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name  string
		cell  Cell
		want  string
		valid bool
	}{
		{name: "plain", cell: TextCell("450.00"), want: "450", valid: true},
		{name: "dollar sign", cell: TextCell("$450.00"), want: "450", valid: true},
		{name: "euro sign", cell: TextCell("€99.50"), want: "99.5", valid: true},
		{name: "pound sign", cell: TextCell("£12.00"), want: "12", valid: true},
		{name: "thousands separators", cell: TextCell("1,234.56"), want: "1234.56", valid: true},
		{name: "parentheses are negative", cell: TextCell("(123.45)"), want: "-123.45", valid: true},
		{name: "dollar and parentheses", cell: TextCell("($1,000.00)"), want: "-1000", valid: true},
		{name: "explicit negative", cell: TextCell("-12.5"), want: "-12.5", valid: true},
		{name: "surrounding whitespace", cell: TextCell("  42.00  "), want: "42", valid: true},
		{name: "numeric cell", cell: NumberCell(10), want: "10", valid: true},
		{name: "negative numeric cell", cell: NumberCell(-3.25), want: "-3.25", valid: true},
		{name: "empty", cell: TextCell(""), valid: false},
		{name: "empty cell", cell: Cell{}, valid: false},
		{name: "not a number", cell: TextCell("pending"), valid: false},
		{name: "only currency glyph", cell: TextCell("$"), valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeAmount(tt.cell)
			if ok != tt.valid {
				t.Fatalf("NormalizeAmount() ok = %v, want %v", ok, tt.valid)
			}
			if !tt.valid {
				return
			}
			want := decimal.RequireFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("NormalizeAmount() = %s, want %s", got, want)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name  string
		cell  Cell
		want  string
		valid bool
	}{
		{name: "iso", cell: TextCell("2023-12-25"), want: "2023-12-25", valid: true},
		{name: "us slash", cell: TextCell("12/25/2023"), want: "2023-12-25", valid: true},
		{name: "day first slash", cell: TextCell("25/12/2023"), want: "2023-12-25", valid: true},
		{name: "year first slash", cell: TextCell("2023/12/25"), want: "2023-12-25", valid: true},
		{name: "us dash", cell: TextCell("12-25-2023"), want: "2023-12-25", valid: true},
		{name: "day first dash", cell: TextCell("25-12-2023"), want: "2023-12-25", valid: true},
		{name: "abbreviated month", cell: TextCell("Dec 25, 2023"), want: "2023-12-25", valid: true},
		{name: "full month", cell: TextCell("December 25, 2023"), want: "2023-12-25", valid: true},
		{name: "fallback timestamp", cell: TextCell("2023-12-25T10:30:00Z"), want: "2023-12-25", valid: true},
		{name: "empty", cell: TextCell(""), valid: false},
		{name: "empty cell", cell: Cell{}, valid: false},
		{name: "garbage", cell: TextCell("not a date"), valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDate(tt.cell)
			if ok != tt.valid {
				t.Fatalf("NormalizeDate() ok = %v, want %v", ok, tt.valid)
			}
			if tt.valid && got != tt.want {
				t.Errorf("NormalizeDate() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Month-first layouts outrank day-first: an ambiguous date must resolve to
// the US interpretation, deterministically.
func TestNormalizeDate_MonthFirstPriority(t *testing.T) {
	got, ok := NormalizeDate(TextCell("01/02/2024"))
	if !ok {
		t.Fatal("expected 01/02/2024 to parse")
	}
	if got != "2024-01-02" {
		t.Errorf("NormalizeDate(01/02/2024) = %q, want 2024-01-02 (month first)", got)
	}
}
