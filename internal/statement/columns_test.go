package statement

import (
	"reflect"
	"testing"
)

func TestInferColumns(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    ColumnMapping
	}{
		{
			name:    "common bank export",
			headers: []string{"Posted Date", "Transaction Amount", "Payee", "Category"},
			want: ColumnMapping{
				RoleDate:     "Posted Date",
				RoleAmount:   "Transaction Amount",
				RoleMerchant: "Payee",
				RoleCategory: "Category",
			},
		},
		{
			name:    "exact names",
			headers: []string{"Date", "Amount", "Description"},
			want: ColumnMapping{
				RoleDate:     "Date",
				RoleAmount:   "Amount",
				RoleMerchant: "Description",
			},
		},
		{
			name:    "keyword priority beats header position",
			headers: []string{"Debit", "Amount Posted"},
			want: ColumnMapping{
				RoleAmount: "Amount Posted",
			},
		},
		{
			name:    "substring match inside longer header",
			headers: []string{"Trans Date", "Posted Amount", "Memo Line"},
			want: ColumnMapping{
				RoleDate:     "Trans Date",
				RoleAmount:   "Posted Amount",
				RoleMerchant: "Memo Line",
			},
		},
		{
			name:    "nothing recognizable",
			headers: []string{"Notes", "Value"},
			want:    ColumnMapping{},
		},
		{
			name:    "earliest header wins for one keyword",
			headers: []string{"Transaction Date", "Settlement Date", "Amount", "Merchant"},
			want: ColumnMapping{
				RoleDate:     "Transaction Date",
				RoleAmount:   "Amount",
				RoleMerchant: "Merchant",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferColumns(tt.headers)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("InferColumns(%v) = %v, want %v", tt.headers, got, tt.want)
			}
		})
	}
}

func TestColumnMapping_MissingRoles(t *testing.T) {
	tests := []struct {
		name    string
		mapping ColumnMapping
		want    []string
	}{
		{
			name:    "all bound",
			mapping: ColumnMapping{RoleDate: "Date", RoleAmount: "Amount", RoleMerchant: "Payee"},
			want:    nil,
		},
		{
			name:    "all missing",
			mapping: ColumnMapping{},
			want:    []string{"date", "amount", "merchant/description"},
		},
		{
			name:    "category does not count",
			mapping: ColumnMapping{RoleDate: "Date", RoleAmount: "Amount", RoleCategory: "Type"},
			want:    []string{"merchant/description"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.mapping.MissingRoles()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MissingRoles() = %v, want %v", got, tt.want)
			}
		})
	}
}
