package agent

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/personifi/personifi/internal/domain"
	"github.com/personifi/personifi/internal/store"
)

type stubModel struct {
	responses []string
	errs      []error
	calls     int
}

func (m *stubModel) Generate(ctx context.Context, system, user string) (string, error) {
	i := m.calls
	m.calls++
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return "", fmt.Errorf("unexpected call %d", i)
}

type stubStore struct {
	spent      float64
	income     float64
	byCategory map[string]float64
	byDate     map[string]float64
	gotFilters store.Filters
}

func (s *stubStore) InsertTransactions(ctx context.Context, txs []domain.Transaction, sourceFile string) (int, error) {
	return len(txs), nil
}

func (s *stubStore) QueryByDateRange(ctx context.Context, start, end time.Time) ([]*store.TransactionRow, error) {
	return nil, nil
}

func (s *stubStore) TotalSpent(ctx context.Context, f store.Filters) (float64, error) {
	s.gotFilters = f
	return s.spent, nil
}

func (s *stubStore) TotalIncome(ctx context.Context, f store.Filters) (float64, error) {
	s.gotFilters = f
	return s.income, nil
}

func (s *stubStore) SpendingByCategory(ctx context.Context, f store.Filters) (map[string]float64, error) {
	s.gotFilters = f
	return s.byCategory, nil
}

func (s *stubStore) TotalsByDate(ctx context.Context, f store.Filters) (map[string]float64, error) {
	s.gotFilters = f
	return s.byDate, nil
}

func (s *stubStore) Close() error { return nil }

func TestAsk_FullFlow(t *testing.T) {
	model := &stubModel{
		responses: []string{
			`{"intent": "spending_by_category", "filters": {"start_date": "2025-08-01", "end_date": "2025-08-31"}}`,
			`{"summary": "Groceries dominate your spending.", "chart": {"data": [{"type": "pie", "labels": ["Groceries"], "values": [412.5]}], "layout": {"title": "Spending"}}, "explanation": "A pie chart shows proportions."}`,
		},
	}
	st := &stubStore{byCategory: map[string]float64{"Groceries": 412.50}}
	a := New(model, st, zerolog.Nop())

	resp, err := a.Ask(context.Background(), "where did my money go in August?")
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}
	if !resp.Success {
		t.Error("expected success response")
	}
	if resp.Intent != IntentSpendingByCategory {
		t.Errorf("intent = %q, want %q", resp.Intent, IntentSpendingByCategory)
	}
	if st.gotFilters.StartDate != "2025-08-01" || st.gotFilters.EndDate != "2025-08-31" {
		t.Errorf("filters not passed to store: %+v", st.gotFilters)
	}
	if resp.Insight == nil || resp.Insight.Summary != "Groceries dominate your spending." {
		t.Errorf("unexpected insight: %+v", resp.Insight)
	}
	if model.calls != 2 {
		t.Errorf("model called %d times, want 2", model.calls)
	}
}

func TestAsk_FencedClassification(t *testing.T) {
	model := &stubModel{
		responses: []string{
			"```json\n{\"intent\": \"total_spent\", \"filters\": {}}\n```",
			`{"summary": "You spent $100.00.", "chart": {"data": [{"type": "bar", "x": ["Total Spent"], "y": [100]}], "layout": {}}}`,
		},
	}
	st := &stubStore{spent: 100}
	a := New(model, st, zerolog.Nop())

	resp, err := a.Ask(context.Background(), "how much did I spend?")
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}
	if resp.Intent != IntentTotalSpent {
		t.Errorf("intent = %q, want %q", resp.Intent, IntentTotalSpent)
	}
	if got := resp.RawData["total_spent"]; got != 100.0 {
		t.Errorf("raw data total_spent = %v, want 100", got)
	}
}

func TestAsk_InsightFallback(t *testing.T) {
	model := &stubModel{
		responses: []string{
			`{"intent": "balance_over_time", "filters": {}}`,
			"this is not json at all",
		},
	}
	st := &stubStore{byDate: map[string]float64{"2025-08-01": -20, "2025-08-02": 35}}
	a := New(model, st, zerolog.Nop())

	resp, err := a.Ask(context.Background(), "show my balance trend")
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}
	if resp.Insight == nil {
		t.Fatal("expected fallback insight")
	}
	if len(resp.Insight.Chart.Data) == 0 {
		t.Error("fallback insight has no chart traces")
	}
	if resp.Insight.Explanation == "" {
		t.Error("fallback insight has no explanation")
	}
}

func TestAsk_UnknownIntentDefaults(t *testing.T) {
	model := &stubModel{
		responses: []string{
			`{"intent": "predict_the_future", "filters": {}}`,
			`{"summary": "You spent $50.00 in total.", "chart": {"data": [{"type": "bar", "x": ["Total Spent"], "y": [50]}], "layout": {}}}`,
		},
	}
	st := &stubStore{spent: 50}
	a := New(model, st, zerolog.Nop())

	resp, err := a.Ask(context.Background(), "will I be rich?")
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}
	if resp.Intent != IntentTotalSpent {
		t.Errorf("intent = %q, want default %q", resp.Intent, IntentTotalSpent)
	}
}

func TestAsk_EmptyQuestion(t *testing.T) {
	a := New(&stubModel{}, &stubStore{}, zerolog.Nop())
	if _, err := a.Ask(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty question")
	}
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prose around object", "Here you go: {\"a\": 1} hope that helps", `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelJSON(tt.in); got != tt.want {
				t.Errorf("cleanModelJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
