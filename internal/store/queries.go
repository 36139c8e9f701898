package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// QueryByDateRange returns stored transactions within [start, end], newest
// first.
func (s *BigQueryStore) QueryByDateRange(ctx context.Context, start, end time.Time) ([]*TransactionRow, error) {
	q := s.client.Query(fmt.Sprintf(`
		SELECT transaction_id, transaction_date, merchant, amount, category, source_file, created_ts
		FROM %s.%s
		WHERE transaction_date BETWEEN @start_date AND @end_date
		ORDER BY transaction_date DESC
	`, s.dataset, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: start.Format("2006-01-02")},
		{Name: "end_date", Value: end.Format("2006-01-02")},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryByDateRange: running query: %w", err)
	}

	var rows []*TransactionRow
	for {
		var row TransactionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryByDateRange: reading row: %w", err)
		}
		if row.Amount != nil {
			row.AmountFloat, _ = row.Amount.Float64()
		}
		rows = append(rows, &row)
	}
	return rows, nil
}

// TotalSpent sums money going out (negative amounts), returned as a positive
// figure.
func (s *BigQueryStore) TotalSpent(ctx context.Context, f Filters) (float64, error) {
	return s.sumAmounts(ctx, f, "amount < 0", true)
}

// TotalIncome sums money coming in (positive amounts).
func (s *BigQueryStore) TotalIncome(ctx context.Context, f Filters) (float64, error) {
	return s.sumAmounts(ctx, f, "amount > 0", false)
}

func (s *BigQueryStore) sumAmounts(ctx context.Context, f Filters, signClause string, absolute bool) (float64, error) {
	expr := "SUM(CAST(amount AS FLOAT64))"
	if absolute {
		expr = "SUM(ABS(CAST(amount AS FLOAT64)))"
	}

	where, params := buildFilter(f)
	where = append(where, signClause)

	q := s.client.Query(fmt.Sprintf(`
		SELECT IFNULL(%s, 0) AS total
		FROM %s.%s
		WHERE %s
	`, expr, s.dataset, transactionsTable, strings.Join(where, " AND ")))
	q.Parameters = params

	it, err := q.Read(ctx)
	if err != nil {
		return 0, fmt.Errorf("sumAmounts: running query: %w", err)
	}

	var row struct {
		Total float64 `bigquery:"total"`
	}
	if err := it.Next(&row); err != nil && err != iterator.Done {
		return 0, fmt.Errorf("sumAmounts: reading row: %w", err)
	}
	return row.Total, nil
}

// SpendingByCategory aggregates outgoing amounts per category, uncategorized
// rows grouped under "Uncategorized".
func (s *BigQueryStore) SpendingByCategory(ctx context.Context, f Filters) (map[string]float64, error) {
	where, params := buildFilter(f)
	where = append(where, "amount < 0")

	q := s.client.Query(fmt.Sprintf(`
		SELECT IFNULL(category, 'Uncategorized') AS label,
		       SUM(ABS(CAST(amount AS FLOAT64))) AS total
		FROM %s.%s
		WHERE %s
		GROUP BY label
		ORDER BY total DESC
	`, s.dataset, transactionsTable, strings.Join(where, " AND ")))
	q.Parameters = params

	return s.readTotals(ctx, q)
}

// TotalsByDate aggregates outgoing amounts per calendar date, ascending.
func (s *BigQueryStore) TotalsByDate(ctx context.Context, f Filters) (map[string]float64, error) {
	where, params := buildFilter(f)
	where = append(where, "amount < 0")

	q := s.client.Query(fmt.Sprintf(`
		SELECT CAST(transaction_date AS STRING) AS label,
		       SUM(ABS(CAST(amount AS FLOAT64))) AS total
		FROM %s.%s
		WHERE %s
		GROUP BY label
		ORDER BY label
	`, s.dataset, transactionsTable, strings.Join(where, " AND ")))
	q.Parameters = params

	return s.readTotals(ctx, q)
}

func (s *BigQueryStore) readTotals(ctx context.Context, q *bigquery.Query) (map[string]float64, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("readTotals: running query: %w", err)
	}

	totals := make(map[string]float64)
	for {
		var row struct {
			Label string  `bigquery:"label"`
			Total float64 `bigquery:"total"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("readTotals: reading row: %w", err)
		}
		totals[row.Label] = row.Total
	}
	return totals, nil
}

// buildFilter translates Filters into WHERE clauses plus bound parameters.
// Always returns at least one clause so callers can append with AND.
func buildFilter(f Filters) ([]string, []bigquery.QueryParameter) {
	where := []string{"TRUE"}
	var params []bigquery.QueryParameter

	if f.Category != "" {
		where = append(where, "LOWER(category) = LOWER(@category)")
		params = append(params, bigquery.QueryParameter{Name: "category", Value: f.Category})
	}
	if f.StartDate != "" {
		where = append(where, "transaction_date >= @start_date")
		params = append(params, bigquery.QueryParameter{Name: "start_date", Value: f.StartDate})
	}
	if f.EndDate != "" {
		where = append(where, "transaction_date <= @end_date")
		params = append(params, bigquery.QueryParameter{Name: "end_date", Value: f.EndDate})
	}
	return where, params
}
