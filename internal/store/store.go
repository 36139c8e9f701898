// Package store persists normalized transactions in BigQuery and answers the
// aggregate queries the insight agent needs.
package store

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/personifi/personifi/internal/domain"
)

const transactionsTable = "transactions"

// TransactionRow is the BigQuery representation of one stored transaction.
type TransactionRow struct {
	TransactionID string              `bigquery:"transaction_id" json:"transaction_id"`
	Date          civil.Date          `bigquery:"transaction_date" json:"date"`
	Merchant      string              `bigquery:"merchant" json:"merchant"`
	Amount        *big.Rat            `bigquery:"amount" json:"-"`
	AmountFloat   float64             `bigquery:"-" json:"amount"`
	Category      bigquery.NullString `bigquery:"category" json:"category,omitempty"`
	SourceFile    bigquery.NullString `bigquery:"source_file" json:"source_file,omitempty"`
	CreatedTS     time.Time           `bigquery:"created_ts" json:"created_at"`
}

// Filters narrows aggregate queries. Zero values mean "no constraint"; dates
// are YYYY-MM-DD strings as produced by the parser.
type Filters struct {
	Category  string
	StartDate string
	EndDate   string
}

// TransactionStore is the persistence collaborator consumed by the API layer
// and the insight agent.
type TransactionStore interface {
	InsertTransactions(ctx context.Context, txs []domain.Transaction, sourceFile string) (int, error)
	QueryByDateRange(ctx context.Context, start, end time.Time) ([]*TransactionRow, error)
	TotalSpent(ctx context.Context, f Filters) (float64, error)
	TotalIncome(ctx context.Context, f Filters) (float64, error)
	SpendingByCategory(ctx context.Context, f Filters) (map[string]float64, error)
	TotalsByDate(ctx context.Context, f Filters) (map[string]float64, error)
	Close() error
}

// BigQueryStore implements TransactionStore against a BigQuery dataset. It
// holds one shared client; create it once at startup and inject it where
// needed.
type BigQueryStore struct {
	client  *bigquery.Client
	dataset string
}

// NewBigQueryStore creates a store with a shared BigQuery client.
func NewBigQueryStore(ctx context.Context, projectID, dataset string) (*BigQueryStore, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryStore: creating client: %w", err)
	}
	return &BigQueryStore{client: client, dataset: dataset}, nil
}

// Close releases the underlying client.
func (s *BigQueryStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// InsertTransactions streams a batch of transactions into the transactions
// table. Returns the number of rows handed to the inserter.
func (s *BigQueryStore) InsertTransactions(ctx context.Context, txs []domain.Transaction, sourceFile string) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}

	rows := make([]*TransactionRow, 0, len(txs))
	for _, tx := range txs {
		date, err := civil.ParseDate(tx.Date)
		if err != nil {
			return 0, fmt.Errorf("InsertTransactions: invalid date %q: %w", tx.Date, err)
		}
		row := &TransactionRow{
			TransactionID: uuid.NewString(),
			Date:          date,
			Merchant:      tx.Merchant,
			Amount:        tx.Amount.Rat(),
			CreatedTS:     time.Now(),
		}
		if tx.Category != "" {
			row.Category = bigquery.NullString{StringVal: tx.Category, Valid: true}
		}
		if sourceFile != "" {
			row.SourceFile = bigquery.NullString{StringVal: sourceFile, Valid: true}
		}
		rows = append(rows, row)
	}

	inserter := s.client.Dataset(s.dataset).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return 0, fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}
	return len(rows), nil
}

// Ensure BigQueryStore implements TransactionStore.
var _ TransactionStore = (*BigQueryStore)(nil)
