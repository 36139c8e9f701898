package ingest

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/personifi/personifi/internal/domain"
	"github.com/personifi/personifi/internal/jobs"
	"github.com/personifi/personifi/internal/store"
)

type fakeArchive struct {
	objects map[string][]byte
}

func (f *fakeArchive) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	uri := "gs://test-bucket/" + objectName
	f.objects[uri] = data
	return uri, nil
}

func (f *fakeArchive) Fetch(ctx context.Context, gcsURI string) ([]byte, error) {
	data, ok := f.objects[gcsURI]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", gcsURI)
	}
	return data, nil
}

func (f *fakeArchive) Close() error { return nil }

type fakeStore struct {
	inserted   []domain.Transaction
	sourceFile string
	insertErr  error
}

func (s *fakeStore) InsertTransactions(ctx context.Context, txs []domain.Transaction, sourceFile string) (int, error) {
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.inserted = append(s.inserted, txs...)
	s.sourceFile = sourceFile
	return len(txs), nil
}

func (s *fakeStore) QueryByDateRange(ctx context.Context, start, end time.Time) ([]*store.TransactionRow, error) {
	return nil, nil
}
func (s *fakeStore) TotalSpent(ctx context.Context, f store.Filters) (float64, error)  { return 0, nil }
func (s *fakeStore) TotalIncome(ctx context.Context, f store.Filters) (float64, error) { return 0, nil }
func (s *fakeStore) SpendingByCategory(ctx context.Context, f store.Filters) (map[string]float64, error) {
	return nil, nil
}
func (s *fakeStore) TotalsByDate(ctx context.Context, f store.Filters) (map[string]float64, error) {
	return nil, nil
}
func (s *fakeStore) Close() error { return nil }

const sampleCSV = "Date,Amount,Description,Category\n" +
	"2025-08-01,-42.50,WHOLE FOODS,Groceries\n" +
	"2025-08-02,1200.00,PAYROLL,Income\n"

func TestProcess(t *testing.T) {
	archive := &fakeArchive{objects: map[string][]byte{
		"gs://test-bucket/uploads/stmt.csv": []byte(sampleCSV),
	}}
	st := &fakeStore{}
	svc := NewService(archive, st, zerolog.Nop())

	job := &jobs.ParseStatementJob{
		JobID:       "job-1",
		StatementID: "stmt-1",
		GCSURI:      "gs://test-bucket/uploads/stmt.csv",
		Filename:    "stmt.csv",
	}

	if err := svc.Process(context.Background(), job); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if len(st.inserted) != 2 {
		t.Errorf("inserted %d transactions, want 2", len(st.inserted))
	}
	if st.sourceFile != "stmt.csv" {
		t.Errorf("source file = %q, want stmt.csv", st.sourceFile)
	}
	if job.TransactionCount != 2 {
		t.Errorf("TransactionCount = %d, want 2", job.TransactionCount)
	}
}

func TestProcess_FilenameFromURI(t *testing.T) {
	archive := &fakeArchive{objects: map[string][]byte{
		"gs://test-bucket/uploads/2026/statement.csv": []byte(sampleCSV),
	}}
	st := &fakeStore{}
	svc := NewService(archive, st, zerolog.Nop())

	job := &jobs.ParseStatementJob{
		JobID:  "job-2",
		GCSURI: "gs://test-bucket/uploads/2026/statement.csv",
	}

	if err := svc.Process(context.Background(), job); err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if st.sourceFile != "statement.csv" {
		t.Errorf("source file = %q, want statement.csv", st.sourceFile)
	}
}

func TestProcess_ParseFailureDisablesRetry(t *testing.T) {
	archive := &fakeArchive{objects: map[string][]byte{
		"gs://test-bucket/uploads/bad.csv": []byte("Foo,Bar\n1,2\n"),
	}}
	svc := NewService(archive, &fakeStore{}, zerolog.Nop())

	job := &jobs.ParseStatementJob{
		JobID:      "job-3",
		GCSURI:     "gs://test-bucket/uploads/bad.csv",
		Filename:   "bad.csv",
		MaxRetries: 3,
	}

	if err := svc.Process(context.Background(), job); err == nil {
		t.Fatal("expected error for unparseable file")
	}
	if job.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0 after parse failure", job.MaxRetries)
	}
}

func TestProcess_MissingObject(t *testing.T) {
	svc := NewService(&fakeArchive{objects: map[string][]byte{}}, &fakeStore{}, zerolog.Nop())

	job := &jobs.ParseStatementJob{JobID: "job-4", GCSURI: "gs://test-bucket/nope.csv"}
	if err := svc.Process(context.Background(), job); err == nil {
		t.Fatal("expected error for missing object")
	}
}
