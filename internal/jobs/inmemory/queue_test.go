package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/personifi/personifi/internal/jobs"
)

func TestQueue_PublishAndConsume(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, store)
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan string, 1)
	handler := func(ctx context.Context, job jobs.Job) error {
		done <- job.GetID()
		return nil
	}

	if err := q.Start(ctx, handler); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	job := &jobs.ParseStatementJob{StatementID: "stmt-1", GCSURI: "gs://b/f.csv"}
	if err := q.PublishParseStatement(ctx, job); err != nil {
		t.Fatalf("publish returned error: %v", err)
	}
	if job.JobID == "" {
		t.Fatal("expected generated job ID")
	}

	select {
	case id := <-done:
		if id != job.JobID {
			t.Errorf("handled job %q, want %q", id, job.JobID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job was not consumed")
	}

	// The queue persists the terminal status after the handler returns.
	deadline := time.Now().Add(2 * time.Second)
	for {
		stored, err := store.GetJob(ctx, job.JobID)
		if err == nil && stored.Status == jobs.JobStatusCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never reached completed status, last: %+v, err: %v", stored, err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestQueue_PublishAfterClose(t *testing.T) {
	q := NewQueue(1, NewStore())
	if err := q.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	err := q.PublishParseStatement(context.Background(), &jobs.ParseStatementJob{})
	if err == nil {
		t.Fatal("expected error publishing to closed queue")
	}
}

func TestStore_ListJobsFilter(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	store.SaveJob(ctx, &jobs.ParseStatementJob{JobID: "a", StatementID: "s1", Status: jobs.JobStatusCompleted})
	store.SaveJob(ctx, &jobs.ParseStatementJob{JobID: "b", StatementID: "s2", Status: jobs.JobStatusFailed})
	store.SaveJob(ctx, &jobs.ParseStatementJob{JobID: "c", StatementID: "s1", Status: jobs.JobStatusFailed})

	byStatement, err := store.ListJobs(ctx, jobs.JobFilter{StatementID: "s1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byStatement) != 2 {
		t.Errorf("statement filter returned %d jobs, want 2", len(byStatement))
	}

	byStatus, err := store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusFailed})
	if err != nil {
		t.Fatal(err)
	}
	if len(byStatus) != 2 {
		t.Errorf("status filter returned %d jobs, want 2", len(byStatus))
	}

	limited, err := store.ListJobs(ctx, jobs.JobFilter{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("limit returned %d jobs, want 1", len(limited))
	}
}
