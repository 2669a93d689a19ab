// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"context"
	"errors"
	"testing"

	"github.com/avoynikov/tenderlens/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult(name string) *types.AnalysisResult {
	return &types.AnalysisResult{
		ID:      "run-1",
		Name:    name,
		Mode:    "windowed",
		Windows: 5,
		Failed:  1,
		JSON:    `{"summary":"s"}`,
	}
}

func TestSaveAndGetAnalysis(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveAnalysis(ctx, "tz_123.json", sampleResult("tz.pdf")); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetAnalysis(ctx, "tz_123.json")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "tz.pdf" || got.Mode != "windowed" || got.Windows != 5 || got.Failed != 1 {
		t.Errorf("analysis = %+v", got)
	}
	if got.JSON != `{"summary":"s"}` {
		t.Errorf("json = %q", got.JSON)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at not recorded")
	}
}

func TestSaveAnalysisUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveAnalysis(ctx, "key.json", sampleResult("v1.pdf")); err != nil {
		t.Fatal(err)
	}
	res := sampleResult("v2.pdf")
	res.JSON = `{"summary":"updated"}`
	if err := s.SaveAnalysis(ctx, "key.json", res); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetAnalysis(ctx, "key.json")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "v2.pdf" || got.JSON != `{"summary":"updated"}` {
		t.Errorf("analysis = %+v", got)
	}
}

func TestGetAnalysisNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetAnalysis(context.Background(), "missing.json")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListAnalyses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"a.json", "b.json", "c.json"} {
		if err := s.SaveAnalysis(ctx, key, sampleResult(key)); err != nil {
			t.Fatal(err)
		}
	}
	list, err := s.ListAnalyses(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Errorf("len = %d, want 3", len(list))
	}
}

func TestQueueLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveAnalysis(ctx, "key.json", sampleResult("doc.pdf")); err != nil {
		t.Fatal(err)
	}
	jobID, err := s.Enqueue(ctx, "key.json", "doc.pdf")
	if err != nil {
		t.Fatal(err)
	}

	job, err := s.NextPending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if job.ID != jobID || job.Status != StatusProcessing || job.Attempts != 1 {
		t.Errorf("claimed job = %+v", job)
	}

	// A claimed job is not pending anymore.
	if _, err := s.NextPending(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("second claim err = %v, want ErrNotFound", err)
	}

	if err := s.MarkDone(ctx, job.ID, "https://www.notion.so/abc"); err != nil {
		t.Fatal(err)
	}
	status, err := s.JobStatus(ctx, "key.json")
	if err != nil {
		t.Fatal(err)
	}
	if status.Status != StatusDone || status.PageURL != "https://www.notion.so/abc" {
		t.Errorf("status = %+v", status)
	}
}

func TestMarkErrorRequeuesUnderBudget(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveAnalysis(ctx, "key.json", sampleResult("doc.pdf")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Enqueue(ctx, "key.json", "doc.pdf"); err != nil {
		t.Fatal(err)
	}

	// First failure goes back to pending; the third sticks as error.
	for attempt := 1; attempt <= 3; attempt++ {
		job, err := s.NextPending(ctx)
		if err != nil {
			t.Fatalf("attempt %d: %v", attempt, err)
		}
		if job.Attempts != attempt {
			t.Errorf("attempt %d: job.Attempts = %d", attempt, job.Attempts)
		}
		if err := s.MarkError(ctx, job.ID, "workspace down", 3); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := s.NextPending(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("exhausted job should not be pending, err = %v", err)
	}
	status, err := s.JobStatus(ctx, "key.json")
	if err != nil {
		t.Fatal(err)
	}
	if status.Status != StatusError || status.Message != "workspace down" {
		t.Errorf("status = %+v", status)
	}
}

func TestJobStatusNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.JobStatus(context.Background(), "missing.json")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestJobStatusReturnsLatest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveAnalysis(ctx, "key.json", sampleResult("doc.pdf")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Enqueue(ctx, "key.json", "doc.pdf"); err != nil {
		t.Fatal(err)
	}
	second, err := s.Enqueue(ctx, "key.json", "doc.pdf")
	if err != nil {
		t.Fatal(err)
	}

	status, err := s.JobStatus(ctx, "key.json")
	if err != nil {
		t.Fatal(err)
	}
	if status.ID != second {
		t.Errorf("status.ID = %d, want the latest job %d", status.ID, second)
	}
}
