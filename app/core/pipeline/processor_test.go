package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"trendpulse/app/core/store"
	"trendpulse/app/pkg/types"
)

type fakeFetcher struct {
	text  string
	count int
	calls int
}

func (f *fakeFetcher) Fetch(context.Context, string) (string, int) {
	f.calls++
	return f.text, f.count
}

type fakeAnalyzer struct {
	analysis types.Analysis
	lastText string
}

func (f *fakeAnalyzer) AnalyzeContent(_ context.Context, text string, _ string) types.Analysis {
	f.lastText = text
	return f.analysis
}

type fakeParser struct {
	intent types.Intent
}

func (f *fakeParser) ParseIntent(context.Context, string) types.Intent {
	return f.intent
}

func newTestStores(t *testing.T) (*store.Tasks, *store.Results) {
	t.Helper()
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatalf("init sqlite failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return store.NewTasks(db), store.NewResults(db)
}

func TestProcessPersistsResultAndStampsTask(t *testing.T) {
	tasks, results := newTestStores(t)
	ctx := context.Background()

	task, err := tasks.Create(ctx, "u-1", "Bitcoin", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	fetcher := &fakeFetcher{text: "bitcoin is up", count: 4}
	analyzer := &fakeAnalyzer{analysis: types.Analysis{
		Summary:   "Bitcoin rallied today.",
		Sentiment: types.SentimentPositive,
		Insight:   "Momentum is building.",
	}}
	processor := NewProcessor(tasks, results, fetcher, analyzer)

	result, err := processor.Process(ctx, task)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if result.TaskID != task.ID || result.UserID != "u-1" {
		t.Fatalf("result not bound to task: %+v", result)
	}
	if result.Topic != "Bitcoin" {
		t.Fatalf("expected topic copied onto result, got: %q", result.Topic)
	}
	if result.SourceCount != 4 {
		t.Fatalf("expected source count 4, got %d", result.SourceCount)
	}
	if analyzer.lastText != "bitcoin is up" {
		t.Fatalf("analyzer did not receive fetched text, got: %q", analyzer.lastText)
	}

	stamped, err := tasks.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stamped.LastRun == nil {
		t.Fatal("expected last_run to be stamped after a successful run")
	}

	history, err := results.ListByUser(ctx, "u-1", 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 persisted result, got %d", len(history))
	}
}

func TestProcessFailureLeavesLastRunUntouched(t *testing.T) {
	tasks, results := newTestStores(t)
	ctx := context.Background()

	task, err := tasks.Create(ctx, "u-1", "Bitcoin", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// Deleting the task makes the final mark-run step fail.
	if err := tasks.Delete(ctx, task.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	fetcher := &fakeFetcher{text: "text", count: 1}
	analyzer := &fakeAnalyzer{analysis: types.Analysis{Summary: "s", Sentiment: types.SentimentNeutral}}
	processor := NewProcessor(tasks, results, fetcher, analyzer)

	if _, err := processor.Process(ctx, task); err == nil {
		t.Fatal("expected processing a deleted task to fail at mark run")
	}
}
