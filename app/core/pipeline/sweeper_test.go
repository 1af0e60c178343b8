package pipeline

import (
	"context"
	"testing"

	"trendpulse/app/pkg/types"
)

func TestSweepOrphansRemovesOnlyOrphans(t *testing.T) {
	tasks, results := newTestStores(t)
	ctx := context.Background()

	kept, err := tasks.Create(ctx, "u-1", "Bitcoin", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	doomed, err := tasks.Create(ctx, "u-1", "Gold", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := results.Append(ctx, types.AnalysisResult{
			TaskID: kept.ID, UserID: "u-1", Topic: "Bitcoin", Summary: "s",
		}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}
	for i := 0; i < 3; i++ {
		if _, err := results.Append(ctx, types.AnalysisResult{
			TaskID: doomed.ID, UserID: "u-1", Topic: "Gold", Summary: "s",
		}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}
	if err := tasks.Delete(ctx, doomed.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	removed, err := SweepOrphans(ctx, tasks, results)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 orphans removed, got %d", removed)
	}

	remaining, err := results.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("expected 2 surviving results, got %d", len(remaining))
	}
	for _, r := range remaining {
		if r.TaskID != kept.ID {
			t.Fatalf("survivor bound to wrong task: %+v", r)
		}
	}
}

func TestSweepOrphansNoOrphans(t *testing.T) {
	tasks, results := newTestStores(t)
	ctx := context.Background()

	task, err := tasks.Create(ctx, "u-1", "Bitcoin", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := results.Append(ctx, types.AnalysisResult{
		TaskID: task.ID, UserID: "u-1", Topic: "Bitcoin", Summary: "s",
	}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	removed, err := SweepOrphans(ctx, tasks, results)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected nothing removed, got %d", removed)
	}
}
