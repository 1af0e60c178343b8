package pipeline

import (
	"context"

	"trendpulse/app/core/store"
	"trendpulse/app/pkg/logger"
)

// SweepOrphans deletes analysis results whose owning task no longer
// exists. Task deletion does not cascade, so this runs once at process
// start to reclaim orphaned rows. Returns the number of results removed.
func SweepOrphans(ctx context.Context, tasks *store.Tasks, results *store.Results) (int64, error) {
	all, err := results.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	known := make(map[string]bool)
	orphans := make([]string, 0)
	for _, r := range all {
		exists, ok := known[r.TaskID]
		if !ok {
			exists, err = tasks.Exists(ctx, r.TaskID)
			if err != nil {
				return 0, err
			}
			known[r.TaskID] = exists
		}
		if !exists {
			orphans = append(orphans, r.ID)
		}
	}

	if len(orphans) == 0 {
		return 0, nil
	}
	removed, err := results.DeleteMany(ctx, orphans)
	if err != nil {
		return 0, err
	}
	logger.Info("orphan sweep removed %d results", removed)
	return removed, nil
}
