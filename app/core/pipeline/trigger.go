package pipeline

import (
	"context"
	"time"

	"trendpulse/app/core/scheduler"
	"trendpulse/app/core/store"
	"trendpulse/app/pkg/logger"
)

// Trigger discovers due tasks on each scheduler tick and dispatches one
// goroutine per task. The tick never waits on a dispatched run, and one
// task's failure never affects its siblings. There is deliberately no
// per-task in-flight marker: a manual trigger racing a tick may run the
// same task twice, and the last last_run write wins.
type Trigger struct {
	tasks     *store.Tasks
	processor *Processor
	staleness time.Duration
	base      context.Context
}

func NewTrigger(tasks *store.Tasks, processor *Processor, staleness time.Duration) *Trigger {
	if staleness <= 0 {
		staleness = time.Hour
	}
	return &Trigger{
		tasks:     tasks,
		processor: processor,
		staleness: staleness,
		// Dispatched runs always go to completion or failure; they are
		// not canceled when the tick context ends.
		base: context.Background(),
	}
}

// Job packages the trigger as a scheduler job.
func (t *Trigger) Job(interval time.Duration) scheduler.JobSpec {
	if interval <= 0 {
		interval = time.Minute
	}
	return scheduler.JobSpec{
		Name:     "dispatch-due",
		Interval: interval,
		Run:      t.DispatchDue,
	}
}

// DispatchDue lists due tasks and fires each one without waiting.
func (t *Trigger) DispatchDue(ctx context.Context) error {
	due, err := t.tasks.ListDue(ctx, time.Now().UTC(), t.staleness)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}
	logger.Info("dispatching %d due tasks", len(due))

	for _, task := range due {
		task := task
		go func() {
			if _, err := t.processor.Process(t.base, task); err != nil {
				logger.Error("task %s (%s) failed: %v", task.ID, task.Topic, err)
				return
			}
			logger.Info("completed task %s (%s)", task.ID, task.Topic)
		}()
	}
	return nil
}
