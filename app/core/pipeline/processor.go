// Package pipeline holds the recurring analysis pipeline: the per-task
// processor, the chat/task service around it, the due-task trigger, and
// the boot-time orphan sweep.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"trendpulse/app/core/store"
	"trendpulse/app/pkg/types"
)

// ContentFetcher supplies text to analyze for a topic plus the number of
// sources it came from. Implementations never fail; they degrade.
type ContentFetcher interface {
	Fetch(ctx context.Context, topic string) (string, int)
}

// Analyzer turns fetched content into a structured analysis.
type Analyzer interface {
	AnalyzeContent(ctx context.Context, text string, topic string) types.Analysis
}

// IntentParser turns a free-text message into a structured tracking
// request, or a chat-only reply when no intent is detected.
type IntentParser interface {
	ParseIntent(ctx context.Context, message string) types.Intent
}

// Processor is the per-task unit of work: fetch, analyze, persist the
// result, stamp the task as run. The scheduler trigger and the manual
// trigger both go through Process.
type Processor struct {
	tasks    *store.Tasks
	results  *store.Results
	fetcher  ContentFetcher
	analyzer Analyzer
}

func NewProcessor(tasks *store.Tasks, results *store.Results, fetcher ContentFetcher, analyzer Analyzer) *Processor {
	return &Processor{tasks: tasks, results: results, fetcher: fetcher, analyzer: analyzer}
}

// Process runs one analysis for the task. A failure aborts the remaining
// steps and leaves last_run untouched, so the task stays eligible for the
// next tick.
func (p *Processor) Process(ctx context.Context, task types.Task) (types.AnalysisResult, error) {
	text, sourceCount := p.fetcher.Fetch(ctx, task.Topic)
	analysis := p.analyzer.AnalyzeContent(ctx, text, task.Topic)

	// Topic is copied onto the result at write time so history stays
	// readable after the task is edited or deleted.
	result, err := p.results.Append(ctx, types.AnalysisResult{
		TaskID:      task.ID,
		UserID:      task.UserID,
		Topic:       task.Topic,
		Summary:     analysis.Summary,
		Sentiment:   analysis.Sentiment,
		Insight:     analysis.Insight,
		SourceCount: sourceCount,
		Timestamp:   time.Now().UTC(),
	})
	if err != nil {
		return types.AnalysisResult{}, fmt.Errorf("append result: %w", err)
	}

	if err := p.tasks.MarkRun(ctx, task.ID, time.Now().UTC()); err != nil {
		return types.AnalysisResult{}, fmt.Errorf("mark run: %w", err)
	}
	return result, nil
}
