package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"trendpulse/app/pkg/types"
)

// Results owns the durable, append-only set of analysis results. Rows are
// never updated after Append; task deletion leaves them behind for the
// orphan sweep.
type Results struct {
	db *DB
}

func NewResults(database *DB) *Results {
	return &Results{db: database}
}

func (s *Results) Append(ctx context.Context, result types.AnalysisResult) (types.AnalysisResult, error) {
	if strings.TrimSpace(result.TaskID) == "" {
		return types.AnalysisResult{}, fmt.Errorf("task_id is required")
	}
	if strings.TrimSpace(result.UserID) == "" {
		return types.AnalysisResult{}, fmt.Errorf("user_id is required")
	}
	if strings.TrimSpace(result.ID) == "" {
		result.ID = uuid.NewString()
	}
	if result.Sentiment == "" {
		result.Sentiment = types.SentimentUnknown
	}
	if result.Timestamp.IsZero() {
		result.Timestamp = time.Now().UTC()
	}
	_, err := s.db.Conn().ExecContext(ctx, `
		INSERT INTO analysis_results (id, task_id, user_id, topic, summary, sentiment, insight, source_count, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		result.ID,
		result.TaskID,
		result.UserID,
		result.Topic,
		result.Summary,
		string(result.Sentiment),
		nullIfEmpty(result.Insight),
		result.SourceCount,
		result.Timestamp.UTC().Unix(),
	)
	if err != nil {
		return types.AnalysisResult{}, err
	}
	return result, nil
}

// ListByUser returns a user's results newest-first, capped at limit.
func (s *Results) ListByUser(ctx context.Context, userID string, limit int) ([]types.AnalysisResult, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT id, task_id, user_id, topic, summary, sentiment, COALESCE(insight, ''), source_count, timestamp
		FROM analysis_results
		WHERE user_id = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResults(rows)
}

// ListAll exists for the orphan sweep.
func (s *Results) ListAll(ctx context.Context) ([]types.AnalysisResult, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT id, task_id, user_id, topic, summary, sentiment, COALESCE(insight, ''), source_count, timestamp
		FROM analysis_results
		ORDER BY timestamp DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResults(rows)
}

func (s *Results) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := s.db.Conn().ExecContext(ctx,
		`DELETE FROM analysis_results WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanResults(rows *sql.Rows) ([]types.AnalysisResult, error) {
	items := make([]types.AnalysisResult, 0)
	for rows.Next() {
		var (
			r         types.AnalysisResult
			sentiment string
			timestamp int64
		)
		if err := rows.Scan(&r.ID, &r.TaskID, &r.UserID, &r.Topic, &r.Summary, &sentiment, &r.Insight, &r.SourceCount, &timestamp); err != nil {
			return nil, err
		}
		r.Sentiment = types.ParseSentiment(sentiment)
		r.Timestamp = time.Unix(timestamp, 0).UTC()
		items = append(items, r)
	}
	return items, rows.Err()
}

func nullIfEmpty(v string) interface{} {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
