package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"trendpulse/app/pkg/types"
)

const DefaultFrequency = "0 * * * *"

var (
	ErrDuplicateTopic = errors.New("store: topic already tracked for user")
	ErrTaskNotFound   = errors.New("store: task not found")
)

// Tasks owns the durable set of tracked topics and their run metadata.
type Tasks struct {
	db *DB
}

func NewTasks(database *DB) *Tasks {
	return &Tasks{db: database}
}

// Create inserts a new tracked topic. The per-user case-insensitive topic
// uniqueness check happens here, before the insert, because the schema
// deliberately carries no unique index on topic.
func (s *Tasks) Create(ctx context.Context, userID string, topic string, frequency string) (types.Task, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return types.Task{}, fmt.Errorf("user_id is required")
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return types.Task{}, fmt.Errorf("topic is required")
	}
	frequency = strings.TrimSpace(frequency)
	if frequency == "" {
		frequency = DefaultFrequency
	}

	if existing, err := s.FindByTopic(ctx, userID, topic); err == nil {
		return existing, ErrDuplicateTopic
	} else if !errors.Is(err, ErrTaskNotFound) {
		return types.Task{}, err
	}

	now := time.Now().UTC()
	task := types.Task{
		ID:        uuid.NewString(),
		UserID:    userID,
		Topic:     topic,
		Frequency: frequency,
		IsActive:  true,
		CreatedAt: now,
	}
	_, err := s.db.Conn().ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, topic, frequency, is_active, last_run, created_at)
		VALUES (?, ?, ?, ?, 1, NULL, ?)
	`, task.ID, task.UserID, task.Topic, task.Frequency, now.Unix())
	if err != nil {
		return types.Task{}, err
	}
	return task, nil
}

// FindByTopic matches topic case-insensitively within one user's tasks.
func (s *Tasks) FindByTopic(ctx context.Context, userID string, topic string) (types.Task, error) {
	row := s.db.Conn().QueryRowContext(ctx, `
		SELECT id, user_id, topic, frequency, is_active, last_run, created_at
		FROM tasks
		WHERE user_id = ? AND LOWER(topic) = LOWER(?)
	`, userID, strings.TrimSpace(topic))
	return scanTask(row)
}

func (s *Tasks) Get(ctx context.Context, id string) (types.Task, error) {
	row := s.db.Conn().QueryRowContext(ctx, `
		SELECT id, user_id, topic, frequency, is_active, last_run, created_at
		FROM tasks
		WHERE id = ?
	`, id)
	return scanTask(row)
}

// GetOwned resolves a task only when it belongs to userID. A foreign task
// is indistinguishable from a missing one.
func (s *Tasks) GetOwned(ctx context.Context, userID string, id string) (types.Task, error) {
	row := s.db.Conn().QueryRowContext(ctx, `
		SELECT id, user_id, topic, frequency, is_active, last_run, created_at
		FROM tasks
		WHERE id = ? AND user_id = ?
	`, id, userID)
	return scanTask(row)
}

func (s *Tasks) ListByUser(ctx context.Context, userID string) ([]types.Task, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT id, user_id, topic, frequency, is_active, last_run, created_at
		FROM tasks
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

// ListDue returns active tasks that have never run or whose last run is
// older than the staleness window. The per-task cadence string is not
// consulted here.
func (s *Tasks) ListDue(ctx context.Context, now time.Time, staleness time.Duration) ([]types.Task, error) {
	cutoff := now.UTC().Add(-staleness).Unix()
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT id, user_id, topic, frequency, is_active, last_run, created_at
		FROM tasks
		WHERE is_active = 1 AND (last_run IS NULL OR last_run < ?)
		ORDER BY created_at ASC
	`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (s *Tasks) SetActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.Conn().ExecContext(ctx, `UPDATE tasks SET is_active = ? WHERE id = ?`, boolToInt(active), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Tasks) MarkRun(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.Conn().ExecContext(ctx, `UPDATE tasks SET last_run = ? WHERE id = ?`, at.UTC().Unix(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a task. Existing results are not cascaded; they stay
// orphaned until the next sweep.
func (s *Tasks) Delete(ctx context.Context, id string) error {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Tasks) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.Conn().QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (types.Task, error) {
	var (
		t         types.Task
		isActive  int
		lastRun   sql.NullInt64
		createdAt int64
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Topic, &t.Frequency, &isActive, &lastRun, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Task{}, ErrTaskNotFound
	}
	if err != nil {
		return types.Task{}, err
	}
	t.IsActive = isActive != 0
	if lastRun.Valid {
		at := time.Unix(lastRun.Int64, 0).UTC()
		t.LastRun = &at
	}
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	return t, nil
}

func scanTasks(rows *sql.Rows) ([]types.Task, error) {
	items := make([]types.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
