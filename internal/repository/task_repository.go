package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"beproductive/backend/internal/db"
	"beproductive/backend/internal/model"
)

type TaskRepository struct {
	conn *db.Conn
}

func NewTaskRepository(conn *db.Conn) *TaskRepository {
	return &TaskRepository{conn: conn}
}

const taskColumns = `id, user_id, title, description, task_date, start_time, end_time,
	status, priority, pomodoros_total, pomodoros_completed, sort_order,
	goal_id, recurring_task_id, created_at, updated_at`

func (r *TaskRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}

func (r *TaskRepository) ListByDate(ctx context.Context, userID, date string) ([]model.Task, error) {
	rows, err := r.conn.QueryContext(
		ctx,
		r.conn.Rebind(`SELECT `+taskColumns+`
		 FROM tasks
		 WHERE user_id = ? AND task_date = ?
		 ORDER BY sort_order ASC, created_at ASC`),
		userID,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks by date: %w", err)
	}
	return collectTasks(rows)
}

// ListInRange returns tasks whose date lies in [startDate, endDate]. Dates
// are YYYY-MM-DD strings, so lexical order is calendar order.
func (r *TaskRepository) ListInRange(ctx context.Context, userID, startDate, endDate string) ([]model.Task, error) {
	rows, err := r.conn.QueryContext(
		ctx,
		r.conn.Rebind(`SELECT `+taskColumns+`
		 FROM tasks
		 WHERE user_id = ? AND task_date >= ? AND task_date <= ?
		 ORDER BY task_date ASC, sort_order ASC`),
		userID,
		startDate,
		endDate,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks in range: %w", err)
	}
	return collectTasks(rows)
}

func (r *TaskRepository) CountByDate(ctx context.Context, userID, date string) (int, error) {
	var count int
	if err := r.conn.QueryRowContext(
		ctx,
		r.conn.Rebind(`SELECT COUNT(1) FROM tasks WHERE user_id = ? AND task_date = ?`),
		userID,
		date,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count tasks by date: %w", err)
	}
	return count, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if _, err := r.conn.ExecContext(ctx, r.conn.Rebind(`INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`), taskArgs(task)...); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// CreateFromRule inserts a rule-spawned task unless the unique
// (user, date, title) index for rule-spawned tasks already holds one. It
// reports whether this call inserted the row.
func (r *TaskRepository) CreateFromRule(ctx context.Context, task *model.Task) (bool, error) {
	result, err := r.conn.ExecContext(ctx, r.conn.Rebind(`INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`), taskArgs(task)...)
	if err != nil {
		return false, fmt.Errorf("create task from rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create task from rule rows: %w", err)
	}
	return affected > 0, nil
}

// GetRuleInstance finds the rule-spawned task for (user, date, title).
func (r *TaskRepository) GetRuleInstance(ctx context.Context, userID, date, title string) (*model.Task, error) {
	row := r.conn.QueryRowContext(
		ctx,
		r.conn.Rebind(`SELECT `+taskColumns+`
		 FROM tasks
		 WHERE user_id = ? AND task_date = ? AND title = ? AND recurring_task_id IS NOT NULL`),
		userID,
		date,
		title,
	)
	return scanTask(row)
}

func (r *TaskRepository) GetByID(ctx context.Context, userID, id string) (*model.Task, error) {
	return r.getByID(ctx, r.conn, userID, id)
}

func (r *TaskRepository) GetByIDTx(ctx context.Context, tx *sql.Tx, userID, id string) (*model.Task, error) {
	return r.getByID(ctx, tx, userID, id)
}

func (r *TaskRepository) getByID(ctx context.Context, q querier, userID, id string) (*model.Task, error) {
	row := q.QueryRowContext(
		ctx,
		r.conn.Rebind(`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`),
		id,
		userID,
	)
	return scanTask(row)
}

func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	_, err := r.conn.ExecContext(
		ctx,
		r.conn.Rebind(`UPDATE tasks
		 SET title = ?,
		     description = ?,
		     task_date = ?,
		     start_time = ?,
		     end_time = ?,
		     priority = ?,
		     pomodoros_total = ?,
		     goal_id = ?,
		     status = ?,
		     updated_at = ?
		 WHERE id = ? AND user_id = ?`),
		task.Title,
		nullableString(task.Description),
		task.Date,
		nullableString(task.StartTime),
		nullableString(task.EndTime),
		task.Priority,
		task.PomodorosTotal,
		nullableString(task.GoalID),
		task.Status,
		formatTime(task.UpdatedAt),
		task.ID,
		task.UserID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, userID, id, status string, now time.Time) (int64, error) {
	result, err := r.conn.ExecContext(
		ctx,
		r.conn.Rebind(`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ? AND user_id = ?`),
		status,
		formatTime(now),
		id,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("update task status: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update task status rows: %w", err)
	}
	return count, nil
}

// IncrementProgressTx adds one completed pomodoro unless the task is already
// at its total, flipping the status to DONE when the total is reached. It
// reports whether the counter moved.
func (r *TaskRepository) IncrementProgressTx(ctx context.Context, tx *sql.Tx, id string, now time.Time) (bool, error) {
	result, err := tx.ExecContext(
		ctx,
		r.conn.Rebind(`UPDATE tasks
		 SET pomodoros_completed = pomodoros_completed + 1,
		     status = CASE
		         WHEN pomodoros_completed + 1 >= pomodoros_total THEN 'DONE'
		         ELSE status
		     END,
		     updated_at = ?
		 WHERE id = ? AND pomodoros_completed < pomodoros_total`),
		formatTime(now),
		id,
	)
	if err != nil {
		return false, fmt.Errorf("increment task progress: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("increment task progress rows: %w", err)
	}
	return affected > 0, nil
}

// Reorder assigns order = position for every id owned by userID; foreign
// ids are skipped by the ownership filter.
func (r *TaskRepository) Reorder(ctx context.Context, userID string, taskIDs []string, now time.Time) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt := r.conn.Rebind(`UPDATE tasks SET sort_order = ?, updated_at = ? WHERE id = ? AND user_id = ?`)
	for index, id := range taskIDs {
		if _, err := tx.ExecContext(ctx, stmt, index, formatTime(now), id, userID); err != nil {
			return fmt.Errorf("reorder task %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, id string) (int64, error) {
	result, err := r.conn.ExecContext(
		ctx,
		r.conn.Rebind(`DELETE FROM tasks WHERE id = ? AND user_id = ?`),
		id,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete task: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete task rows: %w", err)
	}
	return count, nil
}

// BackfillCandidate is a task whose completed pomodoro count exceeds the
// number of focus sessions recorded for it.
type BackfillCandidate struct {
	Task         model.Task
	SessionCount int
}

func (r *TaskRepository) ListBackfillCandidates(ctx context.Context) ([]BackfillCandidate, error) {
	rows, err := r.conn.QueryContext(ctx, `SELECT `+prefixed("t.", taskColumns)+`,
		(SELECT COUNT(1) FROM focus_sessions fs WHERE fs.task_id = t.id) AS session_count
		FROM tasks t
		WHERE t.pomodoros_completed > 0
		ORDER BY t.task_date ASC`)
	if err != nil {
		return nil, fmt.Errorf("list backfill candidates: %w", err)
	}
	defer rows.Close()

	candidates := make([]BackfillCandidate, 0)
	for rows.Next() {
		var count int
		task, scanErr := scanTaskWith(rows, &count)
		if scanErr != nil {
			return nil, scanErr
		}
		if task.PomodorosCompleted > count {
			candidates = append(candidates, BackfillCandidate{Task: *task, SessionCount: count})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate backfill candidates: %w", err)
	}
	return candidates, nil
}

func taskArgs(task *model.Task) []interface{} {
	return []interface{}{
		task.ID,
		task.UserID,
		task.Title,
		nullableString(task.Description),
		task.Date,
		nullableString(task.StartTime),
		nullableString(task.EndTime),
		task.Status,
		task.Priority,
		task.PomodorosTotal,
		task.PomodorosCompleted,
		task.Order,
		nullableString(task.GoalID),
		nullableString(task.RecurringTaskID),
		formatTime(task.CreatedAt),
		formatTime(task.UpdatedAt),
	}
}

func collectTasks(rows *sql.Rows) ([]model.Task, error) {
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func scanTask(s scanner) (*model.Task, error) {
	return scanTaskWith(s)
}

func scanTaskWith(s scanner, extra ...interface{}) (*model.Task, error) {
	task := model.Task{}
	var description, startTime, endTime, goalID, recurringTaskID sql.NullString
	var createdAt, updatedAt string

	dest := []interface{}{
		&task.ID,
		&task.UserID,
		&task.Title,
		&description,
		&task.Date,
		&startTime,
		&endTime,
		&task.Status,
		&task.Priority,
		&task.PomodorosTotal,
		&task.PomodorosCompleted,
		&task.Order,
		&goalID,
		&recurringTaskID,
		&createdAt,
		&updatedAt,
	}
	dest = append(dest, extra...)

	if err := s.Scan(dest...); err != nil {
		return nil, notFoundOr(err, fmt.Errorf("scan task: %w", err))
	}

	task.Description = stringPtr(description)
	task.StartTime = stringPtr(startTime)
	task.EndTime = stringPtr(endTime)
	task.GoalID = stringPtr(goalID)
	task.RecurringTaskID = stringPtr(recurringTaskID)

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse task created_at: %w", err)
	}
	parsedUpdatedAt, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse task updated_at: %w", err)
	}
	task.CreatedAt = parsedCreatedAt
	task.UpdatedAt = parsedUpdatedAt

	return &task, nil
}
