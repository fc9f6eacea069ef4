package repository

import (
	"context"
	"database/sql"
	"fmt"

	"beproductive/backend/internal/db"
	"beproductive/backend/internal/model"
)

type RecurringTaskRepository struct {
	conn *db.Conn
}

func NewRecurringTaskRepository(conn *db.Conn) *RecurringTaskRepository {
	return &RecurringTaskRepository{conn: conn}
}

const recurringTaskColumns = `id, user_id, title, description, recurrence_pattern, days_of_week,
	start_time, end_time, priority, pomodoros_total, goal_id, is_active, created_at, updated_at`

const recurringTaskSelect = `SELECT ` + `r.id, r.user_id, r.title, r.description, r.recurrence_pattern, r.days_of_week,
	r.start_time, r.end_time, r.priority, r.pomodoros_total, r.goal_id, r.is_active, r.created_at, r.updated_at,
	g.id, g.title, g.level
	FROM recurring_tasks r
	LEFT JOIN goals g ON g.id = r.goal_id`

func (r *RecurringTaskRepository) List(ctx context.Context, userID string) ([]model.RecurringTask, error) {
	rows, err := r.conn.QueryContext(
		ctx,
		r.conn.Rebind(recurringTaskSelect+` WHERE r.user_id = ? ORDER BY r.created_at DESC`),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list recurring tasks: %w", err)
	}
	return collectRecurringTasks(rows)
}

// ListActive returns active rules in creation order, which is the order the
// expander materialises them in.
func (r *RecurringTaskRepository) ListActive(ctx context.Context, userID string) ([]model.RecurringTask, error) {
	rows, err := r.conn.QueryContext(
		ctx,
		r.conn.Rebind(recurringTaskSelect+` WHERE r.user_id = ? AND r.is_active = 1 ORDER BY r.created_at ASC, r.id ASC`),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list active recurring tasks: %w", err)
	}
	return collectRecurringTasks(rows)
}

func (r *RecurringTaskRepository) GetByID(ctx context.Context, userID, id string) (*model.RecurringTask, error) {
	row := r.conn.QueryRowContext(
		ctx,
		r.conn.Rebind(recurringTaskSelect+` WHERE r.id = ? AND r.user_id = ?`),
		id,
		userID,
	)
	return scanRecurringTask(row)
}

func (r *RecurringTaskRepository) Create(ctx context.Context, rule *model.RecurringTask) error {
	_, err := r.conn.ExecContext(
		ctx,
		r.conn.Rebind(`INSERT INTO recurring_tasks (`+recurringTaskColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		rule.ID,
		rule.UserID,
		rule.Title,
		nullableString(rule.Description),
		rule.RecurrencePattern,
		nullableString(rule.DaysOfWeek),
		nullableString(rule.StartTime),
		nullableString(rule.EndTime),
		rule.Priority,
		rule.PomodorosTotal,
		nullableString(rule.GoalID),
		boolToInt(rule.IsActive),
		formatTime(rule.CreatedAt),
		formatTime(rule.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create recurring task: %w", err)
	}
	return nil
}

func (r *RecurringTaskRepository) Update(ctx context.Context, rule *model.RecurringTask) error {
	_, err := r.conn.ExecContext(
		ctx,
		r.conn.Rebind(`UPDATE recurring_tasks
		 SET title = ?,
		     description = ?,
		     recurrence_pattern = ?,
		     days_of_week = ?,
		     start_time = ?,
		     end_time = ?,
		     priority = ?,
		     pomodoros_total = ?,
		     goal_id = ?,
		     is_active = ?,
		     updated_at = ?
		 WHERE id = ? AND user_id = ?`),
		rule.Title,
		nullableString(rule.Description),
		rule.RecurrencePattern,
		nullableString(rule.DaysOfWeek),
		nullableString(rule.StartTime),
		nullableString(rule.EndTime),
		rule.Priority,
		rule.PomodorosTotal,
		nullableString(rule.GoalID),
		boolToInt(rule.IsActive),
		formatTime(rule.UpdatedAt),
		rule.ID,
		rule.UserID,
	)
	if err != nil {
		return fmt.Errorf("update recurring task: %w", err)
	}
	return nil
}

func (r *RecurringTaskRepository) Delete(ctx context.Context, userID, id string) (int64, error) {
	result, err := r.conn.ExecContext(
		ctx,
		r.conn.Rebind(`DELETE FROM recurring_tasks WHERE id = ? AND user_id = ?`),
		id,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete recurring task: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete recurring task rows: %w", err)
	}
	return count, nil
}

func collectRecurringTasks(rows *sql.Rows) ([]model.RecurringTask, error) {
	defer rows.Close()

	rules := make([]model.RecurringTask, 0)
	for rows.Next() {
		rule, err := scanRecurringTask(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurring tasks: %w", err)
	}
	return rules, nil
}

func scanRecurringTask(s scanner) (*model.RecurringTask, error) {
	rule := model.RecurringTask{}
	var description, daysOfWeek, startTime, endTime, goalID sql.NullString
	var goalRefID, goalTitle, goalLevel sql.NullString
	var isActive int
	var createdAt, updatedAt string

	if err := s.Scan(
		&rule.ID,
		&rule.UserID,
		&rule.Title,
		&description,
		&rule.RecurrencePattern,
		&daysOfWeek,
		&startTime,
		&endTime,
		&rule.Priority,
		&rule.PomodorosTotal,
		&goalID,
		&isActive,
		&createdAt,
		&updatedAt,
		&goalRefID,
		&goalTitle,
		&goalLevel,
	); err != nil {
		return nil, notFoundOr(err, fmt.Errorf("scan recurring task: %w", err))
	}

	rule.Description = stringPtr(description)
	rule.DaysOfWeek = stringPtr(daysOfWeek)
	rule.StartTime = stringPtr(startTime)
	rule.EndTime = stringPtr(endTime)
	rule.GoalID = stringPtr(goalID)
	rule.IsActive = isActive != 0
	if goalRefID.Valid {
		rule.Goal = &model.GoalSummary{
			ID:    goalRefID.String,
			Title: goalTitle.String,
			Level: goalLevel.String,
		}
	}

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse recurring task created_at: %w", err)
	}
	parsedUpdatedAt, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse recurring task updated_at: %w", err)
	}
	rule.CreatedAt = parsedCreatedAt
	rule.UpdatedAt = parsedUpdatedAt

	return &rule, nil
}
