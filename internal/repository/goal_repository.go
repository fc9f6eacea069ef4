package repository

import (
	"context"
	"database/sql"
	"fmt"

	"beproductive/backend/internal/db"
	"beproductive/backend/internal/model"
)

type GoalRepository struct {
	conn *db.Conn
}

func NewGoalRepository(conn *db.Conn) *GoalRepository {
	return &GoalRepository{conn: conn}
}

const goalColumns = `id, user_id, title, description, level, parent_goal_id, created_at, updated_at`

// GoalTaskStats is the per-goal tally of linked tasks.
type GoalTaskStats struct {
	Total int
	Done  int
}

// List returns the user's goals, optionally restricted to one level.
func (r *GoalRepository) List(ctx context.Context, userID, level string) ([]model.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = ?`
	args := []interface{}{userID}
	if level != "" {
		query += ` AND level = ?`
		args = append(args, level)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.conn.QueryContext(ctx, r.conn.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return collectGoals(rows)
}

func (r *GoalRepository) ListChildren(ctx context.Context, userID, parentID string) ([]model.Goal, error) {
	rows, err := r.conn.QueryContext(
		ctx,
		r.conn.Rebind(`SELECT `+goalColumns+` FROM goals
		 WHERE user_id = ? AND parent_goal_id = ?
		 ORDER BY created_at ASC`),
		userID,
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sub goals: %w", err)
	}
	return collectGoals(rows)
}

func (r *GoalRepository) GetByID(ctx context.Context, userID, id string) (*model.Goal, error) {
	row := r.conn.QueryRowContext(
		ctx,
		r.conn.Rebind(`SELECT `+goalColumns+` FROM goals WHERE id = ? AND user_id = ?`),
		id,
		userID,
	)
	return scanGoal(row)
}

func (r *GoalRepository) Create(ctx context.Context, goal *model.Goal) error {
	_, err := r.conn.ExecContext(
		ctx,
		r.conn.Rebind(`INSERT INTO goals (`+goalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		goal.ID,
		goal.UserID,
		goal.Title,
		nullableString(goal.Description),
		goal.Level,
		nullableString(goal.ParentGoalID),
		formatTime(goal.CreatedAt),
		formatTime(goal.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

func (r *GoalRepository) Update(ctx context.Context, goal *model.Goal) error {
	_, err := r.conn.ExecContext(
		ctx,
		r.conn.Rebind(`UPDATE goals
		 SET title = ?, description = ?, level = ?, parent_goal_id = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`),
		goal.Title,
		nullableString(goal.Description),
		goal.Level,
		nullableString(goal.ParentGoalID),
		formatTime(goal.UpdatedAt),
		goal.ID,
		goal.UserID,
	)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return nil
}

func (r *GoalRepository) Delete(ctx context.Context, userID, id string) (int64, error) {
	result, err := r.conn.ExecContext(
		ctx,
		r.conn.Rebind(`DELETE FROM goals WHERE id = ? AND user_id = ?`),
		id,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete goal: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete goal rows: %w", err)
	}
	return count, nil
}

// TaskStats counts linked and completed tasks for every goal of the user
// that has at least one linked task.
func (r *GoalRepository) TaskStats(ctx context.Context, userID string) (map[string]GoalTaskStats, error) {
	rows, err := r.conn.QueryContext(
		ctx,
		r.conn.Rebind(`SELECT goal_id,
		        COUNT(1),
		        SUM(CASE WHEN status = ? THEN 1 ELSE 0 END)
		 FROM tasks
		 WHERE user_id = ? AND goal_id IS NOT NULL
		 GROUP BY goal_id`),
		model.TaskStatusDone,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("goal task stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]GoalTaskStats)
	for rows.Next() {
		var goalID string
		var entry GoalTaskStats
		if err := rows.Scan(&goalID, &entry.Total, &entry.Done); err != nil {
			return nil, fmt.Errorf("scan goal task stats: %w", err)
		}
		stats[goalID] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goal task stats: %w", err)
	}
	return stats, nil
}

func collectGoals(rows *sql.Rows) ([]model.Goal, error) {
	defer rows.Close()

	goals := make([]model.Goal, 0)
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return goals, nil
}

func scanGoal(s scanner) (*model.Goal, error) {
	goal := model.Goal{}
	var description, parentID sql.NullString
	var createdAt, updatedAt string
	if err := s.Scan(
		&goal.ID,
		&goal.UserID,
		&goal.Title,
		&description,
		&goal.Level,
		&parentID,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, notFoundOr(err, fmt.Errorf("scan goal: %w", err))
	}
	goal.Description = stringPtr(description)
	goal.ParentGoalID = stringPtr(parentID)

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse goal created_at: %w", err)
	}
	parsedUpdatedAt, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse goal updated_at: %w", err)
	}
	goal.CreatedAt = parsedCreatedAt
	goal.UpdatedAt = parsedUpdatedAt
	return &goal, nil
}
