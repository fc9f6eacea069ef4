package repository

import (
	"context"
	"database/sql"
	"fmt"

	"beproductive/backend/internal/db"
	"beproductive/backend/internal/model"
)

type FocusSessionRepository struct {
	conn *db.Conn
}

func NewFocusSessionRepository(conn *db.Conn) *FocusSessionRepository {
	return &FocusSessionRepository{conn: conn}
}

const focusSessionColumns = `id, task_id, start_time, end_time, interruption_reason, created_at`

func (r *FocusSessionRepository) Insert(ctx context.Context, session *model.FocusSession) error {
	return r.insert(ctx, r.conn, session)
}

func (r *FocusSessionRepository) InsertTx(ctx context.Context, tx *sql.Tx, session *model.FocusSession) error {
	return r.insert(ctx, tx, session)
}

func (r *FocusSessionRepository) insert(ctx context.Context, q querier, session *model.FocusSession) error {
	_, err := q.ExecContext(
		ctx,
		r.conn.Rebind(`INSERT INTO focus_sessions (`+focusSessionColumns+`) VALUES (?, ?, ?, ?, ?, ?)`),
		session.ID,
		session.TaskID,
		formatTime(session.StartTime),
		nullableTime(session.EndTime),
		nullableString(session.InterruptionReason),
		formatTime(session.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert focus session: %w", err)
	}
	return nil
}

func (r *FocusSessionRepository) ListByTask(ctx context.Context, taskID string) ([]model.FocusSession, error) {
	rows, err := r.conn.QueryContext(
		ctx,
		r.conn.Rebind(`SELECT `+focusSessionColumns+`
		 FROM focus_sessions
		 WHERE task_id = ?
		 ORDER BY start_time DESC`),
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("list focus sessions: %w", err)
	}
	return collectFocusSessions(rows)
}

// ListByTaskDateRange returns the sessions of every task owned by userID
// whose date lies in [startDate, endDate].
func (r *FocusSessionRepository) ListByTaskDateRange(ctx context.Context, userID, startDate, endDate string) ([]model.FocusSession, error) {
	rows, err := r.conn.QueryContext(
		ctx,
		r.conn.Rebind(`SELECT `+prefixed("fs.", focusSessionColumns)+`
		 FROM focus_sessions fs
		 JOIN tasks t ON t.id = fs.task_id
		 WHERE t.user_id = ? AND t.task_date >= ? AND t.task_date <= ?
		 ORDER BY fs.start_time ASC`),
		userID,
		startDate,
		endDate,
	)
	if err != nil {
		return nil, fmt.Errorf("list focus sessions in range: %w", err)
	}
	return collectFocusSessions(rows)
}

func collectFocusSessions(rows *sql.Rows) ([]model.FocusSession, error) {
	defer rows.Close()

	sessions := make([]model.FocusSession, 0)
	for rows.Next() {
		session, err := scanFocusSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate focus sessions: %w", err)
	}
	return sessions, nil
}

func scanFocusSession(s scanner) (*model.FocusSession, error) {
	session := model.FocusSession{}
	var startTime string
	var endTime sql.NullString
	var reason sql.NullString
	var createdAt string
	if err := s.Scan(
		&session.ID,
		&session.TaskID,
		&startTime,
		&endTime,
		&reason,
		&createdAt,
	); err != nil {
		return nil, notFoundOr(err, fmt.Errorf("scan focus session: %w", err))
	}

	parsedStart, err := parseTime(startTime)
	if err != nil {
		return nil, fmt.Errorf("parse focus session start_time: %w", err)
	}
	session.StartTime = parsedStart

	session.EndTime, err = timePtr(endTime)
	if err != nil {
		return nil, fmt.Errorf("parse focus session end_time: %w", err)
	}
	session.InterruptionReason = stringPtr(reason)

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse focus session created_at: %w", err)
	}
	session.CreatedAt = parsedCreatedAt

	return &session, nil
}
