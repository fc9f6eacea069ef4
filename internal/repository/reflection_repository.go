package repository

import (
	"context"
	"database/sql"
	"fmt"

	"beproductive/backend/internal/db"
	"beproductive/backend/internal/model"
)

type ReflectionRepository struct {
	conn *db.Conn
}

func NewReflectionRepository(conn *db.Conn) *ReflectionRepository {
	return &ReflectionRepository{conn: conn}
}

const reflectionColumns = `id, user_id, week_start_date, went_well, to_improve, accomplishments, challenges, created_at, updated_at`

func (r *ReflectionRepository) GetByWeek(ctx context.Context, userID, weekStartDate string) (*model.Reflection, error) {
	row := r.conn.QueryRowContext(
		ctx,
		r.conn.Rebind(`SELECT `+reflectionColumns+` FROM reflections WHERE user_id = ? AND week_start_date = ?`),
		userID,
		weekStartDate,
	)
	return scanReflection(row)
}

func (r *ReflectionRepository) ListRecent(ctx context.Context, userID string, limit int) ([]model.Reflection, error) {
	rows, err := r.conn.QueryContext(
		ctx,
		r.conn.Rebind(`SELECT `+reflectionColumns+` FROM reflections
		 WHERE user_id = ?
		 ORDER BY week_start_date DESC
		 LIMIT ?`),
		userID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list reflections: %w", err)
	}
	defer rows.Close()

	reflections := make([]model.Reflection, 0)
	for rows.Next() {
		reflection, err := scanReflection(rows)
		if err != nil {
			return nil, err
		}
		reflections = append(reflections, *reflection)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reflections: %w", err)
	}
	return reflections, nil
}

// Upsert writes the reflection for (user, week). An existing row keeps its
// id and created_at; the returned value is re-read from storage.
func (r *ReflectionRepository) Upsert(ctx context.Context, reflection *model.Reflection) (*model.Reflection, error) {
	_, err := r.conn.ExecContext(
		ctx,
		r.conn.Rebind(`INSERT INTO reflections (`+reflectionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, week_start_date) DO UPDATE
		 SET went_well = excluded.went_well,
		     to_improve = excluded.to_improve,
		     accomplishments = excluded.accomplishments,
		     challenges = excluded.challenges,
		     updated_at = excluded.updated_at`),
		reflection.ID,
		reflection.UserID,
		reflection.WeekStartDate,
		nullableString(reflection.WentWell),
		nullableString(reflection.ToImprove),
		nullableString(reflection.Accomplishments),
		nullableString(reflection.Challenges),
		formatTime(reflection.CreatedAt),
		formatTime(reflection.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert reflection: %w", err)
	}
	return r.GetByWeek(ctx, reflection.UserID, reflection.WeekStartDate)
}

func scanReflection(s scanner) (*model.Reflection, error) {
	reflection := model.Reflection{}
	var wentWell, toImprove, accomplishments, challenges sql.NullString
	var createdAt, updatedAt string
	if err := s.Scan(
		&reflection.ID,
		&reflection.UserID,
		&reflection.WeekStartDate,
		&wentWell,
		&toImprove,
		&accomplishments,
		&challenges,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, notFoundOr(err, fmt.Errorf("scan reflection: %w", err))
	}
	reflection.WentWell = stringPtr(wentWell)
	reflection.ToImprove = stringPtr(toImprove)
	reflection.Accomplishments = stringPtr(accomplishments)
	reflection.Challenges = stringPtr(challenges)

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse reflection created_at: %w", err)
	}
	parsedUpdatedAt, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse reflection updated_at: %w", err)
	}
	reflection.CreatedAt = parsedCreatedAt
	reflection.UpdatedAt = parsedUpdatedAt
	return &reflection, nil
}
