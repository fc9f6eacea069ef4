package repository

import (
	"context"
	"fmt"

	"beproductive/backend/internal/db"
	"beproductive/backend/internal/model"
)

type UserRepository struct {
	conn *db.Conn
}

func NewUserRepository(conn *db.Conn) *UserRepository {
	return &UserRepository{conn: conn}
}

const userColumns = `id, email, password_hash, name, timezone, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	_, err := r.conn.ExecContext(
		ctx,
		r.conn.Rebind(`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Timezone,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.conn.QueryRowContext(
		ctx,
		r.conn.Rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`),
		email,
	)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := r.conn.QueryRowContext(
		ctx,
		r.conn.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`),
		id,
	)
	return scanUser(row)
}

func scanUser(s scanner) (*model.User, error) {
	var user model.User
	var createdAt string
	var updatedAt string
	if err := s.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Timezone,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, notFoundOr(err, fmt.Errorf("scan user: %w", err))
	}

	parsedCreatedAt, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse user created_at: %w", err)
	}
	parsedUpdatedAt, err := parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse user updated_at: %w", err)
	}
	user.CreatedAt = parsedCreatedAt
	user.UpdatedAt = parsedUpdatedAt

	return &user, nil
}
