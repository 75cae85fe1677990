// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dabekoe/chain-choice-voting/auth"
	"github.com/dabekoe/chain-choice-voting/db"
	"github.com/dabekoe/chain-choice-voting/models"
)

// CreateAdmin adds an administrator account
func (r *Registry) CreateAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if len(password) < auth.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, auth.MinPasswordLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO admin (username, password_hash, created_at) VALUES ($1, $2, $3)
	`, username, hash, r.now())
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrAdminExists
		}
		return fmt.Errorf("failed to insert admin: %w", err)
	}

	slog.Info("admin created", "username", username)
	return nil
}

// EnsureAdmin creates the admin unless it already exists
func (r *Registry) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	err := r.CreateAdmin(ctx, username, password)
	if errors.Is(err, ErrAdminExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AuthenticateAdmin checks an administrator's password
func (r *Registry) AuthenticateAdmin(ctx context.Context, username, password string) error {
	hash, err := r.adminHash(ctx, strings.TrimSpace(username))
	if errors.Is(err, ErrAdminNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return err
	}
	if auth.CheckPassword(hash, password) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// ChangeAdminPassword replaces the password after checking the current one
func (r *Registry) ChangeAdminPassword(ctx context.Context, username, current, next string) error {
	if len(next) < auth.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, auth.MinPasswordLength)
	}
	if err := r.AuthenticateAdmin(ctx, username, current); err != nil {
		return err
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `UPDATE admin SET password_hash = $1 WHERE username = $2`, hash, username)
	if err != nil {
		return fmt.Errorf("failed to update admin password: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAdminNotFound
	}

	slog.Info("admin password changed", "username", username)
	return nil
}

// ListAdmins returns all administrators ordered by username
func (r *Registry) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT username, created_at FROM admin ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to query admins: %w", err)
	}
	defer rows.Close()

	admins := []models.Admin{}
	for rows.Next() {
		var a models.Admin
		if err := rows.Scan(&a.Username, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

func (r *Registry) adminHash(ctx context.Context, username string) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx, `SELECT password_hash FROM admin WHERE username = $1`, username).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrAdminNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query admin: %w", err)
	}
	return hash, nil
}
