package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"centavo/internal/core"

	"github.com/google/uuid"
)

const userColumns = `id, telegram_id, email, password_hash, display_name, default_currency, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (core.User, error) {
	var (
		u        core.User
		tgID     sql.NullInt64
		email    sql.NullString
		password sql.NullString
	)
	err := row.Scan(&u.ID, &tgID, &email, &password, &u.DisplayName, &u.DefaultCurrency, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return core.User{}, err
	}
	u.TelegramID = int64Ptr(tgID)
	u.Email = stringPtr(email)
	u.PasswordHash = password.String
	return u, nil
}

// CreateUser inserts u, assigning ID and timestamps. Emails are stored
// lowercased.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.DefaultCurrency == "" {
		u.DefaultCurrency = core.DefaultCurrency
	}
	if u.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*u.Email))
		u.Email = &e
	}
	ts := now()
	u.CreatedAt, u.UpdatedAt = ts, ts

	var password sql.NullString
	if u.PasswordHash != "" {
		password = sql.NullString{String: u.PasswordHash, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, nullInt64(u.TelegramID), nullString(u.Email), password,
		u.DisplayName, u.DefaultCurrency, u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", mapError(err))
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (core.User, error) {
	return r.getUser(ctx, `id = ?`, id)
}

// GetUserByEmail matches case-insensitively.
func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.getUser(ctx, `email = ?`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *SQLiteRepository) GetUserByTelegramID(ctx context.Context, telegramID int64) (core.User, error) {
	return r.getUser(ctx, `telegram_id = ?`, telegramID)
}

func (r *SQLiteRepository) getUser(ctx context.Context, where string, arg any) (core.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	u, err := scanUser(row)
	if err != nil {
		return core.User{}, mapError(err)
	}
	return u, nil
}

// UpdateUser stores display name, currency and active flag.
func (r *SQLiteRepository) UpdateUser(ctx context.Context, u core.User) (core.User, error) {
	u.UpdatedAt = now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET display_name = ?, default_currency = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		u.DisplayName, u.DefaultCurrency, u.IsActive, u.UpdatedAt, u.ID)
	if err != nil {
		return core.User{}, fmt.Errorf("update user: %w", mapError(err))
	}
	if err := expectAffected(res); err != nil {
		return core.User{}, err
	}
	return r.GetUserByID(ctx, u.ID)
}

// SetTelegramID binds telegramID to the user. It fails with ErrConflict when
// another user already holds the identity.
func (r *SQLiteRepository) SetTelegramID(ctx context.Context, userID string, telegramID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET telegram_id = ?, updated_at = ? WHERE id = ?`,
		telegramID, now(), userID)
	if err != nil {
		return fmt.Errorf("set telegram id: %w", mapError(err))
	}
	return expectAffected(res)
}

// DeleteUser removes the user. Categories, transactions and recurring
// templates cascade.
func (r *SQLiteRepository) DeleteUser(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", mapError(err))
	}
	return expectAffected(res)
}
