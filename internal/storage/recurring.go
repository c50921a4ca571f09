package storage

import (
	"context"
	"database/sql"
	"fmt"

	"centavo/internal/core"

	"github.com/google/uuid"
)

const recurringColumns = `id, user_id, name, amount_cents, currency, category_id, type, frequency,
	day_of_month, start_date, is_active, auto_post, last_posted_on, created_at, updated_at`

func scanRecurring(row interface{ Scan(...any) error }) (core.RecurringTransaction, error) {
	var (
		rt         core.RecurringTransaction
		categoryID sql.NullString
		lastPosted sql.NullString
		typ, freq  string
		start      string
	)
	err := row.Scan(&rt.ID, &rt.UserID, &rt.Name, &rt.Amount.Cents, &rt.Currency, &categoryID, &typ, &freq,
		&rt.DayOfMonth, &start, &rt.IsActive, &rt.AutoPost, &lastPosted, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return core.RecurringTransaction{}, err
	}
	rt.CategoryID = stringPtr(categoryID)
	rt.Type = core.TransactionType(typ)
	rt.Frequency = core.Frequency(freq)
	if rt.StartDate, err = core.ParseDate(start); err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("parse start date %q: %w", start, err)
	}
	if rt.LastPostedOn, err = datePtr(lastPosted); err != nil {
		return core.RecurringTransaction{}, err
	}
	return rt, nil
}

func (r *SQLiteRepository) CreateRecurring(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	if rt.ID == "" {
		rt.ID = uuid.NewString()
	}
	if rt.Frequency == "" {
		rt.Frequency = core.Monthly
	}
	ts := now()
	rt.CreatedAt, rt.UpdatedAt = ts, ts

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_transactions (`+recurringColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rt.ID, rt.UserID, rt.Name, rt.Amount.Cents, rt.Currency, nullString(rt.CategoryID),
		string(rt.Type), string(rt.Frequency), rt.DayOfMonth, rt.StartDate.String(),
		rt.IsActive, rt.AutoPost, nullDate(rt.LastPostedOn), rt.CreatedAt, rt.UpdatedAt)
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("create recurring: %w", mapError(err))
	}
	return rt, nil
}

func (r *SQLiteRepository) GetRecurring(ctx context.Context, id string) (core.RecurringTransaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recurringColumns+` FROM recurring_transactions WHERE id = ?`, id)
	rt, err := scanRecurring(row)
	if err != nil {
		return core.RecurringTransaction{}, mapError(err)
	}
	return rt, nil
}

// ListRecurring returns the user's templates ordered by day of month, then
// name.
func (r *SQLiteRepository) ListRecurring(ctx context.Context, userID string) ([]core.RecurringTransaction, error) {
	return r.queryRecurring(ctx, `SELECT `+recurringColumns+` FROM recurring_transactions
		WHERE user_id = ? ORDER BY day_of_month ASC, name ASC`, userID)
}

// ListActiveAutoPost returns every active template flagged for automatic
// posting, across all users.
func (r *SQLiteRepository) ListActiveAutoPost(ctx context.Context) ([]core.RecurringTransaction, error) {
	return r.queryRecurring(ctx, `SELECT `+recurringColumns+` FROM recurring_transactions
		WHERE is_active = 1 AND auto_post = 1 ORDER BY user_id, day_of_month`)
}

func (r *SQLiteRepository) queryRecurring(ctx context.Context, query string, args ...any) ([]core.RecurringTransaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recurring: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringTransaction
	for rows.Next() {
		rt, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring: %w", err)
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateRecurring(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recurring_transactions SET name = ?, amount_cents = ?, currency = ?, category_id = ?,
			type = ?, frequency = ?, day_of_month = ?, start_date = ?, is_active = ?, auto_post = ?,
			updated_at = ?
		WHERE id = ?`,
		rt.Name, rt.Amount.Cents, rt.Currency, nullString(rt.CategoryID), string(rt.Type),
		string(rt.Frequency), rt.DayOfMonth, rt.StartDate.String(), rt.IsActive, rt.AutoPost,
		now(), rt.ID)
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("update recurring: %w", mapError(err))
	}
	if err := expectAffected(res); err != nil {
		return core.RecurringTransaction{}, err
	}
	return r.GetRecurring(ctx, rt.ID)
}

func (r *SQLiteRepository) DeleteRecurring(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recurring: %w", mapError(err))
	}
	return expectAffected(res)
}

// MarkRecurringPosted records the date the template last produced a
// transaction.
func (r *SQLiteRepository) MarkRecurringPosted(ctx context.Context, id string, on core.Date) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_transactions SET last_posted_on = ?, updated_at = ? WHERE id = ?`,
		on.String(), now(), id)
	if err != nil {
		return fmt.Errorf("mark recurring posted: %w", err)
	}
	return expectAffected(res)
}
