package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"centavo/internal/core"

	"github.com/google/uuid"
)

// TransactionFilter narrows ListTransactions and CountTransactions. Zero
// fields are ignored.
type TransactionFilter struct {
	UserID     string
	Type       core.TransactionType
	CategoryID string
	Start      core.Date
	End        core.Date
}

func (f TransactionFilter) where() (string, []any) {
	clauses := []string{"t.user_id = ?"}
	args := []any{f.UserID}
	if f.Type != "" {
		clauses = append(clauses, "t.type = ?")
		args = append(args, string(f.Type))
	}
	if f.CategoryID != "" {
		clauses = append(clauses, "t.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if !f.Start.IsZero() {
		clauses = append(clauses, "t.transaction_date >= ?")
		args = append(args, f.Start.String())
	}
	if !f.End.IsZero() {
		clauses = append(clauses, "t.transaction_date <= ?")
		args = append(args, f.End.String())
	}
	return strings.Join(clauses, " AND "), args
}

const transactionSelect = `
	SELECT t.id, t.user_id, t.category_id, COALESCE(c.name, ''), t.type, t.amount_cents,
	       t.currency, t.description, t.raw_message, t.transaction_date, t.created_at, t.updated_at
	FROM transactions t
	LEFT JOIN categories c ON c.id = t.category_id`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t          core.Transaction
		categoryID sql.NullString
		raw        sql.NullString
		typ        string
		date       string
	)
	err := row.Scan(&t.ID, &t.UserID, &categoryID, &t.CategoryName, &typ, &t.Amount.Cents,
		&t.Currency, &t.Description, &raw, &date, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.CategoryID = stringPtr(categoryID)
	t.RawMessage = stringPtr(raw)
	t.Type = core.TransactionType(typ)
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", date, err)
	}
	t.Date = d
	return t, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	return createTransaction(ctx, r.db, t)
}

func createTransaction(ctx context.Context, q querier, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	ts := now()
	t.CreatedAt, t.UpdatedAt = ts, ts

	_, err := q.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, category_id, type, amount_cents, currency,
			description, raw_message, transaction_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, nullString(t.CategoryID), string(t.Type), t.Amount.Cents, t.Currency,
		t.Description, nullString(t.RawMessage), t.Date.String(), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", mapError(err))
	}
	return t, nil
}

// GetTransaction returns the transaction with its category name resolved.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, transactionSelect+` WHERE t.id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, mapError(err)
	}
	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET category_id = ?, type = ?, amount_cents = ?, currency = ?,
			description = ?, transaction_date = ?, updated_at = ?
		WHERE id = ?`,
		nullString(t.CategoryID), string(t.Type), t.Amount.Cents, t.Currency,
		t.Description, t.Date.String(), now(), t.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", mapError(err))
	}
	if err := expectAffected(res); err != nil {
		return core.Transaction{}, err
	}
	return r.GetTransaction(ctx, t.ID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", mapError(err))
	}
	return expectAffected(res)
}

// ListTransactions returns a page of matches, newest date first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, f TransactionFilter, offset, limit int) ([]core.Transaction, error) {
	where, args := f.where()
	query := transactionSelect + ` WHERE ` + where +
		` ORDER BY t.transaction_date DESC, t.created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	return r.queryTransactions(ctx, query, args...)
}

func (r *SQLiteRepository) CountTransactions(ctx context.Context, f TransactionFilter) (int, error) {
	where, args := f.where()
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions t WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// TransactionsBetween returns every transaction of the user dated within
// [start, end].
func (r *SQLiteRepository) TransactionsBetween(ctx context.Context, userID string, start, end core.Date) ([]core.Transaction, error) {
	return r.queryTransactions(ctx, transactionSelect+`
		WHERE t.user_id = ? AND t.transaction_date >= ? AND t.transaction_date <= ?
		ORDER BY t.transaction_date DESC, t.created_at DESC`,
		userID, start.String(), end.String())
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
