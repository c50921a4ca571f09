package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// MergeUsers folds the shadow account into the target and binds telegramID
// to the target, all in one transaction. Shadow categories whose (name,
// type) already exists on the target are collapsed into the target's
// category.
func (r *SQLiteRepository) MergeUsers(ctx context.Context, shadowID, targetID string, telegramID int64) error {
	if shadowID == targetID {
		return fmt.Errorf("merge users: shadow and target are the same user")
	}
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if err := mergeCategories(ctx, tx, shadowID, targetID); err != nil {
			return err
		}

		ts := now()
		if _, err := tx.ExecContext(ctx,
			`UPDATE transactions SET user_id = ?, updated_at = ? WHERE user_id = ?`,
			targetID, ts, shadowID); err != nil {
			return fmt.Errorf("move transactions: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE recurring_transactions SET user_id = ?, updated_at = ? WHERE user_id = ?`,
			targetID, ts, shadowID); err != nil {
			return fmt.Errorf("move recurring: %w", err)
		}

		// The shadow holds the identity, so it goes before the rebind.
		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, shadowID); err != nil {
			return fmt.Errorf("delete shadow user: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE users SET telegram_id = ?, updated_at = ? WHERE id = ?`,
			telegramID, ts, targetID)
		if err != nil {
			return fmt.Errorf("bind telegram id: %w", mapError(err))
		}
		return expectAffected(res)
	})
}

func mergeCategories(ctx context.Context, tx *sql.Tx, shadowID, targetID string) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT s.id, t.id
		FROM categories s
		LEFT JOIN categories t ON t.user_id = ? AND t.name = s.name AND t.type = s.type
		WHERE s.user_id = ?`, targetID, shadowID)
	if err != nil {
		return fmt.Errorf("list shadow categories: %w", err)
	}

	type pair struct {
		shadow string
		target sql.NullString
	}
	var pairs []pair
	for rows.Next() {
		var p pair
		if err := rows.Scan(&p.shadow, &p.target); err != nil {
			rows.Close()
			return fmt.Errorf("scan shadow category: %w", err)
		}
		pairs = append(pairs, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	ts := now()
	for _, p := range pairs {
		if !p.target.Valid {
			if _, err := tx.ExecContext(ctx,
				`UPDATE categories SET user_id = ?, updated_at = ? WHERE id = ?`,
				targetID, ts, p.shadow); err != nil {
				return fmt.Errorf("move category: %w", err)
			}
			continue
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE transactions SET category_id = ? WHERE category_id = ?`,
			p.target.String, p.shadow); err != nil {
			return fmt.Errorf("repoint transactions: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE recurring_transactions SET category_id = ? WHERE category_id = ?`,
			p.target.String, p.shadow); err != nil {
			return fmt.Errorf("repoint recurring: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, p.shadow); err != nil {
			return fmt.Errorf("delete duplicate category: %w", err)
		}
	}
	return nil
}

// BindTelegram moves telegramID to userID, clearing it from any other user.
// No data changes hands.
func (r *SQLiteRepository) BindTelegram(ctx context.Context, userID string, telegramID int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		ts := now()
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET telegram_id = NULL, updated_at = ? WHERE telegram_id = ? AND id <> ?`,
			ts, telegramID, userID); err != nil {
			return fmt.Errorf("release telegram id: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE users SET telegram_id = ?, updated_at = ? WHERE id = ?`,
			telegramID, ts, userID)
		if err != nil {
			return fmt.Errorf("bind telegram id: %w", mapError(err))
		}
		return expectAffected(res)
	})
}
