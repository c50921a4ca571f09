package storage

import (
	"context"
	"database/sql"
	"fmt"

	"centavo/internal/core"

	"github.com/google/uuid"
)

const categoryColumns = `id, user_id, name, icon, color, type, is_system, monthly_limit_cents, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (core.Category, error) {
	var (
		c      core.Category
		userID sql.NullString
		limit  sql.NullInt64
		typ    string
	)
	err := row.Scan(&c.ID, &userID, &c.Name, &c.Icon, &c.Color, &typ, &c.IsSystem, &limit, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return core.Category{}, err
	}
	c.UserID = stringPtr(userID)
	c.Type = core.TransactionType(typ)
	c.MonthlyLimit = moneyPtr(limit)
	return c, nil
}

// ListCategories returns the system categories followed by the user's own,
// each group ordered by name. A nil typ returns both types.
func (r *SQLiteRepository) ListCategories(ctx context.Context, userID string, typ *core.TransactionType) ([]core.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE (user_id IS NULL OR user_id = ?)`
	args := []any{userID}
	if typ != nil {
		query += ` AND type = ?`
		args = append(args, string(*typ))
	}
	query += ` ORDER BY is_system DESC, name COLLATE NOCASE ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountUserCategories counts categories the user owns of the given type.
func (r *SQLiteRepository) CountUserCategories(ctx context.Context, userID string, typ core.TransactionType) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE user_id = ? AND type = ?`, userID, string(typ)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err != nil {
		return core.Category{}, mapError(err)
	}
	return c, nil
}

// CreateCategory inserts a user category. A duplicate (user, name, type)
// yields core.ErrConflict.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Icon == "" {
		c.Icon = core.DefaultCategoryIcon
	}
	if c.Color == "" {
		c.Color = core.DefaultCategoryColor
	}
	ts := now()
	c.CreatedAt, c.UpdatedAt = ts, ts

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, nullString(c.UserID), c.Name, c.Icon, c.Color, string(c.Type), c.IsSystem,
		nullMoney(c.MonthlyLimit), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", mapError(err))
	}
	return c, nil
}

// UpdateCategory stores name, icon, color and monthly limit.
func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.UpdatedAt = now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, icon = ?, color = ?, monthly_limit_cents = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.Icon, c.Color, nullMoney(c.MonthlyLimit), c.UpdatedAt, c.ID)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", mapError(err))
	}
	if err := expectAffected(res); err != nil {
		return core.Category{}, err
	}
	return r.GetCategory(ctx, c.ID)
}

// DeleteCategory removes the category. Referencing transactions keep their
// rows with category_id set to NULL.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", mapError(err))
	}
	return expectAffected(res)
}
