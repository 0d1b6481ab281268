package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

const categoryColumns = `c.id, c.user_id, c.name, c.type, c.color, c.icon, c.created_at, c.updated_at,
	       COUNT(t.id) AS usage_count`

// ListCategories returns the user's categories ordered by type then name,
// each annotated with the number of transactions referencing it.
func (r *Repository) ListCategories(ctx context.Context, userID string, typ *core.TransactionType) ([]core.Category, error) {
	query := `SELECT ` + categoryColumns + `
		FROM categories c
		LEFT JOIN transactions t ON t.category_id = c.id
		WHERE c.user_id = ?`
	args := []any{userID}
	if typ != nil {
		query += ` AND c.type = ?`
		args = append(args, string(*typ))
	}
	query += ` GROUP BY c.id ORDER BY c.type ASC, c.name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategory returns the category only if it belongs to the user.
func (r *Repository) GetCategory(ctx context.Context, userID, id string) (*core.Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+`
		FROM categories c
		LEFT JOIN transactions t ON t.category_id = c.id
		WHERE c.id = ? AND c.user_id = ?
		GROUP BY c.id`, id, userID)

	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// CategoryNameTaken reports whether another category of the user already
// holds the (name, type) pair.
func (r *Repository) CategoryNameTaken(ctx context.Context, userID, name string, typ core.TransactionType, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM categories
			WHERE user_id = ? AND name = ? AND type = ? AND id <> ?
		)`, userID, name, string(typ), excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return exists, nil
}

func (r *Repository) CreateCategory(ctx context.Context, userID string, c core.Category) (*core.Category, error) {
	c.ID = uuid.NewString()
	c.UserID = userID
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.UsageCount = 0

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name, type, color, icon, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, string(c.Type), nullString(c.Color), nullString(c.Icon),
		toMillis(now), toMillis(now),
	)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &c, nil
}

// UpdateCategory persists name/type/color/icon of an already-loaded category.
func (r *Repository) UpdateCategory(ctx context.Context, c *core.Category) error {
	c.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, type = ?, color = ?, icon = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		c.Name, string(c.Type), nullString(c.Color), nullString(c.Icon),
		toMillis(c.UpdatedAt), c.ID, c.UserID,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update category rows: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteCategory removes the category; the caller is responsible for the
// referenced-transactions check.
func (r *Repository) DeleteCategory(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete category rows: %w", err)
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c                    core.Category
		typ                  string
		color, icon          sql.NullString
		createdAt, updatedAt int64
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &typ, &color, &icon, &createdAt, &updatedAt, &c.UsageCount)
	if err != nil {
		return core.Category{}, err
	}
	c.Type = core.TransactionType(typ)
	c.Color = stringPtr(color)
	c.Icon = stringPtr(icon)
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return c, nil
}
