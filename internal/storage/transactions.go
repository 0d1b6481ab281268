package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// TransactionFilter narrows transaction queries. Zero values mean "no
// constraint"; the date range is inclusive on both ends.
type TransactionFilter struct {
	Type       *core.TransactionType
	CategoryID string
	Search     string
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
}

// transactionWhere builds the shared WHERE clause for list and totals
// queries. Search matches case-insensitively as a literal substring of the
// description, the notes, or the category name.
func transactionWhere(userID string, f TransactionFilter) (string, []any) {
	conds := []string{"t.user_id = ?"}
	args := []any{userID}

	if f.Type != nil {
		conds = append(conds, "t.type = ?")
		args = append(args, string(*f.Type))
	}
	if f.CategoryID != "" {
		conds = append(conds, "t.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.Search != "" {
		pattern := "%" + escapeLike(f.Search) + "%"
		conds = append(conds, `(t.description LIKE ? ESCAPE '\' OR t.notes LIKE ? ESCAPE '\' OR c.name LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}
	if f.StartDate != nil {
		conds = append(conds, "t.date >= ?")
		args = append(args, toMillis(*f.StartDate))
	}
	if f.EndDate != nil {
		conds = append(conds, "t.date <= ?")
		args = append(args, toMillis(*f.EndDate))
	}

	return strings.Join(conds, " AND "), args
}

const transactionColumns = `t.id, t.user_id, t.amount_cents, t.description, t.type, t.date, t.notes,
	       t.created_at, t.updated_at, c.id, c.name, c.color, c.icon, c.type`

// ListTransactions returns matching transactions ordered by date
// descending, ties broken by most recently created first.
func (r *Repository) ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]core.Transaction, error) {
	where, args := transactionWhere(userID, f)
	query := `SELECT ` + transactionColumns + `
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE ` + where + `
		ORDER BY t.date DESC, t.created_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// GetTransaction returns the transaction only if it belongs to the user;
// a foreign record is indistinguishable from a missing one.
func (r *Repository) GetTransaction(ctx context.Context, userID, id string) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+`
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.id = ? AND t.user_id = ?`, id, userID)

	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &tx, nil
}

// CreateTransaction inserts the row and records a pending export entry in
// the same database transaction.
func (r *Repository) CreateTransaction(ctx context.Context, userID string, tx core.Transaction) (*core.Transaction, error) {
	tx.ID = uuid.NewString()
	tx.UserID = userID
	now := time.Now().UTC()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer dbtx.Rollback()

	_, err = dbtx.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, category_id, amount_cents, description, type, date, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.Category.ID, tx.Amount.Cents, tx.Description, string(tx.Type),
		toMillis(tx.Date), nullString(tx.Notes), toMillis(now), toMillis(now),
	)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	if err := markExportPending(ctx, dbtx, tx.ID, now); err != nil {
		return nil, err
	}
	if err := dbtx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return r.GetTransaction(ctx, userID, tx.ID)
}

// UpdateTransaction writes back an already-merged transaction and re-queues
// it for export.
func (r *Repository) UpdateTransaction(ctx context.Context, tx *core.Transaction) error {
	now := time.Now().UTC()
	tx.UpdatedAt = now

	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer dbtx.Rollback()

	res, err := dbtx.ExecContext(ctx,
		`UPDATE transactions
		 SET category_id = ?, amount_cents = ?, description = ?, type = ?, date = ?, notes = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		tx.Category.ID, tx.Amount.Cents, tx.Description, string(tx.Type),
		toMillis(tx.Date), nullString(tx.Notes), toMillis(now), tx.ID, tx.UserID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction rows: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	if err := markExportPending(ctx, dbtx, tx.ID, now); err != nil {
		return err
	}
	return dbtx.Commit()
}

// DeleteTransaction permanently removes the record; its export bookkeeping
// row goes with it via the schema cascade.
func (r *Repository) DeleteTransaction(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete transaction rows: %w", err)
	}
	return affected > 0, nil
}

// TransactionTotals computes the income and expense sums for the filter,
// ignoring its Type constraint.
func (r *Repository) TransactionTotals(ctx context.Context, userID string, f TransactionFilter) (income, expenses core.Money, err error) {
	f.Type = nil
	where, args := transactionWhere(userID, f)
	err = r.db.QueryRowContext(ctx, `SELECT
			COALESCE(SUM(CASE WHEN t.type = 'INCOME' THEN t.amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN t.type = 'EXPENSE' THEN t.amount_cents ELSE 0 END), 0)
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE `+where, args...,
	).Scan(&income.Cents, &expenses.Cents)
	if err != nil {
		return core.Money{}, core.Money{}, fmt.Errorf("transaction totals: %w", err)
	}
	return income, expenses, nil
}

// SumAmountByType sums one transaction type over an inclusive date window.
// No matching rows yields zero, not an error.
func (r *Repository) SumAmountByType(ctx context.Context, userID string, typ core.TransactionType, start, end time.Time) (core.Money, error) {
	var m core.Money
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0)
		 FROM transactions
		 WHERE user_id = ? AND type = ? AND date >= ? AND date <= ?`,
		userID, string(typ), toMillis(start), toMillis(end),
	).Scan(&m.Cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum %s amounts: %w", typ, err)
	}
	return m, nil
}

// CategorySum is a per-category expense aggregate for one month window.
type CategorySum struct {
	CategoryID   string
	CategoryName string
	Amount       core.Money
}

// ExpenseSumsByCategory groups the user's expenses in the window by
// category, largest sum first.
func (r *Repository) ExpenseSumsByCategory(ctx context.Context, userID string, start, end time.Time) ([]CategorySum, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.name, SUM(t.amount_cents) AS total
		 FROM transactions t
		 JOIN categories c ON c.id = t.category_id
		 WHERE t.user_id = ? AND t.type = 'EXPENSE' AND t.date >= ? AND t.date <= ?
		 GROUP BY c.id, c.name
		 ORDER BY total DESC`,
		userID, toMillis(start), toMillis(end),
	)
	if err != nil {
		return nil, fmt.Errorf("expense sums by category: %w", err)
	}
	defer rows.Close()

	var sums []CategorySum
	for rows.Next() {
		var s CategorySum
		if err := rows.Scan(&s.CategoryID, &s.CategoryName, &s.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan category sum: %w", err)
		}
		sums = append(sums, s)
	}
	return sums, rows.Err()
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx                    core.Transaction
		typ, catType          string
		notes                 sql.NullString
		catColor, catIcon     sql.NullString
		date, created, updated int64
	)
	err := row.Scan(&tx.ID, &tx.UserID, &tx.Amount.Cents, &tx.Description, &typ, &date, &notes,
		&created, &updated, &tx.Category.ID, &tx.Category.Name, &catColor, &catIcon, &catType)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Type = core.TransactionType(typ)
	tx.Date = fromMillis(date)
	tx.Notes = stringPtr(notes)
	tx.CreatedAt = fromMillis(created)
	tx.UpdatedAt = fromMillis(updated)
	tx.Category.Color = stringPtr(catColor)
	tx.Category.Icon = stringPtr(catIcon)
	tx.Category.Type = core.TransactionType(catType)
	return tx, nil
}
