package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// PendingExport is one ledger row waiting to be appended to the
// spreadsheet.
type PendingExport struct {
	TransactionID string
	Date          time.Time
	Description   string
	CategoryName  string
	Type          core.TransactionType
	Amount        core.Money
	Attempts      int
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// markExportPending upserts the bookkeeping row; an update re-queues a row
// that was already exported.
func markExportPending(ctx context.Context, db execer, transactionID string, now time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO transaction_exports (transaction_id, state, attempts, updated_at)
		 VALUES (?, 'pending', 0, ?)
		 ON CONFLICT (transaction_id) DO UPDATE SET state = 'pending', updated_at = excluded.updated_at`,
		transactionID, toMillis(now),
	)
	if err != nil {
		return fmt.Errorf("mark export pending: %w", err)
	}
	return nil
}

// PendingExports returns up to limit rows waiting for export, oldest first.
func (r *Repository) PendingExports(ctx context.Context, limit int) ([]PendingExport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT e.transaction_id, t.date, t.description, c.name, t.type, t.amount_cents, e.attempts
		 FROM transaction_exports e
		 JOIN transactions t ON t.id = e.transaction_id
		 JOIN categories c ON c.id = t.category_id
		 WHERE e.state = 'pending'
		 ORDER BY e.updated_at ASC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("pending exports: %w", err)
	}
	defer rows.Close()

	var pending []PendingExport
	for rows.Next() {
		var (
			p    PendingExport
			typ  string
			date int64
		)
		if err := rows.Scan(&p.TransactionID, &date, &p.Description, &p.CategoryName, &typ, &p.Amount.Cents, &p.Attempts); err != nil {
			return nil, fmt.Errorf("scan pending export: %w", err)
		}
		p.Date = fromMillis(date)
		p.Type = core.TransactionType(typ)
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkExported marks a row as successfully appended to the spreadsheet.
func (r *Repository) MarkExported(ctx context.Context, transactionID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transaction_exports SET state = 'exported', updated_at = ? WHERE transaction_id = ?`,
		toMillis(time.Now()), transactionID,
	)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	return nil
}

// MarkExportFailed records a failed attempt; the row stays out of the
// pending queue until the transaction changes again.
func (r *Repository) MarkExportFailed(ctx context.Context, transactionID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transaction_exports
		 SET state = 'failed', attempts = attempts + 1, updated_at = ?
		 WHERE transaction_id = ?`,
		toMillis(time.Now()), transactionID,
	)
	if err != nil {
		return fmt.Errorf("mark export failed: %w", err)
	}
	return nil
}
