package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

const goalColumns = `id, user_id, name, target_cents, current_cents, deadline, status, description, created_at, updated_at`

// ListGoals returns the user's goals ordered by deadline ascending with
// undated goals last, ties broken by newest first. Progress is derived on
// every read, never stored.
func (r *Repository) ListGoals(ctx context.Context, userID string, status *core.GoalStatus) ([]core.SavingsGoal, error) {
	query := `SELECT ` + goalColumns + ` FROM savings_goals WHERE user_id = ?`
	args := []any{userID}
	if status != nil {
		query += ` AND status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY deadline IS NULL, deadline ASC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []core.SavingsGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (r *Repository) GetGoal(ctx context.Context, userID, id string) (*core.SavingsGoal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM savings_goals WHERE id = ? AND user_id = ?`, id, userID)

	g, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return &g, nil
}

func (r *Repository) CreateGoal(ctx context.Context, userID string, g core.SavingsGoal) (*core.SavingsGoal, error) {
	g.ID = uuid.NewString()
	g.UserID = userID
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now
	g.ProgressPercent = core.GoalProgressPercent(g.CurrentAmount, g.TargetAmount)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_goals (id, user_id, name, target_cents, current_cents, deadline, status, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents,
		nullMillis(g.Deadline), string(g.Status), nullString(g.Description),
		toMillis(now), toMillis(now),
	)
	if err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	return &g, nil
}

// UpdateGoal writes back an already-merged goal.
func (r *Repository) UpdateGoal(ctx context.Context, g *core.SavingsGoal) error {
	g.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE savings_goals
		 SET name = ?, target_cents = ?, current_cents = ?, deadline = ?, status = ?, description = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents, nullMillis(g.Deadline),
		string(g.Status), nullString(g.Description), toMillis(g.UpdatedAt), g.ID, g.UserID,
	)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update goal rows: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	g.ProgressPercent = core.GoalProgressPercent(g.CurrentAmount, g.TargetAmount)
	return nil
}

func (r *Repository) DeleteGoal(ctx context.Context, userID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM savings_goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete goal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete goal rows: %w", err)
	}
	return affected > 0, nil
}

func scanGoal(row rowScanner) (core.SavingsGoal, error) {
	var (
		g                    core.SavingsGoal
		deadline             sql.NullInt64
		status               string
		description          sql.NullString
		createdAt, updatedAt int64
	)
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount.Cents, &g.CurrentAmount.Cents,
		&deadline, &status, &description, &createdAt, &updatedAt)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	g.Deadline = timePtr(deadline)
	g.Status = core.GoalStatus(status)
	g.Description = stringPtr(description)
	g.CreatedAt = fromMillis(createdAt)
	g.UpdatedAt = fromMillis(updatedAt)
	g.ProgressPercent = core.GoalProgressPercent(g.CurrentAmount, g.TargetAmount)
	return g, nil
}
