package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

type seedCategory struct {
	name  string
	typ   core.TransactionType
	color string
	icon  string
}

var defaultCategories = []seedCategory{
	{"Groceries", core.Expense, "#10B981", "🛒"},
	{"Rent", core.Expense, "#3B82F6", "🏠"},
	{"Utilities", core.Expense, "#F59E0B", "⚡"},
	{"Transportation", core.Expense, "#8B5CF6", "🚗"},
	{"Entertainment", core.Expense, "#EC4899", "🎮"},
	{"Healthcare", core.Expense, "#EF4444", "🏥"},
	{"Dining Out", core.Expense, "#F97316", "🍽️"},
	{"Shopping", core.Expense, "#6366F1", "🛍️"},
	{"Salary", core.Income, "#059669", "💼"},
	{"Freelance", core.Income, "#0891B2", "💻"},
	{"Investment", core.Income, "#7C3AED", "📈"},
	{"Gift", core.Income, "#DB2777", "🎁"},
}

// Seed creates the demo user and its default categories. Safe to run on
// every startup; existing rows are left untouched.
func (r *Repository) Seed(ctx context.Context, email, name string) (core.User, error) {
	user, err := r.EnsureUser(ctx, email, name)
	if err != nil {
		return core.User{}, err
	}

	now := toMillis(time.Now())
	for _, c := range defaultCategories {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO categories (id, user_id, name, type, color, icon, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (user_id, name, type) DO NOTHING`,
			uuid.NewString(), user.ID, c.name, string(c.typ), c.color, c.icon, now, now,
		)
		if err != nil {
			return core.User{}, fmt.Errorf("seed category %s: %w", c.name, err)
		}
	}

	return user, nil
}
