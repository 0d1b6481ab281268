package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

const (
	GoalInProgress GoalStatus = "IN_PROGRESS"
	GoalCompleted  GoalStatus = "COMPLETED"
	GoalPaused     GoalStatus = "PAUSED"
)

// Error categories. Specific errors wrap one of these so callers can map
// them to a transport status without matching message text.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
)

var (
	ErrInvalidAmount        = fmt.Errorf("%w: amount must be greater than 0", ErrValidation)
	ErrNegativeAmount       = fmt.Errorf("%w: amount cannot be negative", ErrValidation)
	ErrEmptyDescription     = fmt.Errorf("%w: description is required", ErrValidation)
	ErrEmptyName            = fmt.Errorf("%w: name is required", ErrValidation)
	ErrInvalidType          = fmt.Errorf("%w: type must be INCOME or EXPENSE", ErrValidation)
	ErrInvalidStatus        = fmt.Errorf("%w: status must be IN_PROGRESS, COMPLETED, or PAUSED", ErrValidation)
	ErrInvalidDate          = fmt.Errorf("%w: date is invalid", ErrValidation)
	ErrInvalidPeriod        = fmt.Errorf("%w: month must be between 1 and 12", ErrValidation)
	ErrCategoryRequired     = fmt.Errorf("%w: category is required", ErrValidation)
	ErrCategoryNotFound     = fmt.Errorf("%w: category not found for user", ErrValidation)
	ErrCategoryTypeMismatch = fmt.Errorf("%w: transaction type must match category type", ErrValidation)
	ErrCategoryExists       = fmt.Errorf("%w: a category with this name and type already exists", ErrConflict)
	ErrCategoryInUse        = fmt.Errorf("%w: category has transactions and cannot be deleted", ErrConflict)
)

type (
	TransactionType string

	GoalStatus string

	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}

	// CategoryRef is the category summary embedded in transaction payloads.
	CategoryRef struct {
		ID    string          `json:"id"`
		Name  string          `json:"name"`
		Color *string         `json:"color"`
		Icon  *string         `json:"icon"`
		Type  TransactionType `json:"type"`
	}

	Category struct {
		ID         string          `json:"id"`
		UserID     string          `json:"-"`
		Name       string          `json:"name"`
		Type       TransactionType `json:"type"`
		Color      *string         `json:"color"`
		Icon       *string         `json:"icon"`
		UsageCount int64           `json:"usageCount"`
		CreatedAt  time.Time       `json:"createdAt"`
		UpdatedAt  time.Time       `json:"updatedAt"`
	}

	Transaction struct {
		ID          string          `json:"id"`
		UserID      string          `json:"-"`
		Amount      Money           `json:"amount"`
		Description string          `json:"description"`
		Type        TransactionType `json:"type"`
		Date        time.Time       `json:"date"`
		Notes       *string         `json:"notes"`
		Category    CategoryRef     `json:"category"`
		CreatedAt   time.Time       `json:"createdAt"`
		UpdatedAt   time.Time       `json:"updatedAt"`
	}

	SavingsGoal struct {
		ID              string     `json:"id"`
		UserID          string     `json:"-"`
		Name            string     `json:"name"`
		TargetAmount    Money      `json:"targetAmount"`
		CurrentAmount   Money      `json:"currentAmount"`
		Deadline        *time.Time `json:"deadline"`
		Status          GoalStatus `json:"status"`
		Description     *string    `json:"description"`
		ProgressPercent int        `json:"progressPercent"`
		CreatedAt       time.Time  `json:"createdAt"`
		UpdatedAt       time.Time  `json:"updatedAt"`
	}
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (s GoalStatus) Valid() bool {
	return s == GoalInProgress || s == GoalCompleted || s == GoalPaused
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Category.ID == "" {
		return ErrCategoryRequired
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if err := g.TargetAmount.Validate(); err != nil {
		return err
	}
	if g.CurrentAmount.Cents < 0 {
		return ErrNegativeAmount
	}
	if !g.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// GoalProgressPercent derives the progress of a goal as an integer
// percentage, rounded half-up and capped at 100. A non-positive target
// always yields 0.
func GoalProgressPercent(current, target Money) int {
	if target.Cents <= 0 {
		return 0
	}
	pct := current.Decimal().Mul(hundred).DivRound(target.Decimal(), 0).IntPart()
	if pct > 100 {
		return 100
	}
	return int(pct)
}

// Optional carries a partial-update field where "absent" and "explicit
// null" mean different things: absent leaves the stored value untouched,
// null clears it.
type Optional[T any] struct {
	Set   bool
	Valid bool // false means explicit null
	Value T
}

// Some returns a set, non-null optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Valid: true, Value: v}
}

// Null returns a set optional carrying an explicit null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// Ptr returns the value as a nullable pointer; only meaningful when Set.
func (o Optional[T]) Ptr() *T {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}
