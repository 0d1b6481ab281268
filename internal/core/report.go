package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type (
	// MonthlyTotals is the income/expense aggregate for one calendar month.
	MonthlyTotals struct {
		Year     int   `json:"year"`
		Month    int   `json:"month"` // 1-12
		Income   Money `json:"income"`
		Expenses Money `json:"expenses"`
		Net      Money `json:"net"`
	}

	// CategoryBreakdownEntry is one category's share of a month's expenses.
	CategoryBreakdownEntry struct {
		CategoryID   string  `json:"categoryId"`
		CategoryName string  `json:"categoryName"`
		Amount       Money   `json:"amount"`
		Percentage   float64 `json:"percentage"`
	}

	MonthOverMonth struct {
		IncomeDelta  Money         `json:"incomeDelta"`
		ExpenseDelta Money         `json:"expenseDelta"`
		NetDelta     Money         `json:"netDelta"`
		Previous     MonthlyTotals `json:"previous"`
		Current      MonthlyTotals `json:"current"`
	}

	Period struct {
		Year  int `json:"year"`
		Month int `json:"month"`
	}

	MonthlyReportSnapshot struct {
		Period            Period                   `json:"period"`
		Totals            MonthlyTotals            `json:"totals"`
		CategoryBreakdown []CategoryBreakdownEntry `json:"categoryBreakdown"`
		MonthOverMonth    MonthOverMonth           `json:"monthOverMonth"`
	}

	DashboardSnapshot struct {
		IncomeTotal        Money         `json:"incomeTotal"`
		ExpenseTotal       Money         `json:"expenseTotal"`
		NetSavings         Money         `json:"netSavings"`
		RecentTransactions []Transaction `json:"recentTransactions"`
		TopGoalProgress    []SavingsGoal `json:"topGoalProgress"`
	}
)

// NewMonthlyTotals builds a totals snapshot; net is always income minus
// expenses, never stored independently.
func NewMonthlyTotals(year, month int, income, expenses Money) MonthlyTotals {
	return MonthlyTotals{
		Year:     year,
		Month:    month,
		Income:   income,
		Expenses: expenses,
		Net:      income.Sub(expenses),
	}
}

// MonthBounds returns the inclusive window of a calendar month in UTC:
// first day 00:00:00.000 through last day 23:59:59.999. Month length and
// leap years fall out of the date arithmetic.
func MonthBounds(year, month int) (start, end time.Time) {
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return start, end
}

// PreviousPeriod steps one month back; January rolls to December of the
// prior year.
func PreviousPeriod(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// ValidPeriod reports whether the (year, month) pair denotes a usable
// calendar month.
func ValidPeriod(year, month int) bool {
	return month >= 1 && month <= 12 && year >= 1 && year <= 9999
}

// BreakdownPercentage computes a category's share of the month's total
// expenses, rounded to two decimals. A zero total divides by one currency
// unit instead; the resulting figures are not meaningful shares and do not
// sum to 100 in that degenerate case.
func BreakdownPercentage(amount, totalExpenses Money) float64 {
	total := totalExpenses.Decimal()
	if total.IsZero() {
		total = decimal.NewFromInt(1)
	}
	pct, _ := amount.Decimal().Mul(hundred).DivRound(total, 2).Float64()
	return pct
}

// CompareMonths derives month-over-month deltas as exact differences of the
// two snapshots.
func CompareMonths(current, previous MonthlyTotals) MonthOverMonth {
	return MonthOverMonth{
		IncomeDelta:  current.Income.Sub(previous.Income),
		ExpenseDelta: current.Expenses.Sub(previous.Expenses),
		NetDelta:     current.Net.Sub(previous.Net),
		Previous:     previous,
		Current:      current,
	}
}
