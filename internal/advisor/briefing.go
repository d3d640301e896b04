// Package advisor builds the aggregate briefing shared with the AI
// advisor and handles the model call. Only derived totals cross this
// boundary: receipt IDs, descriptions, and per-transaction amounts
// never leave the process.
package advisor

import (
	"mpesa-statement-analyzer/internal/analyze"
)

// TrendDirection summarizes month-over-month expense movement
type TrendDirection string

const (
	TrendRising  TrendDirection = "rising"
	TrendFalling TrendDirection = "falling"
	TrendFlat    TrendDirection = "flat"
)

// CategorySpend is one line of the briefing's category table
type CategorySpend struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

// Briefing is the complete payload sent to the advisor. Amounts are
// pre-formatted strings so the model never sees raw numeric precision
// artifacts, and the struct contains no transaction-level fields.
type Briefing struct {
	Currency         string          `json:"currency"`
	PeriodStart      string          `json:"period_start"`
	PeriodEnd        string          `json:"period_end"`
	TotalIncome      string          `json:"total_income"`
	TotalExpense     string          `json:"total_expense"`
	NetSavings       string          `json:"net_savings"`
	TransactionCount int             `json:"transaction_count"`
	TopCategories    []CategorySpend `json:"top_categories"`
	ExpenseTrend     TrendDirection  `json:"expense_trend"`
}

// briefingCategoryLimit caps the category table in the briefing
const briefingCategoryLimit = 5

// BuildBriefing derives the advisor payload from an aggregate summary.
// Merchant names are deliberately excluded even though the summary
// carries them for the dashboard.
func BuildBriefing(summary *analyze.AggregateSummary) *Briefing {
	briefing := &Briefing{
		Currency:         "KES",
		TotalIncome:      summary.Overview.TotalIncome.StringFixed(2),
		TotalExpense:     summary.Overview.TotalExpense.StringFixed(2),
		NetSavings:       summary.Overview.NetSavings.StringFixed(2),
		TransactionCount: summary.Overview.TransactionCount,
		TopCategories:    []CategorySpend{},
		ExpenseTrend:     expenseTrend(summary.MonthlyTrend),
	}

	if !summary.PeriodStart.IsZero() {
		briefing.PeriodStart = summary.PeriodStart.Format("2006-01-02")
		briefing.PeriodEnd = summary.PeriodEnd.Format("2006-01-02")
	}

	for i, ct := range summary.CategoryBreakdown {
		if i >= briefingCategoryLimit {
			break
		}
		if ct.AmountOut.IsZero() {
			continue
		}
		briefing.TopCategories = append(briefing.TopCategories, CategorySpend{
			Category: string(ct.Category),
			Amount:   ct.AmountOut.StringFixed(2),
		})
	}

	return briefing
}

// expenseTrend compares the last two months with activity. Fewer than
// two months yields a flat trend.
func expenseTrend(trend []analyze.MonthlyTotal) TrendDirection {
	if len(trend) < 2 {
		return TrendFlat
	}

	previous := trend[len(trend)-2]
	current := trend[len(trend)-1]

	switch {
	case current.Expense.GreaterThan(previous.Expense):
		return TrendRising
	case current.Expense.LessThan(previous.Expense):
		return TrendFalling
	default:
		return TrendFlat
	}
}
