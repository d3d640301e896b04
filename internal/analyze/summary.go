// Package analyze computes the aggregate views consumed by the dashboard
// and by the privacy-preserving advisor briefing. All aggregations are
// pure reductions over the immutable transaction sequence: recomputing
// on the same input yields identical results.
package analyze

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"mpesa-statement-analyzer/internal/models"
)

// Overview holds the headline totals for a statement period
type Overview struct {
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpense     decimal.Decimal `json:"total_expense"`
	NetSavings       decimal.Decimal `json:"net_savings"`
	TransactionCount int             `json:"transaction_count"`
}

// MonthlyTotal holds income and expense totals for one calendar month
type MonthlyTotal struct {
	Month   time.Time       `json:"month"` // first day of the month
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Label returns the display label for the month, e.g. "Jan 2024"
func (mt MonthlyTotal) Label() string {
	return mt.Month.Format("Jan 2006")
}

// CategoryTotal holds per-category money totals
type CategoryTotal struct {
	Category  models.Category `json:"category"`
	AmountIn  decimal.Decimal `json:"amount_in"`
	AmountOut decimal.Decimal `json:"amount_out"`
	Count     int             `json:"count"`
}

// MerchantTotal holds expense volume for one recipient, keyed on the raw
// description. Dashboard-only: descriptions never enter the advisor
// briefing.
type MerchantTotal struct {
	Description string          `json:"description"`
	AmountOut   decimal.Decimal `json:"amount_out"`
	Count       int             `json:"count"`
}

// DaysOfWeek and HoursOfDay dimension the activity heatmap
const (
	DaysOfWeek = 7
	HoursOfDay = 24
)

// AggregateSummary is the derived, read-only view over a transaction
// collection. It is recomputed whenever the underlying set changes and
// never mutated in place.
type AggregateSummary struct {
	Overview          Overview                          `json:"overview"`
	MonthlyTrend      []MonthlyTotal                    `json:"monthly_trend"`
	CategoryBreakdown []CategoryTotal                   `json:"category_breakdown"`
	DailyActivity     [DaysOfWeek][HoursOfDay]int       `json:"daily_activity"`
	TopMerchants      []MerchantTotal                   `json:"top_merchants"`
	PeriodStart       time.Time                         `json:"period_start"`
	PeriodEnd         time.Time                         `json:"period_end"`
}

// topMerchantLimit caps the merchant list, matching the dashboard's
// top-recipients panel.
const topMerchantLimit = 5

// Summarize computes the aggregate summary for a categorized transaction
// sequence. An empty sequence yields all-zero aggregates, not an error.
func Summarize(transactions []*models.Transaction) *AggregateSummary {
	summary := &AggregateSummary{
		Overview: Overview{
			TotalIncome:  decimal.Zero,
			TotalExpense: decimal.Zero,
			NetSavings:   decimal.Zero,
		},
		MonthlyTrend:      []MonthlyTotal{},
		CategoryBreakdown: []CategoryTotal{},
		TopMerchants:      []MerchantTotal{},
	}

	if len(transactions) == 0 {
		return summary
	}

	categoryTotals := make(map[models.Category]*CategoryTotal)
	merchantTotals := make(map[string]*MerchantTotal)
	monthlyTotals := make(map[time.Time]*MonthlyTotal)

	for _, tx := range transactions {
		summary.Overview.TransactionCount++
		summary.Overview.TotalIncome = summary.Overview.TotalIncome.Add(tx.AmountIn)
		summary.Overview.TotalExpense = summary.Overview.TotalExpense.Add(tx.AmountOut)

		if summary.PeriodStart.IsZero() || tx.Timestamp.Before(summary.PeriodStart) {
			summary.PeriodStart = tx.Timestamp
		}
		if tx.Timestamp.After(summary.PeriodEnd) {
			summary.PeriodEnd = tx.Timestamp
		}

		month := monthOf(tx.Timestamp)
		mt, ok := monthlyTotals[month]
		if !ok {
			mt = &MonthlyTotal{Month: month, Income: decimal.Zero, Expense: decimal.Zero}
			monthlyTotals[month] = mt
		}
		mt.Income = mt.Income.Add(tx.AmountIn)
		mt.Expense = mt.Expense.Add(tx.AmountOut)

		ct, ok := categoryTotals[tx.Category]
		if !ok {
			ct = &CategoryTotal{Category: tx.Category, AmountIn: decimal.Zero, AmountOut: decimal.Zero}
			categoryTotals[tx.Category] = ct
		}
		ct.AmountIn = ct.AmountIn.Add(tx.AmountIn)
		ct.AmountOut = ct.AmountOut.Add(tx.AmountOut)
		ct.Count++

		summary.DailyActivity[int(tx.Timestamp.Weekday())][tx.Timestamp.Hour()]++

		if tx.IsDebit() {
			mtot, ok := merchantTotals[tx.Description]
			if !ok {
				mtot = &MerchantTotal{Description: tx.Description, AmountOut: decimal.Zero}
				merchantTotals[tx.Description] = mtot
			}
			mtot.AmountOut = mtot.AmountOut.Add(tx.AmountOut)
			mtot.Count++
		}
	}

	summary.Overview.NetSavings = summary.Overview.TotalIncome.Sub(summary.Overview.TotalExpense)
	summary.MonthlyTrend = fillMonthlyTrend(monthlyTotals, summary.PeriodStart, summary.PeriodEnd)
	summary.CategoryBreakdown = sortCategoryTotals(categoryTotals)
	summary.TopMerchants = topMerchants(merchantTotals, topMerchantLimit)

	return summary
}

// monthOf truncates a timestamp to the first day of its calendar month
func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// fillMonthlyTrend produces one entry per calendar month across the
// statement's date range, zero-filling months with no activity.
func fillMonthlyTrend(totals map[time.Time]*MonthlyTotal, start, end time.Time) []MonthlyTotal {
	if start.IsZero() {
		return []MonthlyTotal{}
	}

	var trend []MonthlyTotal
	last := monthOf(end)
	for month := monthOf(start); !month.After(last); month = month.AddDate(0, 1, 0) {
		if mt, ok := totals[month]; ok {
			trend = append(trend, *mt)
		} else {
			trend = append(trend, MonthlyTotal{Month: month, Income: decimal.Zero, Expense: decimal.Zero})
		}
	}

	return trend
}

// sortCategoryTotals orders the breakdown by expense descending, with the
// category name as a deterministic tie-break.
func sortCategoryTotals(totals map[models.Category]*CategoryTotal) []CategoryTotal {
	result := make([]CategoryTotal, 0, len(totals))
	for _, ct := range totals {
		result = append(result, *ct)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].AmountOut.Equal(result[j].AmountOut) {
			return result[i].AmountOut.GreaterThan(result[j].AmountOut)
		}
		return result[i].Category < result[j].Category
	})

	return result
}

// topMerchants orders recipients by expense volume descending and keeps
// the top n, with the description as a deterministic tie-break.
func topMerchants(totals map[string]*MerchantTotal, n int) []MerchantTotal {
	result := make([]MerchantTotal, 0, len(totals))
	for _, mt := range totals {
		result = append(result, *mt)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].AmountOut.Equal(result[j].AmountOut) {
			return result[i].AmountOut.GreaterThan(result[j].AmountOut)
		}
		return result[i].Description < result[j].Description
	})

	if len(result) > n {
		result = result[:n]
	}

	return result
}
