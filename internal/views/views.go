// Package views derives reporting projections from a master ledger:
// income/spend summaries, category breakdowns, recurring splits and
// per-account rollups. All projections are read-only over the
// transaction slice they are given.
package views

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"golang-budget-ledger-service/internal/models"
)

// DefaultExcludedCategories lists the transfer-style categories that are
// hidden from spending views by default. They move money between the
// user's own accounts, so counting them would double-book every transfer.
func DefaultExcludedCategories() []string {
	return []string{
		"Income/Payroll",
		"Transfer to Savings",
		"Loan/Credit Card Payment",
		"Transfers",
		"Transfers/P2P",
	}
}

// SubscriptionCategories are the categories treated as subscription
// spending in the savings view.
func SubscriptionCategories() []string {
	return []string{"Subscriptions/Streaming", "Gym/Health"}
}

// Filter narrows a ledger to a date window and a category exclusion list.
// Zero Start or End means unbounded on that side. Category matching is
// exact and case-sensitive, matching ledger contents.
type Filter struct {
	Start             time.Time
	End               time.Time
	ExcludeCategories []string
	Account           string
}

// Apply returns the transactions passing the filter, in input order.
func (f *Filter) Apply(transactions []*models.Transaction) []*models.Transaction {
	excluded := make(map[string]bool, len(f.ExcludeCategories))
	for _, category := range f.ExcludeCategories {
		excluded[category] = true
	}

	var result []*models.Transaction
	for _, tx := range transactions {
		if excluded[tx.Category] {
			continue
		}
		if f.Account != "" && !strings.EqualFold(tx.Account, f.Account) {
			continue
		}
		if tx.HasDate() {
			if !f.Start.IsZero() && tx.Date.Before(f.Start) {
				continue
			}
			if !f.End.IsZero() && tx.Date.After(f.End) {
				continue
			}
		} else if !f.Start.IsZero() || !f.End.IsZero() {
			// Undated rows cannot satisfy a date window.
			continue
		}
		result = append(result, tx)
	}
	return result
}

// Summary holds the headline totals for a filtered ledger window.
type Summary struct {
	TotalIncome decimal.Decimal `json:"total_income"`
	TotalSpend  decimal.Decimal `json:"total_spend"`
	NetSavings  decimal.Decimal `json:"net_savings"`
	// SavingsRate is NetSavings as a percentage of TotalIncome; zero when
	// there is no income in the window.
	SavingsRate  float64 `json:"savings_rate"`
	Transactions int     `json:"transactions"`
}

// Summarize computes headline totals. Spend is reported as a positive
// magnitude even though spend rows carry negative amounts.
func Summarize(transactions []*models.Transaction) Summary {
	summary := Summary{
		TotalIncome: decimal.Zero,
		TotalSpend:  decimal.Zero,
	}
	for _, tx := range transactions {
		summary.Transactions++
		if tx.IsIncome() {
			summary.TotalIncome = summary.TotalIncome.Add(tx.Amount)
		} else if tx.IsSpend() {
			summary.TotalSpend = summary.TotalSpend.Add(tx.Amount.Abs())
		}
	}
	summary.NetSavings = summary.TotalIncome.Sub(summary.TotalSpend)
	if summary.TotalIncome.IsPositive() {
		rate, _ := summary.NetSavings.Div(summary.TotalIncome).Mul(decimal.NewFromInt(100)).Float64()
		summary.SavingsRate = rate
	}
	return summary
}

// CategoryTotal is one category's aggregated spend magnitude.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// SpendByCategory aggregates spend rows by category, sorted by total
// descending with category name as the tie-break.
func SpendByCategory(transactions []*models.Transaction) []CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		if !tx.IsSpend() {
			continue
		}
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount.Abs())
	}

	result := make([]CategoryTotal, 0, len(totals))
	for category, total := range totals {
		result = append(result, CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Total.Equal(result[j].Total) {
			return result[i].Total.GreaterThan(result[j].Total)
		}
		return result[i].Category < result[j].Category
	})
	return result
}

// RecurringSplit separates spend into fixed (recurring) and
// discretionary magnitudes.
type RecurringSplit struct {
	Recurring     decimal.Decimal `json:"recurring"`
	Discretionary decimal.Decimal `json:"discretionary"`
}

// SplitRecurring aggregates spend magnitudes by the recurring flag.
func SplitRecurring(transactions []*models.Transaction) RecurringSplit {
	split := RecurringSplit{Recurring: decimal.Zero, Discretionary: decimal.Zero}
	for _, tx := range transactions {
		if !tx.IsSpend() {
			continue
		}
		if tx.IsRecurring {
			split.Recurring = split.Recurring.Add(tx.Amount.Abs())
		} else {
			split.Discretionary = split.Discretionary.Add(tx.Amount.Abs())
		}
	}
	return split
}

// DailyTotal is one calendar day's spend magnitude.
type DailyTotal struct {
	Date  time.Time       `json:"date"`
	Total decimal.Decimal `json:"total"`
}

// DailySpend aggregates spend by calendar day, sorted chronologically.
// Undated rows are skipped; days without spend are omitted.
func DailySpend(transactions []*models.Transaction) []DailyTotal {
	totals := make(map[time.Time]decimal.Decimal)
	for _, tx := range transactions {
		if !tx.IsSpend() || !tx.HasDate() {
			continue
		}
		day := tx.Date.Truncate(24 * time.Hour)
		totals[day] = totals[day].Add(tx.Amount.Abs())
	}

	result := make([]DailyTotal, 0, len(totals))
	for day, total := range totals {
		result = append(result, DailyTotal{Date: day, Total: total})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result
}

// TopPurchases returns the n largest single spend rows by magnitude,
// largest first. Less than n rows returns all of them.
func TopPurchases(transactions []*models.Transaction, n int) []*models.Transaction {
	var spend []*models.Transaction
	for _, tx := range transactions {
		if tx.IsSpend() {
			spend = append(spend, tx)
		}
	}
	sort.SliceStable(spend, func(i, j int) bool {
		return spend[i].Amount.Abs().GreaterThan(spend[j].Amount.Abs())
	})
	if n >= 0 && len(spend) > n {
		spend = spend[:n]
	}
	return spend
}

// DescriptionTotal is one merchant description's aggregated spend.
type DescriptionTotal struct {
	Description string          `json:"description"`
	Total       decimal.Decimal `json:"total"`
}

// SubscriptionSpend groups recurring subscription spend by description,
// sorted by total descending. Only recurring rows in the subscription
// categories count.
func SubscriptionSpend(transactions []*models.Transaction) []DescriptionTotal {
	subscription := make(map[string]bool)
	for _, category := range SubscriptionCategories() {
		subscription[category] = true
	}

	totals := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		if !tx.IsSpend() || !tx.IsRecurring || !subscription[tx.Category] {
			continue
		}
		totals[tx.Description] = totals[tx.Description].Add(tx.Amount.Abs())
	}

	result := make([]DescriptionTotal, 0, len(totals))
	for description, total := range totals {
		result = append(result, DescriptionTotal{Description: description, Total: total})
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Total.Equal(result[j].Total) {
			return result[i].Total.GreaterThan(result[j].Total)
		}
		return result[i].Description < result[j].Description
	})
	return result
}

// AccountSummary is the spending rollup for one account folder.
type AccountSummary struct {
	Account         string          `json:"account"`
	TotalSpend      decimal.Decimal `json:"total_spend"`
	Transactions    int             `json:"transactions"`
	AveragePurchase decimal.Decimal `json:"average_purchase"`
}

// SummarizeAccount rolls up spend for a single account,
// case-insensitively matched.
func SummarizeAccount(transactions []*models.Transaction, account string) AccountSummary {
	summary := AccountSummary{
		Account:         account,
		TotalSpend:      decimal.Zero,
		AveragePurchase: decimal.Zero,
	}
	for _, tx := range transactions {
		if !strings.EqualFold(tx.Account, account) || !tx.IsSpend() {
			continue
		}
		summary.TotalSpend = summary.TotalSpend.Add(tx.Amount.Abs())
		summary.Transactions++
	}
	if summary.Transactions > 0 {
		summary.AveragePurchase = summary.TotalSpend.Div(decimal.NewFromInt(int64(summary.Transactions))).Round(2)
	}
	return summary
}
