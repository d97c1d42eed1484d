// Package models defines the canonical transaction record and the master
// ledger, plus the lenient coercion helpers used while normalizing
// institution exports.
package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO calendar-date format used for ledger output.
const DateLayout = "2006-01-02"

// Transaction is the unit of record after normalization. Amount follows the
// canonical sign convention: negative means money leaving the account.
type Transaction struct {
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Account     string          `json:"account"`
	IsRecurring bool            `json:"is_recurring"`
}

// HasDate reports whether the source supplied a parseable date.
func (t *Transaction) HasDate() bool {
	return !t.Date.IsZero()
}

// DateString returns the ISO date, or an empty string when the date is
// missing.
func (t *Transaction) DateString() string {
	if !t.HasDate() {
		return ""
	}
	return t.Date.Format(DateLayout)
}

// IsSpend reports whether the transaction is money leaving the account.
func (t *Transaction) IsSpend() bool {
	return t.Amount.IsNegative()
}

// IsIncome reports whether the transaction is money entering the account.
func (t *Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// String returns a compact representation for logs.
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{Date: %s, Amount: %s, Description: %q, Category: %s, Account: %s, Recurring: %t}",
		t.DateString(), t.Amount.String(), t.Description, t.Category, t.Account, t.IsRecurring)
}

// MarshalJSON renders the amount as a decimal string and the date as an ISO
// calendar date.
func (t *Transaction) MarshalJSON() ([]byte, error) {
	type Alias Transaction
	return json.Marshal(&struct {
		Date   string `json:"date"`
		Amount string `json:"amount"`
		*Alias
	}{
		Date:   t.DateString(),
		Amount: t.Amount.String(),
		Alias:  (*Alias)(t),
	})
}

// Ledger is the merged, immutable table of canonical transactions for one
// ingestion run. Row order is per-account source order; order across accounts
// follows the directory scan.
type Ledger struct {
	Transactions []*Transaction
}

// NewLedger wraps transactions in a Ledger. A nil slice yields a valid empty
// ledger.
func NewLedger(transactions []*Transaction) *Ledger {
	if transactions == nil {
		transactions = []*Transaction{}
	}
	return &Ledger{Transactions: transactions}
}

// Header returns the fixed output column order.
func (l *Ledger) Header() []string {
	return []string{"date", "amount", "description", "category", "Account", "is_recurring"}
}

// Len returns the number of rows.
func (l *Ledger) Len() int {
	return len(l.Transactions)
}

// IsEmpty reports whether the ledger has zero rows. An empty ledger is a
// valid result, distinct from a failed ingestion.
func (l *Ledger) IsEmpty() bool {
	return len(l.Transactions) == 0
}

// Accounts returns the distinct account names, sorted.
func (l *Ledger) Accounts() []string {
	seen := make(map[string]struct{})
	var accounts []string
	for _, t := range l.Transactions {
		if _, ok := seen[t.Account]; !ok {
			seen[t.Account] = struct{}{}
			accounts = append(accounts, t.Account)
		}
	}
	sort.Strings(accounts)
	return accounts
}

// Categories returns the distinct category labels, sorted.
func (l *Ledger) Categories() []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, t := range l.Transactions {
		if t.Category == "" {
			continue
		}
		if _, ok := seen[t.Category]; !ok {
			seen[t.Category] = struct{}{}
			categories = append(categories, t.Category)
		}
	}
	sort.Strings(categories)
	return categories
}

// ForAccount returns the rows belonging to one account, in ledger order.
func (l *Ledger) ForAccount(account string) []*Transaction {
	var rows []*Transaction
	for _, t := range l.Transactions {
		if t.Account == account {
			rows = append(rows, t)
		}
	}
	return rows
}

// CleanAmount parses a decimal from a currency-formatted string, stripping
// currency symbols and thousands separators.
func CleanAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount string is empty")
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return d, nil
}

// CoerceAmount is the lenient variant used during ingestion: malformed cells
// degrade to zero instead of failing the row. The second return reports
// whether the value parsed cleanly.
func CoerceAmount(s string) (decimal.Decimal, bool) {
	d, err := CleanAmount(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// dateFormats covers the date shapes seen across institution exports.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	DateLayout,
	"01/02/2006 15:04:05",
	"01/02/2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate parses a calendar date from any recognized format, discarding
// time of day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date string is empty")
	}

	var lastErr error
	for _, format := range dateFormats {
		t, err := time.Parse(format, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("unable to parse date %q: %w", s, lastErr)
}

// CoerceDate is the lenient variant: unparseable dates degrade to the zero
// time, which renders as an empty cell.
func CoerceDate(s string) (time.Time, bool) {
	t, err := ParseDate(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
