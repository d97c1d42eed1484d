// Package reporter renders the master ledger and its summary views.
//
// Supported output formats:
//   - Console: human-readable summary for terminal display
//   - JSON: structured data for programmatic consumption
//   - CSV: the master ledger rows themselves
//
// The package also owns ledger file IO: writing the master CSV, reading
// it back for summary runs, per-account exports and zip backups.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"golang-budget-ledger-service/internal/models"
	"golang-budget-ledger-service/internal/views"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// Summary options
	ExcludeCategories []string `json:"exclude_categories"`
	TopPurchases      int      `json:"top_purchases"`
	IncludeAccounts   bool     `json:"include_accounts"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:            FormatConsole,
		ExcludeCategories: views.DefaultExcludedCategories(),
		TopPurchases:      10,
		IncludeAccounts:   true,
		CSVDelimiter:      ',',
		CSVHeaders:        true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.TopPurchases < 0 {
		return fmt.Errorf("top purchases count cannot be negative, got %d", c.TopPurchases)
	}
	return nil
}

// ReportGenerator renders ledger reports in the configured format
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{config: config}, nil
}

// GenerateReport renders the ledger to the writer in the configured format.
func (rg *ReportGenerator) GenerateReport(ledger *models.Ledger, writer io.Writer) error {
	if ledger == nil {
		return fmt.Errorf("ledger cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(ledger, writer)
	case FormatJSON:
		return rg.generateJSONReport(ledger, writer)
	case FormatCSV:
		return rg.generateCSVReport(ledger, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// filtered applies the configured category exclusions to the ledger rows.
func (rg *ReportGenerator) filtered(ledger *models.Ledger) []*models.Transaction {
	filter := &views.Filter{ExcludeCategories: rg.config.ExcludeCategories}
	return filter.Apply(ledger.Transactions)
}

func (rg *ReportGenerator) generateConsoleReport(ledger *models.Ledger, writer io.Writer) error {
	filtered := rg.filtered(ledger)
	summary := views.Summarize(filtered)

	fmt.Fprintf(writer, "BUDGET LEDGER REPORT\n")
	fmt.Fprintf(writer, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(writer, "Rows: %d (%d after exclusions)\n\n", ledger.Len(), len(filtered))

	fmt.Fprintf(writer, "=== SUMMARY ===\n")
	fmt.Fprintf(writer, "Total Income:  %s\n", summary.TotalIncome.StringFixed(2))
	fmt.Fprintf(writer, "Total Spend:   %s\n", summary.TotalSpend.StringFixed(2))
	fmt.Fprintf(writer, "Net Savings:   %s\n", summary.NetSavings.StringFixed(2))
	fmt.Fprintf(writer, "Savings Rate:  %.1f%%\n\n", summary.SavingsRate)

	fmt.Fprintf(writer, "=== SPENDING BY CATEGORY ===\n")
	rg.printCategoryTable(views.SpendByCategory(filtered), summary.TotalSpend, writer)
	fmt.Fprintf(writer, "\n")

	fmt.Fprintf(writer, "=== RECURRING VS DISCRETIONARY ===\n")
	split := views.SplitRecurring(filtered)
	fmt.Fprintf(writer, "Fixed / Recurring: %s\n", split.Recurring.StringFixed(2))
	fmt.Fprintf(writer, "Discretionary:     %s\n\n", split.Discretionary.StringFixed(2))

	if rg.config.IncludeAccounts {
		fmt.Fprintf(writer, "=== ACCOUNTS ===\n")
		for _, account := range ledger.Accounts() {
			rollup := views.SummarizeAccount(filtered, account)
			fmt.Fprintf(writer, "%-20s spend %12s across %d transactions (avg %s)\n",
				rollup.Account,
				rollup.TotalSpend.StringFixed(2),
				rollup.Transactions,
				rollup.AveragePurchase.StringFixed(2))
		}
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.TopPurchases > 0 {
		fmt.Fprintf(writer, "=== LARGEST PURCHASES ===\n")
		rg.printTopPurchases(views.TopPurchases(filtered, rg.config.TopPurchases), writer)
	}

	return nil
}

func (rg *ReportGenerator) generateJSONReport(ledger *models.Ledger, writer io.Writer) error {
	filtered := rg.filtered(ledger)

	output := map[string]interface{}{
		"generated_at":        time.Now().Format(time.RFC3339),
		"rows":                ledger.Len(),
		"excluded_categories": rg.config.ExcludeCategories,
		"summary":             views.Summarize(filtered),
		"spend_by_category":   views.SpendByCategory(filtered),
		"recurring_split":     views.SplitRecurring(filtered),
		"daily_spend":         views.DailySpend(filtered),
		"transactions":        ledger.Transactions,
	}

	if rg.config.IncludeAccounts {
		rollups := make([]views.AccountSummary, 0, len(ledger.Accounts()))
		for _, account := range ledger.Accounts() {
			rollups = append(rollups, views.SummarizeAccount(filtered, account))
		}
		output["accounts"] = rollups
	}

	if rg.config.TopPurchases > 0 {
		output["top_purchases"] = views.TopPurchases(filtered, rg.config.TopPurchases)
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func (rg *ReportGenerator) generateCSVReport(ledger *models.Ledger, writer io.Writer) error {
	return rg.writeLedgerCSV(ledger, writer)
}

func (rg *ReportGenerator) printCategoryTable(totals []views.CategoryTotal, totalSpend decimal.Decimal, writer io.Writer) {
	for _, entry := range totals {
		percentage := 0.0
		if totalSpend.IsPositive() {
			percentage, _ = entry.Total.Div(totalSpend).Mul(decimal.NewFromInt(100)).Float64()
		}
		fmt.Fprintf(writer, "%-28s %12s (%.1f%%)\n", entry.Category, entry.Total.StringFixed(2), percentage)
	}
}

func (rg *ReportGenerator) printTopPurchases(transactions []*models.Transaction, writer io.Writer) {
	for i, tx := range transactions {
		fmt.Fprintf(writer, "  %d. %s  %s  %s (%s)\n",
			i+1,
			tx.DateString(),
			tx.Amount.Abs().StringFixed(2),
			tx.Description,
			tx.Account)
	}
}

// GetConfiguration returns the current configuration
func (rg *ReportGenerator) GetConfiguration() *ReportConfig {
	return rg.config
}
