package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"golang-budget-ledger-service/cmd/ledger/config"
	"golang-budget-ledger-service/internal/models"
	"golang-budget-ledger-service/internal/reporter"
	"golang-budget-ledger-service/internal/views"
)

// Flags for the summary command
var (
	ledgerFile        string
	summaryFormat     string
	startDate         string
	endDate           string
	excludeCategories []string
	topPurchases      int
	accountFilter     string
)

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize a previously built master ledger",
	Long: `Summary loads a master ledger file and prints income, spending and
savings figures, the category breakdown, the recurring-versus-discretionary
split and the largest purchases.

Transfer-style categories are excluded by default so money moved between
your own accounts is not double-counted; pass --exclude-categories to
override the list.

Examples:
  # Full-history summary
  ledger summary --ledger-file master_ledger.csv

  # One calendar month as JSON
  ledger summary --ledger-file master_ledger.csv \
    --start-date 2024-03-01 --end-date 2024-03-31 --format json

  # Focus on one account
  ledger summary --ledger-file master_ledger.csv --account Chase`,

	PreRunE: validateSummaryFlags,
	RunE:    runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().StringVarP(&ledgerFile, "ledger-file", "l", "master_ledger.csv", "master ledger CSV to summarize")
	summaryCmd.Flags().StringVarP(&summaryFormat, "format", "f", "console", "output format: console, json")
	summaryCmd.Flags().StringVar(&startDate, "start-date", "", "filter start date (YYYY-MM-DD)")
	summaryCmd.Flags().StringVar(&endDate, "end-date", "", "filter end date (YYYY-MM-DD)")
	summaryCmd.Flags().StringSliceVar(&excludeCategories, "exclude-categories", nil, "categories to exclude (default: transfer-style categories)")
	summaryCmd.Flags().IntVar(&topPurchases, "top", 10, "number of largest purchases to show")
	summaryCmd.Flags().StringVar(&accountFilter, "account", "", "restrict the summary to one account")

	viper.BindPFlag("ledger-file", summaryCmd.Flags().Lookup("ledger-file"))
	viper.BindPFlag("summary-format", summaryCmd.Flags().Lookup("format"))
	viper.BindPFlag("start-date", summaryCmd.Flags().Lookup("start-date"))
	viper.BindPFlag("end-date", summaryCmd.Flags().Lookup("end-date"))
	viper.BindPFlag("exclude-categories", summaryCmd.Flags().Lookup("exclude-categories"))
	viper.BindPFlag("top", summaryCmd.Flags().Lookup("top"))
	viper.BindPFlag("account", summaryCmd.Flags().Lookup("account"))
}

func validateSummaryFlags(cmd *cobra.Command, args []string) error {
	ledgerFile = viper.GetString("ledger-file")
	summaryFormat = viper.GetString("summary-format")
	startDate = viper.GetString("start-date")
	endDate = viper.GetString("end-date")
	if viper.IsSet("exclude-categories") {
		excludeCategories = viper.GetStringSlice("exclude-categories")
	}
	topPurchases = viper.GetInt("top")
	accountFilter = viper.GetString("account")

	if ledgerFile == "" {
		return fmt.Errorf("ledger-file is required")
	}

	if summaryFormat != string(reporter.FormatConsole) && summaryFormat != string(reporter.FormatJSON) {
		return fmt.Errorf("invalid summary format '%s'. Valid formats: console, json", summaryFormat)
	}

	if startDate != "" {
		if _, err := time.Parse(models.DateLayout, startDate); err != nil {
			return fmt.Errorf("invalid start date format. Use YYYY-MM-DD: %w", err)
		}
	}
	if endDate != "" {
		if _, err := time.Parse(models.DateLayout, endDate); err != nil {
			return fmt.Errorf("invalid end date format. Use YYYY-MM-DD: %w", err)
		}
	}
	if startDate != "" && endDate != "" {
		start, _ := time.Parse(models.DateLayout, startDate)
		end, _ := time.Parse(models.DateLayout, endDate)
		if start.After(end) {
			return fmt.Errorf("start date cannot be after end date")
		}
	}

	if topPurchases < 0 {
		return fmt.Errorf("top cannot be negative")
	}

	return nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	masterLedger, err := reporter.ReadLedger(ledgerFile)
	if err != nil {
		return err
	}

	// Apply the date and account window before reporting. Category
	// exclusions are left to the report generator so they show up in its
	// output.
	filter := &views.Filter{Account: accountFilter}
	if startDate != "" {
		filter.Start, _ = time.Parse(models.DateLayout, startDate)
	}
	if endDate != "" {
		filter.End, _ = time.Parse(models.DateLayout, endDate)
	}
	windowed := models.NewLedger(filter.Apply(masterLedger.Transactions))

	excludes := excludeCategories
	if !viper.IsSet("exclude-categories") && len(excludes) == 0 {
		excludes = views.DefaultExcludedCategories()
	}

	reportConfig := config.CreateReportConfig(summaryFormat, topPurchases, excludes)
	generator, err := reporter.NewReportGenerator(reportConfig)
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	if err := generator.GenerateReport(windowed, os.Stdout); err != nil {
		return fmt.Errorf("failed to generate summary: %w", err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "\nSummarized %d of %d ledger rows.\n",
			windowed.Len(), masterLedger.Len())
	}

	return nil
}
