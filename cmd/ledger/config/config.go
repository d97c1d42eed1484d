// Package config assembles the pipeline configurations from resolved CLI
// flags.
package config

import (
	"golang-budget-ledger-service/internal/classifier"
	"golang-budget-ledger-service/internal/ledger"
	"golang-budget-ledger-service/internal/parsers"
	"golang-budget-ledger-service/internal/reporter"
	"golang-budget-ledger-service/internal/views"
)

// CreateParserConfig creates the account parser configuration with the
// default column aliases.
func CreateParserConfig() *parsers.AccountParserConfig {
	return parsers.DefaultAccountParserConfig()
}

// CreateRuleSet loads category rules from the given YAML file, or returns
// the built-in rules when no file is specified.
func CreateRuleSet(rulesFile string) (*classifier.RuleSet, error) {
	if rulesFile == "" {
		return classifier.DefaultRuleSet(), nil
	}
	return classifier.LoadRuleSet(rulesFile)
}

// CreateBuilderConfig creates a builder configuration with the CLI
// overrides applied.
func CreateBuilderConfig(maxConcurrent int) *ledger.Config {
	config := ledger.DefaultConfig()
	config.MaxConcurrentAccounts = maxConcurrent
	return config
}

// CreateReportConfig creates a report configuration for the specified
// output format. A nil exclude list keeps the default transfer-style
// exclusions; an explicit empty list disables them.
func CreateReportConfig(format string, topPurchases int, excludeCategories []string) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()
	config.TopPurchases = topPurchases

	if excludeCategories != nil {
		config.ExcludeCategories = excludeCategories
	} else {
		config.ExcludeCategories = views.DefaultExcludedCategories()
	}

	switch format {
	case "json":
		config.Format = reporter.FormatJSON
	case "csv":
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
	default:
		config.Format = reporter.FormatConsole
	}

	return config
}
