package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"golang-budget-ledger-service/cmd/ledger/config"
	"golang-budget-ledger-service/internal/ledger"
	"golang-budget-ledger-service/internal/reporter"
)

// Flags for the build command
var (
	dataDir       string
	outputFile    string
	outputFormat  string
	rulesFile     string
	maxConcurrent int
	exportDir     string
	backup        bool
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the master ledger from account folders",
	Long: `Build scans a data directory whose subdirectories are account folders,
ingests the newest CSV export in each, and merges the normalized rows into
one master ledger file.

Each row is mapped to the canonical schema (date, amount, description,
category), categorized by the keyword rules and tagged when it looks like a
recurring charge. Accounts whose export cannot be read are skipped with a
warning; the rest of the scan continues.

Examples:
  # Basic build
  ledger build --data-dir ./data

  # Custom output location and a report on stdout
  ledger build --data-dir ./data --output out/master_ledger.csv --format console

  # Custom category rules and per-account exports
  ledger build --data-dir ./data --rules rules.yaml --export-dir out/accounts

  # Keep a dated zip of the ledger
  ledger build --data-dir ./data --backup`,

	PreRunE: validateBuildFlags,
	RunE:    runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	// Required flags
	buildCmd.Flags().StringVarP(&dataDir, "data-dir", "d", "", "root directory of account folders (required)")

	// Output flags
	buildCmd.Flags().StringVarP(&outputFile, "output", "o", "master_ledger.csv", "master ledger output path")
	buildCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "also print a report: console, json, csv")
	buildCmd.Flags().StringVar(&exportDir, "export-dir", "", "write one export CSV per account to this directory")
	buildCmd.Flags().BoolVar(&backup, "backup", false, "write a dated zip of the master ledger next to it")

	// Pipeline flags
	buildCmd.Flags().StringVarP(&rulesFile, "rules", "r", "", "YAML file of category rules (default: built-in rules)")
	buildCmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 4, "maximum account folders ingested in parallel")

	// Mark required flags
	buildCmd.MarkFlagRequired("data-dir")

	// Bind flags to viper
	viper.BindPFlag("data-dir", buildCmd.Flags().Lookup("data-dir"))
	viper.BindPFlag("output", buildCmd.Flags().Lookup("output"))
	viper.BindPFlag("format", buildCmd.Flags().Lookup("format"))
	viper.BindPFlag("export-dir", buildCmd.Flags().Lookup("export-dir"))
	viper.BindPFlag("backup", buildCmd.Flags().Lookup("backup"))
	viper.BindPFlag("rules", buildCmd.Flags().Lookup("rules"))
	viper.BindPFlag("max-concurrent", buildCmd.Flags().Lookup("max-concurrent"))
}

func validateBuildFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	dataDir = viper.GetString("data-dir")
	outputFile = viper.GetString("output")
	outputFormat = viper.GetString("format")
	exportDir = viper.GetString("export-dir")
	backup = viper.GetBool("backup")
	rulesFile = viper.GetString("rules")
	maxConcurrent = viper.GetInt("max-concurrent")

	if dataDir == "" {
		return fmt.Errorf("data-dir is required")
	}

	info, err := os.Stat(dataDir)
	if os.IsNotExist(err) {
		return fmt.Errorf("data directory does not exist: %s", dataDir)
	}
	if err != nil {
		return fmt.Errorf("error accessing data directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data-dir is not a directory: %s", dataDir)
	}

	if outputFile == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	if outputFormat != "" && !reporter.OutputFormat(outputFormat).IsValid() {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	if rulesFile != "" {
		if _, err := os.Stat(rulesFile); os.IsNotExist(err) {
			return fmt.Errorf("rules file does not exist: %s", rulesFile)
		}
	}

	if maxConcurrent < 1 {
		return fmt.Errorf("max-concurrent must be at least 1, got %d", maxConcurrent)
	}

	return nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Building master ledger...\n")
		fmt.Fprintf(os.Stderr, "Data directory: %s\n", dataDir)
		fmt.Fprintf(os.Stderr, "Output file: %s\n", outputFile)
		if rulesFile != "" {
			fmt.Fprintf(os.Stderr, "Rules file: %s\n", rulesFile)
		}
	}

	// Create configurations
	parserConfig := config.CreateParserConfig()

	rules, err := config.CreateRuleSet(rulesFile)
	if err != nil {
		return err
	}

	builderConfig := config.CreateBuilderConfig(maxConcurrent)

	// Build the ledger
	builder, err := ledger.NewBuilder(parserConfig, rules, builderConfig)
	if err != nil {
		return fmt.Errorf("failed to create ledger builder: %w", err)
	}

	masterLedger, stats, err := builder.Build(ctx, dataDir)
	if err != nil {
		return err
	}

	// Write the master ledger file
	if err := reporter.WriteLedgerFile(masterLedger, outputFile, nil); err != nil {
		return err
	}

	// Optional per-account exports
	if exportDir != "" {
		if err := reporter.ExportAccounts(masterLedger, exportDir, nil); err != nil {
			return err
		}
	}

	// Optional zip backup
	if backup {
		archivePath, err := reporter.BackupLedger(masterLedger, outputFile, nil)
		if err != nil {
			return err
		}
		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Backup written: %s\n", archivePath)
		}
	}

	// Optional report on stdout
	if outputFormat != "" {
		reportConfig := config.CreateReportConfig(outputFormat, 10, nil)
		generator, err := reporter.NewReportGenerator(reportConfig)
		if err != nil {
			return fmt.Errorf("failed to create report generator: %w", err)
		}
		if err := generator.GenerateReport(masterLedger, os.Stdout); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}
	}

	// Show completion message
	fmt.Fprintf(os.Stderr, "Success! Combined %d rows from %d accounts into %s.\n",
		stats.Rows, stats.AccountsLoaded, filepath.Clean(outputFile))
	if stats.AccountsSkipped > 0 {
		fmt.Fprintf(os.Stderr, "Skipped %d account(s) with unreadable exports; see warnings above.\n",
			stats.AccountsSkipped)
	}
	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Scanned %d account folders (%d empty) in %v.\n",
			stats.AccountsScanned, stats.AccountsEmpty, stats.Duration)
		for account, file := range stats.SelectedFiles {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", account, file)
		}
		if stats.CellsCoerced > 0 {
			fmt.Fprintf(os.Stderr, "Coerced %d malformed amount cells to zero.\n", stats.CellsCoerced)
		}
	}

	return nil
}
