// Package ledger builds the master transaction ledger from a directory of
// per-account CSV exports.
//
// Every immediate subdirectory of the scan root is an account. Within each
// account folder only the single most recently modified .csv is ingested, so
// re-exporting a fresh file fully replaces that account's contribution on the
// next run. The ledger is rebuilt from scratch every run and is immutable
// once returned.
package ledger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang-budget-ledger-service/internal/classifier"
	"golang-budget-ledger-service/internal/models"
	"golang-budget-ledger-service/internal/parsers"
	"golang-budget-ledger-service/pkg/errors"
	"golang-budget-ledger-service/pkg/logger"
)

// Config holds builder options.
type Config struct {
	// MaxConcurrentAccounts bounds the per-account worker goroutines.
	MaxConcurrentAccounts int `json:"max_concurrent_accounts"`
}

// DefaultConfig returns the builder defaults.
func DefaultConfig() *Config {
	return &Config{MaxConcurrentAccounts: 4}
}

// Validate checks the builder configuration.
func (c *Config) Validate() error {
	if c.MaxConcurrentAccounts <= 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig,
			"max_concurrent_accounts", c.MaxConcurrentAccounts, nil)
	}
	return nil
}

// AccountError records one account that was skipped during a scan.
type AccountError struct {
	Account string
	File    string
	Err     error
}

// BuildStats summarizes one ingestion run.
type BuildStats struct {
	AccountsScanned int
	AccountsLoaded  int
	AccountsEmpty   int
	AccountsSkipped int
	Rows            int
	CellsCoerced    int
	SelectedFiles   map[string]string
	Errors          []AccountError
	Duration        time.Duration
}

// Builder orchestrates directory discovery, per-account normalization,
// classification and recurrence tagging.
type Builder struct {
	parser *parsers.AccountParser
	rules  *classifier.RuleSet
	config *Config
	logger logger.Logger
}

// NewBuilder creates a Builder. A nil rules argument selects the built-in
// rule table.
func NewBuilder(parserConfig *parsers.AccountParserConfig, rules *classifier.RuleSet, config *Config) (*Builder, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if rules == nil {
		rules = classifier.DefaultRuleSet()
	}

	parser, err := parsers.NewAccountParser(parserConfig)
	if err != nil {
		return nil, err
	}

	return &Builder{
		parser: parser,
		rules:  rules,
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("ledger_builder"),
	}, nil
}

// Build scans root and returns the merged master ledger. A missing root is a
// hard failure; a per-account failure skips that account and the scan
// continues. Zero accounts or zero rows yields a valid empty ledger.
func (b *Builder) Build(ctx context.Context, root string) (*models.Ledger, *BuildStats, error) {
	start := time.Now()

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.FileError(errors.CodeDirectoryNotFound, root, err)
		}
		return nil, nil, errors.FileError(errors.CodeFileUnreadable, root, err)
	}
	if !info.IsDir() {
		return nil, nil, errors.FileError(errors.CodeDirectoryNotFound, root, nil).
			WithSuggestion("the scan root must be a directory of account folders")
	}

	b.logger.WithField("root", root).Info("Scanning account directories")

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, errors.FileError(errors.CodeFileUnreadable, root, err)
	}

	var accounts []string
	for _, entry := range entries {
		if entry.IsDir() {
			accounts = append(accounts, entry.Name())
		}
	}

	stats := &BuildStats{
		AccountsScanned: len(accounts),
		SelectedFiles:   make(map[string]string),
	}

	// Accounts are independent, so ingest them concurrently. Results are
	// slotted by account index to keep ledger order equal to scan order.
	results := make([][]*models.Transaction, len(accounts))
	semaphore := make(chan struct{}, b.config.MaxConcurrentAccounts)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i, account := range accounts {
		wg.Add(1)
		go func(slot int, account string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			rows, file, err := b.ingestAccount(ctx, filepath.Join(root, account), account)

			mu.Lock()
			defer mu.Unlock()
			if file != "" {
				stats.SelectedFiles[account] = file
			}
			if err != nil {
				stats.AccountsSkipped++
				stats.Errors = append(stats.Errors, AccountError{Account: account, File: file, Err: err})
				return
			}
			if len(rows.transactions) == 0 && file == "" {
				stats.AccountsEmpty++
				return
			}
			stats.AccountsLoaded++
			stats.CellsCoerced += rows.cellsCoerced
			results[slot] = rows.transactions
		}(i, account)
	}
	wg.Wait()

	var transactions []*models.Transaction
	for _, rows := range results {
		transactions = append(transactions, rows...)
	}
	stats.Rows = len(transactions)
	stats.Duration = time.Since(start)

	b.logger.WithFields(logger.Fields{
		"accounts_scanned": stats.AccountsScanned,
		"accounts_loaded":  stats.AccountsLoaded,
		"accounts_empty":   stats.AccountsEmpty,
		"accounts_skipped": stats.AccountsSkipped,
		"rows":             stats.Rows,
		"duration":         stats.Duration.String(),
	}).Info("Ledger build completed")

	return models.NewLedger(transactions), stats, nil
}

type accountRows struct {
	transactions []*models.Transaction
	cellsCoerced int
}

// ingestAccount loads the newest CSV in one account folder, normalizes it
// and applies classification and recurrence tagging. The returned file name
// is empty when the folder holds no CSV.
func (b *Builder) ingestAccount(ctx context.Context, dir, account string) (accountRows, string, error) {
	log := b.logger.WithField("account", account)

	newest, err := newestCSV(dir)
	if err != nil {
		log.WithError(err).Warn("Failed to list account folder, skipping account")
		return accountRows{}, "", errors.IngestError(errors.CodeAccountSkipped, account, err)
	}
	if newest == "" {
		log.Info("No CSV files found")
		return accountRows{}, "", nil
	}

	log.WithField("file", filepath.Base(newest)).Info("Selected newest export")

	transactions, parseStats, err := b.parser.ParseFile(ctx, newest, account)
	if err != nil {
		log.WithError(err).WithField("file", newest).Warn("Failed to read export, skipping account")
		return accountRows{}, filepath.Base(newest), errors.IngestError(errors.CodeAccountSkipped, account, err)
	}

	for _, tx := range transactions {
		tx.Category = b.rules.Classify(tx.Description, tx.Amount)
		tx.IsRecurring = classifier.IsRecurring(tx.Category, tx.Description)
	}

	rows := accountRows{transactions: transactions}
	if parseStats != nil {
		rows.cellsCoerced = parseStats.CellsCoerced
		if parseStats.HasErrors() {
			log.WithField("errors", parseStats.Summary().Error()).Warn("Recovered row-level errors during parse")
		}
	}
	return rows, filepath.Base(newest), nil
}

// newestCSV returns the most recently modified .csv (case-insensitive
// extension) in dir, or "" when none exist.
func newestCSV(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var newest string
	var newestTime time.Time
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestTime) {
			newest = filepath.Join(dir, entry.Name())
			newestTime = info.ModTime()
		}
	}
	return newest, nil
}
