package parsers

import (
	"context"
	"encoding/csv"
	"io"

	"golang-budget-ledger-service/internal/models"
	"golang-budget-ledger-service/pkg/errors"
	"golang-budget-ledger-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// AccountParser is the schema normalizer: it maps an arbitrary institution
// export into canonical transactions tagged with their account name.
type AccountParser struct {
	*BaseParser
	config *AccountParserConfig
	logger logger.Logger
}

// NewAccountParser creates an AccountParser with the given configuration.
func NewAccountParser(config *AccountParserConfig) (*AccountParser, error) {
	if config == nil {
		config = DefaultAccountParserConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "account_parser", config, err)
	}

	return &AccountParser{
		BaseParser: NewBaseParser(config.Parse),
		config:     config,
		logger:     logger.GetGlobalLogger().WithComponent("account_parser"),
	}, nil
}

// resolvedColumns holds the column position of each canonical field, -1 when
// no alias matched.
type resolvedColumns struct {
	date        int
	amount      int
	description int
	category    int
	debit       int
	credit      int
}

// hasSplitAmount reports whether the export splits charges and payments into
// separate debit/credit columns.
func (rc resolvedColumns) hasSplitAmount() bool {
	return rc.debit >= 0 && rc.credit >= 0
}

// resolveColumns walks each canonical field's alias list in priority order
// and takes the first header present. It returns the names of canonical
// fields with no match.
func (ap *AccountParser) resolveColumns(index *headerIndex) (resolvedColumns, []string) {
	cols := resolvedColumns{
		date:        firstMatch(index, ap.config.Aliases.Date),
		amount:      firstMatch(index, ap.config.Aliases.Amount),
		description: firstMatch(index, ap.config.Aliases.Description),
		category:    firstMatch(index, ap.config.Aliases.Category),
		debit:       index.Lookup(ap.config.DebitColumn),
		credit:      index.Lookup(ap.config.CreditColumn),
	}

	var missing []string
	if cols.date < 0 {
		missing = append(missing, "date")
	}
	if cols.amount < 0 && !cols.hasSplitAmount() {
		missing = append(missing, "amount")
	}
	if cols.description < 0 {
		missing = append(missing, "description")
	}
	if cols.category < 0 {
		missing = append(missing, "category")
	}
	return cols, missing
}

func firstMatch(index *headerIndex, aliases []string) int {
	for _, alias := range aliases {
		if idx := index.Lookup(alias); idx >= 0 {
			return idx
		}
	}
	return -1
}

// ParseFile reads one account export and returns its normalized rows, each
// tagged with the account name. Categories carry the raw source label; the
// ledger builder assigns the final category.
func (ap *AccountParser) ParseFile(ctx context.Context, path, account string) ([]*models.Transaction, *ParseStats, error) {
	log := ap.logger.WithFields(logger.Fields{
		"file":    path,
		"account": account,
	})
	log.Info("Parsing account export")

	file, reader, err := ap.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	stats := NewParseStats(path)

	index, err := ap.ReadHeaders(reader, path)
	if err != nil {
		return nil, stats, err
	}
	line := 1

	cols, missing := ap.resolveColumns(index)
	for _, field := range missing {
		stats.AddMissingField(field)
		log.WithField("field", field).Debug("No matching column alias, filling with null")
	}

	var transactions []*models.Transaction
	for {
		record, err := ap.ReadRecord(ctx, reader, &line)
		if err != nil {
			if err == io.EOF {
				break
			}
			if _, ok := err.(*csv.ParseError); ok {
				parseErr := errors.ParseError(errors.CodeInvalidFormat, path, line, "record", "", err)
				stats.AddError(parseErr)
				log.WithError(err).WithField("line", line).Warn("Skipping malformed record")
				continue
			}
			return transactions, stats, errors.WrapIfNeeded(err, errors.CategoryFile, errors.CodeFileUnreadable, "failed reading "+path)
		}
		stats.RowsParsed++

		transactions = append(transactions, ap.normalizeRecord(record, cols, account, path, line, stats))
		stats.RowsKept++
	}
	stats.TotalLines = line

	log.WithFields(logger.Fields{
		"rows_kept":     stats.RowsKept,
		"cells_coerced": stats.CellsCoerced,
		"errors":        len(stats.Errors),
	}).Info("Account export parsed")

	return transactions, stats, nil
}

// normalizeRecord maps one raw record to a canonical transaction. Malformed
// cells degrade to zero or null; they never fail the row.
func (ap *AccountParser) normalizeRecord(record []string, cols resolvedColumns, account, path string, line int, stats *ParseStats) *models.Transaction {
	tx := &models.Transaction{
		Description: fieldAt(record, cols.description),
		Category:    fieldAt(record, cols.category),
		Account:     account,
	}

	if raw := fieldAt(record, cols.date); raw != "" {
		date, ok := models.CoerceDate(raw)
		if !ok {
			stats.CellsCoerced++
			stats.AddError(errors.ParseError(errors.CodeInvalidData, path, line, "date", raw, nil))
		}
		tx.Date = date
	}

	tx.Amount = ap.resolveAmount(record, cols, path, line, stats)
	return tx
}

// resolveAmount applies the sign-convention rules: a debit/credit pair wins
// over a standalone amount column, and yields -(debit + credit) so spending
// is negative.
func (ap *AccountParser) resolveAmount(record []string, cols resolvedColumns, path string, line int, stats *ParseStats) decimal.Decimal {
	if cols.hasSplitAmount() {
		debit := ap.coerceCell(fieldAt(record, cols.debit), "debit", path, line, stats)
		credit := ap.coerceCell(fieldAt(record, cols.credit), "credit", path, line, stats)
		return debit.Add(credit).Neg()
	}

	if cols.amount >= 0 {
		return ap.coerceCell(fieldAt(record, cols.amount), "amount", path, line, stats)
	}

	// No amount source at all: null marker, represented as zero.
	return decimal.Zero
}

// coerceCell parses a numeric cell leniently. Empty cells are zero by
// convention; non-numeric cells coerce to zero and are counted.
func (ap *AccountParser) coerceCell(raw, column, path string, line int, stats *ParseStats) decimal.Decimal {
	if raw == "" {
		return decimal.Zero
	}
	value, ok := models.CoerceAmount(raw)
	if !ok {
		stats.CellsCoerced++
		stats.AddError(errors.ParseError(errors.CodeInvalidData, path, line, column, raw, nil))
	}
	return value
}
