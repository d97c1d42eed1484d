package reporter

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang-budget-ledger-service/internal/models"
	"golang-budget-ledger-service/pkg/errors"
	"golang-budget-ledger-service/pkg/logger"
)

// writeLedgerCSV renders the master ledger table. Missing dates render as
// empty cells; amounts keep their decimal string form.
func (rg *ReportGenerator) writeLedgerCSV(ledger *models.Ledger, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		if err := csvWriter.Write(ledger.Header()); err != nil {
			return fmt.Errorf("failed to write ledger headers: %w", err)
		}
	}

	for _, tx := range ledger.Transactions {
		record := []string{
			tx.DateString(),
			tx.Amount.String(),
			tx.Description,
			tx.Category,
			tx.Account,
			formatBool(tx.IsRecurring),
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write ledger record: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteLedgerFile writes the master ledger CSV to path, creating parent
// directories as needed.
func WriteLedgerFile(ledger *models.Ledger, path string, log logger.Logger) error {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.FileError(errors.CodeFilePermission, dir, err).
				WithSuggestion("check that the output directory is writable")
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.FileError(errors.CodeFilePermission, path, err).
			WithSuggestion("check that the output path is writable")
	}
	defer file.Close()

	generator, err := NewReportGenerator(&ReportConfig{
		Format:       FormatCSV,
		CSVDelimiter: ',',
		CSVHeaders:   true,
	})
	if err != nil {
		return err
	}
	if err := generator.writeLedgerCSV(ledger, file); err != nil {
		return errors.FileError(errors.CodeFilePermission, path, err)
	}

	log.WithFields(logger.Fields{
		"path": path,
		"rows": ledger.Len(),
	}).Info("Master ledger written")
	return nil
}

// ReadLedger loads a previously written master ledger CSV. The file is
// machine-written, so malformed rows are errors rather than coercion
// candidates.
func ReadLedger(path string) (*models.Ledger, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err).
				WithSuggestion("run a build first to produce the master ledger")
		}
		return nil, errors.FileError(errors.CodeFileUnreadable, path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.ParseError(errors.CodeEmptyFile, path, 1, "", "", nil)
	}
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidFormat, path, 1, "", "", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, seen := columns[name]; !seen {
			columns[name] = i
		}
	}
	for _, required := range []string{"date", "amount", "description", "category", "account", "is_recurring"} {
		if _, ok := columns[required]; !ok {
			return nil, errors.ParseError(errors.CodeMissingColumn, path, 1, required, "", nil).
				WithSuggestion("the ledger file must be one produced by a build run")
		}
	}

	maxIndex := 0
	for _, index := range columns {
		if index > maxIndex {
			maxIndex = index
		}
	}

	var transactions []*models.Transaction
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.ParseError(errors.CodeInvalidFormat, path, line, "", "", err)
		}
		if len(record) <= maxIndex {
			return nil, errors.ParseError(errors.CodeInvalidFormat, path, line, "record",
				fmt.Sprintf("%d of %d fields", len(record), maxIndex+1), nil).
				WithSuggestion("the ledger file must be one produced by a build run")
		}

		tx := &models.Transaction{
			Description: record[columns["description"]],
			Category:    record[columns["category"]],
			Account:     record[columns["account"]],
			IsRecurring: parseBool(record[columns["is_recurring"]]),
		}
		if raw := record[columns["date"]]; raw != "" {
			parsed, err := models.ParseDate(raw)
			if err != nil {
				return nil, errors.ParseError(errors.CodeInvalidDate, path, line, "date", raw, err)
			}
			tx.Date = parsed
		}
		amount, err := models.CleanAmount(record[columns["amount"]])
		if err != nil {
			return nil, errors.ParseError(errors.CodeInvalidAmount, path, line, "amount", record[columns["amount"]], err)
		}
		tx.Amount = amount

		transactions = append(transactions, tx)
	}

	return models.NewLedger(transactions), nil
}

// AccountExportHeader is the column order of per-account exports, shaped
// for import into budgeting apps.
var AccountExportHeader = []string{"Date", "Payee", "Category", "Notes", "Amount"}

// WriteAccountExport writes one account's rows in the budgeting-app export
// shape. Recurring rows are marked in the Notes column.
func WriteAccountExport(ledger *models.Ledger, account string, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	defer csvWriter.Flush()

	if err := csvWriter.Write(AccountExportHeader); err != nil {
		return fmt.Errorf("failed to write export headers: %w", err)
	}

	for _, tx := range ledger.ForAccount(account) {
		notes := ""
		if tx.IsRecurring {
			notes = "Recurring"
		}
		record := []string{
			tx.DateString(),
			tx.Description,
			tx.Category,
			notes,
			tx.Amount.String(),
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write export record: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// ExportAccounts writes one export file per account under dir, named
// <account>.csv.
func ExportAccounts(ledger *models.Ledger, dir string, log logger.Logger) error {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.FileError(errors.CodeFilePermission, dir, err)
	}

	for _, account := range ledger.Accounts() {
		path := filepath.Join(dir, account+".csv")
		file, err := os.Create(path)
		if err != nil {
			return errors.FileError(errors.CodeFilePermission, path, err)
		}
		if err := WriteAccountExport(ledger, account, file); err != nil {
			file.Close()
			return errors.FileError(errors.CodeFilePermission, path, err)
		}
		if err := file.Close(); err != nil {
			return errors.FileError(errors.CodeFilePermission, path, err)
		}
		log.WithFields(logger.Fields{
			"account": account,
			"path":    path,
		}).Info("Account export written")
	}
	return nil
}

// BackupLedger zips the master ledger file next to itself, stamped with the
// current date, and returns the archive path. The ledger's per-account
// exports are embedded alongside it under an accounts/ prefix.
func BackupLedger(ledger *models.Ledger, ledgerPath string, log logger.Logger) (string, error) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	source, err := os.Open(ledgerPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.FileError(errors.CodeFileNotFound, ledgerPath, err).
				WithSuggestion("run a build first to produce the master ledger")
		}
		return "", errors.FileError(errors.CodeFileUnreadable, ledgerPath, err)
	}
	defer source.Close()

	stamp := time.Now().Format("2006-01-02")
	base := strings.TrimSuffix(filepath.Base(ledgerPath), filepath.Ext(ledgerPath))
	archivePath := filepath.Join(filepath.Dir(ledgerPath), fmt.Sprintf("%s_%s.zip", base, stamp))

	archive, err := os.Create(archivePath)
	if err != nil {
		return "", errors.FileError(errors.CodeFilePermission, archivePath, err)
	}
	defer archive.Close()

	zipWriter := zip.NewWriter(archive)
	entry, err := zipWriter.Create(filepath.Base(ledgerPath))
	if err != nil {
		return "", errors.FileError(errors.CodeFilePermission, archivePath, err)
	}
	if _, err := io.Copy(entry, source); err != nil {
		return "", errors.FileError(errors.CodeFilePermission, archivePath, err)
	}

	if ledger != nil {
		for _, account := range ledger.Accounts() {
			entry, err := zipWriter.Create("accounts/" + account + ".csv")
			if err != nil {
				return "", errors.FileError(errors.CodeFilePermission, archivePath, err)
			}
			if err := WriteAccountExport(ledger, account, entry); err != nil {
				return "", errors.FileError(errors.CodeFilePermission, archivePath, err)
			}
		}
	}

	if err := zipWriter.Close(); err != nil {
		return "", errors.FileError(errors.CodeFilePermission, archivePath, err)
	}

	log.WithField("path", archivePath).Info("Ledger backup written")
	return archivePath, nil
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func parseBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}
