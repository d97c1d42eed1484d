package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"golang-budget-ledger-service/internal/classifier"
	"golang-budget-ledger-service/pkg/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func mustBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder(nil, nil, nil)
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	return b
}

func TestBuild_MissingRootIsFatal(t *testing.T) {
	b := mustBuilder(t)

	_, _, err := b.Build(context.Background(), filepath.Join(t.TempDir(), "absent"))
	ledgerErr, ok := errors.AsLedgerError(err)
	if !ok {
		t.Fatalf("Expected LedgerError, got %v", err)
	}
	if ledgerErr.Code != errors.CodeDirectoryNotFound {
		t.Errorf("Expected directory_not_found, got %s", ledgerErr.Code)
	}
}

func TestBuild_RootMustBeDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file.txt")
	writeFile(t, root, "not a directory")

	if _, _, err := mustBuilder(t).Build(context.Background(), root); err == nil {
		t.Error("Expected error for non-directory root")
	}
}

func TestBuild_MultiAccountRoundTrip(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Chase", "export.csv"),
		"Date,Description,Amount\n"+
			"2024-03-01,NETFLIX.COM,-15.49\n"+
			"2024-03-02,TRADER JOE'S #555,-82.12\n"+
			"2024-03-03,ACME PAYROLL,2500.00\n")
	writeFile(t, filepath.Join(root, "Costco", "activity.csv"),
		"Date,Description,Debit,Credit\n"+
			"2024-03-04,COSTCO WHSE #0412,150.00,\n")

	ledger, stats, err := mustBuilder(t).Build(context.Background(), root)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if ledger.Len() != 4 {
		t.Fatalf("Expected 4 rows (3 + 1), got %d", ledger.Len())
	}
	if stats.AccountsScanned != 2 || stats.AccountsLoaded != 2 {
		t.Errorf("Unexpected stats: %+v", stats)
	}

	// Every row carries its source folder name.
	if len(ledger.ForAccount("Chase")) != 3 {
		t.Errorf("Expected 3 Chase rows, got %d", len(ledger.ForAccount("Chase")))
	}
	if len(ledger.ForAccount("Costco")) != 1 {
		t.Errorf("Expected 1 Costco row, got %d", len(ledger.ForAccount("Costco")))
	}

	// Classification and recurrence tagging applied during ingestion.
	for _, tx := range ledger.Transactions {
		switch tx.Description {
		case "NETFLIX.COM":
			if tx.Category != "Subscriptions/Streaming" || !tx.IsRecurring {
				t.Errorf("Netflix misclassified: %s recurring=%t", tx.Category, tx.IsRecurring)
			}
		case "COSTCO WHSE #0412":
			if tx.Category != "Groceries" {
				t.Errorf("Costco misclassified: %s", tx.Category)
			}
			if !tx.Amount.Equal(decimal.NewFromInt(-150)) {
				t.Errorf("Debit split sign wrong: %s", tx.Amount.String())
			}
		case "ACME PAYROLL":
			if tx.Category != "Income/Payroll" {
				t.Errorf("Payroll misclassified: %s", tx.Category)
			}
		}
	}
}

func TestBuild_SelectsNewestFilePerAccount(t *testing.T) {
	root := t.TempDir()
	oldFile := filepath.Join(root, "Chase", "old.csv")
	newFile := filepath.Join(root, "Chase", "new.CSV")

	writeFile(t, oldFile, "Date,Description,Amount\n2024-01-01,OLD ROW,-1.00\n")
	writeFile(t, newFile, "Date,Description,Amount\n2024-02-01,NEW ROW,-2.00\n")

	// Make modification times unambiguous.
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(oldFile, past, past); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	ledger, stats, err := mustBuilder(t).Build(context.Background(), root)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if ledger.Len() != 1 {
		t.Fatalf("Expected only the newest file ingested, got %d rows", ledger.Len())
	}
	if ledger.Transactions[0].Description != "NEW ROW" {
		t.Errorf("Expected NEW ROW, got %q", ledger.Transactions[0].Description)
	}
	if stats.SelectedFiles["Chase"] != "new.CSV" {
		t.Errorf("Expected new.CSV selected, got %q", stats.SelectedFiles["Chase"])
	}
}

func TestBuild_EmptyAccountFolderIsNotAnError(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "Empty"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(root, "Empty", "notes.txt"), "not a csv")

	ledger, stats, err := mustBuilder(t).Build(context.Background(), root)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !ledger.IsEmpty() {
		t.Errorf("Expected empty ledger, got %d rows", ledger.Len())
	}
	if stats.AccountsEmpty != 1 {
		t.Errorf("Expected 1 empty account, got %d", stats.AccountsEmpty)
	}
	if len(ledger.Header()) != 6 {
		t.Error("Empty ledger must keep its column shape")
	}
}

func TestBuild_EmptyRootYieldsEmptyLedger(t *testing.T) {
	ledger, stats, err := mustBuilder(t).Build(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !ledger.IsEmpty() {
		t.Error("Expected empty ledger for empty root")
	}
	if stats.AccountsScanned != 0 {
		t.Errorf("Expected 0 accounts, got %d", stats.AccountsScanned)
	}
}

func TestBuild_CorruptAccountIsIsolated(t *testing.T) {
	root := t.TempDir()
	// Zero-byte export cannot be parsed; the account must be skipped, not
	// abort the scan.
	writeFile(t, filepath.Join(root, "Broken", "empty.csv"), "")
	writeFile(t, filepath.Join(root, "Good", "export.csv"),
		"Date,Description,Amount\n2024-06-01,CHIPOTLE 123,-12.00\n")

	ledger, stats, err := mustBuilder(t).Build(context.Background(), root)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if ledger.Len() != 1 {
		t.Fatalf("Expected 1 row from the good account, got %d", ledger.Len())
	}
	if stats.AccountsSkipped != 1 {
		t.Errorf("Expected 1 skipped account, got %d", stats.AccountsSkipped)
	}
	if len(stats.Errors) != 1 || stats.Errors[0].Account != "Broken" {
		t.Errorf("Expected Broken account recorded in errors, got %+v", stats.Errors)
	}
}

func TestBuild_IgnoresLooseFilesInRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "stray.csv"),
		"Date,Description,Amount\n2024-01-01,STRAY,-1.00\n")
	writeFile(t, filepath.Join(root, "Chase", "export.csv"),
		"Date,Description,Amount\n2024-01-02,REAL,-2.00\n")

	ledger, _, err := mustBuilder(t).Build(context.Background(), root)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if ledger.Len() != 1 || ledger.Transactions[0].Description != "REAL" {
		t.Errorf("Only account folders should be scanned, got %d rows", ledger.Len())
	}
}

func TestNewBuilder_CustomRules(t *testing.T) {
	rules := classifier.NewRuleSet([]classifier.Rule{
		{Category: "Everything", Keywords: []string{"A"}},
	})
	b, err := NewBuilder(nil, rules, nil)
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Acct", "f.csv"),
		"Date,Description,Amount\n2024-01-01,BANANA,-1.00\n")

	ledger, _, err := b.Build(context.Background(), root)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if ledger.Transactions[0].Category != "Everything" {
		t.Errorf("Expected custom rules applied, got %s", ledger.Transactions[0].Category)
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
	bad := &Config{MaxConcurrentAccounts: 0}
	if err := bad.Validate(); err == nil {
		t.Error("Expected validation error for zero concurrency")
	}
}
