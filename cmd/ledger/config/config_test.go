package config

import (
	"os"
	"path/filepath"
	"testing"

	"golang-budget-ledger-service/internal/reporter"
)

func TestCreateParserConfig(t *testing.T) {
	config := CreateParserConfig()
	if config == nil {
		t.Fatal("expected a parser config")
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default parser config should validate, got %v", err)
	}
	if len(config.Aliases.Date) == 0 || len(config.Aliases.Amount) == 0 {
		t.Error("expected default column aliases to be populated")
	}
}

func TestCreateRuleSet_Defaults(t *testing.T) {
	rules, err := CreateRuleSet("")
	if err != nil {
		t.Fatalf("CreateRuleSet() error = %v", err)
	}
	if rules.Len() == 0 {
		t.Error("expected built-in rules")
	}
}

func TestCreateRuleSet_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := "- category: Coffee\n  keywords:\n    - STARBUCKS\n    - PHILZ\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write rules file: %v", err)
	}

	rules, err := CreateRuleSet(path)
	if err != nil {
		t.Fatalf("CreateRuleSet() error = %v", err)
	}
	if rules.Len() != 1 {
		t.Errorf("expected 1 rule, got %d", rules.Len())
	}
}

func TestCreateRuleSet_MissingFile(t *testing.T) {
	if _, err := CreateRuleSet(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing rules file")
	}
}

func TestCreateBuilderConfig(t *testing.T) {
	config := CreateBuilderConfig(8)
	if config.MaxConcurrentAccounts != 8 {
		t.Errorf("expected concurrency override 8, got %d", config.MaxConcurrentAccounts)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestCreateReportConfig(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		wantFormat reporter.OutputFormat
	}{
		{"console", "console", reporter.FormatConsole},
		{"json", "json", reporter.FormatJSON},
		{"csv", "csv", reporter.FormatCSV},
		{"unknown falls back to console", "weird", reporter.FormatConsole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := CreateReportConfig(tt.format, 5, nil)
			if config.Format != tt.wantFormat {
				t.Errorf("expected format %s, got %s", tt.wantFormat, config.Format)
			}
			if config.TopPurchases != 5 {
				t.Errorf("expected top purchases 5, got %d", config.TopPurchases)
			}
			if len(config.ExcludeCategories) == 0 {
				t.Error("expected default category exclusions")
			}
		})
	}
}

func TestCreateReportConfig_ExplicitEmptyExclusions(t *testing.T) {
	config := CreateReportConfig("console", 10, []string{})
	if len(config.ExcludeCategories) != 0 {
		t.Errorf("explicit empty list should disable exclusions, got %v", config.ExcludeCategories)
	}
}
