package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func setBuildDefaults(dataDir string) {
	viper.Set("data-dir", dataDir)
	viper.Set("output", "master_ledger.csv")
	viper.Set("format", "")
	viper.Set("export-dir", "")
	viper.Set("backup", false)
	viper.Set("rules", "")
	viper.Set("max-concurrent", 4)
}

func TestValidateBuildFlags(t *testing.T) {
	tmpDir := t.TempDir()
	dataDir := filepath.Join(tmpDir, "data")
	if err := os.MkdirAll(filepath.Join(dataDir, "Chase"), 0o755); err != nil {
		t.Fatalf("failed to create data dir: %v", err)
	}
	rulesFile := filepath.Join(tmpDir, "rules.yaml")
	if err := os.WriteFile(rulesFile, []byte("- category: Test\n  keywords: [A]\n"), 0o644); err != nil {
		t.Fatalf("failed to create rules file: %v", err)
	}
	plainFile := filepath.Join(tmpDir, "plain.txt")
	if err := os.WriteFile(plainFile, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	tests := []struct {
		name          string
		setupFlags    func()
		expectError   bool
		errorContains string
	}{
		{
			name: "valid flags",
			setupFlags: func() {
				setBuildDefaults(dataDir)
			},
			expectError: false,
		},
		{
			name: "valid flags with rules and format",
			setupFlags: func() {
				setBuildDefaults(dataDir)
				viper.Set("rules", rulesFile)
				viper.Set("format", "json")
			},
			expectError: false,
		},
		{
			name: "missing data dir",
			setupFlags: func() {
				setBuildDefaults("")
			},
			expectError:   true,
			errorContains: "data-dir is required",
		},
		{
			name: "nonexistent data dir",
			setupFlags: func() {
				setBuildDefaults(filepath.Join(tmpDir, "absent"))
			},
			expectError:   true,
			errorContains: "does not exist",
		},
		{
			name: "data dir is a file",
			setupFlags: func() {
				setBuildDefaults(plainFile)
			},
			expectError:   true,
			errorContains: "not a directory",
		},
		{
			name: "empty output path",
			setupFlags: func() {
				setBuildDefaults(dataDir)
				viper.Set("output", "")
			},
			expectError:   true,
			errorContains: "output path",
		},
		{
			name: "invalid format",
			setupFlags: func() {
				setBuildDefaults(dataDir)
				viper.Set("format", "xml")
			},
			expectError:   true,
			errorContains: "invalid output format",
		},
		{
			name: "nonexistent rules file",
			setupFlags: func() {
				setBuildDefaults(dataDir)
				viper.Set("rules", filepath.Join(tmpDir, "absent.yaml"))
			},
			expectError:   true,
			errorContains: "rules file",
		},
		{
			name: "zero concurrency",
			setupFlags: func() {
				setBuildDefaults(dataDir)
				viper.Set("max-concurrent", 0)
			},
			expectError:   true,
			errorContains: "max-concurrent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupFlags()
			err := validateBuildFlags(buildCmd, nil)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("expected error containing %q, got %q", tt.errorContains, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func setSummaryDefaults(ledgerFile string) {
	viper.Set("ledger-file", ledgerFile)
	viper.Set("summary-format", "console")
	viper.Set("start-date", "")
	viper.Set("end-date", "")
	viper.Set("top", 10)
	viper.Set("account", "")
}

func TestValidateSummaryFlags(t *testing.T) {
	ledgerPath := filepath.Join(t.TempDir(), "master_ledger.csv")

	tests := []struct {
		name          string
		setupFlags    func()
		expectError   bool
		errorContains string
	}{
		{
			name: "valid flags",
			setupFlags: func() {
				setSummaryDefaults(ledgerPath)
			},
			expectError: false,
		},
		{
			name: "valid date window",
			setupFlags: func() {
				setSummaryDefaults(ledgerPath)
				viper.Set("start-date", "2024-01-01")
				viper.Set("end-date", "2024-01-31")
			},
			expectError: false,
		},
		{
			name: "missing ledger file flag",
			setupFlags: func() {
				setSummaryDefaults("")
			},
			expectError:   true,
			errorContains: "ledger-file is required",
		},
		{
			name: "invalid format",
			setupFlags: func() {
				setSummaryDefaults(ledgerPath)
				viper.Set("summary-format", "csv")
			},
			expectError:   true,
			errorContains: "invalid summary format",
		},
		{
			name: "malformed start date",
			setupFlags: func() {
				setSummaryDefaults(ledgerPath)
				viper.Set("start-date", "01/15/2024")
			},
			expectError:   true,
			errorContains: "invalid start date",
		},
		{
			name: "inverted date range",
			setupFlags: func() {
				setSummaryDefaults(ledgerPath)
				viper.Set("start-date", "2024-02-01")
				viper.Set("end-date", "2024-01-01")
			},
			expectError:   true,
			errorContains: "start date cannot be after end date",
		},
		{
			name: "negative top",
			setupFlags: func() {
				setSummaryDefaults(ledgerPath)
				viper.Set("top", -1)
			},
			expectError:   true,
			errorContains: "top cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupFlags()
			err := validateSummaryFlags(summaryCmd, nil)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("expected error containing %q, got %q", tt.errorContains, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestGetVersionString(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2024-01-01")
	if got := getVersionString(); got != "1.2.3" {
		t.Errorf("expected release version string, got %q", got)
	}

	SetVersionInfo("dev", "abc123", "2024-01-01")
	if got := getVersionString(); !strings.Contains(got, "commit abc123") {
		t.Errorf("expected dev version string with commit, got %q", got)
	}
}
