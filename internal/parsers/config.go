package parsers

import (
	"fmt"
	"strings"
)

// ParseConfig holds low-level CSV reading options.
type ParseConfig struct {
	HasHeader        bool `json:"has_header"`
	Delimiter        rune `json:"delimiter"`
	TrimLeadingSpace bool `json:"trim_leading_space"`
	SkipEmptyRows    bool `json:"skip_empty_rows"`
}

// DefaultParseConfig returns sensible defaults for institution exports.
func DefaultParseConfig() *ParseConfig {
	return &ParseConfig{
		HasHeader:        true,
		Delimiter:        ',',
		TrimLeadingSpace: true,
		SkipEmptyRows:    true,
	}
}

// Validate checks the parse configuration.
func (pc *ParseConfig) Validate() error {
	if pc.Delimiter == 0 {
		return fmt.Errorf("delimiter cannot be empty")
	}
	return nil
}

// FieldAliases maps each canonical field to a priority-ordered list of known
// source column names. The canonical name itself is listed first so that a
// source already using it always wins over any alias.
type FieldAliases struct {
	Date        []string `json:"date"`
	Amount      []string `json:"amount"`
	Description []string `json:"description"`
	Category    []string `json:"category"`
}

// DefaultFieldAliases returns the union of column names observed across
// supported institution exports.
func DefaultFieldAliases() *FieldAliases {
	return &FieldAliases{
		Date:        []string{"date", "posting date", "transaction date", "post date", "order date"},
		Amount:      []string{"amount", "price", "total", "cost"},
		Description: []string{"description", "merchant", "details", "payee", "item description"},
		Category:    []string{"category", "type", "budget category"},
	}
}

// Validate checks that every canonical field has at least one alias.
func (fa *FieldAliases) Validate() error {
	checks := map[string][]string{
		"date":        fa.Date,
		"amount":      fa.Amount,
		"description": fa.Description,
		"category":    fa.Category,
	}
	for field, aliases := range checks {
		if len(aliases) == 0 {
			return fmt.Errorf("no aliases configured for field '%s'", field)
		}
		for _, alias := range aliases {
			if strings.TrimSpace(alias) == "" {
				return fmt.Errorf("empty alias configured for field '%s'", field)
			}
		}
	}
	return nil
}

// AccountParserConfig configures the schema normalizer for account exports.
type AccountParserConfig struct {
	Aliases *FieldAliases `json:"aliases"`
	Parse   *ParseConfig  `json:"parse"`

	// Institutions that split charges and payments into separate columns
	// are detected by the presence of both of these headers.
	DebitColumn  string `json:"debit_column"`
	CreditColumn string `json:"credit_column"`
}

// DefaultAccountParserConfig returns the configuration used when none is
// supplied.
func DefaultAccountParserConfig() *AccountParserConfig {
	return &AccountParserConfig{
		Aliases:      DefaultFieldAliases(),
		Parse:        DefaultParseConfig(),
		DebitColumn:  "debit",
		CreditColumn: "credit",
	}
}

// Validate checks the account parser configuration.
func (c *AccountParserConfig) Validate() error {
	if c.Aliases == nil {
		return fmt.Errorf("field aliases are required")
	}
	if err := c.Aliases.Validate(); err != nil {
		return err
	}
	if c.Parse == nil {
		return fmt.Errorf("parse config is required")
	}
	if err := c.Parse.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.DebitColumn) == "" || strings.TrimSpace(c.CreditColumn) == "" {
		return fmt.Errorf("debit and credit column names cannot be empty")
	}
	return nil
}
