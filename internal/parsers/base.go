// Package parsers normalizes institution-specific CSV exports into the
// canonical transaction shape.
//
// Real exports disagree on nearly everything: column names and casing, date
// formats, currency formatting, and sign conventions (some banks split
// charges and payments into separate debit/credit columns). The AccountParser
// absorbs all of that through a priority-ordered alias table and lenient
// per-cell coercion: malformed cells degrade to zero or null instead of
// failing the row, and only a wholly unreadable file is reported to the
// caller.
package parsers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang-budget-ledger-service/pkg/errors"
	"golang-budget-ledger-service/pkg/logger"
)

// BaseParser provides the CSV plumbing shared by concrete parsers: file
// opening, header normalization and record iteration.
type BaseParser struct {
	config *ParseConfig
	logger logger.Logger
}

// NewBaseParser creates a BaseParser with the given configuration.
func NewBaseParser(config *ParseConfig) *BaseParser {
	if config == nil {
		config = DefaultParseConfig()
	}
	return &BaseParser{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("base_parser"),
	}
}

// headerIndex maps normalized header names to their first column position.
// First-wins insertion collapses duplicate columns produced by alias
// collisions.
type headerIndex struct {
	names   []string
	indices map[string]int
}

// Lookup returns the column position for a normalized header name, or -1.
func (h *headerIndex) Lookup(name string) int {
	if idx, ok := h.indices[name]; ok {
		return idx
	}
	return -1
}

// OpenFile opens a CSV file and returns a configured reader.
func (bp *BaseParser) OpenFile(path string) (*os.File, *csv.Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		bp.logger.WithError(err).WithField("file", path).Error("Failed to open CSV file")
		if os.IsNotExist(err) {
			return nil, nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, nil, errors.FileError(errors.CodeFileUnreadable, path, err)
	}

	reader := csv.NewReader(file)
	reader.Comma = bp.config.Delimiter
	reader.TrimLeadingSpace = bp.config.TrimLeadingSpace
	reader.FieldsPerRecord = -1

	return file, reader, nil
}

// ReadHeaders reads the header row, lower-casing and trimming every name and
// collapsing duplicates to their first occurrence.
func (bp *BaseParser) ReadHeaders(reader *csv.Reader, path string) (*headerIndex, error) {
	if !bp.config.HasHeader {
		return nil, errors.ParseError(errors.CodeInvalidFormat, path, 0, "headers", "",
			fmt.Errorf("headerless exports are not supported"))
	}

	row, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.ParseError(errors.CodeEmptyFile, path, 0, "headers", "", nil)
		}
		return nil, errors.ParseError(errors.CodeInvalidFormat, path, 1, "headers", "", err)
	}

	index := &headerIndex{
		names:   make([]string, len(row)),
		indices: make(map[string]int, len(row)),
	}
	for i, name := range row {
		normalized := strings.ToLower(strings.TrimSpace(name))
		index.names[i] = normalized
		if _, exists := index.indices[normalized]; !exists {
			index.indices[normalized] = i
		}
	}

	bp.logger.WithFields(logger.Fields{
		"file":    path,
		"headers": index.names,
	}).Debug("Read CSV headers")

	return index, nil
}

// ReadRecord reads the next data record, skipping empty rows when configured.
// Returns io.EOF at end of file.
func (bp *BaseParser) ReadRecord(ctx context.Context, reader *csv.Reader, line *int) ([]string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.InternalError(errors.CodeUnexpectedError, "csv_read", err)
		}

		record, err := reader.Read()
		if err != nil {
			if csvErr, ok := err.(*csv.ParseError); ok && csvErr.Line > 0 {
				*line = csvErr.Line
			}
			return nil, err
		}
		*line++

		if bp.config.SkipEmptyRows && isEmptyRecord(record) {
			continue
		}
		return record, nil
	}
}

func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// fieldAt returns the raw cell at a column position, tolerating short rows.
func fieldAt(record []string, index int) string {
	if index < 0 || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}

// ParseStats summarizes one file's parse run: what was read, what degraded
// and what was dropped.
type ParseStats struct {
	File          string
	TotalLines    int
	RowsParsed    int
	RowsKept      int
	CellsCoerced  int
	MissingFields []string
	Errors        []*errors.LedgerError
}

// NewParseStats creates stats for the given file.
func NewParseStats(file string) *ParseStats {
	return &ParseStats{File: file}
}

// AddError records a recovered row-level error.
func (ps *ParseStats) AddError(err *errors.LedgerError) {
	ps.Errors = append(ps.Errors, err)
}

// AddMissingField records a canonical field with no matching alias.
func (ps *ParseStats) AddMissingField(field string) {
	ps.MissingFields = append(ps.MissingFields, field)
}

// HasErrors reports whether any row-level errors were recovered.
func (ps *ParseStats) HasErrors() bool {
	return len(ps.Errors) > 0
}

// Summary returns an aggregated view of the recovered errors.
func (ps *ParseStats) Summary() *errors.ErrorSummary {
	return errors.NewErrorSummary(ps.Errors)
}
