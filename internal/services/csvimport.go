package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// PreviewRowCount is how many data rows an import preview shows.
const PreviewRowCount = 5

var ErrEmptyImport = errors.New("import file has no data rows")

// ImportResult is a parsed contact import: every data row keyed by header,
// plus the metadata the segment form needs.
type ImportResult struct {
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
	// EstimatedSize equals the parsed row count and becomes the segment's
	// creation-time size snapshot.
	EstimatedSize int `json:"estimatedSize"`
}

// Preview returns the first PreviewRowCount rows.
func (r *ImportResult) Preview() []map[string]string {
	if len(r.Rows) <= PreviewRowCount {
		return r.Rows
	}
	return r.Rows[:PreviewRowCount]
}

// ParseContactsCSV reads a header-first CSV into row objects keyed by
// header name. The full row set is retained; previewing is the caller's
// concern.
func ParseContactsCSV(r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyImport
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", len(rows)+2, err)
		}

		row := make(map[string]string, len(columns))
		empty := true
		for i, col := range columns {
			value := ""
			if i < len(record) {
				value = strings.TrimSpace(record[i])
			}
			row[col] = value
			if value != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrEmptyImport
	}

	return &ImportResult{
		Columns:       columns,
		Rows:          rows,
		EstimatedSize: len(rows),
	}, nil
}

// ParseContactsXLSX reads the first sheet of a workbook the same way
// ParseContactsCSV reads a CSV.
func ParseContactsXLSX(r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyImport
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyImport
	}

	columns := make([]string, len(records[0]))
	for i, h := range records[0] {
		columns[i] = strings.TrimSpace(h)
	}

	var rows []map[string]string
	for _, record := range records[1:] {
		row := make(map[string]string, len(columns))
		empty := true
		for i, col := range columns {
			value := ""
			if i < len(record) {
				value = strings.TrimSpace(record[i])
			}
			row[col] = value
			if value != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrEmptyImport
	}

	return &ImportResult{
		Columns:       columns,
		Rows:          rows,
		EstimatedSize: len(rows),
	}, nil
}

// ContactsCSVTemplate is the downloadable import template.
func ContactsCSVTemplate() string {
	return "name,email,phone,company\n"
}
