// Package tabular reads batch input files and writes result files in CSV or
// XLSX form.
package tabular

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Format is a supported file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFor picks the format from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", eris.Errorf("tabular: unsupported file type %q", filepath.Ext(path))
	}
}

// Row is one data row keyed by header name. Line is the 1-based line (CSV)
// or row number (XLSX) it came from.
type Row struct {
	Line   int
	Fields map[string]string
}

// Table is a parsed input file.
type Table struct {
	Header []string
	Rows   []Row
}

// Read loads a batch input file. The first row is the header.
func Read(ctx context.Context, path string) (*Table, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatXLSX:
		return ReadXLSX(ctx, path)
	default:
		return ReadCSVFile(ctx, path)
	}
}

// Write saves rows, header first, to path in the format its extension names.
func Write(path string, rows [][]string) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	switch format {
	case FormatXLSX:
		return WriteXLSX(path, rows)
	default:
		return WriteCSVFile(path, rows)
	}
}

// builder turns raw rows into a Table, checking the header once.
type builder struct {
	table Table
}

func (b *builder) header(cells []string) error {
	seen := make(map[string]bool, len(cells))
	header := make([]string, len(cells))
	for i, c := range cells {
		name := strings.TrimSpace(c)
		if name == "" {
			return eris.Errorf("tabular: header column %d is empty", i+1)
		}
		if seen[name] {
			return eris.Errorf("tabular: duplicate column %q", name)
		}
		seen[name] = true
		header[i] = name
	}
	b.table.Header = header
	return nil
}

func (b *builder) row(line int, cells []string) error {
	if len(cells) > len(b.table.Header) {
		return eris.Errorf("tabular: line %d has %d cells, header has %d", line, len(cells), len(b.table.Header))
	}
	blank := true
	fields := make(map[string]string, len(b.table.Header))
	for i, name := range b.table.Header {
		var v string
		if i < len(cells) {
			v = cells[i]
		}
		if strings.TrimSpace(v) != "" {
			blank = false
		}
		fields[name] = v
	}
	if blank {
		return nil
	}
	b.table.Rows = append(b.table.Rows, Row{Line: line, Fields: fields})
	return nil
}

func (b *builder) done() (*Table, error) {
	if b.table.Header == nil {
		return nil, eris.New("tabular: file has no header row")
	}
	return &b.table, nil
}
