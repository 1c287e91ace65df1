// Package export serializes tabular result sets to CSV and XLSX files.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const timestampLayout = "20060102T150405Z"

// Table is an ordered header row plus string rows.
type Table struct {
	Headers []string
	Rows    [][]string
}

// ParseFormat accepts csv or xlsx, case-insensitively. An empty value means csv.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(FormatCSV):
		return FormatCSV, nil
	case string(FormatXLSX), "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q", raw)
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Write serializes table in format to w. A table with no rows still gets its header.
func Write(w io.Writer, format Format, table Table) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, table)
	case FormatXLSX:
		return WriteXLSX(w, table)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// Filename returns entity_<UTC timestamp>.<ext>, e.g. candidates_20261019T101500Z.csv.
func Filename(entity string, format Format, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", entity, now.UTC().Format(timestampLayout), format)
}
