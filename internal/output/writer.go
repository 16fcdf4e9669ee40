package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"weatherscan/internal/models"
)

// Header is the column header shared by every format.
var Header = []string{"Date", "Station", "Category", "Value"}

// Format names an output encoding.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatArrow Format = "arrow"
)

// Formats lists the supported formats.
var Formats = []Format{FormatCSV, FormatJSON, FormatTable, FormatArrow}

// ParseFormat accepts a format name; the empty string means csv.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatCSV, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q (want csv, json, table or arrow)", s)
}

// Extension returns the file name extension for results in this format.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".jsonl"
	case FormatTable:
		return ".txt"
	case FormatArrow:
		return ".arrow"
	}
	return ".csv"
}

// Writer defines the interface for result writers.
type Writer interface {
	// WriteRows appends rows in the writer's format.
	WriteRows(rows []models.ResultRow) error

	// Close flushes buffered output. It does not close the underlying writer.
	Close() error
}

// NewWriter returns a Writer for format writing to w.
func NewWriter(format Format, w io.Writer) (Writer, error) {
	switch format {
	case FormatCSV, "":
		return NewCSVWriter(w), nil
	case FormatJSON:
		return NewJSONWriter(w), nil
	case FormatTable:
		return NewTableWriter(w), nil
	case FormatArrow:
		return NewArrowWriter(w)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// FormatValue renders v with at least one decimal digit: 31 becomes "31.0",
// 30.25 stays "30.25".
func FormatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

func record(r models.ResultRow) []string {
	return []string{r.Date, r.Station, string(r.Category), FormatValue(r.Value)}
}
