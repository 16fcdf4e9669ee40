package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"weatherscan/internal/models"
)

// CSVWriter outputs rows as CSV with a single header row.
type CSVWriter struct {
	w             *csv.Writer
	headerWritten bool
}

// NewCSVWriter creates a new CSV writer.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

func (c *CSVWriter) WriteRows(rows []models.ResultRow) error {
	if err := c.writeHeader(); err != nil {
		return err
	}
	for _, r := range rows {
		rec := record(r)
		rec[1] = sanitize(rec[1])
		if err := c.w.Write(rec); err != nil {
			return err
		}
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// Close writes the header if no rows were ever written.
func (c *CSVWriter) Close() error {
	if err := c.writeHeader(); err != nil {
		return err
	}
	c.w.Flush()
	return c.w.Error()
}

func (c *CSVWriter) writeHeader() error {
	if c.headerWritten {
		return nil
	}
	c.headerWritten = true
	return c.w.Write(Header)
}

// sanitize guards free-text cells against formula injection when the file is
// opened in a spreadsheet.
func sanitize(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '\n', '|':
		return "'" + strings.ReplaceAll(s, "'", "''")
	}
	return s
}
