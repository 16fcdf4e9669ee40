package output

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"weatherscan/internal/models"
)

// TableWriter buffers rows and renders them as one ASCII table on Close.
type TableWriter struct {
	table *tablewriter.Table
}

// NewTableWriter creates a new table writer.
func NewTableWriter(w io.Writer) *TableWriter {
	t := tablewriter.NewWriter(w)
	t.SetHeader(Header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
	})
	return &TableWriter{table: t}
}

func (t *TableWriter) WriteRows(rows []models.ResultRow) error {
	for _, r := range rows {
		t.table.Append(record(r))
	}
	return nil
}

func (t *TableWriter) Close() error {
	t.table.Render()
	return nil
}
