package output

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"weatherscan/internal/models"
)

// ResultSchema is the Arrow schema of result rows.
var ResultSchema = arrow.NewSchema([]arrow.Field{
	{Name: "date", Type: arrow.BinaryTypes.String},
	{Name: "station", Type: arrow.BinaryTypes.String},
	{Name: "category", Type: arrow.BinaryTypes.String},
	{Name: "value", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// ArrowWriter outputs rows as an Arrow IPC file.
type ArrowWriter struct {
	fw      *ipc.FileWriter
	builder *array.RecordBuilder
}

// NewArrowWriter creates a new Arrow IPC file writer.
func NewArrowWriter(w io.Writer) (*ArrowWriter, error) {
	pool := memory.NewGoAllocator()
	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(ResultSchema), ipc.WithAllocator(pool))
	if err != nil {
		return nil, fmt.Errorf("failed to create Arrow writer: %w", err)
	}
	return &ArrowWriter{
		fw:      fw,
		builder: array.NewRecordBuilder(pool, ResultSchema),
	}, nil
}

// WriteRows writes rows as one record batch. An empty slice writes nothing.
func (a *ArrowWriter) WriteRows(rows []models.ResultRow) error {
	if len(rows) == 0 {
		return nil
	}
	dates := a.builder.Field(0).(*array.StringBuilder)
	stations := a.builder.Field(1).(*array.StringBuilder)
	categories := a.builder.Field(2).(*array.StringBuilder)
	values := a.builder.Field(3).(*array.Float64Builder)

	for _, r := range rows {
		dates.Append(r.Date)
		stations.Append(r.Station)
		categories.Append(string(r.Category))
		values.Append(r.Value)
	}

	rec := a.builder.NewRecord()
	defer rec.Release()
	if err := a.fw.Write(rec); err != nil {
		return fmt.Errorf("failed to write Arrow record batch: %w", err)
	}
	return nil
}

func (a *ArrowWriter) Close() error {
	a.builder.Release()
	if err := a.fw.Close(); err != nil {
		return fmt.Errorf("failed to close Arrow writer: %w", err)
	}
	return nil
}
