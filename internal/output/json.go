package output

import (
	"io"

	"github.com/goccy/go-json"

	"weatherscan/internal/models"
)

// JSONWriter outputs rows as JSON Lines.
type JSONWriter struct {
	enc *json.Encoder
}

// NewJSONWriter creates a new JSON Lines writer.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{enc: json.NewEncoder(w)}
}

func (j *JSONWriter) WriteRows(rows []models.ResultRow) error {
	for _, r := range rows {
		if err := j.enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

func (j *JSONWriter) Close() error { return nil }
