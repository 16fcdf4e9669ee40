package output

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weatherscan/internal/models"
)

func sampleRows() []models.ResultRow {
	return []models.ResultRow{
		{Date: "2004-1-15", Station: "Paya Lebar", Category: models.MaxTemperature, Value: 31},
		{Date: "2004-1-20", Station: "Paya Lebar", Category: models.MaxTemperature, Value: 31},
		{Date: "2004-2-3", Station: "Paya Lebar", Category: models.MinTemperature, Value: 27.5},
	}
}

func TestFormatValue(t *testing.T) {
	tests := map[float64]string{
		31:     "31.0",
		30.5:   "30.5",
		-2:     "-2.0",
		0:      "0.0",
		27.125: "27.125",
		1e21:   "1000000000000000000000.0",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatValue(in))
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatCSV, "CSV": FormatCSV, "json": FormatJSON, " table": FormatTable, "arrow": FormatArrow} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)

	assert.Equal(t, ".csv", FormatCSV.Extension())
	assert.Equal(t, ".arrow", FormatArrow.Extension())
}

func TestCSVWriterSingleHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)

	rows := sampleRows()
	require.NoError(t, w.WriteRows(rows[:2]))
	require.NoError(t, w.WriteRows(rows[2:]))
	require.NoError(t, w.Close())

	want := "Date,Station,Category,Value\n" +
		"2004-1-15,Paya Lebar,Max Temperature,31.0\n" +
		"2004-1-20,Paya Lebar,Max Temperature,31.0\n" +
		"2004-2-3,Paya Lebar,Min Temperature,27.5\n"
	assert.Equal(t, want, buf.String())
}

func TestCSVWriterEmpty(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)
	require.NoError(t, w.Close())
	assert.Equal(t, "Date,Station,Category,Value\n", buf.String())
}

func TestCSVWriterSanitizesStation(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)
	require.NoError(t, w.WriteRows([]models.ResultRow{
		{Date: "2004-1-1", Station: "=HYPERLINK(1)", Category: models.MaxHumidity, Value: 80},
	}))
	assert.Contains(t, buf.String(), "'=HYPERLINK(1)")
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(FormatJSON, &buf)
	require.NoError(t, err)
	require.NoError(t, w.WriteRows(sampleRows()))
	require.NoError(t, w.Close())

	var got []models.ResultRow
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var r models.ResultRow
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		got = append(got, r)
	}
	require.NoError(t, sc.Err())
	assert.Equal(t, sampleRows(), got)
}

func TestTableWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(FormatTable, &buf)
	require.NoError(t, err)
	require.NoError(t, w.WriteRows(sampleRows()))
	assert.Zero(t, buf.Len(), "table renders on close")
	require.NoError(t, w.Close())

	out := buf.String()
	assert.Contains(t, out, "Date")
	assert.Contains(t, out, "Max Temperature")
	assert.Contains(t, out, "27.5")
	assert.Equal(t, 2, strings.Count(out, "31.0"))
}

func TestArrowWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(FormatArrow, &buf)
	require.NoError(t, err)
	rows := sampleRows()
	require.NoError(t, w.WriteRows(rows[:1]))
	require.NoError(t, w.WriteRows(nil))
	require.NoError(t, w.WriteRows(rows[1:]))
	require.NoError(t, w.Close())

	r, err := ipc.NewFileReader(bytes.NewReader(buf.Bytes()), ipc.WithAllocator(memory.NewGoAllocator()))
	require.NoError(t, err)
	defer r.Close()

	assert.True(t, r.Schema().Equal(ResultSchema))
	require.Equal(t, 2, r.NumRecords())

	var got []models.ResultRow
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.Record(i)
		require.NoError(t, err)
		dates := rec.Column(0).(*array.String)
		stations := rec.Column(1).(*array.String)
		categories := rec.Column(2).(*array.String)
		values := rec.Column(3).(*array.Float64)
		for j := 0; j < int(rec.NumRows()); j++ {
			got = append(got, models.ResultRow{
				Date:     dates.Value(j),
				Station:  stations.Value(j),
				Category: models.Category(categories.Value(j)),
				Value:    values.Value(j),
			})
		}
	}
	assert.Equal(t, rows, got)
}

func TestNewWriterUnknownFormat(t *testing.T) {
	_, err := NewWriter("xml", &bytes.Buffer{})
	assert.Error(t, err)
}
