package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"weatherscan/internal/models"
)

func TestRunQueryPayaLebar2004(t *testing.T) {
	store := newStore(t, sampleRows()...)

	report, err := RunQuery(store, 2004, "Paya Lebar")
	require.NoError(t, err)
	assert.Equal(t, 2004, report.Year)
	assert.Equal(t, "Paya Lebar", report.Station)
	require.Len(t, report.Categories, len(models.Categories))

	maxT := report.Categories[models.MaxTemperature]
	minT := report.Categories[models.MinTemperature]
	assert.Equal(t, []models.RowEntry{entry("2004-1-15", 31), entry("2004-1-20", 31)}, maxT[time.January])
	assert.Equal(t, []models.RowEntry{entry("2004-1-1", 30)}, minT[time.January])
	assert.Equal(t, []models.RowEntry{entry("2004-2-3", 27.5)}, maxT[time.February])
	assert.Equal(t, []models.RowEntry{entry("2004-2-3", 27.5)}, minT[time.February])
	assert.Empty(t, maxT[time.March])
	assert.Equal(t, []models.RowEntry{entry("2004-12-31", 26)}, maxT[time.December])
	assert.Equal(t, []models.RowEntry{entry("2004-12-31", 26)}, minT[time.December])

	maxH := report.Categories[models.MaxHumidity]
	minH := report.Categories[models.MinHumidity]
	assert.Equal(t, []models.RowEntry{entry("2004-1-1", 80)}, maxH[time.January])
	assert.Equal(t, []models.RowEntry{entry("2004-1-15", 75), entry("2004-1-20", 75)}, minH[time.January])
	assert.Equal(t, []models.RowEntry{entry("2004-2-2", 90)}, maxH[time.February])
	assert.Equal(t, []models.RowEntry{entry("2004-12-31", 88)}, maxH[time.December])

	for _, cat := range models.Categories {
		assert.Len(t, report.Categories[cat], 12, cat)
	}
}

func TestRunQueryRowsOrder(t *testing.T) {
	store := newStore(t, sampleRows()...)
	report, err := RunQuery(store, 2014, "Paya Lebar")
	require.NoError(t, err)

	rows := report.Rows()
	require.NotEmpty(t, rows)
	assert.Equal(t, models.ResultRow{Date: "2014-1-1", Station: "Paya Lebar", Category: models.MaxTemperature, Value: 25}, rows[0])
	assert.Equal(t, models.ResultRow{Date: "2014-6-1", Station: "Paya Lebar", Category: models.MaxTemperature, Value: 29}, rows[1])
	assert.Equal(t, models.ResultRow{Date: "2014-6-30", Station: "Paya Lebar", Category: models.MaxTemperature, Value: 29}, rows[2])

	// June's equal temperatures join both the max and min sets.
	assert.Len(t, rows, 10)
	assert.Equal(t, models.MinHumidity, rows[len(rows)-1].Category)
	assert.Equal(t, "2014-6-30", rows[len(rows)-1].Date)
}

func TestRunQueryNoMatches(t *testing.T) {
	store := newStore(t, sampleRows()...)
	report, err := RunQuery(store, 1999, "Paya Lebar")
	require.NoError(t, err)
	assert.Empty(t, report.Rows())
	for _, cat := range models.Categories {
		assert.Len(t, report.Categories[cat], 12)
	}
}

func TestRunQueryIdempotent(t *testing.T) {
	store := newStore(t, sampleRows()...)
	first, err := RunQuery(store, 2004, "Paya Lebar")
	require.NoError(t, err)
	second, err := RunQuery(store, 2004, "Paya Lebar")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRunQueryMemoryMatchesDisk(t *testing.T) {
	mem := newStore(t, sampleRows()...)

	for _, tc := range []struct {
		name  string
		codec Codec
		opts  []DiskOption
	}{
		{"plain", CodecPlain, nil},
		{"plain indexed", CodecPlain, []DiskOption{WithLineIndex()}},
		{"zstd", CodecZstd, nil},
		{"lz4", CodecLZ4, nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, WriteColumns(mem, dir, tc.codec))
			disk, err := OpenDisk(dir, tc.opts...)
			require.NoError(t, err)

			for _, year := range []int{2004, 2014} {
				want, err := RunQuery(mem, year, "Paya Lebar")
				require.NoError(t, err)
				got, err := RunQuery(disk, year, "Paya Lebar")
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
		})
	}
}

type failingStore struct {
	ColumnStore
	col Column
}

var errBoom = errors.New("boom")

func (f failingStore) Readings(col Column) ([]Reading, error) {
	if col == f.col {
		return nil, errBoom
	}
	return f.ColumnStore.Readings(col)
}

func (f failingStore) ReadingAt(col Column, pos int) (Reading, error) {
	if col == f.col {
		return Missing, errBoom
	}
	return f.ColumnStore.ReadingAt(col, pos)
}

func TestRunQueryPropagatesStoreErrors(t *testing.T) {
	store := failingStore{ColumnStore: newStore(t, sampleRows()...), col: ColumnHumidity}
	report, err := RunQuery(store, 2004, "Paya Lebar")
	assert.ErrorIs(t, err, errBoom)
	assert.Nil(t, report)
}

func TestExecutorRun(t *testing.T) {
	exec := NewExecutor("memory", newStore(t, sampleRows()...), zaptest.NewLogger(t))
	assert.Equal(t, "memory", exec.Backend())
	require.NotNil(t, exec.Store())

	report, err := exec.Run(2004, "Paya Lebar")
	require.NoError(t, err)
	want, err := RunQuery(exec.Store(), 2004, "Paya Lebar")
	require.NoError(t, err)
	assert.Equal(t, want, report)

	failing := NewExecutor("memory", failingStore{ColumnStore: exec.Store(), col: ColumnTemperature}, nil)
	_, err = failing.Run(2004, "Paya Lebar")
	assert.ErrorIs(t, err, errBoom)
}
