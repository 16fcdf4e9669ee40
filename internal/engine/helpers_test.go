package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type row struct {
	ts          string
	station     string
	temperature Reading
	humidity    Reading
}

func newStore(t *testing.T, rows ...row) *MemoryStore {
	t.Helper()
	var ts, st []string
	var temps, hums []Reading
	for _, r := range rows {
		ts = append(ts, r.ts)
		st = append(st, r.station)
		temps = append(temps, r.temperature)
		hums = append(hums, r.humidity)
	}
	store, err := NewMemoryStore(ts, st, temps, hums)
	require.NoError(t, err)
	return store
}

// sampleRows mixes stations, years, missing readings and a malformed timestamp.
func sampleRows() []row {
	return []row{
		{"2004-01-01 00:00", "Paya Lebar", Value(30.0), Value(80)},
		{"2004-01-15 12:30", "Changi", Value(33.0), Value(70)},
		{"2004-01-15 13:00", "Paya Lebar", Value(31.0), Value(75)},
		{"2004-01-20 09:00", "Paya Lebar", Value(31.0), Value(75)},
		{"2004-02-02 10:00", "Paya Lebar", Missing, Value(90)},
		{"2004-02-03 10:00", "Paya Lebar", Value(27.5), Missing},
		{"2004-03-10 08:00", "Paya Lebar", Missing, Missing},
		{"2004-13-40 25:99", "Paya Lebar", Value(99), Value(99)},
		{"2014-01-01 00:00", "Paya Lebar", Value(25.0), Value(60)},
		{"2014-06-01 00:00", "Paya Lebar", Value(29.0), Value(65)},
		{"2014-06-30 23:59", "Paya Lebar", Value(29.0), Value(64)},
		{"2004-12-31 23:00", "paya lebar", Value(20.0), Value(50)},
		{"2004-12-31 23:30", "Paya Lebar", Value(26.0), Value(88)},
	}
}
