package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Column identifies one of the four stored columns. The id column of the
// dataset is never queried and is not kept.
type Column int

const (
	ColumnTimestamp Column = iota
	ColumnStation
	ColumnTemperature
	ColumnHumidity
)

// Columns lists every stored column in file order.
var Columns = []Column{ColumnTimestamp, ColumnStation, ColumnTemperature, ColumnHumidity}

var columnNames = [...]string{"timestamp", "station", "temperature", "humidity"}

func (c Column) String() string {
	if c < 0 || int(c) >= len(columnNames) {
		return "column(" + strconv.Itoa(int(c)) + ")"
	}
	return columnNames[c]
}

// Numeric reports whether the column holds readings rather than text.
func (c Column) Numeric() bool {
	return c == ColumnTemperature || c == ColumnHumidity
}

func (c Column) textual() bool {
	return c == ColumnTimestamp || c == ColumnStation
}

// missingToken is how a missing reading is written to column files.
const missingToken = "NA"

// Reading is a numeric cell. Valid is false when the source value was
// missing or unparsable; such readings never take part in min/max.
type Reading struct {
	Value float64
	Valid bool
}

// Missing is the absent reading.
var Missing = Reading{}

// Value returns a present reading.
func Value(v float64) Reading {
	return Reading{Value: v, Valid: true}
}

// ParseReading converts a cell to a Reading. Empty, non-numeric and NaN
// cells are missing.
func ParseReading(s string) Reading {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return Missing
	}
	return Value(v)
}

func (r Reading) String() string {
	if !r.Valid {
		return missingToken
	}
	return strconv.FormatFloat(r.Value, 'g', -1, 64)
}

// ColumnStore is positional access to the four columns. Position i of every
// column belongs to the same record. Slices returned by Strings and Readings
// must be treated as read-only.
type ColumnStore interface {
	Len() (int, error)
	Strings(col Column) ([]string, error)
	Readings(col Column) ([]Reading, error)
	StringAt(col Column, pos int) (string, error)
	ReadingAt(col Column, pos int) (Reading, error)
}

// MemoryStore holds the columns as flat slices (struct of arrays).
type MemoryStore struct {
	timestamps   []string
	stations     []string
	temperatures []Reading
	humidities   []Reading
}

// NewMemoryStore builds a store from position-aligned columns.
func NewMemoryStore(timestamps, stations []string, temperatures, humidities []Reading) (*MemoryStore, error) {
	n := len(timestamps)
	if len(stations) != n || len(temperatures) != n || len(humidities) != n {
		return nil, fmt.Errorf("%w: timestamp=%d station=%d temperature=%d humidity=%d",
			ErrColumnMismatch, n, len(stations), len(temperatures), len(humidities))
	}
	return &MemoryStore{
		timestamps:   timestamps,
		stations:     stations,
		temperatures: temperatures,
		humidities:   humidities,
	}, nil
}

func (s *MemoryStore) Len() (int, error) {
	return len(s.timestamps), nil
}

func (s *MemoryStore) Strings(col Column) ([]string, error) {
	switch col {
	case ColumnTimestamp:
		return s.timestamps, nil
	case ColumnStation:
		return s.stations, nil
	}
	return nil, fmt.Errorf("strings of %s: %w", col, ErrUnknownColumn)
}

func (s *MemoryStore) Readings(col Column) ([]Reading, error) {
	switch col {
	case ColumnTemperature:
		return s.temperatures, nil
	case ColumnHumidity:
		return s.humidities, nil
	}
	return nil, fmt.Errorf("readings of %s: %w", col, ErrUnknownColumn)
}

func (s *MemoryStore) StringAt(col Column, pos int) (string, error) {
	values, err := s.Strings(col)
	if err != nil {
		return "", err
	}
	if err := checkPos(col, pos, len(values)); err != nil {
		return "", err
	}
	return values[pos], nil
}

func (s *MemoryStore) ReadingAt(col Column, pos int) (Reading, error) {
	values, err := s.Readings(col)
	if err != nil {
		return Missing, err
	}
	if err := checkPos(col, pos, len(values)); err != nil {
		return Missing, err
	}
	return values[pos], nil
}
