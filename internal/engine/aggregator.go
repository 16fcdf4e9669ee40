package engine

import (
	"fmt"
	"time"

	"weatherscan/internal/models"
)

// monthState is the running max/min of one calendar month.
type monthState struct {
	seen       bool
	max, min   float64
	maxEntries []models.RowEntry
	minEntries []models.RowEntry
}

// observe applies one qualifying reading. The max and min checks are
// independent and both compare against the extremes held before this entry,
// so a value equal to both (a month with one earlier point) joins both sets.
func (s *monthState) observe(e models.RowEntry) {
	if !s.seen {
		s.seen = true
		s.max, s.min = e.Value, e.Value
		s.maxEntries = append(s.maxEntries, e)
		s.minEntries = append(s.minEntries, e)
		return
	}

	hi, lo := s.max, s.min

	switch {
	case e.Value > hi:
		s.max = e.Value
		s.maxEntries = []models.RowEntry{e}
	case e.Value == hi:
		s.maxEntries = append(s.maxEntries, e)
	}

	switch {
	case e.Value < lo:
		s.min = e.Value
		s.minEntries = []models.RowEntry{e}
	case e.Value == lo:
		s.minEntries = append(s.minEntries, e)
	}
}

func (s *monthState) extremes() models.Extremes {
	ex := models.Extremes{
		Max: make([]models.RowEntry, len(s.maxEntries)),
		Min: make([]models.RowEntry, len(s.minEntries)),
	}
	copy(ex.Max, s.maxEntries)
	copy(ex.Min, s.minEntries)
	return ex
}

// Aggregate computes, per calendar month, the entries attaining the maximum
// and minimum of a numeric column over positions. Positions are visited in
// the given (ascending) order, which fixes tie order. Missing readings and
// unparsable timestamps are skipped. Every month is present in the result;
// months without data have empty sequences.
func Aggregate(store ColumnStore, col Column, positions []int) (map[time.Month]models.Extremes, error) {
	if !col.Numeric() {
		return nil, fmt.Errorf("aggregate %s: %w", col, ErrUnknownColumn)
	}

	var months [12]monthState

	for _, pos := range positions {
		r, err := store.ReadingAt(col, pos)
		if err != nil {
			return nil, fmt.Errorf("aggregate %s: %w", col, err)
		}
		if !r.Valid {
			continue
		}

		ts, err := store.StringAt(ColumnTimestamp, pos)
		if err != nil {
			return nil, fmt.Errorf("aggregate %s: %w", col, err)
		}
		d, ok := ParseTimestamp(ts)
		if !ok {
			continue
		}

		months[d.Month-1].observe(models.RowEntry{Date: d.String(), Value: r.Value})
	}

	result := make(map[time.Month]models.Extremes, len(months))
	for i := range months {
		result[time.Month(i+1)] = months[i].extremes()
	}
	return result, nil
}
