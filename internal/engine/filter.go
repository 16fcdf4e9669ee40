package engine

import (
	"fmt"
	"sort"
)

// FilterByYear scans the whole timestamp column and returns, ascending, the
// positions whose timestamp parses and falls in year.
func FilterByYear(store ColumnStore, year int) ([]int, error) {
	timestamps, err := store.Strings(ColumnTimestamp)
	if err != nil {
		return nil, fmt.Errorf("filter by year: %w", err)
	}

	positions := make([]int, 0)
	for pos, ts := range timestamps {
		d, ok := ParseTimestamp(ts)
		if ok && d.Year == year {
			positions = append(positions, pos)
		}
	}
	return positions, nil
}

// FilterByStation keeps the candidates whose station equals station exactly.
// Only candidate positions are read and their order is preserved.
func FilterByStation(store ColumnStore, station string, candidates []int) ([]int, error) {
	positions := make([]int, 0, len(candidates))
	for _, pos := range candidates {
		s, err := store.StringAt(ColumnStation, pos)
		if err != nil {
			return nil, fmt.Errorf("filter by station: %w", err)
		}
		if s == station {
			positions = append(positions, pos)
		}
	}
	return positions, nil
}

// Stations returns the distinct station names in the store, sorted.
func Stations(store ColumnStore) ([]string, error) {
	stations, err := store.Strings(ColumnStation)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}

	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, s := range stations {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		names = append(names, s)
	}
	sort.Strings(names)
	return names, nil
}
