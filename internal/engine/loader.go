package engine

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Dataset column order: id, timestamp, station, temperature, humidity.
const (
	fieldID = iota
	fieldTimestamp
	fieldStation
	fieldTemperature
	fieldHumidity
	fieldCount
)

// --- 1. CSV INGESTION ---

// LoadCSV reads the sensor dataset at path into a MemoryStore. The first line
// is a header. Bad numeric cells become missing readings; only a structurally
// broken file (wrong field count, unreadable) is an error.
func LoadCSV(path string, logger *zap.Logger) (*MemoryStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()
	logger.Info("loading csv", zap.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	store, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	n, _ := store.Len()
	logger.Info("load complete", zap.Int("rows", n), zap.Duration("duration", time.Since(start)))
	return store, nil
}

// ReadCSV parses a headered sensor CSV from r.
func ReadCSV(r io.Reader) (*MemoryStore, error) {
	cr := csv.NewReader(bufio.NewReaderSize(r, lineBufferSize))
	cr.FieldsPerRecord = fieldCount
	cr.ReuseRecord = true

	// Skip header
	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return NewMemoryStore(nil, nil, nil, nil)
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var (
		timestamps   []string
		stations     []string
		temperatures []Reading
		humidities   []Reading
	)

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		// Fields are slices of one per-record string; clone so it can be freed.
		timestamps = append(timestamps, strings.Clone(record[fieldTimestamp]))
		stations = append(stations, internStation(stations, record[fieldStation]))
		temperatures = append(temperatures, ParseReading(record[fieldTemperature]))
		humidities = append(humidities, ParseReading(record[fieldHumidity]))
	}

	return NewMemoryStore(timestamps, stations, temperatures, humidities)
}

// internStation reuses the previous row's string when the station repeats,
// which it does for long runs in sorted sensor exports.
func internStation(stations []string, s string) string {
	if n := len(stations); n > 0 && stations[n-1] == s {
		return stations[n-1]
	}
	return strings.Clone(s)
}
