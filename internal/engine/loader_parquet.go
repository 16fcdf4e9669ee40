package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/parquet-go/parquet-go"
	"go.uber.org/zap"
)

// SensorRecord is the row layout of a Parquet sensor dataset. Readings are
// optional; a null cell is a missing reading.
type SensorRecord struct {
	ID          string   `parquet:"id"`
	Timestamp   string   `parquet:"timestamp"`
	Station     string   `parquet:"station"`
	Temperature *float64 `parquet:"temperature,optional"`
	Humidity    *float64 `parquet:"humidity,optional"`
}

// LoadParquet reads a Parquet sensor dataset into a MemoryStore.
func LoadParquet(path string, logger *zap.Logger) (*MemoryStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()
	logger.Info("loading parquet", zap.String("path", path))

	records, err := parquet.ReadFile[SensorRecord](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet dataset %s: %w", path, err)
	}

	store, err := FromRecords(records)
	if err != nil {
		return nil, err
	}

	logger.Info("load complete", zap.Int("rows", len(records)), zap.Duration("duration", time.Since(start)))
	return store, nil
}

// FromRecords materializes records column by column.
func FromRecords(records []SensorRecord) (*MemoryStore, error) {
	timestamps := make([]string, len(records))
	stations := make([]string, len(records))
	temperatures := make([]Reading, len(records))
	humidities := make([]Reading, len(records))

	for i, rec := range records {
		timestamps[i] = rec.Timestamp
		stations[i] = rec.Station
		temperatures[i] = optionalReading(rec.Temperature)
		humidities[i] = optionalReading(rec.Humidity)
	}
	return NewMemoryStore(timestamps, stations, temperatures, humidities)
}

func optionalReading(v *float64) Reading {
	if v == nil || math.IsNaN(*v) {
		return Missing
	}
	return Value(*v)
}
