package engine

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"weatherscan/internal/metrics"
	"weatherscan/internal/models"
)

// queryStats are the per-stage row counts of one query.
type queryStats struct {
	yearRows    int
	stationRows int
}

// RunQuery answers "monthly extremes of temperature and humidity at station
// during year". The year predicate runs first over the full timestamp column;
// the station predicate only visits year matches. Any store error fails the
// whole query.
func RunQuery(store ColumnStore, year int, station string) (*models.Report, error) {
	report, _, err := runQuery(store, year, station)
	return report, err
}

func runQuery(store ColumnStore, year int, station string) (*models.Report, queryStats, error) {
	var stats queryStats

	byYear, err := FilterByYear(store, year)
	if err != nil {
		return nil, stats, err
	}
	stats.yearRows = len(byYear)

	positions, err := FilterByStation(store, station, byYear)
	if err != nil {
		return nil, stats, err
	}
	stats.stationRows = len(positions)

	// The two scans read disjoint numeric columns and share only read access
	// to the positions and timestamps.
	var temperature, humidity map[time.Month]models.Extremes
	var g errgroup.Group
	g.Go(func() error {
		var err error
		temperature, err = Aggregate(store, ColumnTemperature, positions)
		return err
	})
	g.Go(func() error {
		var err error
		humidity, err = Aggregate(store, ColumnHumidity, positions)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	report := &models.Report{
		Year:       year,
		Station:    station,
		Categories: make(map[models.Category]models.Monthly, len(models.Categories)),
	}
	report.Categories[models.MaxTemperature], report.Categories[models.MinTemperature] = split(temperature)
	report.Categories[models.MaxHumidity], report.Categories[models.MinHumidity] = split(humidity)

	return report, stats, nil
}

func split(extremes map[time.Month]models.Extremes) (highs, lows models.Monthly) {
	highs = make(models.Monthly, len(extremes))
	lows = make(models.Monthly, len(extremes))
	for month, ex := range extremes {
		highs[month] = ex.Max
		lows[month] = ex.Min
	}
	return highs, lows
}

// Executor runs queries against one named backend, logging each query and
// recording metrics.
type Executor struct {
	backend string
	store   ColumnStore
	logger  *zap.Logger
}

// NewExecutor wraps store under a backend name such as "memory" or "disk".
func NewExecutor(backend string, store ColumnStore, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		backend: backend,
		store:   store,
		logger:  logger.With(zap.String("backend", backend)),
	}
}

// Backend returns the backend name.
func (e *Executor) Backend() string {
	return e.backend
}

// Store returns the wrapped column store.
func (e *Executor) Store() ColumnStore {
	return e.store
}

// Run executes one query.
func (e *Executor) Run(year int, station string) (*models.Report, error) {
	log := e.logger.With(
		zap.String("query_id", uuid.NewString()),
		zap.Int("year", year),
		zap.String("station", station),
	)
	log.Info("processing query")

	timer := metrics.NewTimer()
	report, stats, err := runQuery(e.store, year, station)
	elapsed := timer.Elapsed()
	metrics.ObserveQuery(e.backend, elapsed, err)

	if err != nil {
		log.Error("query failed", zap.Error(err), zap.Duration("duration", elapsed))
		return nil, err
	}

	metrics.ObserveRows(e.backend, "year", stats.yearRows)
	metrics.ObserveRows(e.backend, "station", stats.stationRows)
	log.Info("query complete",
		zap.Int("year_rows", stats.yearRows),
		zap.Int("station_rows", stats.stationRows),
		zap.Duration("duration", elapsed),
	)
	return report, nil
}
