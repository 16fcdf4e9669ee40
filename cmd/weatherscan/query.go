package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"weatherscan/internal/config"
	"weatherscan/internal/engine"
	"weatherscan/internal/output"
)

// stdoutPath sends results to standard output instead of files.
const stdoutPath = "-"

type queryFlags struct {
	data    dataFlags
	years   []int
	station string
	backend string
	format  string
	out     string
}

func (q *queryFlags) resolve(cmd *cobra.Command, cfg *config.Config) {
	q.data.resolve(cmd, cfg)
	f := cmd.Flags()
	if !f.Changed("year") {
		q.years = cfg.Query.Years
	}
	if !f.Changed("station") {
		q.station = cfg.Query.Station
	}
	if !f.Changed("backend") {
		q.backend = cfg.Query.Backend
	}
	if !f.Changed("format") {
		q.format = cfg.Query.Format
	}
	if !f.Changed("out") {
		q.out = cfg.Query.OutDir
	}
}

func newQueryCmd(a *app) *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Report monthly temperature and humidity extremes",
		Long: `Query runs one (year, station) query per --year against the chosen backend
and writes the flattened result rows. With backend "both" the memory results
go to ScanResult.<ext> and the disk results to "ScanResult (Disk).<ext>".
Missing column files are written from the dataset first.

Example:
  weatherscan query --year 2004 --year 2014 --station "Paya Lebar" --backend both`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q.resolve(cmd, a.cfg)
			return a.runQueries(cmd.OutOrStdout(), q)
		},
	}
	q.data.register(cmd)
	f := cmd.Flags()
	f.IntSliceVar(&q.years, "year", nil, "Year to query, repeatable (default from config: 2004, 2014)")
	f.StringVar(&q.station, "station", "", "Station name, matched exactly")
	f.StringVar(&q.backend, "backend", "", "memory, disk or both")
	f.StringVar(&q.format, "format", "", "Output format: csv, json, table or arrow")
	f.StringVar(&q.out, "out", "", "Output directory, or - for standard output")
	return cmd
}

func (a *app) runQueries(stdout io.Writer, q queryFlags) error {
	format, err := output.ParseFormat(q.format)
	if err != nil {
		return err
	}

	var backends []string
	switch q.backend {
	case config.BackendMemory, config.BackendDisk:
		backends = []string{q.backend}
	case config.BackendBoth:
		backends = []string{config.BackendMemory, config.BackendDisk}
	default:
		return fmt.Errorf("unknown backend %q (want memory, disk or both)", q.backend)
	}

	var mem *engine.MemoryStore
	executors := make([]*engine.Executor, 0, len(backends))
	for _, b := range backends {
		var store engine.ColumnStore
		if b == config.BackendMemory {
			if mem, err = a.loadMemory(q.data); err != nil {
				return err
			}
			store = mem
		} else {
			if store, err = a.openDisk(q.data, mem); err != nil {
				return err
			}
		}
		executors = append(executors, engine.NewExecutor(b, store, a.log))
	}

	for _, exec := range executors {
		if err := a.writeResults(stdout, exec, q, format); err != nil {
			return err
		}
	}
	return nil
}

// resultFile names the result file of a backend.
func resultFile(backend string, format output.Format) string {
	if backend == config.BackendDisk {
		return "ScanResult (Disk)" + format.Extension()
	}
	return "ScanResult" + format.Extension()
}

// writeResults runs every year against exec and writes all rows through one
// writer, so a CSV file carries a single header.
func (a *app) writeResults(stdout io.Writer, exec *engine.Executor, q queryFlags, format output.Format) (err error) {
	dst := stdout
	path := stdoutPath
	if q.out != stdoutPath {
		if err := os.MkdirAll(q.out, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		path = filepath.Join(q.out, resultFile(exec.Backend(), format))
		var f *os.File
		if f, err = os.Create(path); err != nil {
			return fmt.Errorf("failed to create result file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		dst = f
	}

	w, err := output.NewWriter(format, dst)
	if err != nil {
		return err
	}
	rows := 0
	for _, year := range q.years {
		report, err := exec.Run(year, q.station)
		if err != nil {
			return err
		}
		result := report.Rows()
		rows += len(result)
		if err := w.WriteRows(result); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	a.log.Info("results written",
		zap.String("backend", exec.Backend()),
		zap.String("path", path),
		zap.Int("rows", rows),
	)
	return nil
}
