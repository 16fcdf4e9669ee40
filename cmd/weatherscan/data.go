package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"weatherscan/internal/config"
	"weatherscan/internal/engine"
	"weatherscan/internal/metrics"
)

// dataFlags are the dataset and column directory flags shared by load, query,
// stations and serve. Unset flags fall back to the config.
type dataFlags struct {
	csv       string
	parquet   string
	columns   string
	codec     string
	lineIndex bool
}

func (d *dataFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&d.csv, "csv", "", "Source dataset in CSV format")
	f.StringVar(&d.parquet, "parquet", "", "Source dataset in Parquet format (wins over --csv)")
	f.StringVar(&d.columns, "columns", "", "Column file directory")
	f.StringVar(&d.codec, "codec", "", "Column file codec when writing: plain, zstd or lz4")
	f.BoolVar(&d.lineIndex, "line-index", false, "Index line offsets of plain column files for direct lookups")
}

// resolve fills unset flags from cfg.
func (d *dataFlags) resolve(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if !f.Changed("csv") && !f.Changed("parquet") {
		d.csv = cfg.Data.CSV
		d.parquet = cfg.Data.Parquet
	}
	if !f.Changed("columns") {
		d.columns = cfg.Columns.Dir
	}
	if !f.Changed("codec") {
		d.codec = cfg.Columns.Codec
	}
	if !f.Changed("line-index") {
		d.lineIndex = cfg.Columns.LineIndex
	}
}

// loadMemory ingests the configured dataset and records its size and the
// process RSS afterwards.
func (a *app) loadMemory(d dataFlags) (*engine.MemoryStore, error) {
	var (
		store *engine.MemoryStore
		err   error
	)
	switch {
	case d.parquet != "":
		store, err = engine.LoadParquet(d.parquet, a.log)
	case d.csv != "":
		store, err = engine.LoadCSV(d.csv, a.log)
	default:
		return nil, errors.New("no dataset configured, pass --csv or --parquet")
	}
	if err != nil {
		return nil, err
	}

	n, _ := store.Len()
	metrics.StoreRows.WithLabelValues(config.BackendMemory).Set(float64(n))
	if rss, err := metrics.SampleResidentMemory(); err != nil {
		a.log.Warn("failed to sample memory", zap.Error(err))
	} else {
		a.log.Info("memory store ready", zap.Int("rows", n), zap.Uint64("rss_bytes", rss))
	}
	return store, nil
}

// openDisk opens the column directory. When mem holds the dataset loaded in
// this run the column files are rewritten from it so that both backends see
// the same rows. Otherwise existing files are opened as they are, and missing
// ones are written from the dataset first.
func (a *app) openDisk(d dataFlags, mem *engine.MemoryStore) (*engine.DiskStore, error) {
	var opts []engine.DiskOption
	if d.lineIndex {
		opts = append(opts, engine.WithLineIndex())
	}

	if mem != nil {
		if err := a.writeColumns(mem, d); err != nil {
			return nil, err
		}
	}

	disk, err := engine.OpenDisk(d.columns, opts...)
	if mem == nil && errors.Is(err, fs.ErrNotExist) {
		a.log.Info("column files missing, writing them", zap.String("dir", d.columns))
		if mem, err = a.loadMemory(d); err != nil {
			return nil, err
		}
		if err = a.writeColumns(mem, d); err != nil {
			return nil, err
		}
		disk, err = engine.OpenDisk(d.columns, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open column files: %w", err)
	}

	n, _ := disk.Len()
	metrics.StoreRows.WithLabelValues(config.BackendDisk).Set(float64(n))
	a.log.Info("disk store ready", zap.String("dir", disk.Dir()), zap.String("codec", string(disk.Codec())), zap.Int("rows", n))
	return disk, nil
}

func (a *app) writeColumns(store engine.ColumnStore, d dataFlags) error {
	codec, err := engine.ParseCodec(d.codec)
	if err != nil {
		return err
	}
	timer := metrics.NewTimer()
	if err := engine.WriteColumns(store, d.columns, codec); err != nil {
		return err
	}
	a.log.Info("column files written",
		zap.String("dir", d.columns),
		zap.String("codec", string(codec)),
		zap.Duration("duration", timer.Elapsed()),
	)
	return nil
}
