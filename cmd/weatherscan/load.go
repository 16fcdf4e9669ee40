package main

import (
	"github.com/spf13/cobra"
)

func newLoadCmd(a *app) *cobra.Command {
	var data dataFlags

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Ingest a dataset and write its column files",
		Long: `Load reads a CSV or Parquet sensor dataset and writes one file per column
(timestamp, station, temperature, humidity) under the column directory.

Example:
  weatherscan load --csv SingaporeWeather.csv --columns columns --codec zstd`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data.resolve(cmd, a.cfg)
			store, err := a.loadMemory(data)
			if err != nil {
				return err
			}
			return a.writeColumns(store, data)
		},
	}
	data.register(cmd)
	return cmd
}
