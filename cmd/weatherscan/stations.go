package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"weatherscan/internal/config"
	"weatherscan/internal/engine"
)

func newStationsCmd(a *app) *cobra.Command {
	var (
		data    dataFlags
		backend string
	)

	cmd := &cobra.Command{
		Use:   "stations",
		Short: "List the distinct station names in the dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			data.resolve(cmd, a.cfg)

			var (
				store engine.ColumnStore
				err   error
			)
			switch backend {
			case config.BackendMemory:
				store, err = a.loadMemory(data)
			case config.BackendDisk:
				store, err = a.openDisk(data, nil)
			default:
				return fmt.Errorf("unknown backend %q (want memory or disk)", backend)
			}
			if err != nil {
				return err
			}

			stations, err := engine.Stations(store)
			if err != nil {
				return err
			}
			for _, s := range stations {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
	data.register(cmd)
	cmd.Flags().StringVar(&backend, "backend", config.BackendDisk, "memory or disk")
	return cmd
}
