package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"weatherscan/internal/config"
	"weatherscan/internal/logger"
)

var version = "0.1.0"

// dotEnvFile is loaded from the working directory when present.
const dotEnvFile = ".env"

// defaultConfigFile is read from the working directory when --config is not
// given and the file exists.
const defaultConfigFile = "weatherscan.yaml"

// app carries state shared by all subcommands once the root pre-run hook has
// loaded configuration.
type app struct {
	cfgPath string
	cfg     *config.Config
	log     *zap.Logger
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "weatherscan",
		Short: "Monthly temperature and humidity extremes over a columnar sensor dataset",
		Long: `weatherscan answers "what were the monthly extreme temperature and humidity
readings at a station during a year?" over an in-memory column store or over
column files on disk. Both backends return identical results.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "Path to a YAML config file (default ./"+defaultConfigFile+" if present)")

	root.AddCommand(
		newLoadCmd(a),
		newQueryCmd(a),
		newStationsCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) init() error {
	// Environment from .env must be in place before config reads WEATHERSCAN_*.
	envErr := loadDotEnv(dotEnvFile)

	path := a.cfgPath
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to stat %s: %w", defaultConfigFile, err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	log, err := logger.Init(cfg.Log)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	if envErr != nil {
		log.Warn("failed to load env file", zap.String("path", dotEnvFile), zap.Error(envErr))
	}
	if path != "" {
		log.Debug("config loaded", zap.String("path", path))
	}
	return nil
}

// loadDotEnv sets variables from the file at path without overriding the
// environment. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
