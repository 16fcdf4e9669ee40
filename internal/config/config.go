// Package config loads weatherscan settings from a YAML file and
// WEATHERSCAN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"weatherscan/internal/engine"
	"weatherscan/internal/logger"
	"weatherscan/internal/output"
)

// EnvPrefix prefixes environment overrides, e.g. WEATHERSCAN_SERVER_ADDR.
const EnvPrefix = "WEATHERSCAN"

// Backend names accepted by queries.
const (
	BackendMemory = "memory"
	BackendDisk   = "disk"
	BackendBoth   = "both"
)

type Config struct {
	Data    DataConfig    `mapstructure:"data" yaml:"data"`
	Columns ColumnsConfig `mapstructure:"columns" yaml:"columns"`
	Query   QueryConfig   `mapstructure:"query" yaml:"query"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Log     logger.Config `mapstructure:"log" yaml:"log"`
}

// DataConfig names the source dataset. Parquet wins when both are set.
type DataConfig struct {
	CSV     string `mapstructure:"csv" yaml:"csv"`
	Parquet string `mapstructure:"parquet" yaml:"parquet"`
}

// ColumnsConfig describes the on-disk column directory.
type ColumnsConfig struct {
	Dir       string `mapstructure:"dir" yaml:"dir"`
	Codec     string `mapstructure:"codec" yaml:"codec"`
	LineIndex bool   `mapstructure:"line_index" yaml:"line_index"`
}

// QueryConfig holds the defaults of the query command.
type QueryConfig struct {
	Years   []int  `mapstructure:"years" yaml:"years"`
	Station string `mapstructure:"station" yaml:"station"`
	Backend string `mapstructure:"backend" yaml:"backend"`
	Format  string `mapstructure:"format" yaml:"format"`
	OutDir  string `mapstructure:"out_dir" yaml:"out_dir"`
}

type ServerConfig struct {
	Addr     string   `mapstructure:"addr" yaml:"addr"`
	Backends []string `mapstructure:"backends" yaml:"backends"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Data: DataConfig{CSV: "SingaporeWeather.csv"},
		Columns: ColumnsConfig{
			Dir:   "columns",
			Codec: string(engine.CodecPlain),
		},
		Query: QueryConfig{
			Years:   []int{2004, 2014},
			Station: "Paya Lebar",
			Backend: BackendBoth,
			Format:  string(output.FormatCSV),
			OutDir:  ".",
		},
		Server: ServerConfig{
			Addr:     ":8080",
			Backends: []string{BackendMemory, BackendDisk},
		},
		Log: logger.Config{
			Level:       "info",
			Encoding:    "console",
			OutputPaths: []string{"stderr"},
		},
	}
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("data.csv", d.Data.CSV)
	v.SetDefault("data.parquet", d.Data.Parquet)
	v.SetDefault("columns.dir", d.Columns.Dir)
	v.SetDefault("columns.codec", d.Columns.Codec)
	v.SetDefault("columns.line_index", d.Columns.LineIndex)
	v.SetDefault("query.years", d.Query.Years)
	v.SetDefault("query.station", d.Query.Station)
	v.SetDefault("query.backend", d.Query.Backend)
	v.SetDefault("query.format", d.Query.Format)
	v.SetDefault("query.out_dir", d.Query.OutDir)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.backends", d.Server.Backends)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
	v.SetDefault("log.encoding", d.Log.Encoding)
	v.SetDefault("log.output_paths", d.Log.OutputPaths)
}

// Load reads the file at path (optional) over the defaults, applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks names and ranges.
func (c *Config) Validate() error {
	var errs []error

	if c.Columns.Dir == "" {
		errs = append(errs, errors.New("columns.dir is required"))
	}
	codec, err := engine.ParseCodec(c.Columns.Codec)
	if err != nil {
		errs = append(errs, fmt.Errorf("columns.codec: %w", err))
	} else if c.Columns.LineIndex && codec != engine.CodecPlain {
		errs = append(errs, fmt.Errorf("columns.line_index requires the plain codec, got %s", codec))
	}

	for _, y := range c.Query.Years {
		if y <= 0 {
			errs = append(errs, fmt.Errorf("query.years: invalid year %d", y))
		}
	}
	switch c.Query.Backend {
	case BackendMemory, BackendDisk, BackendBoth:
	default:
		errs = append(errs, fmt.Errorf("query.backend: unknown backend %q", c.Query.Backend))
	}
	if _, err := output.ParseFormat(c.Query.Format); err != nil {
		errs = append(errs, fmt.Errorf("query.format: %w", err))
	}

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if len(c.Server.Backends) == 0 {
		errs = append(errs, errors.New("server.backends must name at least one backend"))
	}
	for _, b := range c.Server.Backends {
		if b != BackendMemory && b != BackendDisk {
			errs = append(errs, fmt.Errorf("server.backends: unknown backend %q", b))
		}
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Save writes cfg to path as YAML, creating parent directories.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
