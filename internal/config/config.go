// Package config loads hllcount settings from flags, environment variables
// and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/wesdoyle/hyperloglog"
)

// Sentinel validation errors.
var (
	ErrInvalidPrecision = fmt.Errorf("%w: precision must fit in a byte", hyperloglog.ErrInvalidConfig)
	ErrInvalidWorkers   = errors.New("workers must be positive")
	ErrInvalidBatchSize = errors.New("batch size must be positive")
	ErrUnknownHash      = errors.New("unknown hash")
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("invalid log format")
)

// Default configuration values.
const (
	defaultPrecision = 14
	defaultBatchSize = 1000
	defaultHash      = "metro"
	defaultSeed      = hyperloglog.DefaultSeed
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
)

// EnvPrefix prefixes every environment variable, e.g. HLLCOUNT_PRECISION.
const EnvPrefix = "HLLCOUNT"

// Config holds all configuration for hllcount.
type Config struct {
	Precision   int           `mapstructure:"precision"`
	Workers     int           `mapstructure:"workers"`
	BatchSize   int           `mapstructure:"batch_size"`
	Hash        string        `mapstructure:"hash"`
	Seed        uint64        `mapstructure:"seed"`
	Exact       bool          `mapstructure:"exact"`
	MetricsFile string        `mapstructure:"metrics_file"`
	Log         LoggingConfig `mapstructure:"log"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// New returns a viper instance with defaults and environment lookup set up.
// Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("precision", defaultPrecision)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("batch_size", defaultBatchSize)
	v.SetDefault("hash", defaultHash)
	v.SetDefault("seed", defaultSeed)
	v.SetDefault("exact", true)
	v.SetDefault("metrics_file", "")
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
}

// Load reads the optional config file at path into v and decodes the
// result. An empty path skips the file.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that hyperloglog.New does not check itself.
func (c *Config) Validate() error {
	if c.Precision < 0 || c.Precision > math.MaxUint8 {
		return fmt.Errorf("%w: %d", ErrInvalidPrecision, c.Precision)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Workers)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBatchSize, c.BatchSize)
	}
	if _, err := c.HashFunc(); err != nil {
		return err
	}
	if _, err := c.level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Log.Format)
	}
	return nil
}

// PrecisionBits returns the precision as passed to hyperloglog.New.
func (c *Config) PrecisionBits() uint8 {
	return uint8(c.Precision)
}

// HashFunc resolves the configured hash name.
func (c *Config) HashFunc() (hyperloglog.HashFunc, error) {
	switch strings.ToLower(c.Hash) {
	case "metro":
		return hyperloglog.Metro(c.Seed), nil
	case "xxhash":
		return hyperloglog.XXHash(), nil
	case "murmur3":
		return hyperloglog.Murmur3(uint32(c.Seed)), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownHash, c.Hash)
}

func (c *Config) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	return lvl, nil
}

// Logger returns a structured logger writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	lvl, err := c.level()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
