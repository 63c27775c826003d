package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/hupe1980/knnlite"
	"github.com/hupe1980/knnlite/persistence"
)

const envPrefix = "KNNLITE"

// Config validation errors
var (
	ErrInvalidIndexPath   = errors.New("index cannot be empty")
	ErrInvalidWorkers     = errors.New("workers must not be negative")
	ErrInvalidFormat      = errors.New("format must be 'v0' or 'v1'")
	ErrInvalidCompression = errors.New("compression must be 'none', 'zstd' or 'lz4', and requires format v1")
	ErrInvalidMemoryLimit = errors.New("memory_limit must not be negative")
	ErrInvalidLogFormat   = errors.New("log_format must be 'json' or 'text'")
	ErrInvalidLogLevel    = errors.New("log_level must be debug, info, warn, or error")
)

// Config is the CLI configuration, read from KNNLITE_* environment variables.
type Config struct {
	Index       string `envconfig:"INDEX" default:"index.bin"`
	Workers     int    `envconfig:"WORKERS" default:"0"`
	Format      string `envconfig:"FORMAT" default:"v0"`
	Compression string `envconfig:"COMPRESSION" default:"none"`
	MemoryLimit int64  `envconfig:"MEMORY_LIMIT" default:"0"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"warn"`
}

// DefaultConfig returns the configuration used when no variable is set.
func DefaultConfig() Config {
	return Config{
		Index:       "index.bin",
		Format:      "v0",
		Compression: "none",
		LogFormat:   "text",
		LogLevel:    "warn",
	}
}

// LoadConfig loads envFile (or ./.env if present) into the environment, then
// processes and validates the KNNLITE_* variables. Variables already set in
// the environment win over the file.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("process config: %w", err)
	}
	if err := ValidateConfig(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ValidateConfig validates the configuration and returns an error if invalid
func ValidateConfig(cfg *Config) error {
	if cfg.Index == "" {
		return ErrInvalidIndexPath
	}
	if cfg.Workers < 0 {
		return ErrInvalidWorkers
	}
	if _, err := persistence.ParseFormat(cfg.Format); err != nil {
		return ErrInvalidFormat
	}
	if _, err := cfg.EncodeOptions(); err != nil {
		return ErrInvalidCompression
	}
	if cfg.MemoryLimit < 0 {
		return ErrInvalidMemoryLimit
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return ErrInvalidLogFormat
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return ErrInvalidLogLevel
	}
	return nil
}

// EncodeOptions returns the snapshot format selected by the configuration.
func (c *Config) EncodeOptions() (persistence.EncodeOptions, error) {
	format, err := persistence.ParseFormat(c.Format)
	if err != nil {
		return persistence.EncodeOptions{}, err
	}
	compression, err := persistence.ParseCompression(c.Compression)
	if err != nil {
		return persistence.EncodeOptions{}, err
	}
	opts := persistence.EncodeOptions{Format: format, Compression: compression}
	if err := opts.Validate(); err != nil {
		return persistence.EncodeOptions{}, err
	}
	return opts, nil
}

// EngineOptions translates the configuration into engine options.
func (c *Config) EngineOptions(logger *knnlite.Logger) ([]knnlite.Option, error) {
	snap, err := c.EncodeOptions()
	if err != nil {
		return nil, err
	}
	return []knnlite.Option{
		knnlite.WithWorkers(c.Workers),
		knnlite.WithMemoryLimit(c.MemoryLimit),
		knnlite.WithSnapshotFormat(snap.Format, snap.Compression),
		knnlite.WithLogger(logger),
	}, nil
}

// NewLogger builds the logger selected by LogFormat and LogLevel.
func (c *Config) NewLogger(w io.Writer) *knnlite.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}

	if c.LogFormat == "json" {
		return knnlite.NewLogger(slog.NewJSONHandler(w, opts))
	}
	return knnlite.NewLogger(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}
