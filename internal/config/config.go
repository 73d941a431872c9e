package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" validate:"gt=0"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" validate:"gt=0"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
}

// PipelineConfig contains the report-cleanup pipeline knobs
type PipelineConfig struct {
	// SheetName forces a specific source sheet; empty means auto-detect.
	SheetName string `yaml:"sheet_name" envconfig:"SHEET_NAME"`
	// HeaderScanRows bounds how deep the loader scans for the header row.
	HeaderScanRows int `yaml:"header_scan_rows" envconfig:"HEADER_SCAN_ROWS" validate:"gt=0"`
	// HeaderMatchThreshold is the minimum number of known header texts a row
	// must contain to be treated as the header row.
	HeaderMatchThreshold int     `yaml:"header_match_threshold" envconfig:"HEADER_MATCH_THRESHOLD" validate:"gt=0"`
	MinColumnWidth       float64 `yaml:"min_column_width" envconfig:"MIN_COLUMN_WIDTH" validate:"gt=0"`
	MaxColumnWidth       float64 `yaml:"max_column_width" envconfig:"MAX_COLUMN_WIDTH" validate:"gtfield=MinColumnWidth"`
}

// Load loads configuration from environment variables and an optional
// config file. Environment values take precedence over file values.
func Load() (*Config, error) {
	cfg, err := loadMerged()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func loadMerged() (*Config, error) {
	var cfg Config

	// File first, env on top.
	if path := configFilePath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := envconfig.Process("ASSETCLI", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// configFilePath returns the config file location, overridable via env.
func configFilePath() string {
	if v := os.Getenv("ASSETCLI_CONFIG_FILE"); v != "" {
		return v
	}
	return "config.yaml"
}

// applyDefaults fills zero values left by a partial YAML file. envconfig only
// applies struct defaults to fields absent from the environment, so file-loaded
// configs with gaps are normalized here.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 10 << 20
	}
	if c.Server.RateLimitRPS == 0 {
		c.Server.RateLimitRPS = 10
	}
	if c.Server.RateLimitBurst == 0 {
		c.Server.RateLimitBurst = 20
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Pipeline.HeaderScanRows == 0 {
		c.Pipeline.HeaderScanRows = 10
	}
	if c.Pipeline.HeaderMatchThreshold == 0 {
		c.Pipeline.HeaderMatchThreshold = 2
	}
	if c.Pipeline.MinColumnWidth == 0 {
		c.Pipeline.MinColumnWidth = 8
	}
	if c.Pipeline.MaxColumnWidth == 0 {
		c.Pipeline.MaxColumnWidth = 60
	}
}

// Validate checks configuration constraints
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// DefaultPipeline returns the pipeline configuration with default knobs,
// for callers that bypass full application config (tests, library use).
func DefaultPipeline() PipelineConfig {
	return PipelineConfig{
		HeaderScanRows:       10,
		HeaderMatchThreshold: 2,
		MinColumnWidth:       8,
		MaxColumnWidth:       60,
	}
}
