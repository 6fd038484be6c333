package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	LogLevel string `yaml:"log_level" json:"log_level" default:"info"`

	// Radio
	ConnectTimeout time.Duration `yaml:"connect_timeout" json:"connect_timeout" default:"30s"`
	ReadTimeout    time.Duration `yaml:"read_timeout" json:"read_timeout" default:"5s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" json:"idle_timeout" default:"20s"`
	ScanTimeout    time.Duration `yaml:"scan_timeout" json:"scan_timeout" default:"10s"`

	// Client
	UpdateAttempts int           `yaml:"update_attempts" json:"update_attempts" default:"2"`
	RetryBackoff   time.Duration `yaml:"retry_backoff" json:"retry_backoff" default:"1s"`
	CommandDelay   time.Duration `yaml:"command_delay" json:"command_delay" default:"100ms"`
	SettleDelay    time.Duration `yaml:"settle_delay" json:"settle_delay" default:"200ms"`
	LegacyPIN      string        `yaml:"legacy_pin" json:"legacy_pin" default:"0000"`

	// Polling
	PollInterval     time.Duration `yaml:"poll_interval" json:"poll_interval" default:"18s"`
	FailureThreshold int           `yaml:"failure_threshold" json:"failure_threshold" default:"3"`

	OutputFormat string `yaml:"output_format" json:"output_format" default:"table"` // table, json
}

var outputFormats = []string{"table", "json"}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// Load reads a YAML file over the defaults. Keys missing from the file keep their
// default. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	for name, d := range map[string]time.Duration{
		"connect_timeout": c.ConnectTimeout,
		"read_timeout":    c.ReadTimeout,
		"idle_timeout":    c.IdleTimeout,
		"scan_timeout":    c.ScanTimeout,
		"poll_interval":   c.PollInterval,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, d))
		}
	}
	if c.RetryBackoff < 0 || c.CommandDelay < 0 || c.SettleDelay < 0 {
		errs = append(errs, errors.New("delays must not be negative"))
	}
	if c.UpdateAttempts < 1 {
		errs = append(errs, fmt.Errorf("update_attempts must be at least 1, got %d", c.UpdateAttempts))
	}
	if c.FailureThreshold < 1 {
		errs = append(errs, fmt.Errorf("failure_threshold must be at least 1, got %d", c.FailureThreshold))
	}
	if c.LegacyPIN == "" {
		errs = append(errs, errors.New("legacy_pin must not be empty"))
	}
	if !validOutputFormat(c.OutputFormat) {
		errs = append(errs, fmt.Errorf("output_format %q is not one of %v", c.OutputFormat, outputFormats))
	}
	return errors.Join(errs...)
}

func validOutputFormat(f string) bool {
	for _, v := range outputFormats {
		if f == v {
			return true
		}
	}
	return false
}

// Level is the parsed LogLevel, Info when it does not parse.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.Level())

	// Use structured logging format
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}
