package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/lotboard/colorscale"
	"github.com/rustyeddy/lotboard/risk"
	"github.com/rustyeddy/lotboard/view"
)

// Config represents the complete lotboard server configuration
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server"`
	Database DatabaseConfig `json:"database" yaml:"database"`
	Upstream UpstreamConfig `json:"upstream" yaml:"upstream"`
	Quotes   QuotesConfig   `json:"quotes" yaml:"quotes"`
	Display  DisplayConfig  `json:"display" yaml:"display"`
	Risk     risk.Policy    `json:"risk" yaml:"risk"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

type ServerConfig struct {
	Addr        string   `json:"addr" yaml:"addr"`
	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`
}

type DatabaseConfig struct {
	Path string `json:"path" yaml:"path"`
}

// UpstreamConfig points at the broker API that owns orders and quotes
type UpstreamConfig struct {
	URL     string `json:"url" yaml:"url"`
	Token   string `json:"token,omitempty" yaml:"token,omitempty"`
	Timeout string `json:"timeout" yaml:"timeout"` // e.g. "10s"
}

// QuotesConfig controls background quote polling
type QuotesConfig struct {
	Interval    string `json:"interval" yaml:"interval"` // e.g. "1m", "15s"
	Concurrency int    `json:"concurrency" yaml:"concurrency"`
}

// DisplayConfig controls how rows are rendered
type DisplayConfig struct {
	RelativeStop  bool    `json:"relative_stop" yaml:"relative_stop"`
	MaxLossLimit  float64 `json:"max_loss_limit" yaml:"max_loss_limit"`
	StopColorFrom string  `json:"stop_color_from" yaml:"stop_color_from"`
	StopColorTo   string  `json:"stop_color_to" yaml:"stop_color_to"`
	StopDomainMax float64 `json:"stop_domain_max" yaml:"stop_domain_max"`
	Timezone      string  `json:"timezone" yaml:"timezone"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // json or text
}

func parseDuration(name, v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

// ParseTimeout converts the timeout string to time.Duration
func (u UpstreamConfig) ParseTimeout() (time.Duration, error) {
	return parseDuration("upstream.timeout", u.Timeout)
}

// ParseInterval converts the polling interval to time.Duration
func (q QuotesConfig) ParseInterval() (time.Duration, error) {
	return parseDuration("quotes.interval", q.Interval)
}

// ViewOptions builds the row renderer options
func (d DisplayConfig) ViewOptions() (view.Options, error) {
	scale, err := colorscale.New(d.StopColorFrom, d.StopColorTo, 0, d.StopDomainMax)
	if err != nil {
		return view.Options{}, fmt.Errorf("display stop colors: %w", err)
	}
	loc := time.UTC
	if d.Timezone != "" {
		loc, err = time.LoadLocation(d.Timezone)
		if err != nil {
			return view.Options{}, fmt.Errorf("display.timezone: %w", err)
		}
	}
	return view.Options{
		RelativeStop: d.RelativeStop,
		MaxLossLimit: d.MaxLossLimit,
		Scale:        scale,
		Location:     loc,
	}, nil
}

// SlogLevel maps the configured level name, defaulting to info
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads .env (when present) and path (when set), applies LOTBOARD_*
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = readFile(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file (YAML or JSON)
func LoadFromFile(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Unset fields keep their defaults.
	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return cfg, nil
}

// ApplyEnv overrides fields from LOTBOARD_* variables looked up with getenv
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Server.Addr, "LOTBOARD_ADDR")
	set(&c.Database.Path, "LOTBOARD_DB")
	set(&c.Upstream.URL, "LOTBOARD_UPSTREAM_URL")
	set(&c.Upstream.Token, "LOTBOARD_UPSTREAM_TOKEN")
	set(&c.Log.Level, "LOTBOARD_LOG_LEVEL")
}

// SaveToFile saves configuration to a file (YAML for .yaml/.yml, else JSON)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Upstream.URL == "" {
		return fmt.Errorf("upstream.url is required")
	}
	if d, err := c.Upstream.ParseTimeout(); err != nil {
		return err
	} else if d < 0 {
		return fmt.Errorf("upstream.timeout must not be negative")
	}
	if d, err := c.Quotes.ParseInterval(); err != nil {
		return err
	} else if d <= 0 {
		return fmt.Errorf("quotes.interval must be positive")
	}
	if c.Quotes.Concurrency < 0 {
		return fmt.Errorf("quotes.concurrency must not be negative")
	}
	if c.Display.MaxLossLimit <= 0 {
		return fmt.Errorf("display.max_loss_limit must be positive")
	}
	if c.Display.StopDomainMax <= 0 {
		return fmt.Errorf("display.stop_domain_max must be positive")
	}
	if _, err := c.Display.ViewOptions(); err != nil {
		return err
	}
	if c.Risk.MinRR < 0 || c.Risk.MaxLossUSD < 0 {
		return fmt.Errorf("risk limits must not be negative")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	if c.Log.Format != "" && c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("log.format must be 'json' or 'text'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Path: "./lotboard.db"},
		Upstream: UpstreamConfig{
			URL:     "http://localhost:3001",
			Timeout: "10s",
		},
		Quotes: QuotesConfig{
			Interval:    "1m",
			Concurrency: 4,
		},
		Display: DisplayConfig{
			MaxLossLimit:  view.DefaultMaxLossLimit,
			StopColorFrom: "#ffcc00",
			StopColorTo:   "#ffffff",
			StopDomainMax: 20,
			Timezone:      "UTC",
		},
		Risk: risk.Policy{
			MinRR:      1.5,
			MaxLossUSD: 1000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
