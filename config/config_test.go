package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/lotboard/colorscale"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 1000.0, cfg.Display.MaxLossLimit)
	assert.Equal(t, 1.5, cfg.Risk.MinRR)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "missing addr",
			mutate:  func(c *Config) { c.Server.Addr = "" },
			wantErr: true,
			errMsg:  "server.addr is required",
		},
		{
			name:    "missing db path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
			errMsg:  "database.path is required",
		},
		{
			name:    "missing upstream",
			mutate:  func(c *Config) { c.Upstream.URL = "" },
			wantErr: true,
			errMsg:  "upstream.url is required",
		},
		{
			name:    "bad timeout",
			mutate:  func(c *Config) { c.Upstream.Timeout = "soon" },
			wantErr: true,
			errMsg:  "upstream.timeout",
		},
		{
			name:    "zero interval",
			mutate:  func(c *Config) { c.Quotes.Interval = "" },
			wantErr: true,
			errMsg:  "quotes.interval must be positive",
		},
		{
			name:    "zero max loss limit",
			mutate:  func(c *Config) { c.Display.MaxLossLimit = 0 },
			wantErr: true,
			errMsg:  "display.max_loss_limit must be positive",
		},
		{
			name:    "bad stop color",
			mutate:  func(c *Config) { c.Display.StopColorFrom = "yellow" },
			wantErr: true,
			errMsg:  "display stop colors",
		},
		{
			name:    "unknown timezone",
			mutate:  func(c *Config) { c.Display.Timezone = "Mars/Olympus" },
			wantErr: true,
			errMsg:  "display.timezone",
		},
		{
			name:    "negative risk",
			mutate:  func(c *Config) { c.Risk.MaxLossUSD = -1 },
			wantErr: true,
			errMsg:  "risk limits must not be negative",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: true,
			errMsg:  "log.level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: true,
			errMsg:  "log.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
			cfg.Display.RelativeStop = true
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))

			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9090\"\nrisk:\n  min_rr: 2\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 2.0, cfg.Risk.MinRR)
	assert.Equal(t, 1000.0, cfg.Risk.MaxLossUSD)
	assert.Equal(t, "1m", cfg.Quotes.Interval)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))
	_, err = LoadFromFile(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"LOTBOARD_ADDR":           ":7000",
		"LOTBOARD_DB":             "/tmp/x.db",
		"LOTBOARD_UPSTREAM_URL":   "http://broker:3001",
		"LOTBOARD_UPSTREAM_TOKEN": "secret",
		"LOTBOARD_LOG_LEVEL":      "debug",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "/tmp/x.db", cfg.Database.Path)
	assert.Equal(t, "http://broker:3001", cfg.Upstream.URL)
	assert.Equal(t, "secret", cfg.Upstream.Token)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())

	unchanged := Default()
	unchanged.ApplyEnv(func(string) string { return "" })
	assert.Equal(t, Default(), unchanged)
}

func TestLoadUsesEnvironment(t *testing.T) {
	t.Setenv("LOTBOARD_ADDR", ":6000")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":6000", cfg.Server.Addr)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("LOTBOARD_DB", "")
	require.NoError(t, os.Unsetenv("LOTBOARD_DB"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOTBOARD_DB=/data/from-dotenv.db\n"), 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/data/from-dotenv.db", cfg.Database.Path)
}

func TestDurations(t *testing.T) {
	tests := []struct {
		in       string
		expected time.Duration
		wantErr  bool
	}{
		{"1h", time.Hour, false},
		{"30s", 30 * time.Second, false},
		{"", 0, false},
		{"invalid", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := QuotesConfig{Interval: tt.in}.ParseInterval()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, d)

			d, err = UpstreamConfig{Timeout: tt.in}.ParseTimeout()
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestViewOptions(t *testing.T) {
	opts, err := Default().Display.ViewOptions()
	require.NoError(t, err)
	assert.Equal(t, colorscale.Stop.CSS(0), opts.Scale.CSS(0))
	assert.Equal(t, colorscale.Stop.CSS(20), opts.Scale.CSS(20))
	assert.Equal(t, time.UTC, opts.Location)
	assert.Equal(t, 1000.0, opts.MaxLossLimit)
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, LogConfig{}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "WARN"}.SlogLevel())
	assert.Equal(t, slog.LevelError, LogConfig{Level: "error"}.SlogLevel())
}
