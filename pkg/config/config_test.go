package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/vetkit/pkg/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// emptyDotEnv keeps tests from picking up a stray ./.env.
func emptyDotEnv(t *testing.T) config.LoadOption {
	t.Helper()
	return config.WithDotEnv(writeFile(t, ".env", ""))
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	assert.Equal(t, "http://localhost:3001/api", cfg.API.URL)
	assert.Equal(t, "/health", cfg.API.HealthPath)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Notifications.TTL)
	assert.Equal(t, 50, cfg.Notifications.Max)
	assert.NoError(t, cfg.Validate())
}

func TestRealtimeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		api      string
		explicit string
		want     string
	}{
		{name: "strips api suffix", api: "http://localhost:3001/api", want: "http://localhost:3001/chathub"},
		{name: "strips trailing slash", api: "http://localhost:3001/api/", want: "http://localhost:3001/chathub"},
		{name: "no api suffix", api: "https://vet.example.com", want: "https://vet.example.com/chathub"},
		{name: "nested base", api: "https://vet.example.com/v2/api", want: "https://vet.example.com/v2/chathub"},
		{name: "explicit wins", api: "http://localhost:3001/api", explicit: "wss://hub.example.com/chathub", want: "wss://hub.example.com/chathub"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.Default()
			cfg.API.URL = tt.api
			cfg.Realtime.URL = tt.explicit
			assert.Equal(t, tt.want, cfg.RealtimeURL())
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{name: "relative api url", mutate: func(c *config.Config) { c.API.URL = "/api" }, field: "api.url"},
		{name: "ftp api url", mutate: func(c *config.Config) { c.API.URL = "ftp://host/api" }, field: "api.url"},
		{name: "bad realtime url", mutate: func(c *config.Config) { c.Realtime.URL = "ws://hub" }, field: "realtime.url"},
		{name: "zero timeout", mutate: func(c *config.Config) { c.API.Timeout = 0 }, field: "api.timeout"},
		{name: "negative ttl", mutate: func(c *config.Config) { c.Notifications.TTL = -time.Second }, field: "notifications.ttl"},
		{name: "negative max", mutate: func(c *config.Config) { c.Notifications.Max = -1 }, field: "notifications.max"},
		{name: "unknown level", mutate: func(c *config.Config) { c.Log.Level = "loud" }, field: "log.level"},
		{name: "unknown format", mutate: func(c *config.Config) { c.Log.Format = "xml" }, field: "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, config.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.field)
		})
	}

	t.Run("reports all problems", func(t *testing.T) {
		t.Parallel()
		cfg := config.Default()
		cfg.API.Timeout = 0
		cfg.Notifications.Max = -1
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api.timeout")
		assert.Contains(t, err.Error(), "notifications.max")
	})

	t.Run("sticky and unbounded notifications allowed", func(t *testing.T) {
		t.Parallel()
		cfg := config.Default()
		cfg.Notifications.TTL = 0
		cfg.Notifications.Max = 0
		assert.NoError(t, cfg.Validate())
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("defaults with empty environment", func(t *testing.T) {
		t.Parallel()
		cfg, err := config.Load(config.WithEnvironment(map[string]string{}), emptyDotEnv(t))
		require.NoError(t, err)
		assert.Equal(t, config.Default(), cfg)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Parallel()
		cfg, err := config.Load(emptyDotEnv(t), config.WithEnvironment(map[string]string{
			"APP_ENV":                       "production",
			"VET_API_URL":                   "https://vet.example.com/api",
			"VET_REALTIME_SKIP_NEGOTIATION": "true",
			"VET_REQUEST_TIMEOUT":           "3s",
			"VET_NOTIFICATION_TTL":          "0s",
			"VET_MAX_NOTIFICATIONS":         "10",
			"VET_API_TOKEN":                 "secret",
			"LOG_LEVEL":                     "warn",
		}))
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.Env)
		assert.Equal(t, "https://vet.example.com/api", cfg.API.URL)
		assert.True(t, cfg.Realtime.SkipNegotiation)
		assert.Equal(t, 3*time.Second, cfg.API.Timeout)
		assert.Equal(t, time.Duration(0), cfg.Notifications.TTL)
		assert.Equal(t, 10, cfg.Notifications.Max)
		assert.Equal(t, "secret", cfg.API.Token)
		assert.Equal(t, "warn", cfg.Log.Level)
		assert.Equal(t, "/health", cfg.API.HealthPath, "unset variables keep defaults")
		assert.Equal(t, "https://vet.example.com/chathub", cfg.RealtimeURL())
	})

	t.Run("yaml file then environment", func(t *testing.T) {
		t.Parallel()
		file := writeFile(t, "vetkit.yaml", `
env: staging
api:
  url: http://files.example.com/api
  timeout: 20s
realtime:
  url: http://hub.example.com/chathub
notifications:
  max: 5
log:
  format: json
`)
		cfg, err := config.Load(
			config.WithFile(file),
			emptyDotEnv(t),
			config.WithEnvironment(map[string]string{"VET_MAX_NOTIFICATIONS": "7"}),
		)
		require.NoError(t, err)
		assert.Equal(t, "staging", cfg.Env)
		assert.Equal(t, "http://files.example.com/api", cfg.API.URL)
		assert.Equal(t, 20*time.Second, cfg.API.Timeout)
		assert.Equal(t, "http://hub.example.com/chathub", cfg.RealtimeURL())
		assert.Equal(t, 7, cfg.Notifications.Max)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, 5*time.Second, cfg.Notifications.TTL)
	})

	t.Run("empty yaml file", func(t *testing.T) {
		t.Parallel()
		cfg, err := config.Load(
			config.WithFile(writeFile(t, "empty.yaml", "")),
			emptyDotEnv(t),
			config.WithEnvironment(map[string]string{}),
		)
		require.NoError(t, err)
		assert.Equal(t, config.Default(), cfg)
	})

	t.Run("unknown yaml field", func(t *testing.T) {
		t.Parallel()
		_, err := config.Load(
			config.WithFile(writeFile(t, "bad.yaml", "api:\n  endpoint: x\n")),
			emptyDotEnv(t),
			config.WithEnvironment(map[string]string{}),
		)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("missing yaml file", func(t *testing.T) {
		t.Parallel()
		_, err := config.Load(config.WithFile(filepath.Join(t.TempDir(), "nope.yaml")))
		assert.ErrorIs(t, err, config.ErrReadingFile)
	})

	t.Run("dotenv fills gaps only", func(t *testing.T) {
		t.Parallel()
		dotenv := writeFile(t, ".env", "VET_API_URL=http://dotenv.example.com/api\nVET_MAX_NOTIFICATIONS=3\n")
		cfg, err := config.Load(
			config.WithDotEnv(dotenv),
			config.WithEnvironment(map[string]string{"VET_MAX_NOTIFICATIONS": "9"}),
		)
		require.NoError(t, err)
		assert.Equal(t, "http://dotenv.example.com/api", cfg.API.URL)
		assert.Equal(t, 9, cfg.Notifications.Max)
	})

	t.Run("missing explicit dotenv", func(t *testing.T) {
		t.Parallel()
		_, err := config.Load(
			config.WithDotEnv(filepath.Join(t.TempDir(), "missing.env")),
			config.WithEnvironment(map[string]string{}),
		)
		assert.ErrorIs(t, err, config.ErrReadingFile)
	})

	t.Run("malformed variable", func(t *testing.T) {
		t.Parallel()
		_, err := config.Load(emptyDotEnv(t), config.WithEnvironment(map[string]string{"VET_REQUEST_TIMEOUT": "soon"}))
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("invalid result", func(t *testing.T) {
		t.Parallel()
		_, err := config.Load(emptyDotEnv(t), config.WithEnvironment(map[string]string{"VET_API_URL": "localhost"}))
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func TestMustLoad(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		config.MustLoad(config.WithFile(filepath.Join(t.TempDir(), "nope.yaml")))
	})
	assert.NotPanics(t, func() {
		config.MustLoad(emptyDotEnv(t), config.WithEnvironment(map[string]string{}))
	})
}

func TestLoggerOptions(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	assert.Len(t, cfg.LoggerOptions(), 1)

	cfg.Log.Level = "error"
	cfg.Log.Format = "JSON"
	assert.Len(t, cfg.LoggerOptions(), 3)
}
