package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/vetkit/pkg/logger"
)

const (
	DefaultAPIURL           = "http://localhost:3001/api"
	DefaultHealthPath       = "/health"
	DefaultRequestTimeout   = 15 * time.Second
	DefaultNotificationTTL  = 5 * time.Second
	DefaultMaxNotifications = 50
	DefaultHubPath          = "/chathub"
)

// Config is the full client configuration.
type Config struct {
	Env           string        `yaml:"env" env:"APP_ENV"`
	Service       string        `yaml:"service" env:"APP_SERVICE"`
	API           API           `yaml:"api"`
	Realtime      Realtime      `yaml:"realtime"`
	Notifications Notifications `yaml:"notifications"`
	Log           Log           `yaml:"log"`
}

type API struct {
	URL        string        `yaml:"url" env:"VET_API_URL"`
	HealthPath string        `yaml:"health_path" env:"VET_HEALTH_PATH"`
	Timeout    time.Duration `yaml:"timeout" env:"VET_REQUEST_TIMEOUT"`
	// Token is never read from files.
	Token string `yaml:"-" env:"VET_API_TOKEN"`
}

type Realtime struct {
	// URL overrides the hub address derived from API.URL.
	URL             string `yaml:"url" env:"VET_REALTIME_URL"`
	SkipNegotiation bool   `yaml:"skip_negotiation" env:"VET_REALTIME_SKIP_NEGOTIATION"`
}

type Notifications struct {
	TTL time.Duration `yaml:"ttl" env:"VET_NOTIFICATION_TTL"`
	Max int           `yaml:"max" env:"VET_MAX_NOTIFICATIONS"`
}

type Log struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Env:     logger.EnvDevelopment,
		Service: "vetkit",
		API: API{
			URL:        DefaultAPIURL,
			HealthPath: DefaultHealthPath,
			Timeout:    DefaultRequestTimeout,
		},
		Notifications: Notifications{
			TTL: DefaultNotificationTTL,
			Max: DefaultMaxNotifications,
		},
	}
}

// RealtimeURL returns the explicit hub URL, or the API base with a trailing
// /api removed and /chathub appended.
func (c Config) RealtimeURL() string {
	if c.Realtime.URL != "" {
		return c.Realtime.URL
	}
	base := strings.TrimSuffix(c.API.URL, "/")
	base = strings.TrimSuffix(base, "/api")
	return base + DefaultHubPath
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var problems []string

	if err := validateURL(c.API.URL); err != nil {
		problems = append(problems, "api.url: "+err.Error())
	}
	if c.Realtime.URL != "" {
		if err := validateURL(c.Realtime.URL); err != nil {
			problems = append(problems, "realtime.url: "+err.Error())
		}
	}
	if c.API.Timeout <= 0 {
		problems = append(problems, "api.timeout: must be positive")
	}
	if c.Notifications.TTL < 0 {
		problems = append(problems, "notifications.ttl: must not be negative")
	}
	if c.Notifications.Max < 0 {
		problems = append(problems, "notifications.max: must not be negative")
	}
	if c.Log.Level != "" {
		if _, err := logger.ParseLevel(c.Log.Level); err != nil {
			problems = append(problems, "log.level: "+err.Error())
		}
	}
	switch logger.Format(strings.ToLower(c.Log.Format)) {
	case "", logger.FormatJSON, logger.FormatText:
	default:
		problems = append(problems, fmt.Sprintf("log.format: unknown format %q", c.Log.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// LoggerOptions translates the log and environment settings for logger.New.
// Explicit level and format win over the environment preset.
func (c Config) LoggerOptions() []logger.Option {
	opts := []logger.Option{logger.WithEnvironment(c.Env, c.Service)}
	if c.Log.Level != "" {
		if lvl, err := logger.ParseLevel(c.Log.Level); err == nil {
			opts = append(opts, logger.WithLevel(lvl))
		}
	}
	switch f := logger.Format(strings.ToLower(c.Log.Format)); f {
	case logger.FormatJSON, logger.FormatText:
		opts = append(opts, logger.WithFormat(f))
	}
	return opts
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}
