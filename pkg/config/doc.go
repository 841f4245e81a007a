// Package config loads the client configuration from defaults, an optional
// YAML file, .env files and environment variables, in that order of
// increasing precedence.
//
// It wraps `gopkg.in/yaml.v3`, `github.com/joho/godotenv` and
// `github.com/caarlos0/env/v11`:
//
//	cfg, err := config.Load(config.WithFile("vetkit.yaml"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	hub := cfg.RealtimeURL()
//
// # Variables
//
//	APP_ENV                        development | staging | production
//	VET_API_URL                    REST base, default http://localhost:3001/api
//	VET_REALTIME_URL               hub URL, default <api base without /api>/chathub
//	VET_REALTIME_SKIP_NEGOTIATION  dial the hub directly
//	VET_HEALTH_PATH                default /health
//	VET_REQUEST_TIMEOUT            default 15s
//	VET_API_TOKEN                  bearer token for REST and hub calls
//	VET_NOTIFICATION_TTL           default 5s, 0 keeps notifications until dismissed
//	VET_MAX_NOTIFICATIONS          default 50, 0 disables the bound
//	LOG_LEVEL, LOG_FORMAT          override the environment's logger preset
//
// Values from .env files never override variables already set in the
// process environment. By default ./.env is read if it exists.
package config
