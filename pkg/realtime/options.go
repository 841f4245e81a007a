package realtime

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
)

const defaultCloseTimeout = 5 * time.Second

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for connection lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRetryPolicy replaces RetryDelay.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) {
		if p != nil {
			c.retry = p
		}
	}
}

// WithRoute adds or replaces the route for target.
func WithRoute(target string, r Route) Option {
	return func(c *Client) {
		if target == "" {
			return
		}
		if r == nil {
			delete(c.routes, target)
			return
		}
		c.routes[target] = r
	}
}

// WithCloseTimeout bounds how long releasing a dropped or abandoned connection may take.
func WithCloseTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.closeTimeout = d
		}
	}
}

// StartOption configures one Start call.
type StartOption func(*startConfig)

type startConfig struct {
	token TokenSource
}

// WithToken authenticates with a fixed bearer token.
func WithToken(token string) StartOption {
	return func(cfg *startConfig) {
		if token == "" {
			cfg.token = nil
			return
		}
		cfg.token = func(context.Context) (string, error) { return token, nil }
	}
}

// WithTokenSource authenticates with a token fetched on every attempt.
func WithTokenSource(ts TokenSource) StartOption {
	return func(cfg *startConfig) {
		cfg.token = ts
	}
}

// WithOAuth2TokenSource authenticates with the access token of ts. The source
// is asked on every attempt and refreshes only once the cached token expires.
func WithOAuth2TokenSource(ts oauth2.TokenSource) StartOption {
	return func(cfg *startConfig) {
		if ts == nil {
			cfg.token = nil
			return
		}
		reuse := oauth2.ReuseTokenSource(nil, ts)
		cfg.token = func(context.Context) (string, error) {
			tok, err := reuse.Token()
			if err != nil {
				return "", err
			}
			return tok.AccessToken, nil
		}
	}
}
