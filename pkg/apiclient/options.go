package apiclient

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	DefaultTimeout    = 15 * time.Second
	DefaultHealthPath = "/health"
	defaultUserAgent  = "vetkit-apiclient/1.0"
)

// TokenSource returns the bearer token for a request. An empty token sends no Authorization header.
type TokenSource func(ctx context.Context) (string, error)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled default client; nil is ignored.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithTimeout sets the per-request timeout layered on top of the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHealthPath sets the liveness endpoint, relative to the base URL.
func WithHealthPath(p string) Option {
	return func(c *Client) {
		if p != "" {
			c.healthPath = p
		}
	}
}

// WithTokenSource attaches a bearer token to every request.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.token = ts
	}
}

// WithOAuth2TokenSource sends the access token of ts with every request.
// Tokens are reused until they expire; a nil ts removes authentication.
func WithOAuth2TokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) {
		if ts == nil {
			c.token = nil
			return
		}
		reuse := oauth2.ReuseTokenSource(nil, ts)
		c.token = func(context.Context) (string, error) {
			tok, err := reuse.Token()
			if err != nil {
				return "", err
			}
			return tok.AccessToken, nil
		}
	}
}

// WithHeader adds a static header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
