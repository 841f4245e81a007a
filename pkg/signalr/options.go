package signalr

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	DefaultPingInterval     = 15 * time.Second
	DefaultServerTimeout    = 30 * time.Second
	DefaultHandshakeTimeout = 15 * time.Second
	defaultWriteWait        = 10 * time.Second
	defaultMaxMessageSize   = 1 << 20
	defaultEventBuffer      = 64
	maxNegotiateRedirects   = 100
)

// Option configures a Dialer.
type Option func(*Dialer)

// WithHTTPClient sets the client used for negotiation.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dialer) {
		if c != nil {
			d.http = c
		}
	}
}

// WithWebsocketDialer replaces the gorilla dialer.
func WithWebsocketDialer(ws *websocket.Dialer) Option {
	return func(d *Dialer) {
		if ws != nil {
			d.ws = ws
		}
	}
}

// WithSkipNegotiation dials the hub URL directly. Only valid when the server
// is configured for websocket-only transport.
func WithSkipNegotiation() Option {
	return func(d *Dialer) {
		d.skipNegotiation = true
	}
}

// WithPingInterval sets how often keep-alive pings are sent.
func WithPingInterval(interval time.Duration) Option {
	return func(d *Dialer) {
		if interval > 0 {
			d.pingInterval = interval
		}
	}
}

// WithServerTimeout sets how long the connection may stay silent before it is
// considered dropped. It should be at least twice the server's keep-alive interval.
func WithServerTimeout(timeout time.Duration) Option {
	return func(d *Dialer) {
		if timeout > 0 {
			d.serverTimeout = timeout
		}
	}
}

// WithHandshakeTimeout bounds the protocol handshake.
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(d *Dialer) {
		if timeout > 0 {
			d.handshakeTimeout = timeout
		}
	}
}

// WithHeader adds a header to negotiate and websocket upgrade requests.
func WithHeader(key, value string) Option {
	return func(d *Dialer) {
		d.header.Add(key, value)
	}
}

// WithLogger sets the connection logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dialer) {
		if l != nil {
			d.logger = l
		}
	}
}
