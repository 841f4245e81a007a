package signalr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/vetkit/pkg/logger"
	"github.com/dmitrymomot/vetkit/pkg/realtime"
)

// Dialer opens hub connections over websockets using the JSON hub protocol.
type Dialer struct {
	http             *http.Client
	ws               *websocket.Dialer
	header           http.Header
	skipNegotiation  bool
	pingInterval     time.Duration
	serverTimeout    time.Duration
	handshakeTimeout time.Duration
	logger           *slog.Logger
}

var _ realtime.Dialer = (*Dialer)(nil)

// NewDialer returns a dialer with default keep-alive settings.
func NewDialer(opts ...Option) *Dialer {
	d := &Dialer{
		http: &http.Client{Timeout: DefaultHandshakeTimeout},
		ws: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: DefaultHandshakeTimeout,
		},
		header:           make(http.Header),
		pingInterval:     DefaultPingInterval,
		serverTimeout:    DefaultServerTimeout,
		handshakeTimeout: DefaultHandshakeTimeout,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(logger.Component("signalr"))
	return d
}

// Dial negotiates, upgrades and completes the protocol handshake.
// The bearer token is sent as an Authorization header on every request.
func (d *Dialer) Dial(ctx context.Context, hubURL, token string) (realtime.Conn, error) {
	params := connectionParams{hubURL: hubURL, token: token}
	if !d.skipNegotiation {
		p, err := d.negotiate(ctx, hubURL, token)
		if err != nil {
			return nil, err
		}
		params = p
	}

	target, err := websocketURL(params.hubURL, params.id)
	if err != nil {
		return nil, err
	}

	header := d.header.Clone()
	if params.token != "" {
		header.Set("Authorization", "Bearer "+params.token)
	}

	ws, resp, err := d.ws.DialContext(ctx, target, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("signalr: websocket upgrade failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("signalr: websocket dial: %w", err)
	}
	ws.SetReadLimit(defaultMaxMessageSize)

	pending, err := d.handshake(ctx, ws)
	if err != nil {
		_ = ws.Close()
		return nil, err
	}

	d.logger.Debug("hub connection open", logger.URL(params.hubURL))
	return newConn(ws, d.pingInterval, d.serverTimeout, d.logger, pending), nil
}

// handshake sends the protocol selection and waits for the empty ack.
// Records that arrive in the same frame as the ack are returned for replay.
func (d *Dialer) handshake(ctx context.Context, ws *websocket.Conn) ([][]byte, error) {
	deadline := time.Now().Add(d.handshakeTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}

	_ = ws.SetWriteDeadline(deadline)
	if err := ws.WriteMessage(websocket.TextMessage, handshakeRecord); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHandshake, err)
	}

	_ = ws.SetReadDeadline(deadline)
	stop := context.AfterFunc(ctx, func() { _ = ws.SetReadDeadline(time.Now()) })
	defer stop()

	var buf []byte
	for {
		_, frame, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", ErrHandshake, ctx.Err())
			}
			return nil, fmt.Errorf("%w: %w", ErrHandshake, err)
		}
		buf = append(buf, frame...)

		i := bytes.IndexByte(buf, recordSeparator)
		if i < 0 {
			continue
		}

		var resp handshakeResponse
		if err := unmarshalRecord(buf[:i], &resp); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrHandshake, err)
		}
		if resp.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrHandshake, resp.Error)
		}

		records, _ := splitRecords(buf[i+1:])
		return records, nil
	}
}
