package signalr

import "errors"

var (
	ErrNegotiate        = errors.New("signalr: negotiation failed")
	ErrTooManyRedirects = errors.New("signalr: too many negotiate redirects")
	ErrNoWebSockets     = errors.New("signalr: server does not offer websocket transport")
	ErrHandshake        = errors.New("signalr: handshake failed")
	ErrServerClosed     = errors.New("signalr: server closed the connection")
	ErrServerTimeout    = errors.New("signalr: server timeout elapsed without receiving a message")
	ErrInvalidURL       = errors.New("signalr: invalid hub url")
)
