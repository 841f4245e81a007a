package realtime

import (
	"context"
	"encoding/json"
)

// Invocation is one server-to-client hub call.
type Invocation struct {
	Target    string
	Arguments []json.RawMessage
}

// Payload returns the first argument, or nil when there is none.
func (i Invocation) Payload() []byte {
	if len(i.Arguments) == 0 {
		return nil
	}
	return i.Arguments[0]
}

// Conn is one open hub connection.
type Conn interface {
	// Events delivers inbound invocations and is closed when the connection ends.
	Events() <-chan Invocation
	// Err reports why Events was closed. It is nil while the connection is open
	// and after a clean local Close.
	Err() error
	// Close ends the connection. It always releases the underlying resources,
	// even when ctx expires first.
	Close(ctx context.Context) error
}

// Dialer opens hub connections. token is empty when no credential was supplied.
type Dialer interface {
	Dial(ctx context.Context, url, token string) (Conn, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context, url, token string) (Conn, error)

func (f DialerFunc) Dial(ctx context.Context, url, token string) (Conn, error) {
	return f(ctx, url, token)
}

// HealthChecker gates connection attempts. *health.Monitor satisfies it.
type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// TokenSource supplies the bearer credential. It is invoked on every
// connection attempt, including reconnects.
type TokenSource func(ctx context.Context) (string, error)
