package signalr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/vetkit/pkg/logger"
	"github.com/dmitrymomot/vetkit/pkg/realtime"
)

// Conn is an open hub connection. It implements realtime.Conn.
type Conn struct {
	ws            *websocket.Conn
	events        chan realtime.Invocation
	logger        *slog.Logger
	pingInterval  time.Duration
	serverTimeout time.Duration

	writeMu sync.Mutex

	mu      sync.Mutex
	err     error
	closing bool

	done      chan struct{} // closed when Close starts
	readDone  chan struct{} // closed when the read loop exits
	closeOnce sync.Once
}

var _ realtime.Conn = (*Conn)(nil)

func newConn(ws *websocket.Conn, ping, timeout time.Duration, l *slog.Logger, pending [][]byte) *Conn {
	c := &Conn{
		ws:            ws,
		events:        make(chan realtime.Invocation, defaultEventBuffer),
		logger:        l,
		pingInterval:  ping,
		serverTimeout: timeout,
		done:          make(chan struct{}),
		readDone:      make(chan struct{}),
	}
	go c.readLoop(pending)
	go c.pingLoop()
	return c
}

// Events delivers server invocations until the connection ends.
func (c *Conn) Events() <-chan realtime.Invocation {
	return c.events
}

// Err reports why the connection ended. It is nil while open and after Close.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close sends a websocket close frame, bounded by ctx, and then releases the
// socket regardless of whether the frame went out.
func (c *Conn) Close(ctx context.Context) error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closing = true
		c.mu.Unlock()
		close(c.done)

		deadline := time.Now().Add(defaultWriteWait)
		if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
			deadline = dl
		}

		c.writeMu.Lock()
		werr := c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		c.writeMu.Unlock()

		cerr := c.ws.Close()
		if werr != nil && !errors.Is(werr, websocket.ErrCloseSent) && !errors.Is(werr, net.ErrClosed) {
			err = werr
		} else if cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = cerr
		}
	})

	select {
	case <-c.readDone:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}

func (c *Conn) readLoop(pending [][]byte) {
	defer close(c.readDone)
	defer close(c.events)

	for _, record := range pending {
		if stop := c.handle(record); stop {
			return
		}
	}

	var partial []byte
	for {
		_ = c.ws.SetReadDeadline(time.Now().Add(c.serverTimeout))

		_, frame, err := c.ws.ReadMessage()
		if err != nil {
			c.fail(c.readError(err))
			return
		}

		records, rest := splitRecords(append(partial, frame...))
		partial = rest
		for _, record := range records {
			if stop := c.handle(record); stop {
				return
			}
		}
	}
}

// handle processes one record and reports whether the read loop must stop.
func (c *Conn) handle(record []byte) bool {
	msg, err := decodeMessage(record)
	if err != nil {
		c.logger.Debug("malformed hub message dropped", logger.Error(err))
		return false
	}

	switch msg.Type {
	case messageInvocation:
		inv := realtime.Invocation{Target: msg.Target, Arguments: msg.Arguments}
		select {
		case c.events <- inv:
		case <-c.done:
			return true
		}
	case messagePing:
	case messageClose:
		if msg.Error != "" {
			c.fail(fmt.Errorf("%w: %s", ErrServerClosed, msg.Error))
		} else {
			c.fail(ErrServerClosed)
		}
		_ = c.ws.Close()
		return true
	default:
		c.logger.Debug("hub message ignored", slog.Int("type", msg.Type))
	}
	return false
}

func (c *Conn) pingLoop() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-c.readDone:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			_ = c.ws.SetWriteDeadline(time.Now().Add(defaultWriteWait))
			err := c.ws.WriteMessage(websocket.TextMessage, pingRecord)
			c.writeMu.Unlock()
			if err != nil {
				c.logger.Debug("hub ping failed", logger.Error(err))
				return
			}
		}
	}
}

func (c *Conn) readError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrServerTimeout
	}
	return err
}

// fail records the terminal error unless the connection is being closed locally.
func (c *Conn) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closing || c.err != nil {
		return
	}
	c.err = err
}
