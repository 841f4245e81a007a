package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/vetkit/pkg/logger"
	"github.com/dmitrymomot/vetkit/pkg/notifications"
	"github.com/dmitrymomot/vetkit/pkg/statemachine"
)

// Client keeps one push channel to the backend hub and turns inbound events
// into notifications.
type Client struct {
	url          string
	dialer       Dialer
	health       HealthChecker
	pub          notifications.Publisher
	logger       *slog.Logger
	retry        RetryPolicy
	routes       Routes
	closeTimeout time.Duration

	fsm *statemachine.Machine[State, Event]

	mu       sync.Mutex
	conn     Conn
	token    TokenSource
	cancel   context.CancelFunc
	stopping bool
	stopped  chan struct{}
	wg       sync.WaitGroup
}

// New builds a client for the hub at url. Nothing is dialed until Start.
func New(url string, dialer Dialer, health HealthChecker, pub notifications.Publisher, opts ...Option) (*Client, error) {
	switch {
	case url == "":
		return nil, ErrNoURL
	case dialer == nil:
		return nil, ErrNoDialer
	case health == nil:
		return nil, ErrNoHealth
	}

	c := &Client{
		url:          url,
		dialer:       dialer,
		health:       health,
		pub:          pub,
		logger:       slog.Default(),
		retry:        RetryDelay,
		routes:       DefaultRoutes(),
		closeTimeout: defaultCloseTimeout,
		stopped:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.With(logger.Component("realtime"))
	c.fsm = newLifecycle(func(from, to State, e Event) {
		c.logger.Info("realtime state changed",
			slog.String("from", from.String()),
			logger.State(to),
			logger.Event(e.String()),
		)
	})

	return c, nil
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	return c.fsm.Current()
}

// Connected reports whether a live connection is established.
func (c *Client) Connected() bool {
	return c.fsm.Is(StateConnected)
}

// Routes returns a copy of the dispatch table in use.
func (c *Client) Routes() Routes {
	return c.routes.clone()
}

// Start runs the health gate and the initial connection attempt, and returns
// once the client is Connected or back in Disconnected. Calling Start while an
// attempt is in progress or a connection is up does nothing. Neither an
// unhealthy backend nor a failed dial is reported as an error; the only
// error is ErrClientStopped after Stop.
//
// ctx bounds the initial attempt only. Once connected, the session lives
// until Stop.
func (c *Client) Start(ctx context.Context, opts ...StartOption) error {
	c.mu.Lock()
	switch c.fsm.Current() {
	case StateStopped:
		c.mu.Unlock()
		return ErrClientStopped
	case StateDisconnected:
	default:
		c.mu.Unlock()
		return nil
	}
	if c.stopping {
		c.mu.Unlock()
		return ErrClientStopped
	}

	cfg := startConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	c.token = cfg.token

	session, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel
	c.fire(ctx, EventStart)
	c.wg.Add(1)
	c.mu.Unlock()
	defer c.wg.Done()

	attempt, cancelAttempt := context.WithCancel(session)
	defer cancelAttempt()
	defer context.AfterFunc(ctx, cancelAttempt)()

	healthy := c.health.Healthy(attempt)

	c.mu.Lock()
	if c.stopping {
		c.mu.Unlock()
		return nil
	}
	if !healthy {
		c.fire(ctx, EventHealthFailed)
		c.releaseSessionLocked()
		c.mu.Unlock()
		if c.pub != nil {
			c.pub.AddWarning(HealthWarningText)
		}
		return nil
	}
	c.fire(ctx, EventHealthOK)
	c.mu.Unlock()

	conn, err := c.dial(attempt)

	c.mu.Lock()
	if c.stopping {
		c.mu.Unlock()
		c.release(conn)
		return nil
	}
	if err != nil {
		c.logger.Warn("realtime connection failed, backend may be down",
			logger.URL(c.url),
			logger.Error(err),
		)
		c.fire(ctx, EventConnectFailed)
		c.releaseSessionLocked()
		c.mu.Unlock()
		return nil
	}

	c.conn = conn
	c.fire(ctx, EventConnected)
	c.wg.Add(1)
	go c.run(session, conn)
	c.mu.Unlock()

	c.logger.Info("realtime connection established", logger.URL(c.url))
	return nil
}

// Stop closes the connection if one is open, cancels any attempt in flight
// and moves the client to Stopped once every handle is released. A stopped
// client cannot be started again. Stop on a Disconnected or Stopped client
// does nothing. Concurrent Stop calls wait for the first one.
func (c *Client) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.stopping {
		c.mu.Unlock()
		select {
		case <-c.stopped:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	switch c.fsm.Current() {
	case StateDisconnected, StateStopped:
		c.mu.Unlock()
		return nil
	}

	c.stopping = true
	conn := c.conn
	c.conn = nil
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	var err error
	if conn != nil {
		err = conn.Close(ctx)
	}

	c.wg.Wait()

	c.mu.Lock()
	c.fire(ctx, EventStop)
	c.mu.Unlock()
	close(c.stopped)

	c.logger.Info("realtime client stopped")
	return err
}

func (c *Client) run(ctx context.Context, conn Conn) {
	defer c.wg.Done()

	for conn != nil {
		c.consume(ctx, conn)
		if ctx.Err() != nil {
			return
		}

		reason := conn.Err()
		c.mu.Lock()
		if c.stopping {
			c.mu.Unlock()
			return
		}
		c.conn = nil
		c.fire(ctx, EventDropped)
		c.mu.Unlock()

		c.logger.Warn("realtime connection lost, reconnecting", logger.Error(reason))
		c.release(conn)

		conn = c.reconnect(ctx, reason)
	}
}

func (c *Client) consume(ctx context.Context, conn Conn) {
	events := conn.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case inv, ok := <-events:
			if !ok {
				return
			}
			c.dispatch(ctx, inv)
		}
	}
}

// reconnect retries until a connection is up or ctx is cancelled.
func (c *Client) reconnect(ctx context.Context, reason error) Conn {
	droppedAt := time.Now()

	for n := 0; ; n++ {
		delay := c.retry(RetryContext{
			PreviousRetryCount: n,
			ElapsedTime:        time.Since(droppedAt),
			RetryReason:        reason,
		})
		if delay < 0 {
			delay = 0
		}

		c.logger.Debug("realtime reconnect scheduled", logger.Attempt(n+1), logger.Delay(delay))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		conn, err := c.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			reason = err
			c.logger.Debug("realtime reconnect attempt failed", logger.Attempt(n+1), logger.Error(err))
			continue
		}

		c.mu.Lock()
		if c.stopping {
			c.mu.Unlock()
			c.release(conn)
			return nil
		}
		c.conn = conn
		c.fire(ctx, EventReconnected)
		c.mu.Unlock()

		c.logger.Info("realtime connection restored", logger.Attempt(n+1))
		return conn
	}
}

func (c *Client) dial(ctx context.Context) (Conn, error) {
	c.mu.Lock()
	ts := c.token
	c.mu.Unlock()

	var token string
	if ts != nil {
		t, err := ts(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTokenSource, err)
		}
		token = t
	}

	conn, err := c.dialer.Dial(ctx, c.url, token)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, errors.New("realtime: dialer returned no connection")
	}
	return conn, nil
}

func (c *Client) dispatch(ctx context.Context, inv Invocation) {
	route, ok := c.routes[inv.Target]
	if !ok {
		c.logger.DebugContext(ctx, "realtime event ignored", slog.String("target", inv.Target))
		return
	}
	if c.pub == nil {
		return
	}

	msg := route(inv.Payload())
	c.pub.Add(msg.Severity, msg.Text, notifications.WithDurationMs(msg.DurationMs))
}

// release closes a connection nobody owns any more.
func (c *Client) release(conn Conn) {
	if conn == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.closeTimeout)
	defer cancel()
	if err := conn.Close(ctx); err != nil {
		c.logger.Debug("realtime connection close failed", logger.Error(err))
	}
}

func (c *Client) releaseSessionLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.token = nil
}

// fire must be called with c.mu held.
func (c *Client) fire(ctx context.Context, e Event) {
	if _, err := c.fsm.Fire(ctx, e); err != nil {
		c.logger.ErrorContext(ctx, "realtime transition rejected", logger.Event(e.String()), logger.Error(err))
	}
}
