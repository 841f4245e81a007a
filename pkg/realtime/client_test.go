package realtime_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/vetkit/pkg/logger"
	"github.com/dmitrymomot/vetkit/pkg/notifications"
	"github.com/dmitrymomot/vetkit/pkg/realtime"
)

const hubURL = "http://localhost:3001/chathub"

type fakeConn struct {
	events    chan realtime.Invocation
	mu        sync.Mutex
	err       error
	closed    bool
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{events: make(chan realtime.Invocation, 16)}
}

func (c *fakeConn) Events() <-chan realtime.Invocation { return c.events }

func (c *fakeConn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *fakeConn) Close(context.Context) error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.events)
	})
	return nil
}

// drop simulates the server going away.
func (c *fakeConn) drop(err error) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		close(c.events)
	})
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) push(t *testing.T, target string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	c.events <- realtime.Invocation{Target: target, Arguments: []json.RawMessage{raw}}
}

type fakeDialer struct {
	mu     sync.Mutex
	conns  []*fakeConn
	tokens []string
	fail   int // number of upcoming dials that fail
	block  chan struct{}
}

func (d *fakeDialer) Dial(ctx context.Context, _ string, token string) (realtime.Conn, error) {
	d.mu.Lock()
	block := d.block
	d.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.tokens = append(d.tokens, token)
	if d.fail > 0 {
		d.fail--
		return nil, errors.New("connection refused")
	}
	conn := newFakeConn()
	d.conns = append(d.conns, conn)
	return conn, nil
}

func (d *fakeDialer) dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tokens)
}

func (d *fakeDialer) conn(i int) *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i >= len(d.conns) {
		return nil
	}
	return d.conns[i]
}

func (d *fakeDialer) seenTokens() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.tokens...)
}

type healthFunc func(ctx context.Context) bool

func (f healthFunc) Healthy(ctx context.Context) bool { return f(ctx) }

func healthy(context.Context) bool   { return true }
func unhealthy(context.Context) bool { return false }

func noDelay(realtime.RetryContext) time.Duration { return time.Millisecond }

func newClient(t *testing.T, d realtime.Dialer, h healthFunc, opts ...realtime.Option) (*realtime.Client, *notifications.Sink) {
	t.Helper()
	sink := notifications.NewSink(notifications.WithDefaultDuration(0))
	t.Cleanup(sink.Close)

	opts = append([]realtime.Option{realtime.WithLogger(logger.Discard()), realtime.WithRetryPolicy(noDelay)}, opts...)
	c, err := realtime.New(hubURL, d, h, sink, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Stop(context.Background()) })
	return c, sink
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := realtime.New("", &fakeDialer{}, healthFunc(healthy), nil)
	assert.ErrorIs(t, err, realtime.ErrNoURL)
	_, err = realtime.New(hubURL, nil, healthFunc(healthy), nil)
	assert.ErrorIs(t, err, realtime.ErrNoDialer)
	_, err = realtime.New(hubURL, &fakeDialer{}, nil, nil)
	assert.ErrorIs(t, err, realtime.ErrNoHealth)

	c, err := realtime.New(hubURL, &fakeDialer{}, healthFunc(healthy), nil)
	require.NoError(t, err)
	assert.Equal(t, realtime.StateDisconnected, c.State())
	assert.False(t, c.Connected())
}

func TestRetryDelay(t *testing.T) {
	t.Parallel()

	want := []time.Duration{1000, 2000, 4000, 8000, 10000, 10000, 10000}
	for n, ms := range want {
		assert.Equal(t, ms*time.Millisecond, realtime.RetryDelay(realtime.RetryContext{PreviousRetryCount: n}), "n=%d", n)
	}
	assert.Equal(t, time.Second, realtime.RetryDelay(realtime.RetryContext{PreviousRetryCount: -1}))
	assert.Equal(t, 10*time.Second, realtime.RetryDelay(realtime.RetryContext{PreviousRetryCount: 100}))
}

func TestStart(t *testing.T) {
	t.Parallel()

	t.Run("connects and is idempotent", func(t *testing.T) {
		t.Parallel()
		d := &fakeDialer{}
		c, sink := newClient(t, d, healthy)

		require.NoError(t, c.Start(context.Background(), realtime.WithToken("secret")))
		assert.Equal(t, realtime.StateConnected, c.State())
		assert.True(t, c.Connected())

		require.NoError(t, c.Start(context.Background()))
		assert.Equal(t, 1, d.dials())
		assert.Equal(t, []string{"secret"}, d.seenTokens())
		assert.Zero(t, sink.Len())
	})

	t.Run("health gate failure warns once and stays disconnected", func(t *testing.T) {
		t.Parallel()
		d := &fakeDialer{}
		c, sink := newClient(t, d, unhealthy)

		require.NoError(t, c.Start(context.Background()))

		assert.Equal(t, realtime.StateDisconnected, c.State())
		assert.Zero(t, d.dials())
		entries := sink.List()
		require.Len(t, entries, 1)
		assert.Equal(t, notifications.SeverityWarning, entries[0].Severity)
		assert.Equal(t, realtime.HealthWarningText, entries[0].Message)
	})

	t.Run("initial dial failure is silent", func(t *testing.T) {
		t.Parallel()
		d := &fakeDialer{fail: 1}
		c, sink := newClient(t, d, healthy)

		require.NoError(t, c.Start(context.Background()))
		assert.Equal(t, realtime.StateDisconnected, c.State())
		assert.Zero(t, sink.Len())

		// a later start may succeed
		require.NoError(t, c.Start(context.Background()))
		assert.Equal(t, realtime.StateConnected, c.State())
		assert.Equal(t, 2, d.dials())
	})

	t.Run("token source error counts as dial failure", func(t *testing.T) {
		t.Parallel()
		d := &fakeDialer{}
		c, _ := newClient(t, d, healthy)

		err := c.Start(context.Background(), realtime.WithTokenSource(func(context.Context) (string, error) {
			return "", errors.New("expired")
		}))
		require.NoError(t, err)
		assert.Equal(t, realtime.StateDisconnected, c.State())
		assert.Zero(t, d.dials())
	})

	t.Run("oauth2 token source", func(t *testing.T) {
		t.Parallel()
		d := &fakeDialer{}
		c, _ := newClient(t, d, healthy)

		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "static"})
		require.NoError(t, c.Start(context.Background(), realtime.WithOAuth2TokenSource(ts)))
		assert.Equal(t, realtime.StateConnected, c.State())
		assert.Equal(t, []string{"static"}, d.seenTokens())
	})

	t.Run("start after stop", func(t *testing.T) {
		t.Parallel()
		c, _ := newClient(t, &fakeDialer{}, healthy)

		require.NoError(t, c.Start(context.Background()))
		require.NoError(t, c.Stop(context.Background()))
		assert.Equal(t, realtime.StateStopped, c.State())
		assert.ErrorIs(t, c.Start(context.Background()), realtime.ErrClientStopped)
	})
}

func TestDispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		target   string
		payload  any
		severity notifications.Severity
		message  string
		duration *time.Duration
	}{
		{"error notification", realtime.TargetNotificationReceived, map[string]any{"type": "error", "message": "X"}, notifications.SeverityError, "X", nil},
		{"success with duration", realtime.TargetNotificationReceived, map[string]any{"type": "success", "message": "Saved", "duration": 3000}, notifications.SeveritySuccess, "Saved", ptr(3 * time.Second)},
		{"huge integer duration is capped", realtime.TargetNotificationReceived, map[string]any{"type": "info", "message": "m", "duration": int64(math.MaxInt64)}, notifications.SeverityInfo, "m", ptr(notifications.MaxDuration)},
		{"huge float duration is capped", realtime.TargetNotificationReceived, map[string]any{"type": "info", "message": "m", "duration": 1e30}, notifications.SeverityInfo, "m", ptr(notifications.MaxDuration)},
		{"huge negative duration is sticky", realtime.TargetNotificationReceived, map[string]any{"type": "info", "message": "m", "duration": -1e30}, notifications.SeverityInfo, "m", nil},
		{"warning", realtime.TargetNotificationReceived, map[string]any{"type": "warning", "message": "Careful"}, notifications.SeverityWarning, "Careful", nil},
		{"defaults", realtime.TargetNotificationReceived, map[string]any{}, notifications.SeverityInfo, realtime.DefaultNotificationText, nil},
		{"unknown type is info", realtime.TargetNotificationReceived, map[string]any{"type": "debug", "message": "m"}, notifications.SeverityInfo, "m", nil},
		{"null payload", realtime.TargetNotificationReceived, nil, notifications.SeverityInfo, realtime.DefaultNotificationText, nil},
		{"visit with doctor", realtime.TargetVisitUpdated, map[string]any{"doctorName": "Dr. Jonaitis"}, notifications.SeverityInfo, "Visit updated: Dr. Jonaitis", nil},
		{"visit fallback", realtime.TargetVisitUpdated, map[string]any{"id": 4}, notifications.SeverityInfo, "Visit updated: veterinarian", nil},
		{"visit empty name", realtime.TargetVisitUpdated, map[string]any{"doctorName": ""}, notifications.SeverityInfo, "Visit updated: veterinarian", nil},
		{"pet with name", realtime.TargetPetRecordChanged, map[string]any{"name": "Rex"}, notifications.SeverityInfo, "Pet record updated: Rex", nil},
		{"pet fallback", realtime.TargetPetRecordChanged, nil, notifications.SeverityInfo, "Pet record updated: pet", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := &fakeDialer{}
			c, sink := newClient(t, d, healthy)
			require.NoError(t, c.Start(context.Background()))

			d.conn(0).push(t, tt.target, tt.payload)

			require.Eventually(t, func() bool { return sink.Len() == 1 }, time.Second, 5*time.Millisecond)
			e := sink.List()[0]
			assert.Equal(t, tt.severity, e.Severity)
			assert.Equal(t, tt.message, e.Message)
			assert.Equal(t, tt.duration, e.Duration)
		})
	}
}

func TestDispatchUnknownTargetAndCustomRoute(t *testing.T) {
	t.Parallel()
	d := &fakeDialer{}
	c, sink := newClient(t, d, healthy, realtime.WithRoute("VaccineDue", realtime.FieldRoute(
		notifications.SeverityWarning, "Vaccine due: %s", "vaccine", "vaccine",
	)))
	require.NoError(t, c.Start(context.Background()))
	assert.Len(t, c.Routes(), 4)

	conn := d.conn(0)
	conn.push(t, "SomethingElse", map[string]any{"x": 1})
	conn.push(t, "VaccineDue", map[string]any{"vaccine": "Rabies"})

	require.Eventually(t, func() bool { return sink.Len() == 1 }, time.Second, 5*time.Millisecond)
	e := sink.List()[0]
	assert.Equal(t, notifications.SeverityWarning, e.Severity)
	assert.Equal(t, "Vaccine due: Rabies", e.Message)
}

func TestReconnect(t *testing.T) {
	t.Parallel()

	var tokenCalls atomic.Int32
	var delays []int
	var mu sync.Mutex
	d := &fakeDialer{}
	c, sink := newClient(t, d, healthy, realtime.WithRetryPolicy(func(rc realtime.RetryContext) time.Duration {
		mu.Lock()
		delays = append(delays, rc.PreviousRetryCount)
		mu.Unlock()
		return time.Millisecond
	}))

	require.NoError(t, c.Start(context.Background(), realtime.WithTokenSource(func(context.Context) (string, error) {
		tokenCalls.Add(1)
		return "t", nil
	})))
	require.Equal(t, realtime.StateConnected, c.State())

	d.mu.Lock()
	d.fail = 2
	d.mu.Unlock()
	first := d.conn(0)
	first.drop(errors.New("server went away"))

	require.Eventually(t, func() bool {
		return c.State() == realtime.StateConnected && d.conn(1) != nil
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, 4, d.dials())
	assert.Equal(t, int32(4), tokenCalls.Load())
	mu.Lock()
	assert.Equal(t, []int{0, 1, 2}, delays)
	mu.Unlock()
	assert.True(t, first.isClosed() || first.Err() != nil)
	assert.Zero(t, sink.Len(), "reconnection is silent")

	// events keep flowing on the new connection
	d.conn(1).push(t, realtime.TargetPetRecordChanged, map[string]any{"name": "Murka"})
	require.Eventually(t, func() bool { return sink.Len() == 1 }, time.Second, 5*time.Millisecond)
}

type expiringTokenSource struct {
	calls atomic.Int32
}

func (s *expiringTokenSource) Token() (*oauth2.Token, error) {
	n := s.calls.Add(1)
	return &oauth2.Token{AccessToken: fmt.Sprintf("tok-%d", n), Expiry: time.Now().Add(-time.Minute)}, nil
}

func TestReconnectRefreshesOAuth2Token(t *testing.T) {
	t.Parallel()

	d := &fakeDialer{}
	c, _ := newClient(t, d, healthy, realtime.WithRetryPolicy(noDelay))

	ts := &expiringTokenSource{}
	require.NoError(t, c.Start(context.Background(), realtime.WithOAuth2TokenSource(ts)))
	require.Equal(t, realtime.StateConnected, c.State())

	d.conn(0).drop(errors.New("server went away"))

	require.Eventually(t, func() bool {
		return c.State() == realtime.StateConnected && d.conn(1) != nil
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"tok-1", "tok-2"}, d.seenTokens())
}

func TestStop(t *testing.T) {
	t.Parallel()

	t.Run("from disconnected is a no-op", func(t *testing.T) {
		t.Parallel()
		c, _ := newClient(t, &fakeDialer{}, healthy)
		require.NoError(t, c.Stop(context.Background()))
		assert.Equal(t, realtime.StateDisconnected, c.State())
	})

	t.Run("from connected closes the connection", func(t *testing.T) {
		t.Parallel()
		d := &fakeDialer{}
		c, _ := newClient(t, d, healthy)
		require.NoError(t, c.Start(context.Background()))

		require.NoError(t, c.Stop(context.Background()))
		assert.Equal(t, realtime.StateStopped, c.State())
		assert.True(t, d.conn(0).isClosed())
		assert.False(t, c.Connected())

		// second stop is a no-op
		require.NoError(t, c.Stop(context.Background()))
	})

	t.Run("while health checking", func(t *testing.T) {
		t.Parallel()
		entered := make(chan struct{})
		d := &fakeDialer{}
		c, sink := newClient(t, d, func(ctx context.Context) bool {
			close(entered)
			<-ctx.Done()
			return false
		})

		done := make(chan error, 1)
		go func() { done <- c.Start(context.Background()) }()
		<-entered
		assert.Equal(t, realtime.StateHealthChecking, c.State())

		require.NoError(t, c.Stop(context.Background()))
		require.NoError(t, <-done)
		assert.Equal(t, realtime.StateStopped, c.State())
		assert.Zero(t, d.dials())
		assert.Zero(t, sink.Len())
	})

	t.Run("while connecting", func(t *testing.T) {
		t.Parallel()
		d := &fakeDialer{block: make(chan struct{})}
		c, _ := newClient(t, d, healthy)

		done := make(chan error, 1)
		go func() { done <- c.Start(context.Background()) }()
		require.Eventually(t, func() bool { return c.State() == realtime.StateConnecting }, time.Second, time.Millisecond)

		require.NoError(t, c.Stop(context.Background()))
		require.NoError(t, <-done)
		assert.Equal(t, realtime.StateStopped, c.State())
		assert.Nil(t, d.conn(0))
	})

	t.Run("while reconnecting", func(t *testing.T) {
		t.Parallel()
		d := &fakeDialer{}
		c, _ := newClient(t, d, healthy, realtime.WithRetryPolicy(func(realtime.RetryContext) time.Duration {
			return time.Hour
		}))
		require.NoError(t, c.Start(context.Background()))

		d.conn(0).drop(errors.New("gone"))
		require.Eventually(t, func() bool { return c.State() == realtime.StateReconnecting }, time.Second, time.Millisecond)

		stopped := make(chan error, 1)
		go func() { stopped <- c.Stop(context.Background()) }()
		select {
		case err := <-stopped:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("stop blocked on retry delay")
		}
		assert.Equal(t, realtime.StateStopped, c.State())
		assert.Equal(t, 1, d.dials())
	})

	t.Run("concurrent stops", func(t *testing.T) {
		t.Parallel()
		c, _ := newClient(t, &fakeDialer{}, healthy)
		require.NoError(t, c.Start(context.Background()))

		var wg sync.WaitGroup
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, c.Stop(context.Background()))
			}()
		}
		wg.Wait()
		assert.Equal(t, realtime.StateStopped, c.State())
	})
}

func TestStateStrings(t *testing.T) {
	t.Parallel()

	states := map[realtime.State]string{
		realtime.StateDisconnected:   "disconnected",
		realtime.StateHealthChecking: "health_checking",
		realtime.StateConnecting:     "connecting",
		realtime.StateConnected:      "connected",
		realtime.StateReconnecting:   "reconnecting",
		realtime.StateStopped:        "stopped",
		realtime.State(99):           "unknown",
	}
	for s, name := range states {
		assert.Equal(t, name, s.String())
	}
	assert.Equal(t, "stop", realtime.EventStop.String())
}

func ptr[T any](v T) *T { return &v }
