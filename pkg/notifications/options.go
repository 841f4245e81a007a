package notifications

import (
	"log/slog"
	"time"
)

const (
	// DefaultDuration matches the toast lifetime used by the web client.
	DefaultDuration = 5 * time.Second
	// DefaultMaxEntries bounds the queue so a chatty backend can't grow it without limit.
	DefaultMaxEntries = 50
	// MaxDuration caps requested display durations.
	MaxDuration = 24 * time.Hour

	defaultSubscriberBuffer = 16
)

// Option configures a Sink.
type Option func(*Sink)

// WithDefaultDuration sets the display duration used when an add has none.
// Zero makes such entries sticky until dismissed.
func WithDefaultDuration(d time.Duration) Option {
	return func(s *Sink) {
		if d >= 0 {
			s.defaultDuration = d
		}
	}
}

// WithMaxEntries bounds the number of queued entries; the oldest are evicted first.
// Zero disables the bound.
func WithMaxEntries(n int) Option {
	return func(s *Sink) {
		if n >= 0 {
			s.maxEntries = n
		}
	}
}

// WithSubscriberBuffer sets the channel buffer for each Subscribe call.
func WithSubscriberBuffer(n int) Option {
	return func(s *Sink) {
		if n > 0 {
			s.subscriberBuffer = n
		}
	}
}

// Timer is a scheduled expiry. *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once d has elapsed.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// WithClock overrides the time source used for CreatedAt. It does not drive
// expiry; pair it with WithAfterFunc to control when entries are removed.
func WithClock(now func() time.Time) Option {
	return func(s *Sink) {
		if now != nil {
			s.now = now
		}
	}
}

// WithAfterFunc overrides how expiry timers are scheduled.
func WithAfterFunc(fn AfterFunc) Option {
	return func(s *Sink) {
		if fn != nil {
			s.afterFunc = fn
		}
	}
}

// WithIDGenerator overrides entry ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Sink) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Sink) {
		if l != nil {
			s.logger = l
		}
	}
}

// AddOption configures a single Add call.
type AddOption func(*addOptions)

type addOptions struct {
	duration *time.Duration
}

// WithDuration sets how long the entry stays visible. Zero or negative makes it sticky.
// Values above MaxDuration are capped.
func WithDuration(d time.Duration) AddOption {
	return func(o *addOptions) {
		d := min(d, MaxDuration)
		o.duration = &d
	}
}

// WithDurationMs is WithDuration for wire payloads that carry milliseconds.
// A nil value keeps the sink default.
func WithDurationMs(ms *int64) AddOption {
	return func(o *addOptions) {
		if ms == nil {
			return
		}
		limit := MaxDuration.Milliseconds()
		d := time.Duration(max(min(*ms, limit), -limit)) * time.Millisecond
		o.duration = &d
	}
}
