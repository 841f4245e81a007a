package notifications

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/vetkit/pkg/logger"
)

// Publisher is the write side of a Sink, consumed by the operation wrapper
// and the realtime client.
type Publisher interface {
	Add(severity Severity, message string, opts ...AddOption) string
	AddSuccess(message string, opts ...AddOption) string
	AddError(message string, opts ...AddOption) string
	AddWarning(message string, opts ...AddOption) string
	AddInfo(message string, opts ...AddOption) string
}

var _ Publisher = (*Sink)(nil)

// Sink is a session-scoped queue of transient user-facing messages.
// All methods are safe for concurrent use; mutations are serialized.
type Sink struct {
	defaultDuration  time.Duration
	maxEntries       int
	subscriberBuffer int
	now              func() time.Time
	afterFunc        AfterFunc
	newID            func() string
	logger           *slog.Logger

	mu      sync.Mutex
	entries []Entry
	timers  map[string]Timer
	subs    map[*subscription]struct{}
	closed  bool
}

// NewSink creates an empty sink.
func NewSink(opts ...Option) *Sink {
	s := &Sink{
		defaultDuration:  DefaultDuration,
		maxEntries:       DefaultMaxEntries,
		subscriberBuffer: defaultSubscriberBuffer,
		now:              time.Now,
		afterFunc:        realAfterFunc,
		newID:            func() string { return uuid.New().String() },
		logger:           slog.Default(),
		timers:           make(map[string]Timer),
		subs:             make(map[*subscription]struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Add enqueues a message and returns its ID. Unknown severities are stored as info.
// Adds after Close are dropped and return an empty ID.
func (s *Sink) Add(severity Severity, message string, opts ...AddOption) string {
	if !severity.Valid() {
		s.logger.Debug("unknown notification severity, using info", slog.String("severity", string(severity)))
		severity = SeverityInfo
	}

	o := addOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.Debug("notification dropped, sink closed", slog.String("message", message))
		return ""
	}

	entry := Entry{
		ID:        s.newID(),
		Severity:  severity,
		Message:   message,
		CreatedAt: s.now(),
	}

	d := s.defaultDuration
	if o.duration != nil {
		d = *o.duration
	}
	if d > 0 {
		entry.Duration = &d
		id := entry.ID
		s.timers[id] = s.afterFunc(d, func() { s.expire(id) })
	}

	s.entries = append(s.entries, entry)

	if s.maxEntries > 0 && len(s.entries) > s.maxEntries {
		evicted := s.entries[:len(s.entries)-s.maxEntries]
		for _, e := range evicted {
			s.stopTimerLocked(e.ID)
		}
		s.entries = append([]Entry(nil), s.entries[len(s.entries)-s.maxEntries:]...)
	}

	for sub := range s.subs {
		if !sub.send(entry.clone()) {
			s.logger.LogAttrs(context.Background(), slog.LevelDebug, "slow notification subscriber, entry dropped",
				slog.String("notification_id", entry.ID),
				logger.Component("notifications"),
			)
		}
	}

	return entry.ID
}

func (s *Sink) AddSuccess(message string, opts ...AddOption) string {
	return s.Add(SeveritySuccess, message, opts...)
}

func (s *Sink) AddError(message string, opts ...AddOption) string {
	return s.Add(SeverityError, message, opts...)
}

func (s *Sink) AddWarning(message string, opts ...AddOption) string {
	return s.Add(SeverityWarning, message, opts...)
}

func (s *Sink) AddInfo(message string, opts ...AddOption) string {
	return s.Add(SeverityInfo, message, opts...)
}

// Dismiss removes the entry with the given ID. It reports whether the entry was present.
func (s *Sink) Dismiss(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(id)
}

// List returns a copy of the queued entries, oldest first.
func (s *Sink) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.clone()
	}
	return out
}

// Len returns the number of queued entries.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Clear removes every queued entry.
func (s *Sink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.timers {
		s.stopTimerLocked(id)
	}
	s.entries = nil
}

// Close clears the queue, closes every subscription and rejects further adds.
// Close is idempotent.
func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	for id := range s.timers {
		s.stopTimerLocked(id)
	}
	s.entries = nil

	for sub := range s.subs {
		sub.close()
		delete(s.subs, sub)
	}
}

func (s *Sink) expire(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

func (s *Sink) removeLocked(id string) bool {
	for i, e := range s.entries {
		if e.ID == id {
			s.stopTimerLocked(id)
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Sink) stopTimerLocked(id string) {
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}
