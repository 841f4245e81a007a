package notifications

import (
	"context"
	"sync"
)

type subscription struct {
	ch     chan Entry
	closed bool
	mu     sync.Mutex
}

// send never blocks: renderers that fall behind lose entries, producers never wait.
func (s *subscription) send(e Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- e:
		return true
	default:
		return false
	}
}

func (s *subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Subscribe returns a channel receiving every entry added after the call.
// The channel is closed when ctx is done or the sink is closed.
func (s *Sink) Subscribe(ctx context.Context) <-chan Entry {
	sub := &subscription{ch: make(chan Entry, s.subscriberBuffer)}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.close()
		return sub.ch
	}
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			s.mu.Lock()
			delete(s.subs, sub)
			s.mu.Unlock()
			sub.close()
		}()
	}

	return sub.ch
}
