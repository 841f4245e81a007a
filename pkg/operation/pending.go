package operation

import (
	"context"
	"time"

	"github.com/dmitrymomot/vetkit/pkg/notifications"
)

// Pending is an Execute call running on its own goroutine.
// There is no cancellation: once started, the operation runs to completion.
type Pending[T any] struct {
	outcome Outcome[T]
	done    chan struct{}
}

// Go starts Execute in the background and returns immediately.
func Go[T any](ctx context.Context, pub notifications.Publisher, fn Func, p Policy) *Pending[T] {
	return spawn(func() Outcome[T] { return Execute[T](ctx, pub, fn, p) })
}

func spawn[T any](run func() Outcome[T]) *Pending[T] {
	pending := &Pending[T]{done: make(chan struct{})}

	go func() {
		defer close(pending.done)
		pending.outcome = run()
	}()

	return pending
}

// Wait blocks until the operation completes.
func (p *Pending[T]) Wait() Outcome[T] {
	<-p.done
	return p.outcome
}

// WaitTimeout waits at most d. The second return value is false if the
// operation is still running; it keeps running regardless.
func (p *Pending[T]) WaitTimeout(d time.Duration) (Outcome[T], bool) {
	select {
	case <-p.done:
		return p.outcome, true
	case <-time.After(d):
		return Outcome[T]{}, false
	}
}

// Done is closed once the outcome and its notifications are in place.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// WaitAll waits for every pending operation and returns outcomes in order.
func WaitAll[T any](pending ...*Pending[T]) []Outcome[T] {
	out := make([]Outcome[T], len(pending))
	for i, p := range pending {
		out[i] = p.Wait()
	}
	return out
}
