package operation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/vetkit/pkg/apiclient"
	"github.com/dmitrymomot/vetkit/pkg/logger"
	"github.com/dmitrymomot/vetkit/pkg/notifications"
)

// Func is one backend call, typically a closure over an apiclient.Client verb.
type Func func(ctx context.Context) (*apiclient.Response, error)

// Execute runs fn, classifies the result, pushes the notifications p asks for
// and returns the outcome. It never panics and never returns an error: every
// failure is inside the returned Outcome. Notifications are enqueued before
// Execute returns. A nil publisher disables notifications.
func Execute[T any](ctx context.Context, pub notifications.Publisher, fn Func, p Policy) Outcome[T] {
	return execute[T](ctx, pub, slog.Default(), fn, p)
}

// Executor binds a publisher and a logger so call sites don't repeat them.
// The zero value logs to slog.Default and notifies nobody.
type Executor struct {
	Publisher notifications.Publisher
	Logger    *slog.Logger
}

// NewExecutor returns an Executor publishing to pub.
func NewExecutor(pub notifications.Publisher, log *slog.Logger) *Executor {
	return &Executor{Publisher: pub, Logger: log}
}

// Run is Execute with the executor's publisher and logger.
func Run[T any](ctx context.Context, e *Executor, fn Func, p Policy) Outcome[T] {
	if e == nil {
		return execute[T](ctx, nil, slog.Default(), fn, p)
	}
	log := e.Logger
	if log == nil {
		log = slog.Default()
	}
	return execute[T](ctx, e.Publisher, log, fn, p)
}

// Start is Go with the executor's publisher and logger.
func Start[T any](ctx context.Context, e *Executor, fn Func, p Policy) *Pending[T] {
	return spawn(func() Outcome[T] { return Run[T](ctx, e, fn, p) })
}

func execute[T any](ctx context.Context, pub notifications.Publisher, log *slog.Logger, fn Func, p Policy) Outcome[T] {
	notify := true
	if err := p.Validate(); err != nil {
		log.LogAttrs(ctx, slog.LevelWarn, "operation policy rejected, notifications disabled",
			logger.Component("operation"),
			logger.Error(err),
		)
		notify = false
	}

	outcome := Classify[T](invoke(ctx, fn))

	if notify && pub != nil {
		switch {
		case outcome.Success && p.NotifyOnSuccess:
			pub.AddSuccess(p.SuccessText())
		case !outcome.Success && p.NotifyOnError:
			pub.AddError(p.ErrorText())
		}
	}

	if !outcome.Success {
		log.LogAttrs(ctx, slog.LevelDebug, "operation failed",
			logger.Component("operation"),
			slog.String("kind", p.Kind.String()),
			slog.String("entity", p.Entity),
			logger.Error(outcome.Err),
		)
	}

	return outcome
}

func invoke(ctx context.Context, fn Func) (resp *apiclient.Response, err error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil operation", ErrNoResponse)
	}

	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	return fn(ctx)
}
