package vetapi

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/dmitrymomot/vetkit/pkg/apiclient"
	"github.com/dmitrymomot/vetkit/pkg/notifications"
	"github.com/dmitrymomot/vetkit/pkg/operation"
)

// Record is an untyped backend entity. Payloads are passed through unvalidated.
type Record map[string]any

// Requester is the transport surface the services need. *apiclient.Client satisfies it.
type Requester interface {
	Get(ctx context.Context, path string) (*apiclient.Response, error)
	Post(ctx context.Context, path string, body any) (*apiclient.Response, error)
	Put(ctx context.Context, path string, body any) (*apiclient.Response, error)
	Delete(ctx context.Context, path string) (*apiclient.Response, error)
}

// Client groups the backend services behind one transport and one notification sink.
type Client struct {
	api  Requester
	exec *operation.Executor

	Pets          *Pets
	Veterinarians *Veterinarians
	Animals       *Animals
	Users         *Users
	Products      *Products
}

// New wires every service to api, reporting outcomes to pub.
func New(api Requester, pub notifications.Publisher, log *slog.Logger) *Client {
	c := &Client{
		api:  api,
		exec: operation.NewExecutor(pub, log),
	}
	c.Pets = &Pets{c: c}
	c.Veterinarians = &Veterinarians{c: c}
	c.Animals = &Animals{c: c}
	c.Users = &Users{c: c}
	c.Products = &Products{c: c}
	return c
}

// CallOption adjusts the notification policy of a single call.
type CallOption func(*operation.Policy)

// Verbose notifies on both success and failure.
func Verbose() CallOption {
	return func(p *operation.Policy) {
		p.NotifyOnSuccess = true
		p.NotifyOnError = true
	}
}

// Silent suppresses all notifications.
func Silent() CallOption {
	return func(p *operation.Policy) {
		p.NotifyOnSuccess = false
		p.NotifyOnError = false
	}
}

// ShowErrors notifies on failure only.
func ShowErrors() CallOption {
	return func(p *operation.Policy) {
		p.NotifyOnError = true
	}
}

func apply(p operation.Policy, opts []CallOption) operation.Policy {
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func get[T any](ctx context.Context, c *Client, path string, p operation.Policy) operation.Outcome[T] {
	return operation.Run[T](ctx, c.exec, func(ctx context.Context) (*apiclient.Response, error) {
		return c.api.Get(ctx, path)
	}, p)
}

func post[T any](ctx context.Context, c *Client, path string, body any, p operation.Policy) operation.Outcome[T] {
	return operation.Run[T](ctx, c.exec, func(ctx context.Context) (*apiclient.Response, error) {
		return c.api.Post(ctx, path, body)
	}, p)
}

func put[T any](ctx context.Context, c *Client, path string, body any, p operation.Policy) operation.Outcome[T] {
	return operation.Run[T](ctx, c.exec, func(ctx context.Context) (*apiclient.Response, error) {
		return c.api.Put(ctx, path, body)
	}, p)
}

func del[T any](ctx context.Context, c *Client, path string, p operation.Policy) operation.Outcome[T] {
	return operation.Run[T](ctx, c.exec, func(ctx context.Context) (*apiclient.Response, error) {
		return c.api.Delete(ctx, path)
	}, p)
}

// join builds a path from escaped segments.
func join(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(strings.Trim(s, "/")))
	}
	return b.String()
}
