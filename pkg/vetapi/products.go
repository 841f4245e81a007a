package vetapi

import (
	"context"

	"github.com/dmitrymomot/vetkit/pkg/operation"
)

// Products reads the product catalogue.
type Products struct {
	c *Client
}

// List returns the catalogue. It never notifies; callers render the error themselves.
func (s *Products) List(ctx context.Context, opts ...CallOption) operation.Outcome[[]Record] {
	p := operation.Fetch("products").WithError("Failed to load products").Quiet()
	return get[[]Record](ctx, s.c, "/Product", apply(p, opts))
}
