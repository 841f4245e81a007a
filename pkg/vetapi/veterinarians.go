package vetapi

import (
	"context"
	"net/url"

	"github.com/dmitrymomot/vetkit/pkg/operation"
)

const veterinariansPath = "/veterinarians"

// Veterinarians manages the clinic's veterinarian directory.
type Veterinarians struct {
	c *Client
}

// List returns veterinarians filtered by params, which are sent as the query string.
func (s *Veterinarians) List(ctx context.Context, params url.Values, opts ...CallOption) operation.Outcome[[]Record] {
	path := veterinariansPath
	if q := params.Encode(); q != "" {
		path += "?" + q
	}
	return get[[]Record](ctx, s.c, path, apply(operation.Fetch("veterinarians"), opts))
}

func (s *Veterinarians) Get(ctx context.Context, id string, opts ...CallOption) operation.Outcome[Record] {
	return get[Record](ctx, s.c, veterinariansPath+join(id), apply(operation.Fetch("veterinarian"), opts))
}

func (s *Veterinarians) Create(ctx context.Context, vet Record, opts ...CallOption) operation.Outcome[Record] {
	p := operation.Create("veterinarian").WithSuccess("Veterinarian added")
	return post[Record](ctx, s.c, veterinariansPath, vet, apply(p, opts))
}

func (s *Veterinarians) Update(ctx context.Context, id string, vet Record, opts ...CallOption) operation.Outcome[Record] {
	p := operation.Update("veterinarian").WithSuccess("Veterinarian details updated")
	return put[Record](ctx, s.c, veterinariansPath+join(id), vet, apply(p, opts))
}

func (s *Veterinarians) Remove(ctx context.Context, id string, opts ...CallOption) operation.Outcome[Record] {
	p := operation.Delete("veterinarian").WithSuccess("Veterinarian removed")
	return del[Record](ctx, s.c, veterinariansPath+join(id), apply(p, opts))
}
