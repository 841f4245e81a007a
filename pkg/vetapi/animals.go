package vetapi

import (
	"context"

	"github.com/dmitrymomot/vetkit/pkg/operation"
)

// Subresource identifies a per-animal collection.
type Subresource struct {
	segment    string
	entity     string
	listError  string
	fetchError string
}

var (
	Vaccines = Subresource{
		segment:    "vaccines",
		entity:     "vaccine",
		listError:  "Failed to load vaccines",
		fetchError: "Failed to load vaccine",
	}
	Illnesses = Subresource{
		segment:    "illnesses",
		entity:     "illness",
		listError:  "Failed to load illnesses",
		fetchError: "Failed to load illness",
	}
	ProductsUsed = Subresource{
		segment:    "productused",
		entity:     "product used",
		listError:  "Failed to load products used",
		fetchError: "Failed to load product",
	}
)

func (r Subresource) String() string {
	return r.segment
}

// Animals manages vaccines, illnesses and products used of any animal.
type Animals struct {
	c *Client
}

func (s *Animals) path(animalID string, r Subresource, id ...string) string {
	return join(append([]string{"Animal", animalID, r.segment}, id...)...)
}

func (s *Animals) List(ctx context.Context, animalID string, r Subresource, opts ...CallOption) operation.Outcome[[]Record] {
	p := operation.Fetch(r.entity).WithError(r.listError)
	return get[[]Record](ctx, s.c, s.path(animalID, r), apply(p, opts))
}

func (s *Animals) Get(ctx context.Context, animalID string, r Subresource, id string, opts ...CallOption) operation.Outcome[Record] {
	p := operation.Fetch(r.entity).WithError(r.fetchError)
	return get[Record](ctx, s.c, s.path(animalID, r, id), apply(p, opts))
}

func (s *Animals) Create(ctx context.Context, animalID string, r Subresource, rec Record, opts ...CallOption) operation.Outcome[Record] {
	return post[Record](ctx, s.c, s.path(animalID, r), rec, apply(operation.Create(r.entity), opts))
}

func (s *Animals) Update(ctx context.Context, animalID string, r Subresource, id string, rec Record, opts ...CallOption) operation.Outcome[Record] {
	return put[Record](ctx, s.c, s.path(animalID, r, id), rec, apply(operation.Update(r.entity), opts))
}

func (s *Animals) Delete(ctx context.Context, animalID string, r Subresource, id string, opts ...CallOption) operation.Outcome[Record] {
	return del[Record](ctx, s.c, s.path(animalID, r, id), apply(operation.Delete(r.entity), opts))
}
