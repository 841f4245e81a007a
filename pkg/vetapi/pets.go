package vetapi

import (
	"context"

	"github.com/dmitrymomot/vetkit/pkg/operation"
)

const petsPath = "/Users/me/animals"

// Pets manages the signed-in user's animals.
type Pets struct {
	c *Client
}

// List returns the user's pets. Errors are silent unless ShowErrors or Verbose is passed.
func (s *Pets) List(ctx context.Context, opts ...CallOption) operation.Outcome[[]Record] {
	p := operation.Fetch("pets").WithError("Failed to load pets data")
	p.NotifyOnError = false
	return get[[]Record](ctx, s.c, petsPath, apply(p, opts))
}

// Get returns one pet. Errors are silent unless requested.
func (s *Pets) Get(ctx context.Context, id string, opts ...CallOption) operation.Outcome[Record] {
	p := operation.Fetch("pet")
	p.NotifyOnError = false
	return get[Record](ctx, s.c, petsPath+join(id), apply(p, opts))
}

func (s *Pets) Add(ctx context.Context, pet Record, opts ...CallOption) operation.Outcome[Record] {
	p := operation.Create("pet").WithSuccess("Pet added successfully")
	return post[Record](ctx, s.c, petsPath, pet, apply(p, opts))
}

func (s *Pets) Update(ctx context.Context, id string, pet Record, opts ...CallOption) operation.Outcome[Record] {
	p := operation.Update("pet").WithSuccess("Pet details updated")
	return put[Record](ctx, s.c, petsPath+join(id), pet, apply(p, opts))
}

func (s *Pets) Delete(ctx context.Context, id string, opts ...CallOption) operation.Outcome[Record] {
	p := operation.Delete("pet").WithSuccess("Pet removed from the system")
	return del[Record](ctx, s.c, petsPath+join(id), apply(p, opts))
}

// HealthHistory returns the pet's health history entries.
func (s *Pets) HealthHistory(ctx context.Context, id string, opts ...CallOption) operation.Outcome[[]Record] {
	return get[[]Record](ctx, s.c, petsPath+join(id, "health-history"), apply(operation.Fetch("health history"), opts))
}

// Visits returns the pet's clinic visits.
func (s *Pets) Visits(ctx context.Context, id string, opts ...CallOption) operation.Outcome[[]Record] {
	return get[[]Record](ctx, s.c, petsPath+join(id, "visits"), apply(operation.Fetch("visits"), opts))
}
