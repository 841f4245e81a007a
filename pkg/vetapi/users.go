package vetapi

import (
	"context"

	"github.com/dmitrymomot/vetkit/pkg/operation"
)

const (
	profilePath = "/Users/me"

	deletionCancelledText = "Account deletion cancelled"
)

// Users manages the signed-in user's account.
type Users struct {
	c *Client
}

// Profile returns the user's profile. Pass Verbose to confirm the load with a success message.
func (s *Users) Profile(ctx context.Context, opts ...CallOption) operation.Outcome[Record] {
	p := operation.Fetch("user").WithSuccess("Profile data loaded successfully")
	return get[Record](ctx, s.c, profilePath, apply(p, opts))
}

func (s *Users) UpdateProfile(ctx context.Context, profile Record, opts ...CallOption) operation.Outcome[Record] {
	p := operation.Update("user").WithSuccess("Profile data updated successfully")
	return put[Record](ctx, s.c, profilePath, profile, apply(p, opts))
}

func (s *Users) ChangePassword(ctx context.Context, passwords Record, opts ...CallOption) operation.Outcome[Record] {
	p := operation.Update("password").WithSuccess("Password changed successfully")
	return put[Record](ctx, s.c, profilePath+"/password", passwords, apply(p, opts))
}

// DeleteAccount removes the account once confirm approves. A declined
// confirmation sends nothing, adds an info notification and reports cancelled.
func (s *Users) DeleteAccount(ctx context.Context, confirm func() bool, opts ...CallOption) (out operation.Outcome[Record], cancelled bool) {
	if confirm != nil && !confirm() {
		if pub := s.c.exec.Publisher; pub != nil {
			pub.AddInfo(deletionCancelledText)
		}
		return operation.Outcome[Record]{}, true
	}

	p := operation.Delete("account").WithSuccess("Account deleted successfully")
	return del[Record](ctx, s.c, profilePath, apply(p, opts)), false
}

// MyAnimals is the account view of the user's pets; unlike Pets.List it reports errors.
func (s *Users) MyAnimals(ctx context.Context, opts ...CallOption) operation.Outcome[[]Record] {
	p := operation.Fetch("animals").WithError("Failed to load your animals")
	return get[[]Record](ctx, s.c, petsPath, apply(p, opts))
}
