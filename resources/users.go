package resources

import (
	"context"
	"net/url"

	"github.com/jrsteele09/go-cms-client/apiclient"
	"github.com/jrsteele09/go-cms-client/apistate"
	"github.com/jrsteele09/go-cms-client/notify"
	"github.com/jrsteele09/go-cms-client/users"
)

// Invite asks the API to add someone to the account in the X-Account-ID header.
type Invite struct {
	Email     string         `json:"email"`
	Role      users.RoleType `json:"role"`
	FirstName string         `json:"first_name,omitempty"`
	LastName  string         `json:"last_name,omitempty"`
}

// Users manages the members of the account selected by the request header.
// Account-id addressed membership calls live on Accounts.
type Users struct {
	base
	State *apistate.State[Raw]
}

func NewUsers(c *apiclient.Client, n notify.Notifier) *Users {
	b := newBase(c, n)
	return &Users{base: b, State: apistate.New[Raw](b.notifier)}
}

func memberPath(userID, action string) string {
	path := "/account/users/" + seg(userID) + "/"
	if action != "" {
		path += action + "/"
	}
	return path
}

func (u *Users) FetchUsers(ctx context.Context, params url.Values) (Raw, error) {
	return u.State.Execute(ctx, get[Raw](u.client, "/users/", params))
}

func (u *Users) FetchAccountUsers(ctx context.Context, params url.Values) (Raw, error) {
	return u.State.Execute(ctx, get[Raw](u.client, "/account/users/", params))
}

func (u *Users) Invite(ctx context.Context, in Invite) (Raw, error) {
	return u.State.Execute(ctx, post[Raw](u.client, "/account/users/invite/", in))
}

func (u *Users) UpdateRole(ctx context.Context, userID string, role users.RoleType) (Raw, error) {
	return u.State.Execute(ctx, patch[Raw](u.client, memberPath(userID, "role"), map[string]users.RoleType{"role": role}))
}

func (u *Users) Remove(ctx context.Context, userID string) error {
	_, err := u.State.Execute(ctx, del[Raw](u.client, memberPath(userID, "")))
	return err
}

func (u *Users) Deactivate(ctx context.Context, userID string) (Raw, error) {
	return u.State.Execute(ctx, patch[Raw](u.client, memberPath(userID, "deactivate"), nil))
}

func (u *Users) Activate(ctx context.Context, userID string) (Raw, error) {
	return u.State.Execute(ctx, patch[Raw](u.client, memberPath(userID, "activate"), nil))
}

func (u *Users) ResendInvitation(ctx context.Context, userID string) (Raw, error) {
	return u.State.Execute(ctx, post[Raw](u.client, memberPath(userID, "resend-invitation"), nil))
}
