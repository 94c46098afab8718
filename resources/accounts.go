package resources

import (
	"context"

	"github.com/jrsteele09/go-cms-client/apiclient"
	apperrors "github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/jrsteele09/go-cms-client/notify"
	"github.com/jrsteele09/go-cms-client/tenants"
	"github.com/jrsteele09/go-cms-client/users"
	"github.com/rs/zerolog/log"
)

// Accounts are the tenant actions: they call the API and keep the tenant
// store in step with the result.
type Accounts struct {
	base
	tenant *tenants.Store
}

func NewAccounts(c *apiclient.Client, n notify.Notifier, tenant *tenants.Store) *Accounts {
	return &Accounts{base: newBase(c, n), tenant: tenant}
}

func (a *Accounts) currentID() (string, error) {
	id := a.tenant.CurrentAccountID()
	if id == "" {
		return "", apperrors.ErrNoCurrentAccount
	}
	return id, nil
}

// FetchUserAccounts loads the accounts the caller belongs to.
func (a *Accounts) FetchUserAccounts(ctx context.Context) ([]tenants.Account, error) {
	accounts, err := once(ctx, a.base, get[[]tenants.Account](a.client, "/accounts/", nil))
	if err != nil {
		return nil, err
	}
	a.tenant.SetAccounts(accounts)
	return accounts, nil
}

func (a *Accounts) Create(ctx context.Context, in tenants.AccountInput) (tenants.Account, error) {
	account, err := once(ctx, a.base, post[tenants.Account](a.client, "/accounts/", in))
	if err != nil {
		return tenants.Account{}, err
	}
	a.tenant.AddAccount(account)
	return account, nil
}

// Switch selects one of the fetched accounts; later requests carry its id.
func (a *Accounts) Switch(accountID string) (tenants.Account, error) {
	account, err := a.tenant.SwitchAccount(accountID)
	if err != nil {
		return tenants.Account{}, err
	}
	log.Info().Str("account", account.ID).Msg("resources: switched account")
	return account, nil
}

func (a *Accounts) Update(ctx context.Context, upd tenants.AccountUpdate) (tenants.Account, error) {
	id, err := a.currentID()
	if err != nil {
		return tenants.Account{}, err
	}
	account, err := once(ctx, a.base, patch[tenants.Account](a.client, "/accounts/"+seg(id)+"/", upd))
	if err != nil {
		return tenants.Account{}, err
	}
	if err := a.tenant.MergeCurrentAccount(account); err != nil {
		return tenants.Account{}, err
	}
	return account, nil
}

// FetchMembers loads the current account's memberships. With no current
// account it returns nothing.
func (a *Accounts) FetchMembers(ctx context.Context) ([]tenants.AccountUser, error) {
	id := a.tenant.CurrentAccountID()
	if id == "" {
		return nil, nil
	}
	members, err := once(ctx, a.base, get[[]tenants.AccountUser](a.client, "/accounts/"+seg(id)+"/users/", nil))
	if err != nil {
		return nil, err
	}
	a.tenant.SetMembers(members)
	return members, nil
}

func (a *Accounts) Invite(ctx context.Context, inv tenants.Invitation) (tenants.AccountUser, error) {
	id, err := a.currentID()
	if err != nil {
		return tenants.AccountUser{}, err
	}
	member, err := once(ctx, a.base, post[tenants.AccountUser](a.client, "/accounts/"+seg(id)+"/invite/", inv))
	if err != nil {
		return tenants.AccountUser{}, err
	}
	a.tenant.UpsertMember(member)
	return member, nil
}

func (a *Accounts) UpdateRole(ctx context.Context, userID string, role users.RoleType) (tenants.AccountUser, error) {
	id, err := a.currentID()
	if err != nil {
		return tenants.AccountUser{}, err
	}
	path := "/accounts/" + seg(id) + "/users/" + seg(userID) + "/"
	member, err := once(ctx, a.base, patch[tenants.AccountUser](a.client, path, map[string]users.RoleType{"role": role}))
	if err != nil {
		return tenants.AccountUser{}, err
	}
	a.tenant.UpsertMember(member)
	return member, nil
}

func (a *Accounts) RemoveMember(ctx context.Context, userID string) error {
	id, err := a.currentID()
	if err != nil {
		return err
	}
	if _, err := once(ctx, a.base, del[Raw](a.client, "/accounts/"+seg(id)+"/users/"+seg(userID)+"/")); err != nil {
		return err
	}
	a.tenant.RemoveMember(userID)
	return nil
}

func (a *Accounts) Clear() error {
	return a.tenant.Clear()
}
