package tenants

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/jrsteele09/go-cms-client/storage"
	"github.com/jrsteele09/go-cms-client/users"
	"github.com/rs/zerolog/log"
)

// Identity tells the store who the caller is, so the caller's role can be
// looked up in the membership list.
type Identity interface {
	UserID() string
}

// Store owns the selected account and the membership list it derives the
// caller's role from. Only the store mutates the persisted current_account key.
type Store struct {
	mu       sync.RWMutex
	storage  storage.Store
	identity Identity
	current  *Account
	accounts []Account
	members  []AccountUser
}

func NewStore(st storage.Store, identity Identity) *Store {
	return &Store{storage: st, identity: identity}
}

// Restore loads the persisted current account. A corrupt record is dropped.
func (s *Store) Restore() error {
	raw, ok, err := s.storage.Get(storage.KeyCurrentAccount)
	if err != nil {
		return errors.Wrapf(err, "tenants.Restore")
	}
	if !ok {
		return nil
	}
	var account Account
	if err := json.Unmarshal([]byte(raw), &account); err != nil {
		log.Err(err).Msg("tenants: failed to parse saved account")
		return s.storage.Remove(storage.KeyCurrentAccount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &account
	return nil
}

// SetCurrentAccount selects account (nil deselects) and persists the choice.
// Every request built after this returns carries the new account id.
func (s *Store) SetCurrentAccount(account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setCurrentLocked(account)
}

func (s *Store) setCurrentLocked(account *Account) error {
	if account == nil {
		s.current = nil
		return s.storage.Remove(storage.KeyCurrentAccount)
	}
	raw, err := json.Marshal(account)
	if err != nil {
		return errors.Wrapf(err, "tenants.SetCurrentAccount marshal")
	}
	if err := s.storage.Set(storage.KeyCurrentAccount, string(raw)); err != nil {
		return errors.Wrapf(err, "tenants.SetCurrentAccount persist")
	}
	a := *account
	s.current = &a
	return nil
}

// SwitchAccount selects one of the available accounts by id.
func (s *Store) SwitchAccount(accountID string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := slices.IndexFunc(s.accounts, func(a Account) bool { return a.ID == accountID })
	if idx < 0 {
		return Account{}, errors.Wrapf(errors.ErrTenantNotFound, "switch to %s", accountID)
	}
	account := s.accounts[idx]
	if err := s.setCurrentLocked(&account); err != nil {
		return Account{}, err
	}
	return account, nil
}

// MergeCurrentAccount replaces the current account with an updated copy from the API.
func (s *Store) MergeCurrentAccount(updated Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return errors.ErrNoCurrentAccount
	}
	return s.setCurrentLocked(&updated)
}

func (s *Store) SetAccounts(accounts []Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = slices.Clone(accounts)
}

func (s *Store) AddAccount(account Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = append(s.accounts, account)
}

func (s *Store) SetMembers(members []AccountUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = slices.Clone(members)
}

// UpsertMember replaces the membership of the same user or appends a new one.
func (s *Store) UpsertMember(member AccountUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := slices.IndexFunc(s.members, func(m AccountUser) bool { return m.User.ID == member.User.ID })
	if idx < 0 {
		s.members = append(s.members, member)
		return
	}
	s.members[idx] = member
}

func (s *Store) RemoveMember(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = slices.DeleteFunc(s.members, func(m AccountUser) bool { return m.User.ID == userID })
}

// Clear forgets the tenant binding entirely.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.accounts = nil
	s.members = nil
	return s.storage.Remove(storage.KeyCurrentAccount)
}

// CurrentAccount returns a copy of the selected account, or nil.
func (s *Store) CurrentAccount() *Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	a := *s.current
	return &a
}

// CurrentAccountID is empty when no account is selected.
func (s *Store) CurrentAccountID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.ID
}

func (s *Store) AccountSlug() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Slug
}

func (s *Store) Accounts() []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.accounts)
}

func (s *Store) Members() []AccountUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.members)
}

// Role is the caller's role in the current account. It is never stored; it is
// looked up from the membership list every time.
func (s *Store) Role() (users.RoleType, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || s.identity == nil {
		return "", false
	}
	userID := s.identity.UserID()
	if userID == "" {
		return "", false
	}
	for _, m := range s.members {
		if m.Account.ID == s.current.ID && m.User.ID == userID {
			return m.Role, true
		}
	}
	return "", false
}

func (s *Store) hasRole(roles ...users.RoleType) bool {
	role, ok := s.Role()
	return ok && role.OneOf(roles...)
}

func (s *Store) CanManageUsers() bool {
	return s.hasRole(users.RoleAdmin)
}

func (s *Store) CanManageBilling() bool {
	return s.hasRole(users.RoleAdmin)
}

func (s *Store) CanPublishArticles() bool {
	return s.hasRole(users.RoleAdmin, users.RoleEditor, users.RoleAuthor)
}

func (s *Store) CanEditAllArticles() bool {
	return s.hasRole(users.RoleAdmin, users.RoleEditor)
}

func (s *Store) CanViewAnalytics() bool {
	return s.hasRole(users.RoleAdmin, users.RoleEditor)
}

// Authorize is the route-guard predicate: it fails when one of roles is required
// and the caller holds none of them in the current account.
func (s *Store) Authorize(roles ...users.RoleType) error {
	if len(roles) == 0 {
		return nil
	}
	if s.CurrentAccountID() == "" {
		return errors.ErrNoCurrentAccount
	}
	if !s.hasRole(roles...) {
		return errors.ErrForbidden
	}
	return nil
}
