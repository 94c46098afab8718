package auth

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/jrsteele09/go-cms-client/apiclient"
	"github.com/jrsteele09/go-cms-client/internal/config"
	apperrors "github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/jrsteele09/go-cms-client/sessions"
	"github.com/jrsteele09/go-cms-client/tenants"
	"github.com/jrsteele09/go-cms-client/token"
	"github.com/jrsteele09/go-cms-client/users"
	"github.com/jrsteele09/go-cms-client/validation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Service holds the session actions: login, registration, logout and token refresh.
type Service struct {
	client  *apiclient.Client
	config  config.ClientConfig
	session *sessions.Store
	tenant  *tenants.Store

	mu      sync.Mutex
	loading bool
	lastErr string
}

func NewService(cfg config.ClientConfig, client *apiclient.Client, session *sessions.Store, tenant *tenants.Store) *Service {
	return &Service{client: client, config: cfg, session: session, tenant: tenant}
}

// Initialize restores the persisted session and tenant selection.
func (s *Service) Initialize() error {
	var result *multierror.Error
	if err := s.session.Restore(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := s.tenant.Restore(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// Status reports whether an action is running and the last action's error message.
func (s *Service) Status() (loading bool, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading, s.lastErr
}

func (s *Service) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
	s.lastErr = ""
}

func (s *Service) end(err error, fallback string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err == nil {
		return
	}
	s.lastErr = fallback
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != apiclient.DefaultErrorMessage {
		s.lastErr = apiErr.Message
	}
}

// Login exchanges credentials for tokens and starts the session. A rejected
// login is never treated as an expired session.
func (s *Service) Login(ctx context.Context, creds LoginCredentials) (user users.User, err error) {
	if err := validation.LoginSchema().Validate(map[string]string{
		"email":    creds.Email,
		"password": creds.Password,
	}).Err(); err != nil {
		return users.User{}, err
	}

	s.begin()
	defer func() { s.end(err, loginFailedMessage) }()

	resp, err := apiclient.Post[TokenResponse](apiclient.WithoutAuthRetry(ctx), s.client, s.config.GetTokenPath(), creds)
	if err != nil {
		return users.User{}, errors.Wrap(err, "Service.Login")
	}
	if resp.Data.Access == "" {
		return users.User{}, errors.Wrap(apperrors.ErrInvalidToken, "Service.Login")
	}
	if err := s.session.Set(resp.Data.User, resp.Data.Access, resp.Data.Refresh); err != nil {
		return users.User{}, errors.Wrap(err, "Service.Login session.Set")
	}
	log.Info().Str("user", resp.Data.User.ID).Msg("auth: logged in")
	return resp.Data.User, nil
}

// Register creates an account for a new user. It does not log the user in.
func (s *Service) Register(ctx context.Context, data RegisterData) (user users.User, err error) {
	if err := validation.RegisterSchema(data.Password).Validate(map[string]string{
		"first_name":       data.FirstName,
		"last_name":        data.LastName,
		"email":            data.Email,
		"password":         data.Password,
		"password_confirm": data.PasswordConfirm,
	}).Err(); err != nil {
		if data.Password != data.PasswordConfirm {
			return users.User{}, multierror.Append(UserPasswordsDontMatchErr, err)
		}
		return users.User{}, err
	}
	if err := users.ValidatePasswordStrength(data.Password); err != nil {
		return users.User{}, errors.Wrap(WeakPasswordErr, err.Error())
	}

	s.begin()
	defer func() { s.end(err, registrationFailedMessage) }()

	resp, err := apiclient.Post[users.User](apiclient.WithoutAuthRetry(ctx), s.client, s.config.GetRegisterPath(), data)
	if err != nil {
		return users.User{}, errors.Wrap(err, "Service.Register")
	}
	return resp.Data, nil
}

// Logout forgets credentials, user and tenant selection.
func (s *Service) Logout() error {
	var result *multierror.Error
	if err := s.session.Clear(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := s.tenant.Clear(); err != nil {
		result = multierror.Append(result, err)
	}
	log.Info().Msg("auth: logged out")
	return result.ErrorOrNil()
}

// RefreshAccessToken mints a new access token. If the refresh is rejected the
// session is ended.
func (s *Service) RefreshAccessToken(ctx context.Context) (string, error) {
	if s.session.RefreshToken() == "" {
		return "", apperrors.ErrNoRefreshToken
	}
	accessToken, err := s.client.Refresh(ctx)
	if err != nil {
		return "", errors.Wrap(err, "Service.RefreshAccessToken")
	}
	return accessToken, nil
}

// EnsureFresh refreshes ahead of time when the access token's expiry has passed.
func (s *Service) EnsureFresh(ctx context.Context) error {
	if !s.session.IsAuthenticated() || !token.IsExpired(s.session.Token()) {
		return nil
	}
	_, err := s.RefreshAccessToken(ctx)
	return err
}

// UpdateUser merges a profile change into the cached user.
func (s *Service) UpdateUser(upd users.Update) error {
	return s.session.UpdateUser(upd)
}

func (s *Service) IsAuthenticated() bool {
	return s.session.IsAuthenticated()
}

func (s *Service) User() *users.User {
	return s.session.User()
}
