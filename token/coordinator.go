package token

import (
	"context"

	apperrors "github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "refresh"

// Credentials is the slice of the session a refresh reads and writes.
type Credentials interface {
	RefreshToken() string
	SetAccessToken(accessToken string) error
}

// RefreshFunc exchanges a refresh token for a new access token.
type RefreshFunc func(ctx context.Context, refreshToken string) (string, error)

// Coordinator runs at most one refresh at a time per session. Concurrent callers
// that need a new access token while a refresh is in flight wait for that refresh
// and share its outcome.
type Coordinator struct {
	creds     Credentials
	refresh   RefreshFunc
	onFailure func(err error)
	group     singleflight.Group
	refreshes *prometheus.CounterVec
}

type CoordinatorOption func(*Coordinator)

// WithOnFailure sets the teardown run once per failed refresh, before waiters are released.
func WithOnFailure(fn func(err error)) CoordinatorOption {
	return func(c *Coordinator) {
		c.onFailure = fn
	}
}

// WithRegisterer registers the refresh outcome counter on reg.
func WithRegisterer(reg prometheus.Registerer) CoordinatorOption {
	return func(c *Coordinator) {
		if err := reg.Register(c.refreshes); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				c.refreshes = are.ExistingCollector.(*prometheus.CounterVec)
				return
			}
			log.Err(err).Msg("token: failed to register refresh counter")
		}
	}
}

func NewCoordinator(creds Credentials, refresh RefreshFunc, options ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		creds:     creds,
		refresh:   refresh,
		onFailure: func(error) {},
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cmsclient",
			Name:      "token_refresh_total",
			Help:      "Access token refresh attempts by outcome.",
		}, []string{"outcome"}),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Refresh returns a fresh access token, joining an in-flight refresh if there is one.
// The shared refresh is not cancelled when one waiter's ctx is; only that waiter
// stops waiting.
func (c *Coordinator) Refresh(ctx context.Context) (string, error) {
	ch := c.group.DoChan(refreshKey, func() (any, error) {
		return c.doRefresh(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Coordinator) doRefresh(ctx context.Context) (string, error) {
	refreshToken := c.creds.RefreshToken()
	if refreshToken == "" {
		c.fail(apperrors.ErrNoRefreshToken)
		return "", apperrors.ErrNoRefreshToken
	}

	accessToken, err := c.refresh(ctx, refreshToken)
	if err == nil && accessToken == "" {
		err = apperrors.ErrInvalidToken
	}
	if err != nil {
		err = errors.Wrap(err, "Coordinator.Refresh")
		c.fail(err)
		return "", err
	}

	if err := c.creds.SetAccessToken(accessToken); err != nil {
		// The new token still authorizes the replay even if persisting it failed.
		log.Err(err).Msg("token: failed to persist refreshed access token")
	}
	c.refreshes.WithLabelValues("success").Inc()
	return accessToken, nil
}

func (c *Coordinator) fail(err error) {
	c.refreshes.WithLabelValues("failure").Inc()
	log.Warn().Err(err).Msg("token: refresh failed, ending session")
	c.onFailure(err)
}
