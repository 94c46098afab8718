package main

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/jrsteele09/go-cms-client/apiclient"
	"github.com/jrsteele09/go-cms-client/auth"
	"github.com/jrsteele09/go-cms-client/internal/config"
	"github.com/jrsteele09/go-cms-client/notify"
	"github.com/jrsteele09/go-cms-client/offline"
	"github.com/jrsteele09/go-cms-client/resources"
	"github.com/jrsteele09/go-cms-client/sessions"
	"github.com/jrsteele09/go-cms-client/storage/sqlitestore"
	"github.com/jrsteele09/go-cms-client/tenants"
	"github.com/rs/zerolog/log"
)

const databaseFile = "cmsclient.db"

// app is the wiring every command shares: persisted stores, the API client and the
// auth actions on top of them.
type app struct {
	store    *sqlitestore.Store
	session  *sessions.Store
	tenant   *tenants.Store
	client   *apiclient.Client
	auth     *auth.Service
	notifier notify.Notifier
	closers  []func()
}

// useOfflineCache routes API calls through an in-process offline worker.
var useOfflineCache bool

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	store, err := sqlitestore.Open(filepath.Join(cfg.GetDataFolder(), databaseFile))
	if err != nil {
		return nil, err
	}
	a := &app{store: store, notifier: notify.Default()}
	a.session = sessions.NewStore(store)
	a.tenant = tenants.NewStore(store, a.session)

	options := []apiclient.Option{
		apiclient.WithSessionExpiredHandler(func(loginPath string) {
			log.Warn().Str("login", loginPath).Msg("session expired, run `cmsclient login` again")
		}),
	}
	if useOfflineCache {
		rt, err := a.offlineTransport(ctx, cfg)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		options = append(options, apiclient.WithBaseTransport(rt))
	}
	a.client = apiclient.New(cfg, cfg.GetAPIBaseURL(), a.session, a.tenant, options...)
	a.auth = auth.NewService(cfg, a.client, a.session, a.tenant)
	if err := a.auth.Initialize(); err != nil {
		log.Warn().Err(err).Msg("could not restore the saved session")
	}
	return a, nil
}

// offlineTransport is a controller over the configured cache groups. If the worker
// cannot install, the controller passes fetches straight to the network.
func (a *app) offlineTransport(ctx context.Context, cfg config.Config) (http.RoundTripper, error) {
	st, closeStorage, err := openCacheStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeStorage)
	worker, err := offline.New(cfg, st, cfg.GetOriginURL())
	if err != nil {
		return nil, err
	}
	controller := offline.NewController(cfg)
	a.closers = append(a.closers, controller.Close)
	if err := controller.Register(ctx, worker); err != nil {
		log.Warn().Err(err).Msg("offline cache unavailable, using the network")
		worker.Close()
	}
	return controller, nil
}

func (a *app) accounts() *resources.Accounts {
	return resources.NewAccounts(a.client, a.notifier, a.tenant)
}

func (a *app) articles() *resources.Articles {
	return resources.NewArticles(a.client, a.notifier)
}

func (a *app) Close() error {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	var result *multierror.Error
	if err := a.store.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// withApp runs fn against a freshly wired app and closes it afterwards.
func withApp(ctx context.Context, cfg config.Config, fn func(a *app) error) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Err(err).Msg("closing local storage")
		}
	}()
	return fn(a)
}
