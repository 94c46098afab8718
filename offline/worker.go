// Package offline is the offline cache worker. A Worker sits in front of the
// network as an http.RoundTripper, answers fetches from named cache groups by
// request category, and takes control messages through a mailbox.
package offline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/jrsteele09/go-cms-client/cachestore"
	"github.com/jrsteele09/go-cms-client/internal/config"
	"github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

type State string

const (
	StateParsed     State = "parsed"
	StateInstalling State = "installing"
	StateInstalled  State = "installed"
	StateActivating State = "activating"
	StateActivated  State = "activated"
	StateRedundant  State = "redundant"
)

const mailboxSize = 16

type Worker struct {
	id      string
	config  config.OfflineConfig
	storage cachestore.Storage
	network http.RoundTripper
	link    *connectivity
	origin  *url.URL
	nowFunc func() time.Time
	metrics *metrics

	manualActivation bool

	mu        sync.RWMutex
	state     State
	activated chan struct{}

	mailbox    chan Message
	ctx        context.Context
	cancel     context.CancelFunc
	loopDone   chan struct{}
	background sync.WaitGroup
}

var _ http.RoundTripper = (*Worker)(nil)

type Option func(*Worker)

// WithNetwork sets the transport used to reach the network. Defaults to http.DefaultTransport.
func WithNetwork(rt http.RoundTripper) Option {
	return func(w *Worker) {
		w.network = rt
	}
}

func WithNowTime(nowFunc func() time.Time) Option {
	return func(w *Worker) {
		w.nowFunc = nowFunc
	}
}

func WithRegisterer(reg prometheus.Registerer) Option {
	return func(w *Worker) {
		w.metrics.register(reg)
	}
}

// WithManualActivation keeps an installed worker waiting for SKIP_WAITING.
func WithManualActivation() Option {
	return func(w *Worker) {
		w.manualActivation = true
	}
}

// New creates a worker for the site at originURL and starts its mailbox.
// Close stops it.
func New(cfg config.OfflineConfig, st cachestore.Storage, originURL string, options ...Option) (*Worker, error) {
	origin, err := url.Parse(originURL)
	if err != nil {
		return nil, errors.Wrapf(err, "offline.New origin %q", originURL)
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		id:        uuid.NewString(),
		config:    cfg,
		storage:   st,
		network:   http.DefaultTransport,
		origin:    origin,
		nowFunc:   time.Now,
		metrics:   newMetrics(),
		state:     StateParsed,
		activated: make(chan struct{}),
		mailbox:   make(chan Message, mailboxSize),
		ctx:       ctx,
		cancel:    cancel,
		loopDone:  make(chan struct{}),
	}
	for _, o := range options {
		o(w)
	}
	w.link = trackConnectivity(w.network)
	w.network = w.link
	go w.run()
	return w, nil
}

func (w *Worker) ID() string {
	return w.id
}

func (w *Worker) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// Offline reports whether the worker's last network round trip failed.
func (w *Worker) Offline() bool {
	return w.link.Offline()
}

// Activated is closed once the worker controls fetches.
func (w *Worker) Activated() <-chan struct{} {
	return w.activated
}

func (w *Worker) setState(s State) {
	w.mu.Lock()
	prev := w.state
	w.state = s
	w.mu.Unlock()
	log.Debug().Str("worker", w.id).Str("from", string(prev)).Str("to", string(s)).Msg("offline: worker state")
}

// Install pre-caches the static manifest. Any failed asset fails the install and
// leaves the worker redundant. Unless manual activation was asked for, the worker
// activates straight away.
func (w *Worker) Install(ctx context.Context) error {
	if s := w.State(); s != StateParsed {
		return errors.Wrapf(errors.ErrUnsupported, "install from state %s", s)
	}
	w.setState(StateInstalling)
	log.Info().Str("worker", w.id).Msg("offline: installing")

	if err := w.precache(ctx); err != nil {
		w.setState(StateRedundant)
		return errors.Wrapf(err, "offline.Install")
	}
	w.setState(StateInstalled)

	if w.manualActivation {
		return nil
	}
	return w.skipWaiting(ctx)
}

func (w *Worker) precache(ctx context.Context) error {
	static, err := w.storage.Open(ctx, w.config.GetStaticCacheName())
	if err != nil {
		return err
	}
	entries := make([]*cachestore.Entry, 0, len(w.config.GetStaticAssets()))
	for _, asset := range w.config.GetStaticAssets() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.origin.ResolveReference(&url.URL{Path: asset}).String(), nil)
		if err != nil {
			return err
		}
		resp, err := w.network.RoundTrip(req)
		if err != nil {
			return errors.Wrapf(err, "fetch %s", asset)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return errors.Wrapf(err, "read %s", asset)
		}
		if !ok(resp) {
			return fmt.Errorf("fetch %s: status %d", asset, resp.StatusCode)
		}
		entries = append(entries, cachestore.NewEntry(req, resp, body, w.nowFunc()))
	}
	for _, e := range entries {
		if err := static.Put(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) skipWaiting(ctx context.Context) error {
	w.mu.Lock()
	if w.state != StateInstalled {
		w.mu.Unlock()
		return nil
	}
	w.state = StateActivating
	w.mu.Unlock()
	return w.activate(ctx)
}

// activate drops every cache group that is not one of the current three, then
// claims fetches.
func (w *Worker) activate(ctx context.Context) error {
	log.Info().Str("worker", w.id).Msg("offline: activating")

	keep := []string{w.config.GetCacheName(), w.config.GetStaticCacheName(), w.config.GetAPICacheName()}
	names, err := w.storage.Names(ctx)
	if err != nil {
		w.setState(StateRedundant)
		return errors.Wrapf(err, "offline.Activate")
	}
	var result *multierror.Error
	for _, name := range names {
		if slices.Contains(keep, name) {
			continue
		}
		log.Info().Str("group", name).Msg("offline: deleting old cache")
		if _, err := w.storage.Delete(ctx, name); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		log.Warn().Err(err).Msg("offline: old cache cleanup incomplete")
	}

	w.setState(StateActivated)
	close(w.activated)
	return nil
}

// retire marks the worker redundant once a newer one has taken over.
func (w *Worker) retire() {
	w.setState(StateRedundant)
	w.cancel()
}

func (w *Worker) controlling() bool {
	return w.State() == StateActivated
}

// Post delivers m to the mailbox.
func (w *Worker) Post(ctx context.Context, m Message) error {
	if w.State() == StateRedundant {
		return errors.ErrWorkerRedundant
	}
	select {
	case w.mailbox <- m:
		return nil
	case <-w.ctx.Done():
		return errors.ErrWorkerRedundant
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) run() {
	defer close(w.loopDone)
	for {
		select {
		case <-w.ctx.Done():
			return
		case m := <-w.mailbox:
			w.handle(m)
		}
	}
}

func (w *Worker) handle(m Message) {
	log.Debug().Str("worker", w.id).Str("type", m.Type()).Msg("offline: message")
	switch msg := m.(type) {
	case SkipWaiting:
		if err := w.skipWaiting(w.ctx); err != nil {
			log.Err(err).Msg("offline: skip waiting failed")
		}
	case ClearCache:
		err := w.ClearAll(w.ctx)
		if err != nil {
			log.Err(err).Msg("offline: clear cache failed")
		}
		if msg.Reply != nil {
			select {
			case msg.Reply <- err:
			default:
			}
		}
	case GetCacheSize:
		size := w.CacheSize(w.ctx)
		if msg.Reply != nil {
			select {
			case msg.Reply <- CacheSize{CacheSize: size}:
			default:
			}
		}
	default:
		log.Warn().Str("type", m.Type()).Msg("offline: unsupported message")
	}
}

// Close stops the mailbox and waits for background refreshes.
func (w *Worker) Close() {
	w.cancel()
	<-w.loopDone
	w.background.Wait()
}

// Wait blocks until in-flight background refreshes finish.
func (w *Worker) Wait() {
	w.background.Wait()
}
