package offline

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/jrsteele09/go-cms-client/internal/config"
	"github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/rs/zerolog/log"
)

// Controller is the page's view of its workers: the active one that answers
// fetches and an installed update waiting to take over.
type Controller struct {
	network http.RoundTripper
	link    *connectivity
	timeout time.Duration

	mu              sync.RWMutex
	active          *Worker
	waiting         *Worker
	updateAvailable bool
	updating        bool
}

var _ http.RoundTripper = (*Controller)(nil)

type ControllerOption func(*Controller)

// WithFallbackNetwork is used for fetches while no worker is active.
func WithFallbackNetwork(rt http.RoundTripper) ControllerOption {
	return func(c *Controller) {
		c.network = rt
	}
}

func WithCacheSizeTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.timeout = d
	}
}

func NewController(cfg config.OfflineConfig, options ...ControllerOption) *Controller {
	c := &Controller{
		network: http.DefaultTransport,
		timeout: cfg.GetCacheSizeTimeout(),
	}
	for _, o := range options {
		o(c)
	}
	c.link = trackConnectivity(c.network)
	c.network = c.link
	return c
}

// Register installs w. A worker that activates replaces the active one; one that
// stays installed while another is active becomes the waiting update.
func (c *Controller) Register(ctx context.Context, w *Worker) error {
	if err := w.Install(ctx); err != nil {
		log.Err(err).Str("worker", w.ID()).Msg("offline: failed to register worker")
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	switch w.State() {
	case StateActivated:
		c.promoteLocked(w)
	case StateInstalled:
		if c.active == nil {
			if err := w.skipWaiting(ctx); err != nil {
				return err
			}
			c.promoteLocked(w)
			return nil
		}
		if c.waiting != nil && c.waiting != w {
			c.waiting.retire()
		}
		c.waiting = w
		c.updateAvailable = true
		log.Info().Str("worker", w.ID()).Msg("offline: new content is available and will be used once the update is accepted")
	}
	return nil
}

// promoteLocked makes w the active worker. Older workers, including an update
// still waiting, become redundant.
func (c *Controller) promoteLocked(w *Worker) {
	if c.active != nil && c.active != w {
		c.active.retire()
	}
	if c.waiting != nil && c.waiting != w {
		c.waiting.retire()
	}
	c.waiting = nil
	c.updateAvailable = false
	c.active = w
	log.Info().Str("worker", w.ID()).Msg("offline: worker controls fetches")
}

func (c *Controller) IsRegistered() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active != nil
}

func (c *Controller) UpdateAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updateAvailable
}

// Updating is true while SkipWaiting waits for the update to take over.
func (c *Controller) Updating() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updating
}

// Offline reports whether the last fetch failed to reach the network, as seen
// by the active worker or, with none, by the fallback network.
func (c *Controller) Offline() bool {
	if w := c.Active(); w != nil {
		return w.Offline()
	}
	return c.link.Offline()
}

// Active is the worker answering fetches, or nil.
func (c *Controller) Active() *Worker {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// SkipWaiting tells the waiting update to activate and waits until it has taken over.
// It does nothing when no update is waiting.
func (c *Controller) SkipWaiting(ctx context.Context) error {
	c.mu.Lock()
	w := c.waiting
	c.updateAvailable = false
	c.updating = w != nil
	c.mu.Unlock()
	if w == nil {
		return nil
	}
	defer func() {
		c.mu.Lock()
		c.updating = false
		c.mu.Unlock()
	}()

	if err := w.Post(ctx, SkipWaiting{}); err != nil {
		return err
	}
	select {
	case <-w.Activated():
	case <-w.ctx.Done():
		return errors.ErrWorkerRedundant
	case <-ctx.Done():
		return ctx.Err()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	// A newer worker may have taken over while this one was activating.
	if c.waiting != w && c.active != w {
		w.retire()
		return errors.ErrWorkerRedundant
	}
	c.promoteLocked(w)
	return nil
}

// ClearCache asks the active worker to drop every cache group and waits for the result.
func (c *Controller) ClearCache(ctx context.Context) error {
	w := c.Active()
	if w == nil {
		return nil
	}
	reply := make(chan error, 1)
	if err := w.Post(ctx, ClearCache{Reply: reply}); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetCacheSize is 0 when no worker is active. A worker that does not answer in
// time gives ErrCacheSizeTimeout.
func (c *Controller) GetCacheSize(ctx context.Context) (int64, error) {
	w := c.Active()
	if w == nil {
		return 0, nil
	}
	tctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reply := make(chan CacheSize, 1)
	err := w.Post(tctx, GetCacheSize{Reply: reply})
	if err == nil {
		select {
		case size := <-reply:
			return size.CacheSize, nil
		case <-tctx.Done():
			err = tctx.Err()
		}
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return 0, errors.ErrCacheSizeTimeout
	}
	return 0, err
}

// Sync runs a maintenance tag on the active worker.
func (c *Controller) Sync(ctx context.Context, tag string) error {
	w := c.Active()
	if w == nil {
		return errors.ErrWorkerNotActive
	}
	return w.Sync(ctx, tag)
}

// RoundTrip sends req through the active worker, or straight to the network.
func (c *Controller) RoundTrip(req *http.Request) (*http.Response, error) {
	if w := c.Active(); w != nil {
		return w.RoundTrip(req)
	}
	return c.network.RoundTrip(req)
}

// Close stops every worker the controller knows about.
func (c *Controller) Close() {
	c.mu.Lock()
	active, waiting := c.active, c.waiting
	c.active, c.waiting = nil, nil
	c.mu.Unlock()
	for _, w := range []*Worker{active, waiting} {
		if w != nil {
			w.Close()
		}
	}
}
