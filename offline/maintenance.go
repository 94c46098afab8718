package offline

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/jrsteele09/go-cms-client/cachestore"
	"github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/rs/zerolog/log"
)

// Sync tags, as used by the scheduler and the proxy's control routes.
const (
	TagCacheCleanup   = "cache-cleanup"
	TagBackgroundSync = "background-sync"
)

// CleanupExpired evicts API entries captured longer ago than the retention window.
// Pending entries are left for BackgroundSync. It returns how many were evicted.
func (w *Worker) CleanupExpired(ctx context.Context) (int, error) {
	api, err := w.storage.Open(ctx, w.config.GetAPICacheName())
	if err != nil {
		return 0, errors.Wrapf(err, "offline.CleanupExpired")
	}
	entries, err := api.Entries(ctx)
	if err != nil {
		return 0, errors.Wrapf(err, "offline.CleanupExpired")
	}

	now := w.nowFunc()
	maxAge := w.config.GetAPIRetention()
	var result *multierror.Error
	evicted := 0
	for _, e := range entries {
		if e.Pending || now.Sub(e.StoredAt) <= maxAge {
			continue
		}
		if _, err := api.Delete(ctx, e.Key()); err != nil {
			log.Warn().Err(err).Str("key", e.Key()).Msg("offline: error during cache cleanup")
			result = multierror.Append(result, err)
			continue
		}
		evicted++
	}
	w.metrics.evictions.Add(float64(evicted))
	log.Debug().Int("evicted", evicted).Msg("offline: cache cleanup done")
	return evicted, result.ErrorOrNil()
}

// Defer queues req for BackgroundSync. The body is read and kept with the entry.
func (w *Worker) Defer(ctx context.Context, req *http.Request) (string, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return "", errors.Wrapf(err, "offline.Defer read body")
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
	}
	api, err := w.storage.Open(ctx, w.config.GetAPICacheName())
	if err != nil {
		return "", errors.Wrapf(err, "offline.Defer")
	}
	e := &cachestore.Entry{
		ID:       uuid.NewString(),
		Method:   req.Method,
		URL:      req.URL.String(),
		Header:   req.Header.Clone(),
		Body:     body,
		StoredAt: w.nowFunc(),
		Pending:  true,
	}
	if err := api.Put(ctx, e); err != nil {
		return "", errors.Wrapf(err, "offline.Defer")
	}
	log.Info().Str("id", e.ID).Str("method", e.Method).Str("url", e.URL).Msg("offline: request queued for background sync")
	return e.ID, nil
}

// BackgroundSync replays pending entries. A replay that succeeds removes its entry;
// one that fails stays queued. It returns how many were replayed.
func (w *Worker) BackgroundSync(ctx context.Context) (int, error) {
	api, err := w.storage.Open(ctx, w.config.GetAPICacheName())
	if err != nil {
		return 0, errors.Wrapf(err, "offline.BackgroundSync")
	}
	entries, err := api.Entries(ctx)
	if err != nil {
		return 0, errors.Wrapf(err, "offline.BackgroundSync")
	}

	var result *multierror.Error
	replayed := 0
	for _, e := range entries {
		if !e.Pending {
			continue
		}
		if err := w.replay(ctx, e); err != nil {
			log.Info().Err(err).Str("url", e.URL).Msg("offline: background sync failed")
			w.metrics.syncs.WithLabelValues("failure").Inc()
			result = multierror.Append(result, err)
			continue
		}
		if _, err := api.Delete(ctx, e.Key()); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		w.metrics.syncs.WithLabelValues("success").Inc()
		replayed++
	}
	return replayed, result.ErrorOrNil()
}

func (w *Worker) replay(ctx context.Context, e *cachestore.Entry) error {
	req, err := e.Request(ctx)
	if err != nil {
		return err
	}
	resp, err := w.network.RoundTrip(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if !ok(resp) {
		return errors.Wrapf(errors.ErrInternal, "%s %s: status %d", e.Method, e.URL, resp.StatusCode)
	}
	return nil
}

// Sync runs the maintenance job named by tag.
func (w *Worker) Sync(ctx context.Context, tag string) error {
	switch tag {
	case TagCacheCleanup:
		_, err := w.CleanupExpired(ctx)
		return err
	case TagBackgroundSync:
		_, err := w.BackgroundSync(ctx)
		return err
	}
	return errors.Wrapf(errors.ErrUnsupported, "sync tag %q", tag)
}

// ClearAll deletes every cache group.
func (w *Worker) ClearAll(ctx context.Context) error {
	names, err := w.storage.Names(ctx)
	if err != nil {
		return errors.Wrapf(err, "offline.ClearAll")
	}
	var result *multierror.Error
	for _, name := range names {
		if _, err := w.storage.Delete(ctx, name); err != nil {
			result = multierror.Append(result, err)
		}
	}
	log.Info().Int("groups", len(names)).Msg("offline: cache cleared")
	return result.ErrorOrNil()
}

// CacheSize adds up stored body sizes across all groups. Unreadable groups are
// skipped and logged.
func (w *Worker) CacheSize(ctx context.Context) int64 {
	names, err := w.storage.Names(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("offline: error calculating cache size")
		return 0
	}
	var total int64
	for _, name := range names {
		c, err := w.storage.Open(ctx, name)
		if err != nil {
			log.Warn().Err(err).Str("group", name).Msg("offline: error calculating cache size")
			continue
		}
		entries, err := c.Entries(ctx)
		if err != nil {
			log.Warn().Err(err).Str("group", name).Msg("offline: error calculating cache size")
			continue
		}
		for _, e := range entries {
			total += e.Size()
		}
	}
	w.metrics.bytes.Set(float64(total))
	return total
}
