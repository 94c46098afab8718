package offline_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-cms-client/cachestore"
	apperrors "github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/jrsteele09/go-cms-client/offline"
	"github.com/stretchr/testify/require"
)

// slowStorage stalls group listing while slow is set.
type slowStorage struct {
	*cachestore.MemoryStorage
	slow atomic.Bool
}

func (s *slowStorage) Names(ctx context.Context) ([]string, error) {
	if s.slow.Load() {
		time.Sleep(200 * time.Millisecond)
	}
	return s.MemoryStorage.Names(ctx)
}

func TestController(t *testing.T) {
	ctx := context.Background()

	t.Run("no active worker", func(t *testing.T) {
		f := setupTestFixture(t)
		c := offline.NewController(testConfig{}, offline.WithFallbackNetwork(f.network))

		size, err := c.GetCacheSize(ctx)
		require.NoError(t, err)
		require.Zero(t, size)
		require.False(t, c.IsRegistered())
		require.NoError(t, c.ClearCache(ctx))
		require.ErrorIs(t, c.Sync(ctx, offline.TagCacheCleanup), apperrors.ErrWorkerNotActive)

		req, err := http.NewRequest(http.MethodGet, f.server.URL+"/other", nil)
		require.NoError(t, err)
		resp, err := c.RoundTrip(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, 1, f.network.count("GET /other"))
	})

	t.Run("register, size and clear", func(t *testing.T) {
		f := setupTestFixture(t)
		c := offline.NewController(testConfig{})
		require.NoError(t, c.Register(ctx, f.worker))
		require.True(t, c.IsRegistered())
		require.Same(t, f.worker, c.Active())

		size, err := c.GetCacheSize(ctx)
		require.NoError(t, err)
		require.Positive(t, size)

		require.NoError(t, c.ClearCache(ctx))
		size, err = c.GetCacheSize(ctx)
		require.NoError(t, err)
		require.Zero(t, size)
	})

	t.Run("update waits for skip waiting", func(t *testing.T) {
		f := setupTestFixture(t)
		c := offline.NewController(testConfig{})
		require.NoError(t, c.Register(ctx, f.worker))

		update, err := offline.New(testConfig{}, f.storage, f.server.URL, offline.WithNetwork(f.network), offline.WithManualActivation())
		require.NoError(t, err)
		t.Cleanup(update.Close)

		require.NoError(t, c.Register(ctx, update))
		require.True(t, c.UpdateAvailable())
		require.Equal(t, offline.StateInstalled, update.State())
		require.Same(t, f.worker, c.Active())

		require.NoError(t, c.SkipWaiting(ctx))
		require.False(t, c.UpdateAvailable())
		require.Same(t, update, c.Active())
		require.Equal(t, offline.StateActivated, update.State())
		require.Equal(t, offline.StateRedundant, f.worker.State())
	})

	t.Run("newer worker supersedes a waiting update", func(t *testing.T) {
		f := setupTestFixture(t)
		c := offline.NewController(testConfig{})
		require.NoError(t, c.Register(ctx, f.worker))

		older, err := offline.New(testConfig{}, f.storage, f.server.URL, offline.WithNetwork(f.network), offline.WithManualActivation())
		require.NoError(t, err)
		t.Cleanup(older.Close)
		require.NoError(t, c.Register(ctx, older))
		require.True(t, c.UpdateAvailable())

		newest, err := offline.New(testConfig{}, f.storage, f.server.URL, offline.WithNetwork(f.network))
		require.NoError(t, err)
		t.Cleanup(newest.Close)
		require.NoError(t, c.Register(ctx, newest))

		require.False(t, c.UpdateAvailable())
		require.Same(t, newest, c.Active())
		require.Equal(t, offline.StateRedundant, older.State())
		require.Equal(t, offline.StateRedundant, f.worker.State())

		require.NoError(t, c.SkipWaiting(ctx))
		require.Same(t, newest, c.Active())
		require.Equal(t, offline.StateActivated, newest.State())
		require.Equal(t, offline.StateRedundant, older.State())
	})

	t.Run("tracks connectivity", func(t *testing.T) {
		f := setupTestFixture(t)
		c := offline.NewController(testConfig{}, offline.WithFallbackNetwork(f.network))
		require.False(t, c.Offline())
		require.False(t, c.Updating())

		fetch := func() error {
			req, err := http.NewRequest(http.MethodGet, f.server.URL+"/other", nil)
			require.NoError(t, err)
			resp, err := c.RoundTrip(req)
			if err == nil {
				resp.Body.Close()
			}
			return err
		}

		f.network.offline.Store(true)
		require.Error(t, fetch())
		require.True(t, c.Offline())

		f.network.offline.Store(false)
		require.NoError(t, fetch())
		require.False(t, c.Offline())

		require.NoError(t, c.Register(ctx, f.worker))
		f.network.offline.Store(true)
		require.Error(t, fetch())
		require.True(t, c.Offline())
	})

	t.Run("first worker activates even when asked to wait", func(t *testing.T) {
		f := setupTestFixture(t, offline.WithManualActivation())
		c := offline.NewController(testConfig{})
		require.NoError(t, c.Register(ctx, f.worker))
		require.False(t, c.UpdateAvailable())
		require.Equal(t, offline.StateActivated, f.worker.State())
	})

	t.Run("cache size times out", func(t *testing.T) {
		st := &slowStorage{MemoryStorage: cachestore.NewMemoryStorage()}
		f := setupTestFixture(t)
		w, err := offline.New(testConfig{}, st, f.server.URL, offline.WithNetwork(f.network))
		require.NoError(t, err)
		t.Cleanup(w.Close)

		c := offline.NewController(testConfig{}, offline.WithCacheSizeTimeout(20*time.Millisecond))
		require.NoError(t, c.Register(ctx, w))

		st.slow.Store(true)
		_, err = c.GetCacheSize(ctx)
		require.ErrorIs(t, err, apperrors.ErrCacheSizeTimeout)
	})
}
