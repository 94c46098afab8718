package redisstore_test

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-cms-client/cachestore"
	"github.com/jrsteele09/go-cms-client/cachestore/redisstore"
	"github.com/stretchr/testify/require"
)

// Needs a disposable redis, e.g. REDIS_TEST_ADDR=localhost:6379.
func setupStorage(t *testing.T) *redisstore.Storage {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	st, err := redisstore.Connect(context.Background(), addr, redisstore.WithPrefix("test-"+uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx := context.Background()
		names, _ := st.Names(ctx)
		for _, n := range names {
			_, _ = st.Delete(ctx, n)
		}
		_ = st.Close()
	})
	return st
}

func TestRedisStorage(t *testing.T) {
	ctx := context.Background()
	st := setupStorage(t)

	static, err := st.Open(ctx, "static")
	require.NoError(t, err)
	api, err := st.Open(ctx, "api")
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, static.Put(ctx, &cachestore.Entry{Method: http.MethodGet, URL: "http://localhost/", Status: 200, Body: []byte("<html>"), StoredAt: now}))
	require.NoError(t, api.Put(ctx, &cachestore.Entry{Method: http.MethodGet, URL: "http://localhost/articles/", Status: 200, Body: []byte("[]"), StoredAt: now}))

	names, err := st.Names(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"static", "api"}, names)

	e, ok, err := cachestore.Match(ctx, st, cachestore.Key(http.MethodGet, "http://localhost/articles/"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "[]", string(e.Body))
	require.True(t, e.StoredAt.Equal(now))

	deleted, err := api.Delete(ctx, e.Key())
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = st.Delete(ctx, "static")
	require.NoError(t, err)
	require.True(t, deleted)
	has, err := st.Has(ctx, "static")
	require.NoError(t, err)
	require.False(t, has)
}
