package cachestore_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-cms-client/cachestore"
	"github.com/stretchr/testify/require"
)

func entry(method, url, body string) *cachestore.Entry {
	return &cachestore.Entry{
		Method:   method,
		URL:      url,
		Status:   http.StatusOK,
		Header:   http.Header{"Content-Type": {"application/json"}},
		Body:     []byte(body),
		StoredAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	st := cachestore.NewMemoryStorage()

	static, err := st.Open(ctx, "static")
	require.NoError(t, err)
	api, err := st.Open(ctx, "api")
	require.NoError(t, err)

	require.NoError(t, static.Put(ctx, entry(http.MethodGet, "http://localhost/", "<html>")))
	require.NoError(t, api.Put(ctx, entry(http.MethodGet, "http://localhost/articles/", `{"count":0}`)))
	require.NoError(t, api.Put(ctx, entry(http.MethodGet, "http://localhost/articles/", `{"count":1}`)))

	names, err := st.Names(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"static", "api"}, names)

	e, ok, err := cachestore.Match(ctx, st, cachestore.Key(http.MethodGet, "http://localhost/articles/"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"count":1}`, string(e.Body))

	entries, err := api.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	deleted, err := api.Delete(ctx, cachestore.Key(http.MethodGet, "http://localhost/articles/"))
	require.NoError(t, err)
	require.True(t, deleted)
	_, ok, err = api.Match(ctx, cachestore.Key(http.MethodGet, "http://localhost/articles/"))
	require.NoError(t, err)
	require.False(t, ok)

	deleted, err = st.Delete(ctx, "static")
	require.NoError(t, err)
	require.True(t, deleted)
	has, err := st.Has(ctx, "static")
	require.NoError(t, err)
	require.False(t, has)
}

func TestEntry_Response(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://localhost/topics/", nil)
	e := entry(http.MethodGet, req.URL.String(), `{"results":[]}`)
	require.Equal(t, cachestore.RequestKey(req), e.Key())
	require.EqualValues(t, 14, e.Size())

	for i := 0; i < 2; i++ {
		resp := e.Response(req)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Equal(t, `{"results":[]}`, string(body))
		require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	}
}

func TestRequestKey_Tenant(t *testing.T) {
	plain := httptest.NewRequest(http.MethodGet, "http://localhost/articles/", nil)
	acme := httptest.NewRequest(http.MethodGet, "http://localhost/articles/", nil)
	acme.Header.Set(cachestore.TenantHeader, "acct-1")
	other := httptest.NewRequest(http.MethodGet, "http://localhost/articles/", nil)
	other.Header.Set(cachestore.TenantHeader, "acct-2")

	require.Equal(t, cachestore.Key(http.MethodGet, "http://localhost/articles/"), cachestore.RequestKey(plain))
	require.NotEqual(t, cachestore.RequestKey(acme), cachestore.RequestKey(other))
	require.NotEqual(t, cachestore.RequestKey(plain), cachestore.RequestKey(acme))

	resp := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}}
	e := cachestore.NewEntry(acme, resp, []byte("{}"), time.Now())
	require.Equal(t, "acct-1", e.Tenant)
	require.Equal(t, cachestore.RequestKey(acme), e.Key())
}
