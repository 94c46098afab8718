// Package cachestore holds named groups of cached HTTP responses.
package cachestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// TenantHeader scopes a cached response to the account the request was made for.
const TenantHeader = "X-Account-ID"

// Entry is one stored response, keyed by request method, URL and tenant.
type Entry struct {
	ID       string      `json:"id,omitempty"`
	Method   string      `json:"method"`
	URL      string      `json:"url"`
	Tenant   string      `json:"tenant,omitempty"`
	Status   int         `json:"status"`
	Header   http.Header `json:"header,omitempty"`
	Body     []byte      `json:"body,omitempty"`
	StoredAt time.Time   `json:"stored_at"`
	Pending  bool        `json:"pending,omitempty"` // A deferred request waiting to be replayed
}

// Key identifies a request in a cache group.
func Key(method, url string) string {
	return method + " " + url
}

// TenantKey is Key for a request made on behalf of tenant. An empty tenant
// gives the plain key.
func TenantKey(method, url, tenant string) string {
	if tenant == "" {
		return Key(method, url)
	}
	return Key(method, url) + " @" + tenant
}

// RequestKey is the key req is stored and looked up under.
func RequestKey(req *http.Request) string {
	return TenantKey(req.Method, req.URL.String(), req.Header.Get(TenantHeader))
}

// PendingKey is the key of a deferred request. Pending entries never answer a lookup.
func PendingKey(id string) string {
	return "PENDING " + id
}

func (e *Entry) Key() string {
	if e.Pending {
		return PendingKey(e.ID)
	}
	return TenantKey(e.Method, e.URL, e.Tenant)
}

func (e *Entry) Size() int64 {
	return int64(len(e.Body))
}

// NewEntry captures resp, whose body has already been read into body.
func NewEntry(req *http.Request, resp *http.Response, body []byte, storedAt time.Time) *Entry {
	return &Entry{
		Method:   req.Method,
		URL:      req.URL.String(),
		Tenant:   req.Header.Get(TenantHeader),
		Status:   resp.StatusCode,
		Header:   resp.Header.Clone(),
		Body:     body,
		StoredAt: storedAt,
	}
}

// Response rebuilds a response for req from the entry. Each call gets its own body.
func (e *Entry) Response(req *http.Request) *http.Response {
	header := e.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	header.Set("Content-Length", strconv.Itoa(len(e.Body)))
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status)),
		StatusCode:    e.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}

// Request rebuilds the stored request, e.g. to replay a pending entry.
func (e *Entry) Request(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, e.Method, e.URL, bytes.NewReader(e.Body))
	if err != nil {
		return nil, err
	}
	req.Header = e.Header.Clone()
	if req.Header == nil {
		req.Header = http.Header{}
	}
	return req, nil
}

// Cache is one named group of entries.
type Cache interface {
	Name() string
	Match(ctx context.Context, key string) (*Entry, bool, error)
	Put(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, key string) (bool, error)
	Entries(ctx context.Context) ([]*Entry, error)
}

// Storage owns every cache group.
type Storage interface {
	// Open returns the named group, creating it if needed.
	Open(ctx context.Context, name string) (Cache, error)
	Has(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) (bool, error)
	// Names lists groups in creation order.
	Names(ctx context.Context) ([]string, error)
}

// Match looks key up in every group, in creation order.
func Match(ctx context.Context, st Storage, key string) (*Entry, bool, error) {
	names, err := st.Names(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, name := range names {
		c, err := st.Open(ctx, name)
		if err != nil {
			return nil, false, err
		}
		e, ok, err := c.Match(ctx, key)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return e, true, nil
		}
	}
	return nil, false, nil
}
