package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Response is the envelope every call resolves to; Data is the decoded payload.
type Response[T any] struct {
	Data   T
	Status int
	Header http.Header
}

func Get[T any](ctx context.Context, c *Client, path string, params url.Values) (*Response[T], error) {
	return call[T](ctx, c, request{method: http.MethodGet, path: path, params: params})
}

func Post[T any](ctx context.Context, c *Client, path string, body any) (*Response[T], error) {
	return callJSON[T](ctx, c, http.MethodPost, path, body)
}

func Put[T any](ctx context.Context, c *Client, path string, body any) (*Response[T], error) {
	return callJSON[T](ctx, c, http.MethodPut, path, body)
}

func Patch[T any](ctx context.Context, c *Client, path string, body any) (*Response[T], error) {
	return callJSON[T](ctx, c, http.MethodPatch, path, body)
}

func Delete[T any](ctx context.Context, c *Client, path string) (*Response[T], error) {
	return call[T](ctx, c, request{method: http.MethodDelete, path: path})
}

func callJSON[T any](ctx context.Context, c *Client, method, path string, body any) (*Response[T], error) {
	r := request{method: method, path: path}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("apiclient: encode %s %s: %w", method, path, err)
		}
		r.body = payload
		r.contentType = "application/json"
	}
	return call[T](ctx, c, r)
}

func call[T any](ctx context.Context, c *Client, r request) (*Response[T], error) {
	raw, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}
	out := &Response[T]{Status: raw.status, Header: raw.header}
	if err := decode(raw.body, &out.Data); err != nil {
		return nil, fmt.Errorf("apiclient: decode %s %s: %w", r.method, r.path, err)
	}
	return out, nil
}

// decode fills dst from body. An empty body leaves the zero value and a
// *[]byte destination receives the raw bytes (exports, downloads).
func decode(body []byte, dst any) error {
	if raw, ok := dst.(*[]byte); ok {
		*raw = body
		return nil
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, dst)
}
