// Package resources bundles the API calls of each CMS resource with the
// request state that tracks them.
package resources

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"

	"github.com/jrsteele09/go-cms-client/apiclient"
	"github.com/jrsteele09/go-cms-client/apistate"
	"github.com/jrsteele09/go-cms-client/notify"
)

// Raw is used for payloads the client passes through without inspecting.
type Raw = json.RawMessage

type base struct {
	client   *apiclient.Client
	notifier notify.Notifier
}

func newBase(c *apiclient.Client, n notify.Notifier) base {
	if n == nil {
		n = notify.Default()
	}
	return base{client: c, notifier: n}
}

// once runs call on a throwaway state: the call is reported like any other
// but its status is not tracked on the resource.
func once[T any](ctx context.Context, b base, call apistate.Call[T]) (T, error) {
	return apistate.New[T](b.notifier).Execute(ctx, call)
}

// quiet runs call without the generic error notification; the caller reports
// failures with its own wording.
func quiet[T any](ctx context.Context, call apistate.Call[T]) (T, error) {
	return apistate.New[T](notify.Discard).Execute(ctx, call)
}

func get[T any](c *apiclient.Client, path string, params url.Values) apistate.Call[T] {
	return func(ctx context.Context) (*apiclient.Response[T], error) {
		return apiclient.Get[T](ctx, c, path, params)
	}
}

func post[T any](c *apiclient.Client, path string, body any) apistate.Call[T] {
	return func(ctx context.Context) (*apiclient.Response[T], error) {
		return apiclient.Post[T](ctx, c, path, body)
	}
}

func put[T any](c *apiclient.Client, path string, body any) apistate.Call[T] {
	return func(ctx context.Context) (*apiclient.Response[T], error) {
		return apiclient.Put[T](ctx, c, path, body)
	}
}

func patch[T any](c *apiclient.Client, path string, body any) apistate.Call[T] {
	return func(ctx context.Context) (*apiclient.Response[T], error) {
		return apiclient.Patch[T](ctx, c, path, body)
	}
}

func del[T any](c *apiclient.Client, path string) apistate.Call[T] {
	return func(ctx context.Context) (*apiclient.Response[T], error) {
		return apiclient.Delete[T](ctx, c, path)
	}
}

func upload[T any](c *apiclient.Client, path string, form *apiclient.Form) apistate.Call[T] {
	return func(ctx context.Context) (*apiclient.Response[T], error) {
		return apiclient.Upload[T](ctx, c, path, form)
	}
}

// seg escapes one path segment.
func seg(s string) string {
	return url.PathEscape(s)
}

func asAPIError(err error, target **apiclient.APIError) bool {
	return errors.As(err, target)
}
