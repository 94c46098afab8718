package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/rs/zerolog/log"
)

const requestIDHeader = "X-Request-ID"

type contextKey string

const (
	retriedKey     contextKey = "auth-retried"
	noAuthRetryKey contextKey = "no-auth-retry"
)

// WithoutAuthRetry marks requests that must not trigger a token refresh on 401,
// such as the login call itself.
func WithoutAuthRetry(ctx context.Context) context.Context {
	return context.WithValue(ctx, noAuthRetryKey, true)
}

func flagged(ctx context.Context, key contextKey) bool {
	v, _ := ctx.Value(key).(bool)
	return v
}

// Transport is the client's interceptor chain. Outbound it attaches the bearer
// credential, the tenant header and a request id. Inbound it turns the first
// 401 of a request into one refresh and one replay.
type Transport struct {
	client *Client
}

var _ http.RoundTripper = (*Transport)(nil)

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	req, err := replayable(req)
	if err != nil {
		return nil, err
	}
	if req.Header.Get(requestIDHeader) == "" {
		req = req.Clone(req.Context())
		req.Header.Set(requestIDHeader, uuid.New().String())
	}

	resp, sentToken, err := t.send(req)
	if err != nil {
		return nil, err
	}

	ctx := req.Context()
	if resp.StatusCode != http.StatusUnauthorized || flagged(ctx, retriedKey) || flagged(ctx, noAuthRetryKey) {
		return resp, nil
	}
	drain(resp)

	// The guard travels with the replay so it can never be retried again.
	ctx = context.WithValue(ctx, retriedKey, true)

	// A concurrent request may have refreshed already; only refresh if the
	// rejected token is still the current one. A credential that vanished while
	// the request was in flight means the session was already torn down.
	current := t.client.session.AccessToken()
	if current == "" && sentToken != "" {
		return nil, apperrors.ErrSessionExpired
	}
	if current == "" || current == sentToken {
		if _, err := t.client.refresher.Refresh(ctx); err != nil {
			// The refresh endpoint's own error stays out of the chain.
			return nil, fmt.Errorf("%w: %v", apperrors.ErrSessionExpired, err)
		}
	}

	replay, err := rewind(ctx, req)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("method", req.Method).Str("url", req.URL.Redacted()).Msg("apiclient: replaying request after token refresh")
	resp, _, err = t.send(replay)
	return resp, err
}

// send applies the outbound interceptor to a copy of req and forwards it. It
// returns the access token it attached.
func (t *Transport) send(req *http.Request) (*http.Response, string, error) {
	out := req.Clone(req.Context())

	accessToken := t.client.session.AccessToken()
	if accessToken != "" {
		out.Header.Set("Authorization", "Bearer "+accessToken)
	}
	header := t.client.config.GetAccountHeader()
	if accountID := t.client.tenant.CurrentAccountID(); accountID != "" {
		out.Header.Set(header, accountID)
	} else {
		out.Header.Del(header)
	}

	resp, err := t.client.base.RoundTrip(out)
	return resp, accessToken, err
}

// replayable makes sure the body of req can be sent twice.
func replayable(req *http.Request) (*http.Request, error) {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return req, nil
	}
	body, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("apiclient: buffer request body: %w", err)
	}
	r := req.Clone(req.Context())
	r.Body = io.NopCloser(bytes.NewReader(body))
	r.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	return r, nil
}

func rewind(ctx context.Context, req *http.Request) (*http.Request, error) {
	r := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("apiclient: rewind request body: %w", err)
		}
		r.Body = body
	}
	return r, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
