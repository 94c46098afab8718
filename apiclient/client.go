package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-cms-client/internal/config"
	apperrors "github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/jrsteele09/go-cms-client/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Session is the credential state the client reads and, on refresh, writes.
type Session interface {
	AccessToken() string
	RefreshToken() string
	SetAccessToken(accessToken string) error
	Clear() error
}

// Tenant is the account context attached to every request.
type Tenant interface {
	CurrentAccountID() string
	Clear() error
}

// Client is the single point of egress for API calls.
type Client struct {
	baseURL    string
	config     config.ClientConfig
	session    Session
	tenant     Tenant
	base       http.RoundTripper
	httpClient *http.Client
	refresher  *token.Coordinator
	onExpired  func(loginPath string)
	registerer prometheus.Registerer
}

type Option func(*Client)

// WithBaseTransport sets the transport below the interceptors, e.g. the offline
// cache worker.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.base = rt
	}
}

// WithSessionExpiredHandler sets what happens once the session is torn down
// because it could not be refreshed. It receives the login entry point.
func WithSessionExpiredHandler(fn func(loginPath string)) Option {
	return func(c *Client) {
		c.onExpired = fn
	}
}

// WithRegisterer exposes the client's refresh metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.registerer = reg
	}
}

func New(cfg config.ClientConfig, baseURL string, session Session, tenant Tenant, options ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		config:  cfg,
		session: session,
		tenant:  tenant,
		base:    http.DefaultTransport,
		onExpired: func(loginPath string) {
			log.Warn().Str("login", loginPath).Msg("session expired, login required")
		},
	}
	for _, opt := range options {
		opt(c)
	}

	coordinatorOptions := []token.CoordinatorOption{token.WithOnFailure(c.endSession)}
	if c.registerer != nil {
		coordinatorOptions = append(coordinatorOptions, token.WithRegisterer(c.registerer))
	}
	c.refresher = token.NewCoordinator(session, c.exchangeRefreshToken, coordinatorOptions...)
	c.httpClient = &http.Client{
		Transport: &Transport{client: c},
		Timeout:   cfg.GetRequestTimeout(),
	}
	return c
}

// BaseURL is the API root paths are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Refresh mints a new access token now, sharing any refresh already in flight.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	return c.refresher.Refresh(ctx)
}

// endSession clears credentials, cached user and tenant binding, then sends the
// user to the login entry point.
func (c *Client) endSession(cause error) {
	if err := c.session.Clear(); err != nil {
		log.Err(err).Msg("apiclient: failed to clear session")
	}
	if err := c.tenant.Clear(); err != nil {
		log.Err(err).Msg("apiclient: failed to clear tenant")
	}
	log.Info().AnErr("cause", cause).Msg("apiclient: session ended")
	c.onExpired(c.config.GetLoginPath())
}

// exchangeRefreshToken calls the refresh endpoint below the interceptors so a
// rejected refresh can never trigger another refresh.
func (c *Client) exchangeRefreshToken(ctx context.Context, refreshToken string) (string, error) {
	payload, err := json.Marshal(map[string]string{"refresh": refreshToken})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.config.GetRefreshPath(), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	bare := &http.Client{Transport: c.base, Timeout: c.config.GetRequestTimeout()}
	resp, err := bare.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", newAPIError(resp.StatusCode, body)
	}
	var out struct {
		Access string `json:"access"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("apiclient: decode refresh response: %w", err)
	}
	return out.Access, nil
}

// request is one outgoing call before interception.
type request struct {
	method      string
	path        string
	params      url.Values
	body        []byte
	contentType string
	header      http.Header
}

// rawResponse is a settled call with its body fully read.
type rawResponse struct {
	status int
	header http.Header
	body   []byte
}

func (c *Client) do(ctx context.Context, r request) (*rawResponse, error) {
	u := c.baseURL + r.path
	if len(r.params) > 0 {
		u += "?" + r.params.Encode()
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return nil, apperrors.Wrapf(err, "apiclient: build %s %s", r.method, r.path)
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrSessionExpired) {
			return nil, apperrors.Wrapf(err, "%s %s", r.method, r.path)
		}
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, newAPIError(resp.StatusCode, data)
	}
	return &rawResponse{status: resp.StatusCode, header: resp.Header, body: data}, nil
}
