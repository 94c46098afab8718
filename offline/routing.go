package offline

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/jrsteele09/go-cms-client/cachestore"
	"github.com/rs/zerolog/log"
)

type route string

const (
	routeAPI        route = "api"
	routeStatic     route = "static"
	routeNavigation route = "navigation"
	routeDefault    route = "default"
)

// articlePath marks API requests that get a 503 JSON answer when nothing else is available.
const articlePath = "/articles/"

// classify picks the strategy for req. The order matters: an API path wins over
// the fetch destination, which wins over navigation.
func (w *Worker) classify(req *http.Request) route {
	if strings.Contains(req.URL.Hostname(), w.config.GetAPIHost()) &&
		slices.ContainsFunc(w.config.GetAPIPrefixes(), func(p string) bool { return strings.Contains(req.URL.Path, p) }) {
		return routeAPI
	}
	switch req.Header.Get("Sec-Fetch-Dest") {
	case "script", "style", "image", "font":
		return routeStatic
	}
	if req.Header.Get("Sec-Fetch-Mode") == "navigate" {
		return routeNavigation
	}
	return routeDefault
}

// RoundTrip answers req the way its category asks for. Until the worker is
// activated every request goes straight to the network.
func (w *Worker) RoundTrip(req *http.Request) (*http.Response, error) {
	if !w.controlling() {
		return w.network.RoundTrip(req)
	}
	switch w.classify(req) {
	case routeAPI:
		return w.staleWhileRevalidate(req)
	case routeStatic:
		return w.cacheFirst(req)
	case routeNavigation:
		return w.networkFirst(req)
	default:
		return w.cacheOnlyFallback(req)
	}
}

func (w *Worker) staleWhileRevalidate(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if cached, found := w.match(ctx, req); found {
		w.count(routeAPI, "hit")
		w.revalidate(req)
		return cached, nil
	}

	resp, err := w.network.RoundTrip(req)
	if err != nil {
		log.Warn().Err(err).Str("url", req.URL.String()).Msg("offline: API request failed")
		if cached, found := w.match(ctx, req); found {
			w.count(routeAPI, "hit")
			return cached, nil
		}
		if strings.Contains(req.URL.String(), articlePath) {
			w.count(routeAPI, "fallback")
			return offlineAPIResponse(req), nil
		}
		w.count(routeAPI, "error")
		return nil, err
	}
	w.count(routeAPI, "network")
	if cacheable(req, resp) {
		return w.store(ctx, w.config.GetAPICacheName(), req, resp)
	}
	return resp, nil
}

// revalidate refreshes the API copy of req in the background. Failures are only logged.
func (w *Worker) revalidate(req *http.Request) {
	bg := req.Clone(w.ctx)
	w.background.Add(1)
	go func() {
		defer w.background.Done()
		resp, err := w.network.RoundTrip(bg)
		if err != nil {
			log.Debug().Err(err).Str("url", bg.URL.String()).Msg("offline: background cache update failed")
			w.count(routeAPI, "revalidate_error")
			return
		}
		if !ok(resp) {
			resp.Body.Close()
			return
		}
		refreshed, err := w.store(w.ctx, w.config.GetAPICacheName(), bg, resp)
		if err != nil {
			log.Debug().Err(err).Str("url", bg.URL.String()).Msg("offline: background cache update failed")
			return
		}
		refreshed.Body.Close()
		w.count(routeAPI, "revalidated")
	}()
}

func (w *Worker) cacheFirst(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if cached, found := w.match(ctx, req); found {
		w.count(routeStatic, "hit")
		return cached, nil
	}
	resp, err := w.network.RoundTrip(req)
	if err != nil {
		log.Warn().Err(err).Str("url", req.URL.String()).Msg("offline: static asset fetch failed")
		w.count(routeStatic, "error")
		return nil, err
	}
	w.count(routeStatic, "network")
	if cacheable(req, resp) {
		return w.store(ctx, w.config.GetStaticCacheName(), req, resp)
	}
	return resp, nil
}

func (w *Worker) networkFirst(req *http.Request) (*http.Response, error) {
	resp, err := w.network.RoundTrip(req)
	if err == nil {
		w.count(routeNavigation, "network")
		return resp, nil
	}

	ctx := req.Context()
	root := req.URL.ResolveReference(&url.URL{Path: "/"}).String()
	static, openErr := w.storage.Open(ctx, w.config.GetStaticCacheName())
	if openErr == nil {
		e, found, matchErr := static.Match(ctx, cachestore.Key(http.MethodGet, root))
		if matchErr != nil {
			log.Warn().Err(matchErr).Msg("offline: cache lookup failed")
		}
		if found {
			w.count(routeNavigation, "hit")
			return e.Response(req), nil
		}
	}
	w.count(routeNavigation, "fallback")
	return offlinePage(req), nil
}

// cacheOnlyFallback serves a cached copy if any group has one. Nothing is written back.
func (w *Worker) cacheOnlyFallback(req *http.Request) (*http.Response, error) {
	if cached, found := w.match(req.Context(), req); found {
		w.count(routeDefault, "hit")
		return cached, nil
	}
	w.count(routeDefault, "network")
	return w.network.RoundTrip(req)
}

// match looks req up across every group. Lookup errors count as a miss.
func (w *Worker) match(ctx context.Context, req *http.Request) (*http.Response, bool) {
	if req.Method != http.MethodGet {
		return nil, false
	}
	e, found, err := cachestore.Match(ctx, w.storage, cachestore.RequestKey(req))
	if err != nil {
		log.Warn().Err(err).Str("url", req.URL.String()).Msg("offline: cache lookup failed")
		return nil, false
	}
	if !found {
		return nil, false
	}
	return e.Response(req), true
}

// store drains resp into the named group and hands back an equivalent response.
// A failed cache write is logged and the response is still returned.
func (w *Worker) store(ctx context.Context, group string, req *http.Request, resp *http.Response) (*http.Response, error) {
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	out := *resp
	out.Body = io.NopCloser(bytes.NewReader(body))

	c, err := w.storage.Open(ctx, group)
	if err == nil {
		err = c.Put(ctx, cachestore.NewEntry(req, resp, body, w.nowFunc()))
	}
	if err != nil {
		log.Warn().Err(err).Str("group", group).Str("url", req.URL.String()).Msg("offline: cache write failed")
	}
	return &out, nil
}

func (w *Worker) count(r route, outcome string) {
	w.metrics.requests.WithLabelValues(string(r), outcome).Inc()
}

// cacheable: only successful GET responses are stored.
func cacheable(req *http.Request, resp *http.Response) bool {
	return req.Method == http.MethodGet && ok(resp)
}

func ok(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
