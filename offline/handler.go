package offline

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-cms-client/internal/config"
	"github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	// ControlPrefix holds the worker's control routes on the proxy.
	ControlPrefix = "/_worker"
	// APIPrefix is stripped and the rest forwarded to the REST API.
	APIPrefix = "/api"

	maxMessageSize = 4 << 10
)

// Handler is a local proxy that puts a Controller in front of the site and its
// API, so any HTTP client gets the offline behaviour. Everything under APIPrefix
// goes to the API, control routes live under ControlPrefix, the rest goes to the origin.
type Handler struct {
	env        string
	controller *Controller
	gatherer   prometheus.Gatherer
	router     chi.Router
}

type HandlerOption func(*Handler)

// WithGatherer sets what /metrics serves. Defaults to the global registry.
func WithGatherer(g prometheus.Gatherer) HandlerOption {
	return func(h *Handler) {
		h.gatherer = g
	}
}

func NewHandler(cfg config.EnvConfig, controller *Controller, options ...HandlerOption) (*Handler, error) {
	origin, err := url.Parse(cfg.GetOriginURL())
	if err != nil {
		return nil, errors.Wrapf(err, "offline.NewHandler origin")
	}
	api, err := url.Parse(cfg.GetAPIBaseURL())
	if err != nil {
		return nil, errors.Wrapf(err, "offline.NewHandler api")
	}
	h := &Handler{
		env:        cfg.GetEnv(),
		controller: controller,
		gatherer:   prometheus.DefaultGatherer,
	}
	for _, o := range options {
		o(h)
	}

	r := chi.NewRouter()
	r.Use(h.LoggingMiddleware, h.RecoverMiddleware)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	r.Route(ControlPrefix, func(r chi.Router) {
		r.Get("/state", h.handleState)
		r.Post("/messages", h.handleMessage)
		r.Post("/sync/{tag}", h.handleSync)
	})
	r.Handle(APIPrefix+"/*", h.proxy(api, APIPrefix))
	r.Handle("/*", h.proxy(origin, ""))
	h.router = r
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) proxy(target *url.URL, strip string) http.Handler {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			if strip != "" {
				pr.Out.URL.Path = strings.TrimPrefix(pr.In.URL.Path, strip)
				pr.Out.URL.RawPath = ""
			}
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		Transport: h.controller,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Warn().Err(err).Str("url", r.URL.String()).Msg("offline: upstream unavailable")
			writeError(w, http.StatusBadGateway, "upstream unavailable")
		},
	}
}

type workerState struct {
	Registered      bool   `json:"registered"`
	UpdateAvailable bool   `json:"updateAvailable"`
	Updating        bool   `json:"updating"`
	Offline         bool   `json:"offline"`
	WorkerID        string `json:"workerId,omitempty"`
	State           State  `json:"state,omitempty"`
}

func (h *Handler) handleState(w http.ResponseWriter, _ *http.Request) {
	resp := workerState{
		Registered:      h.controller.IsRegistered(),
		UpdateAvailable: h.controller.UpdateAvailable(),
		Updating:        h.controller.Updating(),
		Offline:         h.controller.Offline(),
	}
	if active := h.controller.Active(); active != nil {
		resp.WorkerID = active.ID()
		resp.State = active.State()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable message")
		return
	}
	msg, err := DecodeMessage(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	switch msg.(type) {
	case SkipWaiting:
		err = h.controller.SkipWaiting(ctx)
	case ClearCache:
		err = h.controller.ClearCache(ctx)
	case GetCacheSize:
		var size int64
		size, err = h.controller.GetCacheSize(ctx)
		if err == nil {
			writeJSON(w, http.StatusOK, CacheSize{CacheSize: size})
			return
		}
	}
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, errors.ErrCacheSizeTimeout):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	default:
		log.Err(err).Str("type", msg.Type()).Msg("offline: control message failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	err := h.controller.Sync(r.Context(), tag)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, errors.ErrUnsupported):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errors.ErrWorkerNotActive):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Err(err).Str("tag", tag).Msg("offline: sync failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
