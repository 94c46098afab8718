package offline

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

type metrics struct {
	requests  *prometheus.CounterVec
	evictions prometheus.Counter
	syncs     *prometheus.CounterVec
	bytes     prometheus.Gauge
}

func newMetrics() *metrics {
	return &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cmsclient",
			Subsystem: "offline",
			Name:      "requests_total",
			Help:      "Intercepted fetches by route and how they were answered.",
		}, []string{"route", "outcome"}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cmsclient",
			Subsystem: "offline",
			Name:      "evictions_total",
			Help:      "API cache entries removed by the retention sweep.",
		}),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cmsclient",
			Subsystem: "offline",
			Name:      "background_sync_total",
			Help:      "Pending request replays by outcome.",
		}, []string{"outcome"}),
		bytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cmsclient",
			Subsystem: "offline",
			Name:      "cache_bytes",
			Help:      "Body bytes across all cache groups at the last size request.",
		}),
	}
}

// register swaps in already registered collectors so that several workers
// (an old one and its update) can share one registry.
func (m *metrics) register(reg prometheus.Registerer) {
	m.requests = registerOrExisting(reg, m.requests)
	m.evictions = registerOrExisting(reg, m.evictions)
	m.syncs = registerOrExisting(reg, m.syncs)
	m.bytes = registerOrExisting(reg, m.bytes)
}

func registerOrExisting[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		log.Err(err).Msg("offline: failed to register metric")
	}
	return c
}
