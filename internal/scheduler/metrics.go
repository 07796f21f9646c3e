package scheduler

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts cache lookups and evictions of the scheduler caches.
type Metrics struct {
	requests  *prometheus.CounterVec
	evictions *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "scheduler",
			Name:      "cache_requests_total",
			Help:      "Scheduler cache lookups by cache and result",
		}, []string{"cache", "result"}),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "scheduler",
			Name:      "cache_evictions_total",
			Help:      "Entries evicted from scheduler caches for capacity",
		}, []string{"cache"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requests, m.evictions)
	return m
}

func (m *Metrics) ObserveLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.requests.WithLabelValues(cache, result).Inc()
}

func (m *Metrics) ObserveEviction(cache string) {
	if m == nil {
		return
	}
	m.evictions.WithLabelValues(cache).Inc()
}
