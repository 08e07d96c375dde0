package cache

import "github.com/prometheus/client_golang/prometheus"

// cacheMetrics — Prometheus-метрики кэша. Nil-приёмник допустим: все методы становятся no-op.
type cacheMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	expired   prometheus.Counter
	sets      prometheus.Counter
	deletes   prometheus.Counter
	evictions prometheus.Counter
	size      prometheus.Gauge
}

func newCacheMetrics(reg prometheus.Registerer, name string) (*cacheMetrics, error) {
	counter := func(metric, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "fashion_search",
			Subsystem:   "cache",
			Name:        metric,
			Help:        help,
			ConstLabels: prometheus.Labels{"cache": name},
		})
	}

	m := &cacheMetrics{
		hits:      counter("hits_total", "Total number of cache hits"),
		misses:    counter("misses_total", "Total number of cache misses"),
		expired:   counter("expired_total", "Total number of entries dropped on read after TTL"),
		sets:      counter("sets_total", "Total number of cache set operations"),
		deletes:   counter("deletes_total", "Total number of explicit cache deletes"),
		evictions: counter("evictions_total", "Total number of LRU evictions"),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "fashion_search",
			Subsystem:   "cache",
			Name:        "size",
			Help:        "Current number of entries in cache",
			ConstLabels: prometheus.Labels{"cache": name},
		}),
	}

	for _, c := range []prometheus.Collector{m.hits, m.misses, m.expired, m.sets, m.deletes, m.evictions, m.size} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *cacheMetrics) recordHit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *cacheMetrics) recordMiss() {
	if m != nil {
		m.misses.Inc()
	}
}

// recordExpired считает и промах, и удаление по TTL.
func (m *cacheMetrics) recordExpired() {
	if m != nil {
		m.misses.Inc()
		m.expired.Inc()
	}
}

func (m *cacheMetrics) recordSet() {
	if m != nil {
		m.sets.Inc()
	}
}

func (m *cacheMetrics) recordDelete() {
	if m != nil {
		m.deletes.Inc()
	}
}

func (m *cacheMetrics) recordEviction() {
	if m != nil {
		m.evictions.Inc()
	}
}

func (m *cacheMetrics) updateSize(size int) {
	if m != nil {
		m.size.Set(float64(size))
	}
}
