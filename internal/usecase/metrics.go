package usecase

import "github.com/prometheus/client_golang/prometheus"

// PipelineMetrics собирает метрики обработки изображений. Nil допустим.
type PipelineMetrics struct {
	duration prometheus.Histogram
	failures *prometheus.CounterVec
}

func NewPipelineMetrics(reg prometheus.Registerer) (*PipelineMetrics, error) {
	m := &PipelineMetrics{
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fashion_search",
			Subsystem: "pipeline",
			Name:      "processing_seconds",
			Help:      "Time spent processing an uploaded image",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fashion_search",
			Subsystem: "pipeline",
			Name:      "failures_total",
			Help:      "Image processing failures by pipeline stage",
		}, []string{"stage"}),
	}

	for _, c := range []prometheus.Collector{m.duration, m.failures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *PipelineMetrics) observe(seconds float64) {
	if m != nil {
		m.duration.Observe(seconds)
	}
}

func (m *PipelineMetrics) recordFailure(stage string) {
	if m != nil {
		m.failures.WithLabelValues(stage).Inc()
	}
}
