package cache

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option настраивает кэш при создании.
type Option func(*options)

type options struct {
	clock      func() time.Time
	registerer prometheus.Registerer
	name       string
}

func defaultOptions() *options {
	return &options{clock: time.Now}
}

// WithClock подменяет источник текущего времени (нужно тестам TTL).
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithMetrics регистрирует Prometheus-метрики кэша с меткой cache=name.
func WithMetrics(reg prometheus.Registerer, name string) Option {
	return func(o *options) {
		o.registerer = reg
		o.name = name
	}
}
