package generator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the generation Prometheus metrics.
type Metrics struct {
	GenerationsTotal *prometheus.CounterVec
	AttemptsTotal    prometheus.Counter
	Duration         prometheus.Histogram
}

// NewMetrics registers generation metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		GenerationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pageforge_generations_total",
			Help: "Page Object generations by outcome status",
		}, []string{"status"}),
		AttemptsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pageforge_generation_attempts_total",
			Help: "AI calls made across all generations, including retries",
		}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pageforge_generation_duration_seconds",
			Help:    "Wall-clock duration of one page's generation",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
}

// observe records one generation outcome. Nil-safe so metrics stay optional.
func (m *Metrics) observe(status string, attempts int, duration time.Duration) {
	if m == nil {
		return
	}
	m.GenerationsTotal.WithLabelValues(status).Inc()
	m.AttemptsTotal.Add(float64(attempts))
	m.Duration.Observe(duration.Seconds())
}
