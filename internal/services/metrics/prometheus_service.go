package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PromCollector records upstream call latency and outcome.
type PromCollector struct {
	hist *prometheus.HistogramVec
	cnt  *prometheus.CounterVec
}

func NewPromCollector(reg prometheus.Registerer) *PromCollector {
	hist := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "weather_app",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream weather provider latencies",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	cnt := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "weather_app",
			Name:      "upstream_requests_total",
			Help:      "Upstream weather provider calls by outcome",
		},
		[]string{"endpoint", "result"},
	)
	reg.MustRegister(hist, cnt)
	return &PromCollector{hist: hist, cnt: cnt}
}

func (p *PromCollector) ObserveLatency(op string, d time.Duration) {
	p.hist.WithLabelValues(op).Observe(d.Seconds())
}

func (p *PromCollector) IncrementCounter(metric string, labels ...string) {
	p.cnt.WithLabelValues(append([]string{metric}, labels...)...).Inc()
}
