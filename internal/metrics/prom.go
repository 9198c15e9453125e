package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// PromObserver records requests into Prometheus collectors.
type PromObserver struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPromObserver creates the gateway collectors and registers them with reg.
func NewPromObserver(reg prometheus.Registerer) *PromObserver {
	o := &PromObserver{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "genai_gateway_requests_total",
				Help: "Total number of gateway requests",
			},
			[]string{"step", "status", "error_type"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "genai_gateway_request_duration_seconds",
				Help:    "Time taken to serve gateway requests in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"step"},
		),
	}
	reg.MustRegister(o.requests, o.duration)
	return o
}

// ObserveRequest implements Observer.
func (o *PromObserver) ObserveRequest(s RequestStats) {
	o.requests.WithLabelValues(s.Step, strconv.Itoa(s.Status), s.ErrorType).Inc()
	o.duration.WithLabelValues(s.Step).Observe(s.Duration.Seconds())
}
