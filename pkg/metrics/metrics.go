package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sad"

// Collector holds the service metrics. It implements prometheus.Collector so
// it can be registered on any registry.
type Collector struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	NotificationsSent   *prometheus.CounterVec
	PushDeliveries      *prometheus.CounterVec
	TravelProviderCalls *prometheus.CounterVec
	RealtimeClients     prometheus.Gauge
}

// New returns a Collector with every metric initialised.
func New() *Collector {
	return &Collector{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route, method and status class.",
			}, []string{"route", "method", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route.",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			}, []string{"route", "method"},
		),
		NotificationsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "In-app notifications by type and outcome (stored, skipped).",
			}, []string{"type", "outcome"},
		),
		PushDeliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "push_deliveries_total",
				Help:      "Push deliveries by platform and outcome.",
			}, []string{"platform", "outcome"},
		),
		TravelProviderCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "travel_time_lookups_total",
				Help:      "Travel-time leg lookups by source.",
			}, []string{"source"},
		),
		RealtimeClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "realtime_clients",
				Help:      "Open realtime notification connections.",
			},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.HTTPRequests.Describe(ch)
	c.HTTPDuration.Describe(ch)
	c.NotificationsSent.Describe(ch)
	c.PushDeliveries.Describe(ch)
	c.TravelProviderCalls.Describe(ch)
	c.RealtimeClients.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.HTTPRequests.Collect(ch)
	c.HTTPDuration.Collect(ch)
	c.NotificationsSent.Collect(ch)
	c.PushDeliveries.Collect(ch)
	c.TravelProviderCalls.Collect(ch)
	c.RealtimeClients.Collect(ch)
}
