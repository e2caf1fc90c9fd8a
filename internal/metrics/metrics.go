package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "carcare"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		},
		[]string{"endpoint", "code"},
	)

	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Booking lifecycle events by event, actor and result.",
		},
		[]string{"event", "actor", "result"},
	)

	priceFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_table_fetches_total",
			Help:      "Price table loads by outcome.",
		},
		[]string{"outcome"},
	)

	subscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "realtime_subscribers",
			Help:      "Open realtime booking subscriptions.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, transitions, priceFetches, subscribers)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint, code string) {
	httpRequests.WithLabelValues(endpoint, code).Inc()
}

func IncTransition(event, actor, result string) {
	transitions.WithLabelValues(event, actor, result).Inc()
}

// IncPriceFetch records a price table load: "ok", "retry" or "fallback".
func IncPriceFetch(outcome string) {
	priceFetches.WithLabelValues(outcome).Inc()
}

func SubscriberOpened() { subscribers.Inc() }

func SubscriberClosed() { subscribers.Dec() }
