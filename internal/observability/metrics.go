package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "payswiftly"

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "api_requests_total", Help: "Backend API requests by operation and outcome"},
		[]string{"operation", "method", "status"},
	)
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Backend API request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "method"},
	)

	StatusPollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "status_polls_total", Help: "Transaction status polls by observed result"},
		[]string{"result"},
	)
	PaymentOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "payment_outcomes_total", Help: "Tracked payments that reached a terminal state"},
		[]string{"state"},
	)
	PaymentsInitiatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "payments_initiated_total", Help: "Payment initiations by result"},
		[]string{"result"},
	)
	ActiveTrackers = promauto.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "active_trackers", Help: "Payments currently being polled"})
	OpenViews      = promauto.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: namespace, Name: "open_views", Help: "Live websocket views by kind"},
		[]string{"view"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "route", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
