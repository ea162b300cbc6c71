// Package metrics holds the process-wide Prometheus collectors served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "staffdesk",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "staffdesk",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// NotificationDeliveries counts dispatched notification events by
	// outcome: delivered or failed.
	NotificationDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "staffdesk",
		Name:      "notification_deliveries_total",
		Help:      "Notification events by delivery outcome.",
	}, []string{"outcome"})

	NotificationRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "staffdesk",
		Name:      "notification_retries_total",
		Help:      "Notification persist attempts that were retried.",
	})

	WebsocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "staffdesk",
		Name:      "websocket_connections",
		Help:      "Open realtime notification connections.",
	})
)
