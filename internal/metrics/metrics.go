// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agridash_http_requests_total",
		Help: "HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agridash_http_request_duration_seconds",
		Help:    "HTTP request latency by method and path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	SalesRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agridash_sales_recorded_total",
		Help: "Sales successfully recorded.",
	})

	NotificationsEmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agridash_notifications_emitted_total",
		Help: "Stock-change notifications emitted.",
	})

	StockRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agridash_stock_rejections_total",
		Help: "Stock updates rejected by validation, by reason.",
	}, []string{"reason"})

	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agridash_websocket_clients",
		Help: "Currently connected websocket feed clients.",
	})
)
