package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "parking_ledger_http_requests_total",
		Help: "HTTP requests served by the parking ledger API",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "parking_ledger_http_request_duration_seconds",
		Help:    "Time spent serving parking ledger API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)
