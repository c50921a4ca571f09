// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "centavo_http_requests_total",
			Help: "HTTP requests by method and status code",
		},
		[]string{"method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "centavo_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	BotUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "centavo_bot_updates_total",
			Help: "Telegram updates by kind",
		},
		[]string{"kind"}, // command, text, callback, other
	)

	ParserResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "centavo_parser_results_total",
			Help: "Free-text parse outcomes",
		},
		[]string{"result"}, // expense, income, no_match
	)

	TransactionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "centavo_transactions_created_total",
			Help: "Transactions created by type and source",
		},
		[]string{"type", "source"}, // source: api, bot, recurring
	)

	LinkAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "centavo_link_attempts_total",
			Help: "Account link redemptions by result",
		},
		[]string{"result"}, // linked, merged, already_linked, invalid_code, error
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "centavo_events_published_total",
			Help: "Transaction events published to the broker",
		},
		[]string{"kind", "result"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "centavo_events_consumed_total",
			Help: "Transaction events handled by the export worker",
		},
		[]string{"kind", "result"}, // result: ok, skipped, error
	)

	SecurityEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "centavo_security_events_total",
			Help: "Requests flagged by the HTTP security middleware",
		},
		[]string{"event"}, // suspicious, rate_limited
	)
)

// ObserveHTTP records one finished request.
func ObserveHTTP(method string, status int, seconds float64) {
	HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method).Observe(seconds)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
