package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP-запросы: длительность в секундах
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Попытки принятия предложений
	BidAcceptanceCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bid_acceptance_total",
			Help: "Total number of bid acceptance attempts",
		},
		[]string{"result"}, // result: accepted, conflict
	)

	// Запросы ранжирования предложений
	RankingRequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bid_ranking_requests_total",
			Help: "Total number of bid ranking requests",
		},
		[]string{"priority"},
	)
)

// RecordHTTPRequestDuration записывает длительность HTTP-запроса.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementBidAcceptance увеличивает счётчик попыток принятия предложений.
func IncrementBidAcceptance(result string) {
	BidAcceptanceCount.WithLabelValues(result).Inc()
}

// IncrementRankingRequest увеличивает счётчик запросов ранжирования.
func IncrementRankingRequest(priority string) {
	RankingRequestCount.WithLabelValues(priority).Inc()
}
