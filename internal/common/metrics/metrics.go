// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plc_api_requests_total",
			Help: "Total number of API requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "plc_api_request_duration_seconds",
			Help: "Duration of API requests in seconds",
		},
		[]string{"endpoint", "method"},
	)

	RecoveryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plc_recovery_attempts_total",
			Help: "Total number of project re-creation attempts",
		},
		[]string{"outcome"},
	)

	PollAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plc_poll_attempts_total",
			Help: "Total number of status poll attempts",
		},
		[]string{"operation"},
	)

	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plc_cache_operations_total",
			Help: "Cache hits, misses and writes by report kind",
		},
		[]string{"kind", "outcome"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plc_notifications_sent_total",
			Help: "Completion notifications sent by channel",
		},
		[]string{"channel", "outcome"},
	)
)
