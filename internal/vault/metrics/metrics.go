// Package metrics holds the Prometheus collectors of the vault service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vault"

// Rotation outcomes.
const (
	ResultSuccess    = "success"
	ResultAuthFailed = "auth_failed"
	ResultIncomplete = "incomplete"
	ResultInvalid    = "invalid_payload"
	ResultConflict   = "conflict"
	ResultError      = "error"
)

// Metrics is safe to use as a nil pointer, which records nothing.
type Metrics struct {
	rotations       *prometheus.CounterVec
	rotationSeconds prometheus.Histogram
	rotatedRecords  *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	staleSessions   prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "key_rotations_total",
			Help:      "Account key rotation attempts by result.",
		}, []string{"result"}),
		rotationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "key_rotation_duration_seconds",
			Help:      "Time from request to commit of successful key rotations.",
			Buckets:   prometheus.DefBuckets,
		}),
		rotatedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rotated_records_total",
			Help:      "Records re-encrypted by committed rotations, per domain.",
		}, []string{"domain"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logout_notifications_total",
			Help:      "Logout notifications by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status class.",
		}, []string{"method", "code"}),
		staleSessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_sessions_deleted_total",
			Help:      "Sessions removed by housekeeping.",
		}),
	}

	reg.MustRegister(m.rotations, m.rotationSeconds, m.rotatedRecords, m.notifications, m.httpRequests, m.staleSessions)
	return m
}

func (m *Metrics) RotationFinished(result string, took time.Duration) {
	if m == nil {
		return
	}
	m.rotations.WithLabelValues(result).Inc()
	if result == ResultSuccess {
		m.rotationSeconds.Observe(took.Seconds())
	}
}

func (m *Metrics) RecordsRotated(domain string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.rotatedRecords.WithLabelValues(domain).Add(float64(n))
}

func (m *Metrics) Notification(ok bool) {
	if m == nil {
		return
	}
	result := "delivered"
	if !ok {
		result = "failed"
	}
	m.notifications.WithLabelValues(result).Inc()
}

func (m *Metrics) HTTPRequest(method string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, statusClass(status)).Inc()
}

func (m *Metrics) StaleSessionsDeleted(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.staleSessions.Add(float64(n))
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
