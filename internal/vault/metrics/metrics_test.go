package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RotationFinished(ResultSuccess, 20*time.Millisecond)
	m.RotationFinished(ResultConflict, 0)
	m.RecordsRotated("vault_items", 3)
	m.RecordsRotated("folders", 0)
	m.Notification(false)
	m.HTTPRequest("POST", 409)
	m.StaleSessionsDeleted(2)

	require.Equal(t, 1.0, testutil.ToFloat64(m.rotations.WithLabelValues(ResultSuccess)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.rotations.WithLabelValues(ResultConflict)))
	require.Equal(t, 3.0, testutil.ToFloat64(m.rotatedRecords.WithLabelValues("vault_items")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("failed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "4xx")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.staleSessions))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.RotationFinished(ResultSuccess, time.Second)
		m.RecordsRotated("folders", 1)
		m.Notification(true)
		m.HTTPRequest("GET", 200)
		m.StaleSessionsDeleted(1)
	})
}
