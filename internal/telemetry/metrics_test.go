package telemetry

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := New("test")

	m.ObserveHTTP("GET", "/api/dashboard", 200, 15*time.Millisecond)
	m.ObserveHTTP("GET", "/api/dashboard", 200, 5*time.Millisecond)
	m.DatasetGenerated(3)
	m.ObserveAI("chat", OutcomeOK, time.Second)
	m.InsightsCacheHit(true)
	m.InsightsCacheHit(false)
	m.InsightsCacheHit(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/dashboard", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.datasetsGenerated))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.lowStockItems))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.aiRequests.WithLabelValues("chat", OutcomeOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.insightsCache.WithLabelValues("miss")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New("test")
	m.DatasetGenerated(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "test_datasets_generated_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTP("GET", "/", 200, time.Millisecond)
		m.DatasetGenerated(1)
		m.ObserveAI("insights", OutcomeError, time.Millisecond)
		m.InsightsCacheHit(true)
	})
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}
