package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveEvolution(t *testing.T) {
	r := NewRegistry()
	r.Metrics.ObserveEvolution(22, 26, 0.01)
	r.Metrics.ObserveEvolution(22, 10, 0.01)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Metrics.Evolutions.WithLabelValues("22")))
	assert.Equal(t, 36.0, testutil.ToFloat64(r.Metrics.Generations))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.ObserveEvolution(1, 1, 1)
	m.ObserveScan(1, 1)
	m.ObserveMorph("dilate")
	m.ObserveCollaboratorError("sqlite")
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := NewRegistry()
	r.Metrics.ObserveMorph("dilate")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `eca_morph_ops_total{op="dilate"} 1`)
}
