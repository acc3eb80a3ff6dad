package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_ObserveImport(t *testing.T) {
	m := NewManager()

	m.ObserveImport("append", 2, 3, 4)
	m.ObserveImport("append", 1, 0, 0)
	m.ObserveImport("replace", 5, 0, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.imports.WithLabelValues("append")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.imports.WithLabelValues("replace")))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.recordsReconciled.WithLabelValues("inserted")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.recordsReconciled.WithLabelValues("merged")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.monthsOverridden))
}

func TestManager_ObserveAnnotation(t *testing.T) {
	m := NewManager(WithNamespace("test"))

	m.ObserveAnnotation("notes", "ai", 200*time.Millisecond)
	m.ObserveAnnotation("notes", "fallback", time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.annotations.WithLabelValues("notes", "ai")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.annotationDuration))

	expected := `
# HELP test_active_sessions Sessions currently held in memory
# TYPE test_active_sessions gauge
test_active_sessions 3
`
	m.SetActiveSessions(3)
	require.NoError(t, testutil.CollectAndCompare(m.activeSessions, strings.NewReader(expected)))
}

func TestManager_NilIsNoop(t *testing.T) {
	var m *Manager
	assert.NotPanics(t, func() {
		m.ObserveImport("replace", 1, 0, 0)
		m.ObserveAnnotation("notes", "ai", time.Second)
		m.SetActiveSessions(1)
	})
}

func TestManager_Handler(t *testing.T) {
	m := NewManager()
	m.ObserveImport("replace", 1, 0, 0)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `performance_dashboard_imports_total{mode="replace"} 1`)
}
