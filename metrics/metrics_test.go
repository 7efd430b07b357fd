package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	r := New()
	r.Observe("loans", "create", "ok", 20*time.Millisecond)
	r.Observe("loans", "create", "ok", 5*time.Millisecond)
	r.Observe("loans", "create", "conflict", time.Millisecond)

	assert.Equal(t, 2.0, r.Count("loans", "create", "ok"))
	assert.Equal(t, 1.0, r.Count("loans", "create", "conflict"))
	assert.Equal(t, 0.0, r.Count("loans", "return", "ok"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `ledger_operations_total{ledger="loans",operation="create",result="ok"} 2`)
	assert.Contains(t, string(body), "ledger_operation_duration_seconds_bucket")
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() { r.Observe("loans", "create", "ok", time.Second) })
}
