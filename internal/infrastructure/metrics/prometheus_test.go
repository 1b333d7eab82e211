package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestObserveAdjustment_CuentaPorOperacionYResultado(t *testing.T) {
	m := New("ledger")
	m.ObserveAdjustment(entity.OperationAdd, inventory.OutcomeAccepted)
	m.ObserveAdjustment(entity.OperationAdd, inventory.OutcomeAccepted)
	m.ObserveAdjustment(entity.OperationSub, inventory.OutcomeRejected)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AdjustmentsTotal.WithLabelValues("add", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AdjustmentsTotal.WithLabelValues("sub", "rejected")))
}

func TestObservePublish(t *testing.T) {
	m := New("ledger")
	m.ObservePublish(true)
	m.ObservePublish(false)
	m.ObservePublish(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PublishTotal.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PublishTotal.WithLabelValues("error")))
}

func TestHandler_ExponeMetricas(t *testing.T) {
	m := New("ledger")
	m.ObserveAdjustment(entity.OperationSet, inventory.OutcomeAccepted)
	m.ObserveBulk(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `ledger_stock_adjustments_total{operation="set",outcome="accepted"} 1`)
	assert.Contains(t, string(body), "ledger_stock_bulk_batch_size_count 1")
}
