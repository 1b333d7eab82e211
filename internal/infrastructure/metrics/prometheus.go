package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var _ inventory.AdjustmentObserver = (*Metrics)(nil)

// Metrics métricas del ledger sobre un registro propio.
type Metrics struct {
	registry *prometheus.Registry

	AdjustmentsTotal *prometheus.CounterVec
	PublishTotal     *prometheus.CounterVec
	BulkBatchSize    prometheus.Histogram
}

// New registra los collectors estándar de Go/proceso y las métricas del ledger.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		AdjustmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_adjustments_total",
			Help:      "Ajustes de stock procesados por operación y resultado",
		}, []string{"operation", "outcome"}),
		PublishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movement_publish_total",
			Help:      "Publicaciones de movimientos al broker por resultado",
		}, []string{"result"}),
		BulkBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stock_bulk_batch_size",
			Help:      "Tamaño de los lotes de ajuste masivo",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
	}
	registry.MustRegister(m.AdjustmentsTotal, m.PublishTotal, m.BulkBatchSize)
	return m
}

// ObserveAdjustment implementa inventory.AdjustmentObserver.
func (m *Metrics) ObserveAdjustment(op entity.Operation, outcome string) {
	m.AdjustmentsTotal.WithLabelValues(string(op), outcome).Inc()
}

// ObserveBulk registra el tamaño de un lote.
func (m *Metrics) ObserveBulk(size int) {
	m.BulkBatchSize.Observe(float64(size))
}

// ObservePublish implementa messaging.PublishObserver.
func (m *Metrics) ObservePublish(success bool) {
	result := "success"
	if !success {
		result = "error"
	}
	m.PublishTotal.WithLabelValues(result).Inc()
}

// Registry expone el registro (tests).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler handler HTTP para /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
