package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CartSyncMetrics records cart synchronizer activity.
type CartSyncMetrics struct {
	operations      *prometheus.CounterVec
	persistWarnings prometheus.Counter
}

// NewCartSyncMetrics registers the cart sync metrics on the provided registerer.
func NewCartSyncMetrics(reg prometheus.Registerer) *CartSyncMetrics {
	if reg == nil {
		return &CartSyncMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_operations_total",
		Help: "Cart synchronizer operations by operation and result.",
	}, []string{"operation", "result"})
	persistWarnings := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_sync_persist_warnings_total",
		Help: "Cart id persistence failures surfaced as non-fatal warnings.",
	})
	reg.MustRegister(operations, persistWarnings)
	return &CartSyncMetrics{
		operations:      operations,
		persistWarnings: persistWarnings,
	}
}

// IncSuccess increments the success counter for the named operation.
func (c *CartSyncMetrics) IncSuccess(operation string) {
	c.inc(operation, "success")
}

// IncFailure increments the failure counter for the named operation.
func (c *CartSyncMetrics) IncFailure(operation string) {
	c.inc(operation, "failure")
}

// IncPersistWarning counts a swallowed-then-surfaced cart id persistence failure.
func (c *CartSyncMetrics) IncPersistWarning() {
	if c == nil || c.persistWarnings == nil {
		return
	}
	c.persistWarnings.Inc()
}

func (c *CartSyncMetrics) inc(operation, result string) {
	if c == nil || c.operations == nil {
		return
	}
	c.operations.WithLabelValues(normalizeLabel(operation), result).Inc()
}

func normalizeLabel(operation string) string {
	if operation == "" {
		return "unknown"
	}
	return operation
}
