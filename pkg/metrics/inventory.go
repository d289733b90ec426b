package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// InventoryMetrics records counters for quantity-changing events.
type InventoryMetrics struct {
	eventsApplied *prometheus.CounterVec
	clamped       prometheus.Counter
	checkoutLines *prometheus.CounterVec
}

// NewInventoryMetrics registers the inventory metrics on the provided registerer.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	eventsApplied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_events_applied_total",
		Help: "Inventory log entries appended, by kind.",
	}, []string{"kind"})
	clamped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_consumption_clamped_total",
		Help: "Consumption events that ran out of stock and clamped to zero.",
	})
	checkoutLines := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_checkout_lines_total",
		Help: "Cart lines processed during checkout, by result.",
	}, []string{"result"})
	reg.MustRegister(eventsApplied, clamped, checkoutLines)
	return &InventoryMetrics{
		eventsApplied: eventsApplied,
		clamped:       clamped,
		checkoutLines: checkoutLines,
	}
}

// IncEventApplied increments the applied-event counter for the given kind.
func (m *InventoryMetrics) IncEventApplied(kind string) {
	if m == nil || m.eventsApplied == nil {
		return
	}
	m.eventsApplied.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncClamped increments the clamped-consumption counter.
func (m *InventoryMetrics) IncClamped() {
	if m == nil || m.clamped == nil {
		return
	}
	m.clamped.Inc()
}

// IncCheckoutLine increments the checkout line counter for the given result.
func (m *InventoryMetrics) IncCheckoutLine(result string) {
	if m == nil || m.checkoutLines == nil {
		return
	}
	m.checkoutLines.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
