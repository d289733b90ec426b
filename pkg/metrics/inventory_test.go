package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInventoryMetricsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewInventoryMetrics(reg)

	m.IncEventApplied("consume")
	m.IncEventApplied("consume")
	m.IncEventApplied("restock")
	m.IncClamped()
	m.IncCheckoutLine("applied")
	m.IncCheckoutLine("")

	if got := testutil.ToFloat64(m.eventsApplied.WithLabelValues("consume")); got != 2 {
		t.Fatalf("expected 2 consume events, got %v", got)
	}
	if got := testutil.ToFloat64(m.clamped); got != 1 {
		t.Fatalf("expected 1 clamped event, got %v", got)
	}
	if got := testutil.ToFloat64(m.checkoutLines.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("expected empty result to normalize to unknown, got %v", got)
	}
}

func TestInventoryMetricsNilSafe(t *testing.T) {
	var m *InventoryMetrics
	m.IncEventApplied("consume")
	m.IncClamped()
	m.IncCheckoutLine("applied")

	empty := NewInventoryMetrics(nil)
	empty.IncEventApplied("restock")
}
