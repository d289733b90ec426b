package stock

import (
	"testing"
	"time"

	"github.com/pantrykit/pantry-backend/pkg/db/models"
)

func TestEstimateDueDateFromLastPurchase(t *testing.T) {
	days := 10
	lastPurchase := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	item := &models.Item{EstimatedDueDays: &days}

	got := EstimateDueDate(item, &lastPurchase)
	if got == nil {
		t.Fatal("expected a due date")
	}
	want := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestEstimateDueDateExplicitWins(t *testing.T) {
	days := 10
	explicit := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	lastPurchase := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	item := &models.Item{DueDate: &explicit, EstimatedDueDays: &days}

	got := EstimateDueDate(item, &lastPurchase)
	if got == nil || !got.Equal(explicit) {
		t.Fatalf("explicit due date must win, got %v", got)
	}
}

func TestEstimateDueDateUsesExact24hMultiples(t *testing.T) {
	days := 1
	// Mid-day purchase keeps its clock time; no calendar rounding.
	lastPurchase := time.Date(2024, 3, 9, 15, 30, 0, 0, time.UTC)
	item := &models.Item{EstimatedDueDays: &days}

	got := EstimateDueDate(item, &lastPurchase)
	if got == nil {
		t.Fatal("expected a due date")
	}
	if want := lastPurchase.Add(24 * time.Hour); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestEstimateDueDateNoTracking(t *testing.T) {
	lastPurchase := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if got := EstimateDueDate(&models.Item{}, &lastPurchase); got != nil {
		t.Fatalf("item without expiry config should return nil, got %v", got)
	}

	days := 5
	if got := EstimateDueDate(&models.Item{EstimatedDueDays: &days}, nil); got != nil {
		t.Fatalf("estimate without purchase history should return nil, got %v", got)
	}
}
