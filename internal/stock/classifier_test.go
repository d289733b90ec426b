package stock

import (
	"testing"
	"time"

	"github.com/pantrykit/pantry-backend/pkg/db/models"
	"github.com/pantrykit/pantry-backend/pkg/enums"
)

func TestClassifyStockLevels(t *testing.T) {
	item := &models.Item{
		RefillThreshold: dec("1"),
		TargetQuantity:  dec("5"),
	}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		current string
		want    enums.StockLevel
	}{
		{"below threshold", "0", enums.StockLevelDue},
		{"at threshold", "1", enums.StockLevelDue},
		{"between threshold and target", "2", enums.StockLevelLow},
		{"just under target", "4.99", enums.StockLevelLow},
		{"at target", "5", enums.StockLevelOK},
		{"above target", "6", enums.StockLevelOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(item, dec(tc.current), nil, now); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestClassifyOverdueOutranksStock(t *testing.T) {
	item := &models.Item{
		RefillThreshold: dec("1"),
		TargetQuantity:  dec("5"),
	}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	if got := Classify(item, dec("10"), &past, now); got != enums.StockLevelOverdue {
		t.Fatalf("past due date must classify overdue regardless of stock, got %s", got)
	}

	// Equality counts as overdue.
	if got := Classify(item, dec("10"), &now, now); got != enums.StockLevelOverdue {
		t.Fatalf("due date equal to now must be overdue, got %s", got)
	}

	future := now.Add(time.Hour)
	if got := Classify(item, dec("10"), &future, now); got != enums.StockLevelOK {
		t.Fatalf("future due date should not override stock level, got %s", got)
	}
}
