package stock

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pantrykit/pantry-backend/pkg/db/models"
	"github.com/pantrykit/pantry-backend/pkg/enums"
)

// Classify combines the resolved quantity with the item's threshold, target
// and effective due date to produce the replenishment state.
//
// A passed due date outranks stock level. Below that, equality at the
// threshold counts as due and equality at the target counts as ok.
func Classify(item *models.Item, current decimal.Decimal, dueDate *time.Time, now time.Time) enums.StockLevel {
	if dueDate != nil && !dueDate.After(now) {
		return enums.StockLevelOverdue
	}
	if current.LessThanOrEqual(item.RefillThreshold) {
		return enums.StockLevelDue
	}
	if current.LessThan(item.TargetQuantity) {
		return enums.StockLevelLow
	}
	return enums.StockLevelOK
}
