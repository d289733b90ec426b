package stock

import (
	"time"

	"github.com/pantrykit/pantry-backend/pkg/db/models"
)

// EstimateDueDate derives the effective due date used for expiry warnings.
// An explicit due date always wins over the estimate. The estimate is the last
// purchase plus the configured number of days as exact 24h multiples; no
// calendar or timezone rounding is applied. Items with neither setting, or
// with an estimate but no purchase history, have no expiry tracking and
// return nil.
func EstimateDueDate(item *models.Item, lastPurchase *time.Time) *time.Time {
	if item.DueDate != nil {
		due := *item.DueDate
		return &due
	}
	if item.EstimatedDueDays != nil && lastPurchase != nil {
		due := lastPurchase.Add(time.Duration(*item.EstimatedDueDays) * 24 * time.Hour)
		return &due
	}
	return nil
}
