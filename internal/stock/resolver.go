// Package stock holds the pure quantity rules: resolving packed/unpacked
// counters into one comparable number, deriving effective due dates, and
// classifying replenishment state. Nothing here touches the database; callers
// pass item snapshots and the results are recomputed on demand.
package stock

import (
	"github.com/shopspring/decimal"

	"github.com/pantrykit/pantry-backend/pkg/db/models"
	"github.com/pantrykit/pantry-backend/pkg/enums"
)

// Resolve converts the item's stored counters into the current quantity
// expressed in the item's target unit.
//
// In package units the opened remainder contributes fractionally, one package
// being AmountPerPackage measurement units. Without a measurement unit the
// unpacked counter carries no meaning and is ignored.
func Resolve(item *models.Item) decimal.Decimal {
	packed := decimal.NewFromInt(int64(item.PackedQuantity))

	if item.TargetUnit == enums.TargetUnitMeasurement {
		return item.UnpackedQuantity.Add(packed.Mul(item.AmountPerPackage))
	}

	if item.HasMeasurementUnit() && item.AmountPerPackage.IsPositive() {
		return packed.Add(item.UnpackedQuantity.Div(item.AmountPerPackage))
	}
	return packed
}

// SuggestedQuantity is the amount a shopping trip should restore, in the
// item's target unit. It never goes negative: overstocked items suggest zero.
func SuggestedQuantity(item *models.Item, current decimal.Decimal) decimal.Decimal {
	suggested := item.TargetQuantity.Sub(current)
	if suggested.IsNegative() {
		return decimal.Zero
	}
	return suggested
}
