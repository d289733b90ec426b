package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pantrykit/pantry-backend/pkg/enums"
)

// Item is a trackable pantry good. Stock is held as whole sealed packages plus
// the opened remainder in measurement units; the target unit decides which of
// the two views targets, thresholds and display quantities use.
type Item struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name string    `gorm:"column:name;not null"`

	PackageUnit      *string          `gorm:"column:package_unit"`
	MeasurementUnit  *string          `gorm:"column:measurement_unit"`
	AmountPerPackage decimal.Decimal  `gorm:"column:amount_per_package;type:numeric;not null;default:0"`
	TargetUnit       enums.TargetUnit `gorm:"column:target_unit;not null;default:'package'"`

	PackedQuantity   int             `gorm:"column:packed_quantity;not null;default:0"`
	UnpackedQuantity decimal.Decimal `gorm:"column:unpacked_quantity;type:numeric;not null;default:0"`

	ConsumeAmount   decimal.Decimal `gorm:"column:consume_amount;type:numeric;not null;default:1"`
	TargetQuantity  decimal.Decimal `gorm:"column:target_quantity;type:numeric;not null;default:0"`
	RefillThreshold decimal.Decimal `gorm:"column:refill_threshold;type:numeric;not null;default:0"`

	// At most one of DueDate and EstimatedDueDays is set.
	DueDate          *time.Time `gorm:"column:due_date"`
	EstimatedDueDays *int       `gorm:"column:estimated_due_days"`

	Tags    []Tag    `gorm:"many2many:item_tags;constraint:OnDelete:CASCADE"`
	Vendors []Vendor `gorm:"many2many:item_vendors;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// HasMeasurementUnit reports whether the item tracks a sub-package unit.
func (i *Item) HasMeasurementUnit() bool {
	return i.MeasurementUnit != nil && *i.MeasurementUnit != ""
}
