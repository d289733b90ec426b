package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pantrykit/pantry-backend/pkg/enums"
)

// InventoryLogEntry records one immutable quantity-changing event. Quantity is
// the running total in the item's target unit at the time of the event and is
// never recomputed. History ordering is occurred_at, ties broken by created_at.
type InventoryLogEntry struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	ItemID     uuid.UUID          `gorm:"column:item_id;type:uuid;not null;index"`
	Kind       enums.LogEntryKind `gorm:"column:kind;not null"`
	Delta      decimal.Decimal    `gorm:"column:delta;type:numeric;not null"`
	Quantity   decimal.Decimal    `gorm:"column:quantity;type:numeric;not null"`
	Note       *string            `gorm:"column:note"`
	OccurredAt time.Time          `gorm:"column:occurred_at;not null"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
}
