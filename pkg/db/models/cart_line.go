package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one item entry in a shopping cart, unique per (cart, item).
// Position preserves insertion order, which checkout drains in.
type CartLine struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CartID    uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:uq_cart_lines_cart_item"`
	ItemID    uuid.UUID       `gorm:"column:item_id;type:uuid;not null;uniqueIndex:uq_cart_lines_cart_item"`
	Quantity  decimal.Decimal `gorm:"column:quantity;type:numeric;not null"`
	Position  int             `gorm:"column:position;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
