package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pantrykit/pantry-backend/pkg/enums"
)

// ShoppingCart groups the lines of one shopping trip. At most one cart is
// active at a time; completed and abandoned carts are kept as history.
type ShoppingCart struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Status      enums.CartStatus `gorm:"column:status;not null;default:'active'"`
	CompletedAt *time.Time       `gorm:"column:completed_at"`
	Lines       []CartLine       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
