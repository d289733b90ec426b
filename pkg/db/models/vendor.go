package models

import (
	"time"

	"github.com/google/uuid"
)

// Vendor is a place an item can be bought from.
type Vendor struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	Notes     *string   `gorm:"column:notes"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
