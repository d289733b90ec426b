package models

import (
	"time"

	"github.com/google/uuid"
)

// Recipe is a reusable consumption template: using it applies each line as a
// negative delta against the referenced item.
type Recipe struct {
	ID        uuid.UUID    `gorm:"column:id;type:uuid;primaryKey"`
	Name      string       `gorm:"column:name;not null;uniqueIndex"`
	Lines     []RecipeLine `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}
