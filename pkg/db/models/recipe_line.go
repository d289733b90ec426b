package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecipeLine pairs an item with the amount one use of the recipe consumes, in
// the item's target unit.
type RecipeLine struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	RecipeID  uuid.UUID       `gorm:"column:recipe_id;type:uuid;not null;uniqueIndex:uq_recipe_lines_recipe_item"`
	ItemID    uuid.UUID       `gorm:"column:item_id;type:uuid;not null;uniqueIndex:uq_recipe_lines_recipe_item"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
