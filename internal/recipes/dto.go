package recipes

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pantrykit/pantry-backend/pkg/db/models"
)

// RecipeDTO represents a recipe with its consumption lines.
type RecipeDTO struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Lines     []RecipeLineDTO `json:"lines"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RecipeLineDTO is one item/amount pair of a recipe.
type RecipeLineDTO struct {
	ID     uuid.UUID       `json:"id"`
	ItemID uuid.UUID       `json:"item_id"`
	Amount decimal.Decimal `json:"amount"`
}

// UseResultDTO reports the consumption events one recipe use produced.
type UseResultDTO struct {
	RecipeID   uuid.UUID        `json:"recipe_id"`
	OccurredAt time.Time        `json:"occurred_at"`
	Applied    []AppliedLineDTO `json:"applied"`
}

// AppliedLineDTO is one ledger event produced by a recipe use.
type AppliedLineDTO struct {
	ItemID   uuid.UUID       `json:"item_id"`
	Delta    decimal.Decimal `json:"delta"`
	Quantity decimal.Decimal `json:"quantity"`
}

// NewRecipeDTO builds a DTO from the persisted model.
func NewRecipeDTO(recipe *models.Recipe) *RecipeDTO {
	dto := &RecipeDTO{
		ID:        recipe.ID,
		Name:      recipe.Name,
		Lines:     make([]RecipeLineDTO, 0, len(recipe.Lines)),
		CreatedAt: recipe.CreatedAt,
		UpdatedAt: recipe.UpdatedAt,
	}
	for _, line := range recipe.Lines {
		dto.Lines = append(dto.Lines, RecipeLineDTO{
			ID:     line.ID,
			ItemID: line.ItemID,
			Amount: line.Amount,
		})
	}
	return dto
}
