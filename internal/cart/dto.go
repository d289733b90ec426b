package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pantrykit/pantry-backend/pkg/db/models"
)

// CartDTO represents a shopping cart with its lines in insertion order.
type CartDTO struct {
	ID          uuid.UUID     `json:"id"`
	Status      string        `json:"status"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Lines       []CartLineDTO `json:"lines"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// CartLineDTO is one item entry in a cart.
type CartLineDTO struct {
	ID       uuid.UUID       `json:"id"`
	ItemID   uuid.UUID       `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Position int             `json:"position"`
}

// CheckoutResultDTO reports what a checkout attempt drained and what is left.
type CheckoutResultDTO struct {
	Cart         *CartDTO    `json:"cart"`
	AppliedLines []uuid.UUID `json:"applied_lines"`
	FailedLines  []uuid.UUID `json:"failed_lines,omitempty"`
}

// NewCartDTO builds a DTO from the persisted cart.
func NewCartDTO(cart *models.ShoppingCart) *CartDTO {
	dto := &CartDTO{
		ID:          cart.ID,
		Status:      cart.Status.String(),
		CompletedAt: cart.CompletedAt,
		Lines:       make([]CartLineDTO, 0, len(cart.Lines)),
		CreatedAt:   cart.CreatedAt,
		UpdatedAt:   cart.UpdatedAt,
	}
	for _, line := range cart.Lines {
		dto.Lines = append(dto.Lines, CartLineDTO{
			ID:       line.ID,
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			Position: line.Position,
		})
	}
	return dto
}
