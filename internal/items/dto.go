package items

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pantrykit/pantry-backend/internal/stock"
	"github.com/pantrykit/pantry-backend/pkg/db/models"
)

// ItemDTO represents the item payload returned to clients.
type ItemDTO struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	PackageUnit      *string         `json:"package_unit,omitempty"`
	MeasurementUnit  *string         `json:"measurement_unit,omitempty"`
	AmountPerPackage decimal.Decimal `json:"amount_per_package"`
	TargetUnit       string          `json:"target_unit"`
	PackedQuantity   int             `json:"packed_quantity"`
	UnpackedQuantity decimal.Decimal `json:"unpacked_quantity"`
	Quantity         decimal.Decimal `json:"quantity"`
	ConsumeAmount    decimal.Decimal `json:"consume_amount"`
	TargetQuantity   decimal.Decimal `json:"target_quantity"`
	RefillThreshold  decimal.Decimal `json:"refill_threshold"`
	DueDate          *time.Time      `json:"due_date,omitempty"`
	EstimatedDueDays *int            `json:"estimated_due_days,omitempty"`
	Tags             []TagDTO        `json:"tags"`
	Vendors          []VendorDTO     `json:"vendors"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// TagDTO surfaces a tag attached to an item.
type TagDTO struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	TagTypeID *uuid.UUID `json:"tag_type_id,omitempty"`
}

// VendorDTO surfaces a vendor attached to an item.
type VendorDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// StatusDTO is the derived replenishment view of one item. Everything in it is
// recomputed from the stored counters on each request.
type StatusDTO struct {
	ItemID            uuid.UUID       `json:"item_id"`
	Name              string          `json:"name"`
	Quantity          decimal.Decimal `json:"quantity"`
	TargetUnit        string          `json:"target_unit"`
	StockLevel        string          `json:"stock_level"`
	DueDate           *time.Time      `json:"due_date,omitempty"`
	SuggestedQuantity decimal.Decimal `json:"suggested_quantity"`
}

// NewItemDTO builds a DTO from the persisted model.
func NewItemDTO(item *models.Item) *ItemDTO {
	dto := &ItemDTO{
		ID:               item.ID,
		Name:             item.Name,
		PackageUnit:      item.PackageUnit,
		MeasurementUnit:  item.MeasurementUnit,
		AmountPerPackage: item.AmountPerPackage,
		TargetUnit:       item.TargetUnit.String(),
		PackedQuantity:   item.PackedQuantity,
		UnpackedQuantity: item.UnpackedQuantity,
		Quantity:         stock.Resolve(item),
		ConsumeAmount:    item.ConsumeAmount,
		TargetQuantity:   item.TargetQuantity,
		RefillThreshold:  item.RefillThreshold,
		DueDate:          item.DueDate,
		EstimatedDueDays: item.EstimatedDueDays,
		Tags:             make([]TagDTO, 0, len(item.Tags)),
		Vendors:          make([]VendorDTO, 0, len(item.Vendors)),
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
	for _, tag := range item.Tags {
		dto.Tags = append(dto.Tags, TagDTO{ID: tag.ID, Name: tag.Name, TagTypeID: tag.TagTypeID})
	}
	for _, vendor := range item.Vendors {
		dto.Vendors = append(dto.Vendors, VendorDTO{ID: vendor.ID, Name: vendor.Name})
	}
	return dto
}
