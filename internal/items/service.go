// Package items manages the pantry item catalog: unit configuration,
// replenishment targets, tag and vendor attachments, and the derived
// replenishment status view.
package items

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pantrykit/pantry-backend/internal/stock"
	"github.com/pantrykit/pantry-backend/pkg/db/models"
	"github.com/pantrykit/pantry-backend/pkg/enums"
	pkgerrors "github.com/pantrykit/pantry-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type restockReader interface {
	LastRestockAt(ctx context.Context, itemID uuid.UUID) (*time.Time, error)
}

// Service exposes item catalog management and the status view.
type Service interface {
	CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error)
	GetItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	ListItems(ctx context.Context, filter ListFilter) ([]ItemDTO, error)
	UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	Status(ctx context.Context, id uuid.UUID) (*StatusDTO, error)
}

// CreateItemInput holds the validated payload to create an item.
type CreateItemInput struct {
	Name             string
	PackageUnit      *string
	MeasurementUnit  *string
	AmountPerPackage decimal.Decimal
	TargetUnit       enums.TargetUnit
	PackedQuantity   int
	UnpackedQuantity decimal.Decimal
	ConsumeAmount    *decimal.Decimal
	TargetQuantity   decimal.Decimal
	RefillThreshold  decimal.Decimal
	DueDate          *time.Time
	EstimatedDueDays *int
	TagIDs           []uuid.UUID
	VendorIDs        []uuid.UUID
}

// UpdateItemInput holds optional mutation values for an item. Counter fields
// are deliberately absent: quantities change through the event ledger only.
type UpdateItemInput struct {
	Name             *string
	PackageUnit      *string
	MeasurementUnit  *string
	AmountPerPackage *decimal.Decimal
	TargetUnit       *enums.TargetUnit
	ConsumeAmount    *decimal.Decimal
	TargetQuantity   *decimal.Decimal
	RefillThreshold  *decimal.Decimal
	DueDate          *time.Time
	EstimatedDueDays *int
	ClearDueDate     bool
	TagIDs           *[]uuid.UUID
	VendorIDs        *[]uuid.UUID
}

type service struct {
	tx       txRunner
	repo     Repository
	restocks restockReader
}

// NewService constructs the item service.
func NewService(tx txRunner, repo Repository, restocks restockReader) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if restocks == nil {
		return nil, fmt.Errorf("restock reader required")
	}
	return &service{tx: tx, repo: repo, restocks: restocks}, nil
}

func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error) {
	consume := decimal.NewFromInt(1)
	if input.ConsumeAmount != nil {
		consume = *input.ConsumeAmount
	}

	item := &models.Item{
		Name:             strings.TrimSpace(input.Name),
		PackageUnit:      normalizeUnit(input.PackageUnit),
		MeasurementUnit:  normalizeUnit(input.MeasurementUnit),
		AmountPerPackage: input.AmountPerPackage,
		TargetUnit:       input.TargetUnit,
		PackedQuantity:   input.PackedQuantity,
		UnpackedQuantity: input.UnpackedQuantity,
		ConsumeAmount:    consume,
		TargetQuantity:   input.TargetQuantity,
		RefillThreshold:  input.RefillThreshold,
		DueDate:          input.DueDate,
		EstimatedDueDays: input.EstimatedDueDays,
	}
	if item.TargetUnit == "" {
		item.TargetUnit = enums.TargetUnitPackage
	}
	if err := validateItemConfig(item); err != nil {
		return nil, err
	}

	var createdID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Create(ctx, item); err != nil {
			return wrapConflict(err, "db: insert item")
		}
		if err := txRepo.ReplaceTags(ctx, item, input.TagIDs); err != nil {
			return err
		}
		if err := txRepo.ReplaceVendors(ctx, item, input.VendorIDs); err != nil {
			return err
		}
		createdID = item.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.repo.FindByID(ctx, createdID)
	if err != nil {
		return nil, err
	}
	return NewItemDTO(created), nil
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewItemDTO(item), nil
}

func (s *service) ListItems(ctx context.Context, filter ListFilter) ([]ItemDTO, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	dtos := make([]ItemDTO, len(rows))
	for i := range rows {
		dtos[i] = *NewItemDTO(&rows[i])
	}
	return dtos, nil
}

func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyUpdateToItem(item, input)
	if err := validateItemConfig(item); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Update(ctx, item); err != nil {
			return wrapConflict(err, "db: update item")
		}
		if input.TagIDs != nil {
			if err := txRepo.ReplaceTags(ctx, item, *input.TagIDs); err != nil {
				return err
			}
		}
		if input.VendorIDs != nil {
			if err := txRepo.ReplaceVendors(ctx, item, *input.VendorIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewItemDTO(updated), nil
}

// DeleteItem removes the item and everything hanging off it: log entries, cart
// lines, recipe lines and tag/vendor attachments.
func (s *service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, id)
	})
}

// Status recomputes the derived replenishment view: resolved quantity,
// effective due date, stock level and the suggested shopping amount.
func (s *service) Status(ctx context.Context, id uuid.UUID) (*StatusDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lastRestock, err := s.restocks.LastRestockAt(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load last restock")
	}

	now := time.Now().UTC()
	current := stock.Resolve(item)
	dueDate := stock.EstimateDueDate(item, lastRestock)
	return &StatusDTO{
		ItemID:            item.ID,
		Name:              item.Name,
		Quantity:          current,
		TargetUnit:        item.TargetUnit.String(),
		StockLevel:        stock.Classify(item, current, dueDate, now).String(),
		DueDate:           dueDate,
		SuggestedQuantity: stock.SuggestedQuantity(item, current),
	}, nil
}

func applyUpdateToItem(item *models.Item, input UpdateItemInput) {
	if input.Name != nil {
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.PackageUnit != nil {
		item.PackageUnit = normalizeUnit(input.PackageUnit)
	}
	if input.MeasurementUnit != nil {
		item.MeasurementUnit = normalizeUnit(input.MeasurementUnit)
	}
	if input.AmountPerPackage != nil {
		item.AmountPerPackage = *input.AmountPerPackage
	}
	if input.TargetUnit != nil {
		item.TargetUnit = *input.TargetUnit
	}
	if input.ConsumeAmount != nil {
		item.ConsumeAmount = *input.ConsumeAmount
	}
	if input.TargetQuantity != nil {
		item.TargetQuantity = *input.TargetQuantity
	}
	if input.RefillThreshold != nil {
		item.RefillThreshold = *input.RefillThreshold
	}
	if input.ClearDueDate {
		item.DueDate = nil
		item.EstimatedDueDays = nil
	}
	if input.DueDate != nil {
		item.DueDate = input.DueDate
		item.EstimatedDueDays = nil
	}
	if input.EstimatedDueDays != nil {
		item.EstimatedDueDays = input.EstimatedDueDays
		item.DueDate = nil
	}
}

// validateItemConfig enforces the unit and replenishment invariants on the
// fully assembled item.
func validateItemConfig(item *models.Item) error {
	if item.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !item.TargetUnit.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "target_unit must be package or measurement")
	}

	if item.HasMeasurementUnit() {
		if !item.AmountPerPackage.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeInvalidUnitConfig, "amount_per_package must be positive when a measurement unit is set")
		}
	} else {
		if !item.AmountPerPackage.IsZero() {
			return pkgerrors.New(pkgerrors.CodeInvalidUnitConfig, "amount_per_package requires a measurement unit")
		}
		if item.TargetUnit == enums.TargetUnitMeasurement {
			return pkgerrors.New(pkgerrors.CodeInvalidUnitConfig, "measurement target requires a measurement unit")
		}
		if !item.UnpackedQuantity.IsZero() {
			return pkgerrors.New(pkgerrors.CodeValidation, "unpacked_quantity requires a measurement unit")
		}
	}

	if item.PackedQuantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "packed_quantity must not be negative")
	}
	if item.UnpackedQuantity.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unpacked_quantity must not be negative")
	}
	if !item.ConsumeAmount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "consume_amount must be positive")
	}
	if item.TargetQuantity.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "target_quantity must not be negative")
	}
	if item.RefillThreshold.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "refill_threshold must not be negative")
	}
	if item.RefillThreshold.GreaterThan(item.TargetQuantity) {
		return pkgerrors.New(pkgerrors.CodeValidation, "refill_threshold must not exceed target_quantity")
	}
	if item.DueDate != nil && item.EstimatedDueDays != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "due_date and estimated_due_days are mutually exclusive")
	}
	if item.EstimatedDueDays != nil && *item.EstimatedDueDays <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "estimated_due_days must be positive")
	}
	return nil
}

func normalizeUnit(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func wrapConflict(err error, msg string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
