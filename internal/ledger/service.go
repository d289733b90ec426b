// Package ledger applies quantity-changing events to items and keeps the
// append-only inventory log consistent with the stored counters.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pantrykit/pantry-backend/internal/stock"
	"github.com/pantrykit/pantry-backend/pkg/db/models"
	"github.com/pantrykit/pantry-backend/pkg/enums"
	pkgerrors "github.com/pantrykit/pantry-backend/pkg/errors"
	"github.com/pantrykit/pantry-backend/pkg/metrics"
	"github.com/pantrykit/pantry-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service applies inventory events. Mutations are serialized per item and run
// inside a transaction so the counter update and the log append land together.
type Service interface {
	ApplyDelta(ctx context.Context, input ApplyDeltaInput) (*models.Item, *models.InventoryLogEntry, error)
	SetQuantity(ctx context.Context, input SetQuantityInput) (*models.Item, *models.InventoryLogEntry, error)
	History(ctx context.Context, itemID uuid.UUID, params pagination.Params) ([]models.InventoryLogEntry, string, error)
	LastRestockAt(ctx context.Context, itemID uuid.UUID) (*time.Time, error)
}

// ApplyDeltaInput describes one signed quantity change in the item's target unit.
type ApplyDeltaInput struct {
	ItemID     uuid.UUID
	Delta      decimal.Decimal
	OccurredAt time.Time
	Note       *string
}

// SetQuantityInput describes an absolute correction of the resolved quantity.
type SetQuantityInput struct {
	ItemID     uuid.UUID
	Quantity   decimal.Decimal
	OccurredAt time.Time
	Note       *string
}

type service struct {
	tx      txRunner
	repo    Repository
	metrics *metrics.InventoryMetrics
	locks   *keyedMutex
}

// NewService wires the ledger service with its transaction runner and repository.
func NewService(tx txRunner, repo Repository, m *metrics.InventoryMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{
		tx:      tx,
		repo:    repo,
		metrics: m,
		locks:   newKeyedMutex(),
	}, nil
}

func (s *service) ApplyDelta(ctx context.Context, input ApplyDeltaInput) (*models.Item, *models.InventoryLogEntry, error) {
	if input.ItemID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if input.Delta.IsZero() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeInvalidDelta, "delta must be non-zero")
	}
	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	unlock := s.locks.Lock(input.ItemID)
	defer unlock()

	var (
		item    *models.Item
		entry   *models.InventoryLogEntry
		clamped bool
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loaded, err := repo.FindItem(ctx, input.ItemID)
		if err != nil {
			return err
		}

		kind := enums.LogEntryKindRestock
		if input.Delta.IsNegative() {
			kind = enums.LogEntryKindConsume
			clamped, err = applyConsumption(loaded, input.Delta.Neg())
		} else {
			err = applyRestock(loaded, input.Delta)
		}
		if err != nil {
			return err
		}

		if err := repo.SaveItemCounters(ctx, loaded); err != nil {
			return err
		}

		created := &models.InventoryLogEntry{
			ItemID:     loaded.ID,
			Kind:       kind,
			Delta:      input.Delta,
			Quantity:   stock.Resolve(loaded),
			Note:       input.Note,
			OccurredAt: occurredAt,
		}
		if err := repo.Create(ctx, created); err != nil {
			return err
		}

		item = loaded
		entry = created
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.metrics.IncEventApplied(entry.Kind.String())
	if clamped {
		s.metrics.IncClamped()
	}
	return item, entry, nil
}

func (s *service) SetQuantity(ctx context.Context, input SetQuantityInput) (*models.Item, *models.InventoryLogEntry, error) {
	if input.ItemID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if input.Quantity.IsNegative() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	unlock := s.locks.Lock(input.ItemID)
	defer unlock()

	var (
		item  *models.Item
		entry *models.InventoryLogEntry
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loaded, err := repo.FindItem(ctx, input.ItemID)
		if err != nil {
			return err
		}

		previous := stock.Resolve(loaded)
		if err := applyCorrection(loaded, input.Quantity); err != nil {
			return err
		}

		if err := repo.SaveItemCounters(ctx, loaded); err != nil {
			return err
		}

		// Delta is recorded purely for audit; corrections bypass delta math
		// and never break open packages.
		created := &models.InventoryLogEntry{
			ItemID:     loaded.ID,
			Kind:       enums.LogEntryKindCorrection,
			Delta:      input.Quantity.Sub(previous),
			Quantity:   stock.Resolve(loaded),
			Note:       input.Note,
			OccurredAt: occurredAt,
		}
		if err := repo.Create(ctx, created); err != nil {
			return err
		}

		item = loaded
		entry = created
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.metrics.IncEventApplied(entry.Kind.String())
	return item, entry, nil
}

func (s *service) History(ctx context.Context, itemID uuid.UUID, params pagination.Params) ([]models.InventoryLogEntry, string, error) {
	if itemID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	return s.repo.ListByItemID(ctx, itemID, params)
}

func (s *service) LastRestockAt(ctx context.Context, itemID uuid.UUID) (*time.Time, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	return s.repo.LastRestockAt(ctx, itemID)
}

// applyRestock adds stock in the item's target unit. Package restocks go to
// the sealed counter; the ledger never infers package boundaries on restock,
// so measurement restocks only top up the open container.
func applyRestock(item *models.Item, amount decimal.Decimal) error {
	if item.TargetUnit == enums.TargetUnitMeasurement {
		if !item.HasMeasurementUnit() {
			return pkgerrors.New(pkgerrors.CodeInvalidUnitConfig, "item declares no measurement unit")
		}
		item.UnpackedQuantity = item.UnpackedQuantity.Add(amount)
		return nil
	}

	whole := amount.Truncate(0)
	frac := amount.Sub(whole)
	item.PackedQuantity += int(whole.IntPart())
	if frac.IsZero() {
		return nil
	}
	if !item.HasMeasurementUnit() {
		return pkgerrors.New(pkgerrors.CodeInvalidDelta, "package restock must be a whole number of packages")
	}
	item.UnpackedQuantity = item.UnpackedQuantity.Add(frac.Mul(item.AmountPerPackage))
	return nil
}

// applyConsumption subtracts stock, breaking open sealed packages one at a
// time when the open container runs dry. When nothing is left to break open
// the state clamps to zero; that is a recoverable condition, not a failure.
func applyConsumption(item *models.Item, need decimal.Decimal) (clamped bool, err error) {
	if item.TargetUnit == enums.TargetUnitPackage && !item.HasMeasurementUnit() {
		if !need.Equal(need.Truncate(0)) {
			return false, pkgerrors.New(pkgerrors.CodeInvalidDelta, "item has no finer unit to consume fractions of a package")
		}
		packed := int64(item.PackedQuantity) - need.IntPart()
		if packed < 0 {
			packed = 0
			clamped = true
		}
		item.PackedQuantity = int(packed)
		return clamped, nil
	}

	if !item.HasMeasurementUnit() {
		return false, pkgerrors.New(pkgerrors.CodeInvalidUnitConfig, "item declares no measurement unit")
	}

	remaining := need
	if item.TargetUnit == enums.TargetUnitPackage {
		remaining = need.Mul(item.AmountPerPackage)
	}

	for remaining.IsPositive() {
		if item.UnpackedQuantity.GreaterThanOrEqual(remaining) {
			item.UnpackedQuantity = item.UnpackedQuantity.Sub(remaining)
			break
		}
		if item.PackedQuantity > 0 {
			item.PackedQuantity--
			item.UnpackedQuantity = item.UnpackedQuantity.Add(item.AmountPerPackage)
			continue
		}
		item.UnpackedQuantity = decimal.Zero
		clamped = true
		break
	}
	return clamped, nil
}

// applyCorrection writes the absolute resolved quantity back into the
// counters without delta math.
func applyCorrection(item *models.Item, quantity decimal.Decimal) error {
	if item.TargetUnit == enums.TargetUnitMeasurement {
		if !item.HasMeasurementUnit() {
			return pkgerrors.New(pkgerrors.CodeInvalidUnitConfig, "item declares no measurement unit")
		}
		item.PackedQuantity = 0
		item.UnpackedQuantity = quantity
		return nil
	}

	if item.HasMeasurementUnit() && item.AmountPerPackage.IsPositive() {
		whole := quantity.Truncate(0)
		item.PackedQuantity = int(whole.IntPart())
		item.UnpackedQuantity = quantity.Sub(whole).Mul(item.AmountPerPackage)
		return nil
	}

	if !quantity.Equal(quantity.Truncate(0)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "item is tracked in whole packages")
	}
	item.PackedQuantity = int(quantity.IntPart())
	item.UnpackedQuantity = decimal.Zero
	return nil
}
