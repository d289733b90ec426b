package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pantrykit/pantry-backend/pkg/db/models"
	"github.com/pantrykit/pantry-backend/pkg/enums"
	pkgerrors "github.com/pantrykit/pantry-backend/pkg/errors"
	"github.com/pantrykit/pantry-backend/pkg/pagination"
)

// Repository manages persistence for inventory log entries plus the item
// counters the ledger mutates alongside them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	SaveItemCounters(ctx context.Context, item *models.Item) error
	Create(ctx context.Context, entry *models.InventoryLogEntry) error
	ListByItemID(ctx context.Context, itemID uuid.UUID, params pagination.Params) ([]models.InventoryLogEntry, string, error)
	LastRestockAt(ctx context.Context, itemID uuid.UUID) (*time.Time, error)
	DeleteByItemID(ctx context.Context, itemID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "item not found")
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) SaveItemCounters(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"packed_quantity":   item.PackedQuantity,
			"unpacked_quantity": item.UnpackedQuantity,
		}).Error
}

func (r *repository) Create(ctx context.Context, entry *models.InventoryLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByItemID returns entries newest first, ordered by occurred_at with
// created_at breaking ties between back-dated events, plus a cursor for the
// next page.
func (r *repository) ListByItemID(ctx context.Context, itemID uuid.UUID, params pagination.Params) ([]models.InventoryLogEntry, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	query := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("occurred_at DESC").
		Order("created_at DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	if cursor != nil {
		query = query.Where(
			"(occurred_at < ?) OR (occurred_at = ? AND created_at < ?)",
			cursor.OccurredAt, cursor.OccurredAt, cursor.CreatedAt,
		)
	}

	var entries []models.InventoryLogEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			OccurredAt: last.OccurredAt,
			CreatedAt:  last.CreatedAt,
		})
	}
	return entries, nextCursor, nil
}

// LastRestockAt returns the occurred_at of the most recent restock entry, or
// nil when the item was never restocked. Corrections with a positive audit
// delta do not count as purchases.
func (r *repository) LastRestockAt(ctx context.Context, itemID uuid.UUID) (*time.Time, error) {
	var entry models.InventoryLogEntry
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND kind = ? AND delta > 0", itemID, enums.LogEntryKindRestock).
		Order("occurred_at DESC").
		Order("created_at DESC").
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	at := entry.OccurredAt
	return &at, nil
}

func (r *repository) DeleteByItemID(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Delete(&models.InventoryLogEntry{}).
		Error
}
