package items

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pantrykit/pantry-backend/pkg/db/models"
	pkgerrors "github.com/pantrykit/pantry-backend/pkg/errors"
)

// Repository manages persistence for pantry items and their tag and vendor
// attachments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	List(ctx context.Context, filter ListFilter) ([]models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceTags(ctx context.Context, item *models.Item, tagIDs []uuid.UUID) error
	ReplaceVendors(ctx context.Context, item *models.Item, vendorIDs []uuid.UUID) error
}

// ListFilter narrows item listings. Zero value lists everything.
type ListFilter struct {
	Name     string
	TagID    *uuid.UUID
	VendorID *uuid.UUID
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an item repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.Item) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit("Tags", "Vendors").Create(item).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Preload("Vendors").
		First(&item, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "item not found")
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Item, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Preload("Tags").
		Preload("Vendors").
		Order("name ASC")

	if filter.Name != "" {
		query = query.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.TagID != nil {
		query = query.
			Joins("JOIN item_tags ON item_tags.item_id = items.id").
			Where("item_tags.tag_id = ?", *filter.TagID)
	}
	if filter.VendorID != nil {
		query = query.
			Joins("JOIN item_vendors ON item_vendors.item_id = items.id").
			Where("item_vendors.vendor_id = ?", *filter.VendorID)
	}

	var items []models.Item
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Omit("Tags", "Vendors").Save(item).Error
}

// Delete removes the item together with its log entries, cart lines, recipe
// lines and join rows. Callers run this inside a transaction.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)

	if err := db.Where("item_id = ?", id).Delete(&models.InventoryLogEntry{}).Error; err != nil {
		return err
	}
	if err := db.Where("item_id = ?", id).Delete(&models.CartLine{}).Error; err != nil {
		return err
	}
	if err := db.Where("item_id = ?", id).Delete(&models.RecipeLine{}).Error; err != nil {
		return err
	}

	item := models.Item{ID: id}
	if err := db.Model(&item).Association("Tags").Clear(); err != nil {
		return err
	}
	if err := db.Model(&item).Association("Vendors").Clear(); err != nil {
		return err
	}
	return db.Delete(&models.Item{}, "id = ?", id).Error
}

func (r *repository) ReplaceTags(ctx context.Context, item *models.Item, tagIDs []uuid.UUID) error {
	tags, err := r.loadTags(ctx, tagIDs)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(item).Association("Tags").Replace(tags)
}

func (r *repository) ReplaceVendors(ctx context.Context, item *models.Item, vendorIDs []uuid.UUID) error {
	vendors, err := r.loadVendors(ctx, vendorIDs)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(item).Association("Vendors").Replace(vendors)
}

func (r *repository) loadTags(ctx context.Context, ids []uuid.UUID) ([]models.Tag, error) {
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(dedupe(ids)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "one or more tags not found")
	}
	return tags, nil
}

func (r *repository) loadVendors(ctx context.Context, ids []uuid.UUID) ([]models.Vendor, error) {
	if len(ids) == 0 {
		return []models.Vendor{}, nil
	}
	var vendors []models.Vendor
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&vendors).Error; err != nil {
		return nil, err
	}
	if len(vendors) != len(dedupe(ids)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "one or more vendors not found")
	}
	return vendors, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
