package vendors

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pantrykit/pantry-backend/pkg/db"
	"github.com/pantrykit/pantry-backend/pkg/db/models"
	pkgerrors "github.com/pantrykit/pantry-backend/pkg/errors"
)

// Repository manages persistence for vendors.
type Repository interface {
	Create(ctx context.Context, vendor *models.Vendor) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	List(ctx context.Context) ([]models.Vendor, error)
	Update(ctx context.Context, vendor *models.Vendor) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a vendor repository bound to the provided database.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) Create(ctx context.Context, vendor *models.Vendor) error {
	if vendor.ID == uuid.Nil {
		vendor.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(vendor).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "vendor name already exists")
		}
		return err
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "vendor not found")
		}
		return nil, err
	}
	return &vendor, nil
}

func (r *repository) List(ctx context.Context) ([]models.Vendor, error) {
	var vendors []models.Vendor
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&vendors).Error; err != nil {
		return nil, err
	}
	return vendors, nil
}

func (r *repository) Update(ctx context.Context, vendor *models.Vendor) error {
	if err := r.db.WithContext(ctx).Save(vendor).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "vendor name already exists")
		}
		return err
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Exec("DELETE FROM item_vendors WHERE vendor_id = ?", id).Error; err != nil {
		return err
	}
	return db.Delete(&models.Vendor{}, "id = ?", id).Error
}
