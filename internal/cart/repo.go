package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pantrykit/pantry-backend/pkg/db/models"
	"github.com/pantrykit/pantry-backend/pkg/enums"
	pkgerrors "github.com/pantrykit/pantry-backend/pkg/errors"
)

// Repository manages persistence for shopping carts and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindActive(ctx context.Context) (*models.ShoppingCart, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.ShoppingCart, error)
	Create(ctx context.Context, cart *models.ShoppingCart) error
	Save(ctx context.Context, cart *models.ShoppingCart) error
	FindLine(ctx context.Context, id uuid.UUID) (*models.CartLine, error)
	FindLineByItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartLine, error)
	CreateLine(ctx context.Context, line *models.CartLine) error
	SaveLine(ctx context.Context, line *models.CartLine) error
	DeleteLine(ctx context.Context, id uuid.UUID) error
	NextPosition(ctx context.Context, cartID uuid.UUID) (int, error)
	ItemExists(ctx context.Context, itemID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a cart repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindActive(ctx context.Context) (*models.ShoppingCart, error) {
	var cart models.ShoppingCart
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("status = ?", enums.CartStatusActive).
		Order("created_at ASC").
		First(&cart).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "no active cart")
		}
		return nil, err
	}
	return &cart, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ShoppingCart, error) {
	var cart models.ShoppingCart
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&cart, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "cart not found")
		}
		return nil, err
	}
	return &cart, nil
}

func (r *repository) Create(ctx context.Context, cart *models.ShoppingCart) error {
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit("Lines").Create(cart).Error
}

func (r *repository) Save(ctx context.Context, cart *models.ShoppingCart) error {
	return r.db.WithContext(ctx).Omit("Lines").Save(cart).Error
}

func (r *repository) FindLine(ctx context.Context, id uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	if err := r.db.WithContext(ctx).First(&line, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "cart line not found")
		}
		return nil, err
	}
	return &line, nil
}

func (r *repository) FindLineByItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND item_id = ?", cartID, itemID).
		First(&line).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &line, nil
}

func (r *repository) CreateLine(ctx context.Context, line *models.CartLine) error {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *repository) SaveLine(ctx context.Context, line *models.CartLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

func (r *repository) DeleteLine(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartLine{}, "id = ?", id).Error
}

func (r *repository) NextPosition(ctx context.Context, cartID uuid.UUID) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("cart_id = ?", cartID).
		Select("MAX(position)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}

func (r *repository) ItemExists(ctx context.Context, itemID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", itemID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
