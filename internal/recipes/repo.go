package recipes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pantrykit/pantry-backend/pkg/db/models"
	pkgerrors "github.com/pantrykit/pantry-backend/pkg/errors"
)

// Repository manages persistence for recipes and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, recipe *models.Recipe) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	List(ctx context.Context) ([]models.Recipe, error)
	Update(ctx context.Context, recipe *models.Recipe) error
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceLines(ctx context.Context, recipeID uuid.UUID, lines []models.RecipeLine) error
	ItemExists(ctx context.Context, itemID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a recipe repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, recipe *models.Recipe) error {
	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Omit("Lines").Create(recipe).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "recipe not found")
		}
		return nil, err
	}
	return &recipe, nil
}

func (r *repository) List(ctx context.Context) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Order("name ASC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *repository) Update(ctx context.Context, recipe *models.Recipe) error {
	return r.db.WithContext(ctx).Omit("Lines").Save(recipe).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("recipe_id = ?", id).Delete(&models.RecipeLine{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Recipe{}, "id = ?", id).Error
}

func (r *repository) ReplaceLines(ctx context.Context, recipeID uuid.UUID, lines []models.RecipeLine) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("recipe_id = ?", recipeID).Delete(&models.RecipeLine{}).Error; err != nil {
		return err
	}
	for i := range lines {
		lines[i].RecipeID = recipeID
		if lines[i].ID == uuid.Nil {
			lines[i].ID = uuid.New()
		}
		if err := db.Create(&lines[i]).Error; err != nil {
			return err
		}
	}
	return nil
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
