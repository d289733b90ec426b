package tags

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pantrykit/pantry-backend/pkg/db"
	"github.com/pantrykit/pantry-backend/pkg/db/models"
	pkgerrors "github.com/pantrykit/pantry-backend/pkg/errors"
)

// Repository manages persistence for tags and tag types.
type Repository interface {
	CreateTag(ctx context.Context, tag *models.Tag) error
	FindTag(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	ListTags(ctx context.Context, tagTypeID *uuid.UUID) ([]models.Tag, error)
	UpdateTag(ctx context.Context, tag *models.Tag) error
	DeleteTag(ctx context.Context, id uuid.UUID) error
	CreateTagType(ctx context.Context, tagType *models.TagType) error
	FindTagType(ctx context.Context, id uuid.UUID) (*models.TagType, error)
	ListTagTypes(ctx context.Context) ([]models.TagType, error)
	UpdateTagType(ctx context.Context, tagType *models.TagType) error
	DeleteTagType(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a tag repository bound to the provided database.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) CreateTag(ctx context.Context, tag *models.Tag) error {
	if tag.ID == uuid.Nil {
		tag.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "tag name already exists")
		}
		return err
	}
	return nil
}

func (r *repository) FindTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "tag not found")
		}
		return nil, err
	}
	return &tag, nil
}

func (r *repository) ListTags(ctx context.Context, tagTypeID *uuid.UUID) ([]models.Tag, error) {
	query := r.db.WithContext(ctx).Model(&models.Tag{}).Order("name ASC")
	if tagTypeID != nil {
		query = query.Where("tag_type_id = ?", *tagTypeID)
	}
	var tags []models.Tag
	if err := query.Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *repository) UpdateTag(ctx context.Context, tag *models.Tag) error {
	if err := r.db.WithContext(ctx).Save(tag).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "tag name already exists")
		}
		return err
	}
	return nil
}

func (r *repository) DeleteTag(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Exec("DELETE FROM item_tags WHERE tag_id = ?", id).Error; err != nil {
		return err
	}
	return db.Delete(&models.Tag{}, "id = ?", id).Error
}

func (r *repository) CreateTagType(ctx context.Context, tagType *models.TagType) error {
	if tagType.ID == uuid.Nil {
		tagType.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(tagType).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "tag type name already exists")
		}
		return err
	}
	return nil
}

func (r *repository) FindTagType(ctx context.Context, id uuid.UUID) (*models.TagType, error) {
	var tagType models.TagType
	if err := r.db.WithContext(ctx).First(&tagType, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "tag type not found")
		}
		return nil, err
	}
	return &tagType, nil
}

func (r *repository) ListTagTypes(ctx context.Context) ([]models.TagType, error) {
	var tagTypes []models.TagType
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&tagTypes).Error; err != nil {
		return nil, err
	}
	return tagTypes, nil
}

func (r *repository) UpdateTagType(ctx context.Context, tagType *models.TagType) error {
	if err := r.db.WithContext(ctx).Save(tagType).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "tag type name already exists")
		}
		return err
	}
	return nil
}

// DeleteTagType detaches its tags rather than deleting them.
func (r *repository) DeleteTagType(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	err := db.Model(&models.Tag{}).
		Where("tag_type_id = ?", id).
		Update("tag_type_id", nil).Error
	if err != nil {
		return err
	}
	return db.Delete(&models.TagType{}, "id = ?", id).Error
}
