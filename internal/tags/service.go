// Package tags manages the tag and tag-type reference data items are
// labelled with.
package tags

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pantrykit/pantry-backend/pkg/db/models"
	pkgerrors "github.com/pantrykit/pantry-backend/pkg/errors"
)

// Service exposes tag and tag-type management.
type Service interface {
	CreateTag(ctx context.Context, name string, tagTypeID *uuid.UUID) (*models.Tag, error)
	GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	ListTags(ctx context.Context, tagTypeID *uuid.UUID) ([]models.Tag, error)
	UpdateTag(ctx context.Context, id uuid.UUID, name *string, tagTypeID *uuid.UUID, clearType bool) (*models.Tag, error)
	DeleteTag(ctx context.Context, id uuid.UUID) error
	CreateTagType(ctx context.Context, name string) (*models.TagType, error)
	GetTagType(ctx context.Context, id uuid.UUID) (*models.TagType, error)
	ListTagTypes(ctx context.Context) ([]models.TagType, error)
	UpdateTagType(ctx context.Context, id uuid.UUID, name string) (*models.TagType, error)
	DeleteTagType(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService constructs the tag service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tag repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateTag(ctx context.Context, name string, tagTypeID *uuid.UUID) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if tagTypeID != nil {
		if _, err := s.repo.FindTagType(ctx, *tagTypeID); err != nil {
			return nil, err
		}
	}
	tag := &models.Tag{Name: name, TagTypeID: tagTypeID}
	if err := s.repo.CreateTag(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *service) GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	return s.repo.FindTag(ctx, id)
}

func (s *service) ListTags(ctx context.Context, tagTypeID *uuid.UUID) ([]models.Tag, error) {
	return s.repo.ListTags(ctx, tagTypeID)
}

func (s *service) UpdateTag(ctx context.Context, id uuid.UUID, name *string, tagTypeID *uuid.UUID, clearType bool) (*models.Tag, error) {
	tag, err := s.repo.FindTag(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		tag.Name = trimmed
	}
	if clearType {
		tag.TagTypeID = nil
	}
	if tagTypeID != nil {
		if _, err := s.repo.FindTagType(ctx, *tagTypeID); err != nil {
			return nil, err
		}
		tag.TagTypeID = tagTypeID
	}
	if err := s.repo.UpdateTag(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *service) DeleteTag(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindTag(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteTag(ctx, id)
}

func (s *service) CreateTagType(ctx context.Context, name string) (*models.TagType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	tagType := &models.TagType{Name: name}
	if err := s.repo.CreateTagType(ctx, tagType); err != nil {
		return nil, err
	}
	return tagType, nil
}

func (s *service) GetTagType(ctx context.Context, id uuid.UUID) (*models.TagType, error) {
	return s.repo.FindTagType(ctx, id)
}

func (s *service) ListTagTypes(ctx context.Context) ([]models.TagType, error) {
	return s.repo.ListTagTypes(ctx)
}

func (s *service) UpdateTagType(ctx context.Context, id uuid.UUID, name string) (*models.TagType, error) {
	tagType, err := s.repo.FindTagType(ctx, id)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	tagType.Name = name
	if err := s.repo.UpdateTagType(ctx, tagType); err != nil {
		return nil, err
	}
	return tagType, nil
}

func (s *service) DeleteTagType(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindTagType(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteTagType(ctx, id)
}
