// Package vendors manages the places items can be bought from.
package vendors

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pantrykit/pantry-backend/pkg/db/models"
	pkgerrors "github.com/pantrykit/pantry-backend/pkg/errors"
)

// Service exposes vendor management.
type Service interface {
	CreateVendor(ctx context.Context, name string, notes *string) (*models.Vendor, error)
	GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	ListVendors(ctx context.Context) ([]models.Vendor, error)
	UpdateVendor(ctx context.Context, id uuid.UUID, name *string, notes *string) (*models.Vendor, error)
	DeleteVendor(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService constructs the vendor service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vendor repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateVendor(ctx context.Context, name string, notes *string) (*models.Vendor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	vendor := &models.Vendor{Name: name, Notes: notes}
	if err := s.repo.Create(ctx, vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

func (s *service) GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	return s.repo.List(ctx)
}

func (s *service) UpdateVendor(ctx context.Context, id uuid.UUID, name *string, notes *string) (*models.Vendor, error) {
	vendor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		vendor.Name = trimmed
	}
	if notes != nil {
		vendor.Notes = notes
	}
	if err := s.repo.Update(ctx, vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

func (s *service) DeleteVendor(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
