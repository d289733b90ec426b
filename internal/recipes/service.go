// Package recipes manages reusable consumption templates. Using a recipe
// applies each of its lines as a negative quantity event through the ledger.
package recipes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pantrykit/pantry-backend/internal/ledger"
	"github.com/pantrykit/pantry-backend/pkg/db/models"
	pkgerrors "github.com/pantrykit/pantry-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type deltaApplier interface {
	ApplyDelta(ctx context.Context, input ledger.ApplyDeltaInput) (*models.Item, *models.InventoryLogEntry, error)
}

// Service exposes recipe management and application.
type Service interface {
	CreateRecipe(ctx context.Context, input CreateRecipeInput) (*RecipeDTO, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*RecipeDTO, error)
	ListRecipes(ctx context.Context) ([]RecipeDTO, error)
	UpdateRecipe(ctx context.Context, id uuid.UUID, input UpdateRecipeInput) (*RecipeDTO, error)
	DeleteRecipe(ctx context.Context, id uuid.UUID) error
	Use(ctx context.Context, id uuid.UUID) (*UseResultDTO, error)
}

// CreateRecipeInput holds the validated payload to create a recipe.
type CreateRecipeInput struct {
	Name  string
	Lines []RecipeLineInput
}

// RecipeLineInput pairs an item with the amount one use consumes.
type RecipeLineInput struct {
	ItemID uuid.UUID
	Amount decimal.Decimal
}

// UpdateRecipeInput holds optional mutation values for a recipe.
type UpdateRecipeInput struct {
	Name  *string
	Lines *[]RecipeLineInput
}

type service struct {
	tx     txRunner
	repo   Repository
	ledger deltaApplier
}

// NewService wires the recipe service with its repository and the event ledger.
func NewService(tx txRunner, repo Repository, applier deltaApplier) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("recipe repository required")
	}
	if applier == nil {
		return nil, fmt.Errorf("delta applier required")
	}
	return &service{tx: tx, repo: repo, ledger: applier}, nil
}

func (s *service) CreateRecipe(ctx context.Context, input CreateRecipeInput) (*RecipeDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	lines, err := s.buildLines(ctx, input.Lines)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{Name: name}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Create(ctx, recipe); err != nil {
			return err
		}
		return txRepo.ReplaceLines(ctx, recipe.ID, lines)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, recipe.ID)
}

func (s *service) GetRecipe(ctx context.Context, id uuid.UUID) (*RecipeDTO, error) {
	return s.reload(ctx, id)
}

func (s *service) ListRecipes(ctx context.Context) ([]RecipeDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]RecipeDTO, len(rows))
	for i := range rows {
		dtos[i] = *NewRecipeDTO(&rows[i])
	}
	return dtos, nil
}

func (s *service) UpdateRecipe(ctx context.Context, id uuid.UUID, input UpdateRecipeInput) (*RecipeDTO, error) {
	recipe, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		recipe.Name = name
	}

	var lines []models.RecipeLine
	if input.Lines != nil {
		lines, err = s.buildLines(ctx, *input.Lines)
		if err != nil {
			return nil, err
		}
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Update(ctx, recipe); err != nil {
			return err
		}
		if input.Lines != nil {
			return txRepo.ReplaceLines(ctx, recipe.ID, lines)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

func (s *service) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, id)
	})
}

// Use applies each recipe line as a negative delta, one ledger event per line
// in line order. The first failing line aborts the rest; lines already applied
// stay applied and show in the result, since every applied line is a real
// consumption that already happened.
func (s *service) Use(ctx context.Context, id uuid.UUID) (*UseResultDTO, error) {
	recipe, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(recipe.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipe has no lines")
	}

	occurredAt := time.Now().UTC()
	note := fmt.Sprintf("recipe: %s", recipe.Name)
	result := &UseResultDTO{RecipeID: recipe.ID, OccurredAt: occurredAt}

	for _, line := range recipe.Lines {
		_, entry, err := s.ledger.ApplyDelta(ctx, ledger.ApplyDeltaInput{
			ItemID:     line.ItemID,
			Delta:      line.Amount.Neg(),
			OccurredAt: occurredAt,
			Note:       &note,
		})
		if err != nil {
			return result, err
		}
		result.Applied = append(result.Applied, AppliedLineDTO{
			ItemID:   line.ItemID,
			Delta:    entry.Delta,
			Quantity: entry.Quantity,
		})
	}
	return result, nil
}

func (s *service) buildLines(ctx context.Context, inputs []RecipeLineInput) ([]models.RecipeLine, error) {
	seen := make(map[uuid.UUID]struct{}, len(inputs))
	lines := make([]models.RecipeLine, 0, len(inputs))
	for _, input := range inputs {
		if input.ItemID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item id is required")
		}
		if !input.Amount.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line amount must be positive")
		}
		if _, ok := seen[input.ItemID]; ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate item in recipe lines")
		}
		seen[input.ItemID] = struct{}{}

		exists, err := s.repo.ItemExists(ctx, input.ItemID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item not found")
		}
		lines = append(lines, models.RecipeLine{ItemID: input.ItemID, Amount: input.Amount})
	}
	return lines, nil
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (*RecipeDTO, error) {
	recipe, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewRecipeDTO(recipe), nil
}
