package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pantrykit/pantry-backend/api/responses"
	"github.com/pantrykit/pantry-backend/api/validators"
	recipesvc "github.com/pantrykit/pantry-backend/internal/recipes"
	"github.com/pantrykit/pantry-backend/pkg/logger"
)

type recipeLineRequest struct {
	ItemID uuid.UUID       `json:"item_id" validate:"required"`
	Amount decimal.Decimal `json:"amount"`
}

type createRecipeRequest struct {
	Name  string              `json:"name" validate:"required,max=200"`
	Lines []recipeLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (req createRecipeRequest) toInput() recipesvc.CreateRecipeInput {
	input := recipesvc.CreateRecipeInput{Name: req.Name}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, recipesvc.RecipeLineInput{ItemID: line.ItemID, Amount: line.Amount})
	}
	return input
}

func RecipeCreate(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createRecipeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		recipe, err := svc.CreateRecipe(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, recipe)
	}
}

func RecipeList(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recipes, err := svc.ListRecipes(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, recipes)
	}
}

func RecipeGet(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseURLUUID(r, "recipeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		recipe, err := svc.GetRecipe(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, recipe)
	}
}

type updateRecipeRequest struct {
	Name  *string              `json:"name,omitempty" validate:"omitempty,max=200"`
	Lines *[]recipeLineRequest `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

func (req updateRecipeRequest) toInput() recipesvc.UpdateRecipeInput {
	input := recipesvc.UpdateRecipeInput{Name: req.Name}
	if req.Lines != nil {
		lines := make([]recipesvc.RecipeLineInput, 0, len(*req.Lines))
		for _, line := range *req.Lines {
			lines = append(lines, recipesvc.RecipeLineInput{ItemID: line.ItemID, Amount: line.Amount})
		}
		input.Lines = &lines
	}
	return input
}

func RecipeUpdate(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseURLUUID(r, "recipeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateRecipeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		recipe, err := svc.UpdateRecipe(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, recipe)
	}
}

func RecipeDelete(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseURLUUID(r, "recipeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteRecipe(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// RecipeUse applies the recipe's consumption lines to the pantry. A failure
// midway keeps the events already written and reports where it stopped.
func RecipeUse(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseURLUUID(r, "recipeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Use(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
