package services

import (
	"context"
	"fmt"

	"github.com/recipebox/core/internal/domain/entities"
	"github.com/recipebox/core/internal/infrastructure/logger"
	"github.com/recipebox/core/internal/ports"
)

// RecipeService handles recipe-related operations
type RecipeService struct {
	recipeRepo ports.RecipeRepository
	ids        ports.IDGenerator
	logger     *logger.Logger
}

// NewRecipeService creates a new recipe service
func NewRecipeService(recipeRepo ports.RecipeRepository, ids ports.IDGenerator, logger *logger.Logger) *RecipeService {
	return &RecipeService{
		recipeRepo: recipeRepo,
		ids:        ids,
		logger:     logger,
	}
}

// ListRecipes returns the stored collection exactly as it is on disk
func (s *RecipeService) ListRecipes(ctx context.Context) ([]byte, error) {
	return s.recipeRepo.List(ctx)
}

// CreateRecipe validates the payload, assigns it a fresh id and appends it.
// Any id supplied by the client is replaced in place.
func (s *RecipeService) CreateRecipe(ctx context.Context, payload entities.Recipe) (entities.Recipe, error) {
	if !payload.HasRequiredFields() {
		return nil, entities.ErrValidation
	}

	recipe, err := payload.WithID(s.ids.NewID())
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	if err := s.recipeRepo.Append(ctx, recipe); err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	s.logger.LogRecipeAction("create", recipe.ID(), map[string]interface{}{
		"name": recipe.Get(entities.FieldName).String(),
	})

	return recipe, nil
}

// UpdateRecipe replaces the recipe with the given id by payload. Any JSON
// value except null is accepted; non-objects are stored as given.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id string, payload entities.Recipe) (entities.Recipe, error) {
	if len(payload) == 0 {
		return nil, entities.ErrInvalidJSON
	}

	updated, err := s.recipeRepo.Replace(ctx, id, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}

	s.logger.LogRecipeAction("update", id, nil)

	return updated, nil
}

// DeleteRecipe removes the recipe with the given id and returns it
func (s *RecipeService) DeleteRecipe(ctx context.Context, id string) (entities.Recipe, error) {
	removed, err := s.recipeRepo.Remove(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete recipe: %w", err)
	}

	s.logger.LogRecipeAction("delete", id, nil)

	return removed, nil
}
