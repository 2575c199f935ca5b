package ports

import (
	"context"

	"github.com/recipebox/core/internal/domain/entities"
)

// RecipeService interface for recipe operations
type RecipeService interface {
	ListRecipes(ctx context.Context) ([]byte, error)
	CreateRecipe(ctx context.Context, payload entities.Recipe) (entities.Recipe, error)
	UpdateRecipe(ctx context.Context, id string, payload entities.Recipe) (entities.Recipe, error)
	DeleteRecipe(ctx context.Context, id string) (entities.Recipe, error)
}

// DeleteResponse is returned after a recipe has been removed
type DeleteResponse struct {
	Message string          `json:"message"`
	Recipe  entities.Recipe `json:"recipe"`
}
