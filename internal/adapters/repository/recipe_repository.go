package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/recipebox/core/internal/domain/entities"
	"github.com/recipebox/core/internal/ports"
)

// RecipeRepositoryImpl implements the RecipeRepository interface on top of
// a RecordStore. Each call loads the whole collection, changes its own copy
// and writes the whole collection back.
type RecipeRepositoryImpl struct {
	store ports.RecordStore

	// serialize holds mu across each load-mutate-save cycle
	serialize bool
	mu        sync.Mutex
}

// NewRecipeRepository creates a new recipe repository. Concurrent mutations
// are not coordinated; the last save wins.
func NewRecipeRepository(store ports.RecordStore) ports.RecipeRepository {
	return &RecipeRepositoryImpl{store: store}
}

// NewSerializedRecipeRepository creates a recipe repository whose mutations
// never interleave within this process
func NewSerializedRecipeRepository(store ports.RecordStore) ports.RecipeRepository {
	return &RecipeRepositoryImpl{store: store, serialize: true}
}

func (r *RecipeRepositoryImpl) lock() func() {
	if !r.serialize {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *RecipeRepositoryImpl) List(ctx context.Context) ([]byte, error) {
	data, err := r.store.ReadRaw(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}

	return data, nil
}

func (r *RecipeRepositoryImpl) Append(ctx context.Context, recipe entities.Recipe) error {
	defer r.lock()()

	recipes := r.store.LoadOrEmpty(ctx)
	recipes = append(recipes, recipe)

	if err := r.store.Save(ctx, recipes); err != nil {
		return fmt.Errorf("append recipe: %w", err)
	}

	return nil
}

func (r *RecipeRepositoryImpl) Replace(ctx context.Context, id string, recipe entities.Recipe) (entities.Recipe, error) {
	defer r.lock()()

	recipes, err := r.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("replace recipe: %w", err)
	}

	i := recipes.IndexOf(id)
	if i < 0 {
		return nil, entities.ErrRecipeNotFound
	}

	updated, err := recipe.WithID(id)
	if err != nil {
		return nil, fmt.Errorf("replace recipe: %w", err)
	}
	recipes[i] = updated

	if err := r.store.Save(ctx, recipes); err != nil {
		return nil, fmt.Errorf("replace recipe: %w", err)
	}

	return updated, nil
}

func (r *RecipeRepositoryImpl) Remove(ctx context.Context, id string) (entities.Recipe, error) {
	defer r.lock()()

	recipes, err := r.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("remove recipe: %w", err)
	}

	i := recipes.IndexOf(id)
	if i < 0 {
		return nil, entities.ErrRecipeNotFound
	}

	removed := recipes[i]
	recipes = append(recipes[:i], recipes[i+1:]...)

	if err := r.store.Save(ctx, recipes); err != nil {
		return nil, fmt.Errorf("remove recipe: %w", err)
	}

	return removed, nil
}
