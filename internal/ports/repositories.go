package ports

import (
	"context"

	"github.com/recipebox/core/internal/domain/entities"
)

// RecordStore defines whole-document persistence of the recipe collection
type RecordStore interface {
	// ReadRaw returns the stored bytes unmodified, creating the file with
	// an empty array when it does not exist yet.
	ReadRaw(ctx context.Context) ([]byte, error)

	// Load parses the stored collection. Read failures are returned;
	// unparseable content yields an empty collection.
	Load(ctx context.Context) (entities.Collection, error)

	// LoadOrEmpty parses the stored collection, yielding an empty
	// collection on any read or parse failure.
	LoadOrEmpty(ctx context.Context) entities.Collection

	// Save overwrites the stored collection
	Save(ctx context.Context, coll entities.Collection) error
}

// RecipeRepository defines the interface for recipe data operations
type RecipeRepository interface {
	List(ctx context.Context) ([]byte, error)
	Append(ctx context.Context, recipe entities.Recipe) error
	Replace(ctx context.Context, id string, recipe entities.Recipe) (entities.Recipe, error)
	Remove(ctx context.Context, id string) (entities.Recipe, error)
}

// IDGenerator produces ids for newly created recipes
type IDGenerator interface {
	NewID() string
}
