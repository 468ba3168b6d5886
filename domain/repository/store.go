package repository

import "context"

// Store is the persistence contract shared by every stored entity.
type Store[T any] interface {
	// Find returns the entities matching options.
	Find(ctx context.Context, options ...Option) ([]T, error)

	// FindOne returns the first entity matching options.
	FindOne(ctx context.Context, options ...Option) (T, error)

	// Count returns the number of entities matching options.
	Count(ctx context.Context, options ...Option) (int64, error)

	// Save creates or updates an entity and returns the stored copy.
	Save(ctx context.Context, entity T) (T, error)

	// Delete removes an entity.
	Delete(ctx context.Context, entity T) error
}
