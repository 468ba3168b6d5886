package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/helixml/segalloc/domain/repository"
	"gorm.io/gorm"
)

// ErrNotFound indicates the requested entity was not found.
var ErrNotFound = errors.New("entity not found")

// EntityMapper converts between domain values and database models.
type EntityMapper[D any, E any] interface {
	ToDomain(entity E) D
	ToModel(domain D) E
}

// Repository provides the query half of a store for one model type.
// Stores embed it and add Save and Delete.
type Repository[D any, E any] struct {
	db     Database
	mapper EntityMapper[D, E]
	label  string
}

// NewRepository creates a Repository. label names the entity in errors.
func NewRepository[D any, E any](db Database, mapper EntityMapper[D, E], label string) Repository[D, E] {
	return Repository[D, E]{db: db, mapper: mapper, label: label}
}

// Find returns the entities matching options.
func (r Repository[D, E]) Find(ctx context.Context, options ...repository.Option) ([]D, error) {
	var entities []E
	if err := ApplyOptions(r.db.Session(ctx).Model(new(E)), options...).Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("find %s: %w", r.label, err)
	}
	out := make([]D, len(entities))
	for i, e := range entities {
		out[i] = r.mapper.ToDomain(e)
	}
	return out, nil
}

// FindOne returns the first entity matching options, or ErrNotFound.
func (r Repository[D, E]) FindOne(ctx context.Context, options ...repository.Option) (D, error) {
	var entity E
	var zero D
	err := ApplyOptions(r.db.Session(ctx), options...).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, r.label)
	}
	if err != nil {
		return zero, fmt.Errorf("find one %s: %w", r.label, err)
	}
	return r.mapper.ToDomain(entity), nil
}

// Count returns the number of entities matching options.
func (r Repository[D, E]) Count(ctx context.Context, options ...repository.Option) (int64, error) {
	var count int64
	if err := ApplyConditions(r.db.Session(ctx).Model(new(E)), options...).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", r.label, err)
	}
	return count, nil
}

// DeleteBy removes the entities matching options.
func (r Repository[D, E]) DeleteBy(ctx context.Context, options ...repository.Option) error {
	if err := ApplyConditions(r.db.Session(ctx), options...).Delete(new(E)).Error; err != nil {
		return fmt.Errorf("delete %s: %w", r.label, err)
	}
	return nil
}

// DB returns a session bound to ctx.
func (r Repository[D, E]) DB(ctx context.Context) *gorm.DB {
	return r.db.Session(ctx)
}

// Database returns the wrapped connection.
func (r Repository[D, E]) Database() Database {
	return r.db
}

// Mapper returns the entity mapper.
func (r Repository[D, E]) Mapper() EntityMapper[D, E] {
	return r.mapper
}
