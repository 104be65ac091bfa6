package store

import (
	"context"

	"github.com/notional-finance/notional-indexer/internal/store/schema"
)

//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore

// EntityStore is key based access to the derived entities
type EntityStore interface {
	// Load reads the entity with the given id into dest, reports false if it does not exist
	Load(ctx context.Context, id string, dest schema.Entity) (bool, error)
	// Save upserts the entity by its id, replacing every column
	Save(ctx context.Context, entity schema.Entity) error
	// Delete removes the entity by its id, deleting an absent entity is not an error
	Delete(ctx context.Context, entity schema.Entity) error
}

// Store defines the interface for database operations
type Store interface {
	EntityStore
	CursorStore

	// WithTransaction runs fn against a store bound to a single database transaction.
	// The transaction is rolled back if fn returns an error.
	WithTransaction(ctx context.Context, fn func(tx Store) error) error
}

// entityPtr is satisfied by a pointer to an entity struct
type entityPtr[T any] interface {
	*T
	schema.Entity
}

// Get loads an entity by id, returning nil if it does not exist
func Get[T any, PT entityPtr[T]](ctx context.Context, s EntityStore, id string) (*T, error) {
	var entity T
	found, err := s.Load(ctx, id, PT(&entity))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &entity, nil
}
