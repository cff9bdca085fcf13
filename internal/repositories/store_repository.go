package repositories

import (
	"context"
	"errors"

	"microstore/internal/models"
)

var (
	// ErrStoreNotFound reports that no document exists under a slug. It is an
	// ordinary outcome of Get, not a storage failure.
	ErrStoreNotFound = errors.New("store not found")

	// ErrSlugTaken is returned by Create when the slug is already in use.
	ErrSlugTaken = errors.New("slug already taken")
)

// StoreRepository defines the interface for store document access. Every
// implementation keys documents by slug in the "stores" collection.
type StoreRepository interface {
	// Put writes store under slug, replacing any existing document.
	Put(ctx context.Context, slug string, store *models.Store) error
	// Create writes store under slug only if the slug is unused.
	Create(ctx context.Context, slug string, store *models.Store) error
	// Get reads the store at slug, or returns ErrStoreNotFound.
	Get(ctx context.Context, slug string) (*models.Store, error)
}
