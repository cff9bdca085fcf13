package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"microstore/internal/models"
)

// MemoryStoreRepository is an in-memory implementation of StoreRepository.
type MemoryStoreRepository struct {
	stores map[string]models.Store
	mu     sync.RWMutex
	now    func() time.Time
}

// NewMemoryStoreRepository creates a new instance of MemoryStoreRepository.
func NewMemoryStoreRepository() *MemoryStoreRepository {
	return &MemoryStoreRepository{
		stores: make(map[string]models.Store),
		now:    time.Now,
	}
}

// Put stores a copy of store under slug, replacing any previous entry.
func (r *MemoryStoreRepository) Put(_ context.Context, slug string, store *models.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.save(slug, store)
	return nil
}

// Create stores a copy of store unless slug is already used.
func (r *MemoryStoreRepository) Create(_ context.Context, slug string, store *models.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stores[slug]; ok {
		return fmt.Errorf("store %s: %w", slug, ErrSlugTaken)
	}
	r.save(slug, store)
	return nil
}

// save keeps a deep copy of store. Strings are cloned so the map never shares
// memory with caller-owned buffers.
func (r *MemoryStoreRepository) save(slug string, store *models.Store) {
	row := models.Store{
		Slug:        strings.Clone(slug),
		ShopName:    strings.Clone(store.ShopName),
		Description: strings.Clone(store.Description),
		Phone:       strings.Clone(store.Phone),
		UPI:         strings.Clone(store.UPI),
		CreatedAt:   r.now().UTC(),
	}
	if store.Products != nil {
		row.Products = make([]models.Product, len(store.Products))
		for i, p := range store.Products {
			row.Products[i] = models.Product{Name: strings.Clone(p.Name), Price: strings.Clone(p.Price)}
		}
	}
	r.stores[row.Slug] = row
	store.CreatedAt = row.CreatedAt
}

// Get returns a copy of the store at slug.
func (r *MemoryStoreRepository) Get(_ context.Context, slug string) (*models.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	store, ok := r.stores[slug]
	if !ok {
		return nil, fmt.Errorf("store %s: %w", slug, ErrStoreNotFound)
	}
	store.Products = append([]models.Product(nil), store.Products...)
	return &store, nil
}

// Len returns the number of stored documents.
func (r *MemoryStoreRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stores)
}
