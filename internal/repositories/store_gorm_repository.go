package repositories

import (
	"context"
	"errors"
	"fmt"

	"microstore/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// storeColumns lists every non-key column. UpdateAll would skip created_at
// because it is an auto-create-time field.
var storeColumns = []string{"shop_name", "description", "phone", "upi", "products", "created_at"}

// GORMStoreRepository is a GORM implementation of StoreRepository. Products
// are kept as a JSON column so each row mirrors one store document.
type GORMStoreRepository struct {
	db *gorm.DB
}

// NewGORMStoreRepository creates a new instance of GORMStoreRepository.
func NewGORMStoreRepository(db *gorm.DB) *GORMStoreRepository {
	return &GORMStoreRepository{
		db: db,
	}
}

// Migrate creates or updates the stores table.
func (r *GORMStoreRepository) Migrate() error {
	if err := r.db.AutoMigrate(&models.Store{}); err != nil {
		return fmt.Errorf("failed to migrate stores table: %w", err)
	}
	return nil
}

// Put upserts the store. On conflict every column is overwritten, including
// created_at, so the last write wins.
func (r *GORMStoreRepository) Put(ctx context.Context, slug string, store *models.Store) error {
	row := *store
	row.Slug = slug
	row.CreatedAt = r.db.NowFunc()

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(storeColumns),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to write store %s: %w", slug, err)
	}
	store.CreatedAt = row.CreatedAt
	return nil
}

// Create inserts the store unless a row with the same slug exists.
func (r *GORMStoreRepository) Create(ctx context.Context, slug string, store *models.Store) error {
	row := *store
	row.Slug = slug
	row.CreatedAt = r.db.NowFunc()

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row)
	if res.Error != nil {
		return fmt.Errorf("failed to create store %s: %w", slug, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("store %s: %w", slug, ErrSlugTaken)
	}
	store.CreatedAt = row.CreatedAt
	return nil
}

// Get retrieves a single store by its slug from the database.
func (r *GORMStoreRepository) Get(ctx context.Context, slug string) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("store %s: %w", slug, ErrStoreNotFound)
		}
		return nil, fmt.Errorf("failed to get store %s: %w", slug, err)
	}
	return &store, nil
}
