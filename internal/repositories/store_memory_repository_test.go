package repositories_test

import (
	"context"
	"testing"
	"unsafe"

	"microstore/internal/models"
	"microstore/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRepository(t *testing.T) {
	repo := repositories.NewMemoryStoreRepository()
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing-1000")
	assert.ErrorIs(t, err, repositories.ErrStoreNotFound)

	in := sampleStore()
	require.NoError(t, repo.Put(ctx, "fresh-bakes-1234", in))
	assert.Equal(t, 1, repo.Len())

	// Mutating the caller's value must not leak into the stored copy.
	in.Products[0].Name = "Changed"

	out, err := repo.Get(ctx, "fresh-bakes-1234")
	require.NoError(t, err)
	assert.Equal(t, "Bread", out.Products[0].Name)
	assert.Equal(t, "fresh-bakes-1234", out.Slug)

	assert.ErrorIs(t, repo.Create(ctx, "fresh-bakes-1234", sampleStore()), repositories.ErrSlugTaken)

	replacement := sampleStore()
	replacement.ShopName = "Replaced"
	require.NoError(t, repo.Put(ctx, "fresh-bakes-1234", replacement))
	out, err = repo.Get(ctx, "fresh-bakes-1234")
	require.NoError(t, err)
	assert.Equal(t, "Replaced", out.ShopName)
	assert.Equal(t, 1, repo.Len())
}

var _ repositories.StoreRepository = (*repositories.MemoryStoreRepository)(nil)
var _ repositories.StoreRepository = (*repositories.GORMStoreRepository)(nil)
var _ repositories.StoreRepository = (*repositories.MongoStoreRepository)(nil)

func TestMemoryStoreRepository_NilProducts(t *testing.T) {
	repo := repositories.NewMemoryStoreRepository()
	require.NoError(t, repo.Put(context.Background(), "bare-1000", &models.Store{ShopName: "Bare"}))
	out, err := repo.Get(context.Background(), "bare-1000")
	require.NoError(t, err)
	assert.Empty(t, out.Products)
}

func TestMemoryStoreRepository_DetachedFromCallerBuffers(t *testing.T) {
	repo := repositories.NewMemoryStoreRepository()

	// Strings backed by a buffer the caller later reuses, as request bodies are.
	buf := []byte("Fresh BakesBread")
	alias := func(from, to int) string { return unsafe.String(&buf[from], to-from) }

	require.NoError(t, repo.Put(context.Background(), "fresh-bakes-4821", &models.Store{
		ShopName: alias(0, 11),
		Phone:    "9876543210",
		UPI:      "fresh@upi",
		Products: []models.Product{{Name: alias(11, 16), Price: "50"}},
	}))
	copy(buf, "ZZZZZZZZZZZQQQQQ")

	out, err := repo.Get(context.Background(), "fresh-bakes-4821")
	require.NoError(t, err)
	assert.Equal(t, "Fresh Bakes", out.ShopName)
	assert.Equal(t, "Bread", out.Products[0].Name)
}
