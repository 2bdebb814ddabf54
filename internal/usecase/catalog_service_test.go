package usecase

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prelovedguru/backend/internal/domain"
)

func exportRows() []domain.RawRow {
	rows := make([]domain.RawRow, 0, 96)
	for i := 1; i <= 96; i++ {
		rows = append(rows, validRow(i, "id"+strconv.Itoa(i), "Item "+strconv.Itoa(i)))
	}
	rows = append(rows, validRow(97, "9009", "Black Fit & Flare Dress"))
	rows = append(rows, validRow(98, "m1114", "Vintage Blouse"))
	rows = append(rows, validRow(99, "4448", "Denim Skirt"))
	return rows
}

func TestNewCatalogService(t *testing.T) {
	svc := NewCatalogService(nil, &MockRowSource{}, nil, CatalogServiceConfig{}, nil, nil)

	if svc.cacheTTL != 10*time.Minute {
		t.Errorf("cacheTTL = %v, want 10m", svc.cacheTTL)
	}
	if len(svc.views) != 3 {
		t.Errorf("views = %d, want 3", len(svc.views))
	}
}

func TestCatalogService_Current(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects unknown views", func(t *testing.T) {
		svc := NewCatalogService(NewMockCacheRepository(), &MockRowSource{}, nil, CatalogServiceConfig{}, nil, nil)

		_, err := svc.Current(ctx, "warehouse")
		assert.True(t, errors.Is(err, domain.ErrInvalidRequest))
	})

	t.Run("shop view excludes rows 81-95 and 9009", func(t *testing.T) {
		svc := NewCatalogService(NewMockCacheRepository(), &MockRowSource{rows: exportRows()}, nil, CatalogServiceConfig{}, nil, nil)

		catalog, err := svc.Current(ctx, domain.ViewShop)
		require.NoError(t, err)

		_, has80 := catalog.FindByID("id80")
		_, has81 := catalog.FindByID("id81")
		_, has95 := catalog.FindByID("id95")
		_, has96 := catalog.FindByID("id96")
		_, has9009 := catalog.FindByID("9009")
		assert.True(t, has80)
		assert.False(t, has81)
		assert.False(t, has95)
		assert.True(t, has96)
		assert.False(t, has9009)
	})

	t.Run("profile view also excludes row 79", func(t *testing.T) {
		svc := NewCatalogService(NewMockCacheRepository(), &MockRowSource{rows: exportRows()}, nil, CatalogServiceConfig{}, nil, nil)

		catalog, err := svc.Current(ctx, domain.ViewProfile)
		require.NoError(t, err)

		_, has79 := catalog.FindByID("id79")
		_, has9009 := catalog.FindByID("9009")
		assert.False(t, has79)
		assert.True(t, has9009)
	})

	t.Run("retail view follows the allow-list minus deleted ids", func(t *testing.T) {
		deleted := NewMockDeletedIDRepository()
		require.NoError(t, deleted.Append(ctx, domain.KeyDeletedInventoryItems, "4448"))
		svc := NewCatalogService(NewMockCacheRepository(), &MockRowSource{rows: exportRows()}, deleted, CatalogServiceConfig{}, nil, nil)

		catalog, err := svc.Current(ctx, domain.ViewRetail)
		require.NoError(t, err)
		assert.Equal(t, []string{"m1114"}, ids(catalog.Products))
	})

	t.Run("serves the second call from cache", func(t *testing.T) {
		cache := NewMockCacheRepository()
		source := &MockRowSource{rows: exportRows()}
		svc := NewCatalogService(cache, source, nil, CatalogServiceConfig{}, nil, nil)

		first, err := svc.Current(ctx, domain.ViewShop)
		require.NoError(t, err)
		second, err := svc.Current(ctx, domain.ViewShop)
		require.NoError(t, err)

		assert.Equal(t, 1, source.calls)
		assert.Equal(t, first, second)
		_, ok := cache.data["catalog:shop"]
		assert.True(t, ok)
	})

	t.Run("invalidate forces a reload", func(t *testing.T) {
		source := &MockRowSource{rows: exportRows()}
		svc := NewCatalogService(NewMockCacheRepository(), source, nil, CatalogServiceConfig{}, nil, nil)

		_, err := svc.Current(ctx, domain.ViewShop)
		require.NoError(t, err)
		require.NoError(t, svc.Invalidate(ctx, domain.ViewShop))
		_, err = svc.Current(ctx, domain.ViewShop)
		require.NoError(t, err)

		assert.Equal(t, 2, source.calls)
	})

	t.Run("cache write failures do not fail the load", func(t *testing.T) {
		cache := NewMockCacheRepository()
		cache.setError = errors.New("cache down")
		svc := NewCatalogService(cache, &MockRowSource{rows: exportRows()}, nil, CatalogServiceConfig{}, nil, nil)

		catalog, err := svc.Current(ctx, domain.ViewShop)
		require.NoError(t, err)
		assert.NotZero(t, catalog.Len())
	})

	t.Run("surfaces source failures as load errors", func(t *testing.T) {
		svc := NewCatalogService(NewMockCacheRepository(), &MockRowSource{err: errors.New("boom")}, nil, CatalogServiceConfig{}, nil, nil)

		catalog, err := svc.Current(ctx, domain.ViewShop)
		assert.Nil(t, catalog)
		assert.True(t, errors.Is(err, domain.ErrCatalogLoad))
	})

	t.Run("surfaces deleted-id store failures", func(t *testing.T) {
		deleted := NewMockDeletedIDRepository()
		deleted.loadError = domain.ErrStoreUnavailable
		svc := NewCatalogService(nil, &MockRowSource{rows: exportRows()}, deleted, CatalogServiceConfig{}, nil, nil)

		_, err := svc.Current(ctx, domain.ViewRetail)
		assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
	})
}
