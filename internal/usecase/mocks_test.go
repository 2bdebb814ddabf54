package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/prelovedguru/backend/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	data      map[string][]byte
	getError  error
	setError  error
	getCalled int
	setCalled int
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string][]byte),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.getCalled++
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.setCalled++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

// MockRowSource is a mock implementation of domain.RowSource
type MockRowSource struct {
	rows  []domain.RawRow
	err   error
	calls int
}

func (m *MockRowSource) Rows(ctx context.Context) ([]domain.RawRow, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.rows, nil
}

// MockDeletedIDRepository is a mock implementation of domain.DeletedIDRepository
type MockDeletedIDRepository struct {
	mu        sync.Mutex
	sets      map[string][]string
	loadError error
	saveError error
}

func NewMockDeletedIDRepository() *MockDeletedIDRepository {
	return &MockDeletedIDRepository{sets: make(map[string][]string)}
}

func (m *MockDeletedIDRepository) Load(ctx context.Context, key string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadError != nil {
		return nil, m.loadError
	}
	ids := make(map[string]bool)
	for _, id := range m.sets[key] {
		ids[id] = true
	}
	return ids, nil
}

func (m *MockDeletedIDRepository) Append(ctx context.Context, key, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.sets[key] = append(m.sets[key], id)
	return nil
}

// MockWishlistRepository is a mock implementation of domain.WishlistRepository
type MockWishlistRepository struct {
	entries []domain.WishlistEntry
	err     error
}

func (m *MockWishlistRepository) List(ctx context.Context) ([]domain.WishlistEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

// MockPublisher records published events
type MockPublisher struct {
	subjects []string
	payloads []interface{}
	err      error
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	if m.err != nil {
		return m.err
	}
	m.subjects = append(m.subjects, subject)
	m.payloads = append(m.payloads, payload)
	return nil
}

func (m *MockPublisher) Close() {}

// MockCatalogProvider serves fixed catalogs per view
type MockCatalogProvider struct {
	catalogs    map[domain.CatalogView]*domain.Catalog
	err         error
	invalidated []domain.CatalogView
}

func (m *MockCatalogProvider) Current(ctx context.Context, view domain.CatalogView) (*domain.Catalog, error) {
	if m.err != nil {
		return nil, m.err
	}
	if c, ok := m.catalogs[view]; ok {
		return c, nil
	}
	return BuildCatalog(nil), nil
}

func (m *MockCatalogProvider) Invalidate(ctx context.Context, view domain.CatalogView) error {
	m.invalidated = append(m.invalidated, view)
	return nil
}

// row builds a raw CSV row at a 1-based position
func row(position int, fields map[string]string) domain.RawRow {
	return domain.RawRow{Position: position, Fields: fields}
}

// validRow builds a row that passes normalization
func validRow(position int, id, title string) domain.RawRow {
	return row(position, map[string]string{
		ColumnStyleID:         id,
		ColumnTitle:           title,
		ColumnImageSrc:        "https://cdn.shopify.com/files/" + id + ".jpg",
		ColumnPrice:           "20",
		ColumnProductCategory: "Tops",
		ColumnSize:            "M",
	})
}

// product builds a catalog product for pipeline tests
func product(id, title, category, price string) domain.Product {
	return domain.Product{
		ID:       id,
		Title:    title,
		ImageURL: "https://cdn.shopify.com/files/" + id + ".jpg",
		Price:    price,
		Category: category,
		Size:     "Medium",
		Style:    "Modern",
	}
}
