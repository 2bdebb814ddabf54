package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prelovedguru/backend/internal/domain"
)

const (
	newItemIDPrefix = "new-item-"
	defaultNewTitle = "New Item"
)

// InventoryCatalog is the catalog collaborator of the retail dashboard
type InventoryCatalog interface {
	CatalogProvider
	Invalidate(ctx context.Context, view domain.CatalogView) error
}

// InventoryService manages the retailer's inventory view
type InventoryService struct {
	catalogs  InventoryCatalog
	deleted   domain.DeletedIDRepository
	publisher domain.EventPublisher
	logger    *zap.Logger
	metrics   MetricsRecorder
	newID     func() string

	mu        sync.RWMutex
	additions []domain.Product
}

// NewInventoryService creates a new inventory service with dependencies
func NewInventoryService(
	catalogs InventoryCatalog,
	deleted domain.DeletedIDRepository,
	publisher domain.EventPublisher,
	logger *zap.Logger,
	metrics MetricsRecorder,
) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &InventoryService{
		catalogs:  catalogs,
		deleted:   deleted,
		publisher: publisher,
		logger:    logger,
		metrics:   recorderOrNoop(metrics),
		newID:     uuid.NewString,
	}
}

// List returns the retail catalog with items added in this process first
func (s *InventoryService) List(ctx context.Context) (*domain.Catalog, error) {
	base, err := s.catalogs.Current(ctx, domain.ViewRetail)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	additions := make([]domain.Product, len(s.additions))
	copy(additions, s.additions)
	s.mu.RUnlock()

	if len(additions) == 0 {
		return base, nil
	}

	products := make([]domain.Product, 0, len(additions)+base.Len())
	products = append(products, additions...)
	products = append(products, base.Products...)
	return BuildCatalog(products), nil
}

// Filter applies a filter state to the retail inventory
func (s *InventoryService) Filter(ctx context.Context, state domain.FilterState) (*domain.FilterResult, error) {
	catalog, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if !state.SortBy.Valid() {
		return nil, fmt.Errorf("%w: unknown sort %q", domain.ErrInvalidRequest, state.SortBy)
	}

	result := ApplyFilters(catalog.Products, state)
	return &result, nil
}

// Delete removes an item from the inventory and persists its ID as deleted
func (s *InventoryService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidRequest
	}

	catalog, err := s.List(ctx)
	if err != nil {
		return err
	}
	if _, ok := catalog.FindByID(id); !ok {
		return fmt.Errorf("%w: inventory item %q", domain.ErrNotFound, id)
	}

	if err := s.deleted.Append(ctx, domain.KeyDeletedInventoryItems, id); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.additions[:0]
	for _, p := range s.additions {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.additions = kept
	s.mu.Unlock()

	if err := s.catalogs.Invalidate(ctx, domain.ViewRetail); err != nil {
		s.logger.Warn("failed to invalidate retail catalog", zap.Error(err))
	}

	s.logger.Info("inventory item deleted", zap.String("id", id))
	s.metrics.InventoryChanged("delete")
	s.publish(ctx, domain.SubjectInventoryDeleted, map[string]string{"id": id})
	return nil
}

// Detect simulates attribute detection for an image URL against the inventory
func (s *InventoryService) Detect(ctx context.Context, url string) (*domain.AttributeDetection, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: image URL is required", domain.ErrInvalidRequest)
	}

	catalog, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	detection := DetectAttributes(url, catalog)
	s.logger.Debug("attribute detection",
		zap.String("url", detection.SourceURL),
		zap.Bool("matched", detection.Matched),
	)
	return &detection, nil
}

// Add creates an inventory item from the retailer form. The image must resolve to
// a product with a category; form values win over detected attributes.
func (s *InventoryService) Add(ctx context.Context, item domain.NewInventoryItem) (*domain.Product, error) {
	detection, err := s.Detect(ctx, item.ImageURL)
	if err != nil {
		return nil, err
	}
	if !detection.Matched || detection.Product == nil || detection.Product.Category == "" {
		return nil, domain.ErrCategoryUndetected
	}
	detected := detection.Product

	product := domain.Product{
		ID:        newItemIDPrefix + s.newID(),
		Title:     firstNonEmpty(item.Title, detected.Title, defaultNewTitle),
		ImageURL:  detection.SourceURL,
		Price:     FormatPrice(strings.ReplaceAll(firstNonEmpty(item.Price, detected.Price), "$", "")),
		Category:  detected.Category,
		Size:      StandardizeSize(firstNonEmpty(item.Size, detected.Size)),
		Style:     firstNonEmpty(item.Style, detected.Style, styleModern),
		Color:     firstNonEmpty(item.Color, detected.Color),
		Pattern:   firstNonEmpty(item.Pattern, detected.Pattern),
		Occasion:  firstNonEmpty(item.Occasion, detected.Occasion),
		Condition: detected.Condition,
	}

	s.mu.Lock()
	s.additions = append([]domain.Product{product}, s.additions...)
	s.mu.Unlock()

	s.logger.Info("inventory item added", zap.String("id", product.ID), zap.String("title", product.Title))
	s.metrics.InventoryChanged("add")
	s.publish(ctx, domain.SubjectInventoryAdded, product)
	return &product, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// publish sends an event; failures are logged and never fail the request
func (s *InventoryService) publish(ctx context.Context, subject string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, subject, payload); err != nil {
		s.logger.Warn("failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
