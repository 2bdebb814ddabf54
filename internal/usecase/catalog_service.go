package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prelovedguru/backend/internal/domain"
)

// ViewConfig selects the rows of the export that make up one catalog view
type ViewConfig struct {
	ExcludedRows   []RowRange
	ExcludedIDs    []string
	AllowList      []string
	UsePredictions bool
	// DeletedKey names the persisted deleted-id set subtracted from the view
	DeletedKey string
}

// CatalogServiceConfig holds configuration for the catalog service
type CatalogServiceConfig struct {
	CacheTTL      time.Duration
	VintageMarker string
	ColorDetector domain.ColorDetector
	Views         map[domain.CatalogView]ViewConfig
}

// CatalogService loads catalog views from the row source with caching
type CatalogService struct {
	cache    domain.CacheRepository
	source   domain.RowSource
	deleted  domain.DeletedIDRepository
	views    map[domain.CatalogView]ViewConfig
	cacheTTL time.Duration
	marker   string
	detector domain.ColorDetector
	logger   *zap.Logger
	metrics  MetricsRecorder
}

// NewCatalogService creates a new catalog service with dependencies
func NewCatalogService(
	cache domain.CacheRepository,
	source domain.RowSource,
	deleted domain.DeletedIDRepository,
	config CatalogServiceConfig,
	logger *zap.Logger,
	metrics MetricsRecorder,
) *CatalogService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	views := config.Views
	if views == nil {
		views = DefaultViews()
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &CatalogService{
		cache:    cache,
		source:   source,
		deleted:  deleted,
		views:    views,
		cacheTTL: cacheTTL,
		marker:   config.VintageMarker,
		detector: config.ColorDetector,
		logger:   logger,
		metrics:  recorderOrNoop(metrics),
	}
}

// DefaultViews returns the shop, profile and retail views of the product export
func DefaultViews() map[domain.CatalogView]ViewConfig {
	return map[domain.CatalogView]ViewConfig{
		domain.ViewShop: {
			ExcludedRows: []RowRange{{From: 81, To: 95}},
			ExcludedIDs:  []string{"9009"},
		},
		domain.ViewProfile: {
			ExcludedRows: []RowRange{{From: 79, To: 79}, {From: 81, To: 95}},
		},
		domain.ViewRetail: {
			AllowList: []string{
				"m1114", "m1146", "4448", "m1129", "8455", "1111",
				"1149", "2458", "4456", "2467", "0469",
			},
			UsePredictions: true,
			DeletedKey:     domain.KeyDeletedInventoryItems,
		},
	}
}

// Current returns the catalog snapshot of a view.
// Flow: check cache -> read rows -> normalize and filter -> cache -> return
func (s *CatalogService) Current(ctx context.Context, view domain.CatalogView) (*domain.Catalog, error) {
	viewConfig, ok := s.views[view]
	if !ok {
		return nil, fmt.Errorf("%w: unknown catalog view %q", domain.ErrInvalidRequest, view)
	}

	cacheKey := cacheKeyFor(view)

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		return cached, nil
	}

	var deletedIDs map[string]bool
	if viewConfig.DeletedKey != "" && s.deleted != nil {
		ids, err := s.deleted.Load(ctx, viewConfig.DeletedKey)
		if err != nil {
			return nil, err
		}
		deletedIDs = ids
	}

	normalizer := NewRowNormalizer(NormalizerConfig{
		VintageMarker:  s.marker,
		UsePredictions: viewConfig.UsePredictions,
		ColorDetector:  s.detector,
	})

	catalog, report, err := LoadFromSource(ctx, s.source, LoadOptions{
		Normalizer:   normalizer,
		AllowList:    viewConfig.AllowList,
		ExcludedRows: viewConfig.ExcludedRows,
		ExcludedIDs:  viewConfig.ExcludedIDs,
		DeletedIDs:   deletedIDs,
	})
	if err != nil {
		s.logger.Error("catalog load failed", zap.String("view", string(view)), zap.Error(err))
		return nil, err
	}

	for _, rejection := range report.Rejected {
		s.logger.Debug("row rejected",
			zap.String("view", string(view)),
			zap.Int("row", rejection.Position),
			zap.String("id", rejection.ID),
			zap.String("reason", rejection.Reason),
		)
	}
	s.logger.Info("catalog loaded",
		zap.String("view", string(view)),
		zap.Int("rows", report.TotalRows),
		zap.Int("products", catalog.Len()),
		zap.Int("excluded", report.Excluded),
		zap.Int("rejected", len(report.Rejected)),
	)
	s.metrics.CatalogLoaded(string(view), catalog.Len(), len(report.Rejected))

	if err := s.setInCache(ctx, cacheKey, catalog); err != nil {
		s.logger.Warn("failed to cache catalog", zap.String("key", cacheKey), zap.Error(err))
	}

	return catalog, nil
}

// Invalidate drops the cached snapshot of a view
func (s *CatalogService) Invalidate(ctx context.Context, view domain.CatalogView) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, cacheKeyFor(view))
}

// cacheKeyFor builds the cache key of a view. Format: "catalog:{view}"
func cacheKeyFor(view domain.CatalogView) string {
	return fmt.Sprintf("catalog:%s", view)
}

// getFromCache retrieves a catalog snapshot from cache
func (s *CatalogService) getFromCache(ctx context.Context, key string) (*domain.Catalog, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var catalog domain.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, domain.ErrCacheMiss
	}
	return &catalog, nil
}

// setInCache stores a catalog snapshot in cache
func (s *CatalogService) setInCache(ctx context.Context, key string, catalog *domain.Catalog) error {
	if s.cache == nil {
		return nil
	}

	data, err := json.Marshal(catalog)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}
