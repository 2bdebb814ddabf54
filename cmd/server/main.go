package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/prelovedguru/backend/config"
	httpDelivery "github.com/prelovedguru/backend/internal/delivery/http"
	"github.com/prelovedguru/backend/internal/domain"
	"github.com/prelovedguru/backend/internal/infrastructure/cache"
	"github.com/prelovedguru/backend/internal/infrastructure/csvsource"
	"github.com/prelovedguru/backend/internal/infrastructure/events"
	"github.com/prelovedguru/backend/internal/infrastructure/seed"
	"github.com/prelovedguru/backend/internal/infrastructure/store"
	"github.com/prelovedguru/backend/internal/platform/logger"
	"github.com/prelovedguru/backend/internal/platform/metrics"
	"github.com/prelovedguru/backend/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	if err := run(cfg, appLogger); err != nil {
		appLogger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, appLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLogger.Info("starting PrelovedGuru backend",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("cache", cfg.Cache.Type),
		zap.String("store", cfg.Store.Type),
	)

	metricsManager := metrics.NewManager("preloved")

	// Redis is shared by the cache and the store when either uses it
	var redisClient *redis.Client
	if cfg.Cache.Type == "redis" || cfg.Store.Type == "redis" {
		client, err := cache.NewRedisClient(ctx, cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB, appLogger)
		if err != nil {
			return err
		}
		defer client.Close()
		redisClient = client
	}

	return serve(ctx, cfg, appLogger, metricsManager, redisClient)
}

func serve(ctx context.Context, cfg *config.Config, appLogger *zap.Logger, metricsManager *metrics.Manager, redisClient *redis.Client) error {
	// Cache
	var catalogCache domain.CacheRepository
	if cfg.Cache.Type == "redis" {
		catalogCache = cache.NewRedisCache(redisClient, cfg.Cache.Redis.Prefix, appLogger)
	} else {
		memoryCache := cache.NewMemoryCache(time.Minute)
		defer memoryCache.Close()
		catalogCache = memoryCache
	}

	// Key-value store for deleted identifiers
	var kv domain.KeyValueStore
	switch cfg.Store.Type {
	case "redis":
		kv = store.NewRedisStore(redisClient, cfg.Cache.Redis.Prefix)
	case "sqlite":
		sqliteStore, err := store.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return err
		}
		defer sqliteStore.Close()
		kv = sqliteStore
	default:
		kv = store.NewMemoryStore()
	}
	deleted := store.NewDeletedIDs(kv, appLogger)

	// Events
	var publisher domain.EventPublisher = events.NoopPublisher{}
	if cfg.Events.Enabled {
		natsPublisher, err := events.NewNATSPublisher(events.NATSConfig{
			URL:            cfg.Events.NATSURL,
			ConnectTimeout: cfg.Events.ConnectTimeout,
			Name:           "prelovedguru-backend",
		}, appLogger)
		if err != nil {
			return err
		}
		publisher = natsPublisher
	}
	defer publisher.Close()

	// Catalog source
	var source domain.RowSource
	if cfg.Catalog.CSVURL != "" {
		source = csvsource.NewHTTPSource(csvsource.HTTPConfig{
			URL:               cfg.Catalog.CSVURL,
			Timeout:           cfg.Catalog.FetchTimeout,
			RequestsPerSecond: cfg.RateLimit.Source,
		}, appLogger)
		appLogger.Info("catalog source", zap.String("url", cfg.Catalog.CSVURL))
	} else {
		source = csvsource.NewFileSource(cfg.Catalog.CSVPath)
		appLogger.Info("catalog source", zap.String("path", cfg.Catalog.CSVPath))
	}

	// Wishlist
	wishlist := seed.NewWishlistRepository(seed.DefaultWishlist())
	if cfg.Catalog.WishlistPath != "" {
		fromFile, err := seed.LoadWishlistFile(cfg.Catalog.WishlistPath)
		if err != nil {
			return err
		}
		wishlist = fromFile
	}

	views, err := buildViews(cfg.Catalog.Views)
	if err != nil {
		return err
	}

	// Initialize usecase layer
	catalogs := usecase.NewCatalogService(catalogCache, source, deleted, usecase.CatalogServiceConfig{
		CacheTTL:      cfg.Cache.TTL,
		VintageMarker: cfg.Catalog.VintageMarker,
		Views:         views,
	}, appLogger, metricsManager)

	search := usecase.NewSearchService(usecase.SearchConfig{
		SimulatedLatency:   cfg.Search.SimulatedLatency,
		MaxSuggestions:     cfg.Search.MaxSuggestions,
		SuggestionDistance: cfg.Search.SuggestionDistance,
	}, appLogger, metricsManager)

	scorer := usecase.NewMatchScorer(usecase.MatchConfig{
		TopMatches:         cfg.Matching.TopMatches,
		MinMatches:         cfg.Matching.MinMatches,
		EnableDebugLogging: cfg.Matching.Debug,
	}, appLogger)

	profile := usecase.NewProfileService(catalogs, wishlist, deleted, scorer, publisher, appLogger, metricsManager)
	inventory := usecase.NewInventoryService(catalogs, deleted, publisher, appLogger, metricsManager)

	// Warm the shop view so a broken source shows up at startup
	if _, err := catalogs.Current(ctx, domain.ViewShop); err != nil {
		appLogger.Warn("initial catalog load failed", zap.Error(err))
	}

	handler := httpDelivery.NewHandler(catalogs, search, profile, inventory, appLogger)
	router := httpDelivery.SetupRouter(cfg, handler, appLogger, metricsManager)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	appLogger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildViews turns the configured row selections into catalog views
func buildViews(cfg config.ViewsConfig) (map[domain.CatalogView]usecase.ViewConfig, error) {
	views := make(map[domain.CatalogView]usecase.ViewConfig, 3)
	for view, vc := range map[domain.CatalogView]config.ViewConfig{
		domain.ViewShop:    cfg.Shop,
		domain.ViewProfile: cfg.Profile,
		domain.ViewRetail:  cfg.Retail,
	} {
		rows, err := usecase.ParseRowRanges(vc.ExcludedRows)
		if err != nil {
			return nil, fmt.Errorf("view %s: %w", view, err)
		}
		views[view] = usecase.ViewConfig{
			ExcludedRows: rows,
			ExcludedIDs:  vc.ExcludedIDs,
			AllowList:    vc.AllowList,
		}
	}

	retail := views[domain.ViewRetail]
	retail.UsePredictions = true
	retail.DeletedKey = domain.KeyDeletedInventoryItems
	views[domain.ViewRetail] = retail

	return views, nil
}
