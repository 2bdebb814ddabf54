package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prelovedguru/backend/internal/domain"
	"github.com/prelovedguru/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalogs  *usecase.CatalogService
	search    *usecase.SearchService
	profile   *usecase.ProfileService
	inventory *usecase.InventoryService
	logger    *zap.Logger
	now       func() time.Time
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalogs *usecase.CatalogService,
	search *usecase.SearchService,
	profile *usecase.ProfileService,
	inventory *usecase.InventoryService,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Handler{
		catalogs:  catalogs,
		search:    search,
		profile:   profile,
		inventory: inventory,
		logger:    logger,
		now:       time.Now,
	}
}

// catalogResponse is a catalog snapshot plus its product count
type catalogResponse struct {
	domain.Catalog
	Count int `json:"count"`
}

// facetsResponse lists the facet values of a view with an unrestricted filter state
type facetsResponse struct {
	Categories []string           `json:"categories"`
	Styles     []string           `json:"styles"`
	Sizes      []string           `json:"sizes"`
	Colors     []string           `json:"colors"`
	MaxPrice   float64            `json:"maxPrice"`
	Defaults   domain.FilterState `json:"defaults"`
}

type detectRequest struct {
	ImageURL string `json:"imageUrl" binding:"required"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "prelovedguru-backend",
		"version": "1.0.0",
	})
}

// GetCatalog returns the shop catalog in today's order
func (h *Handler) GetCatalog(c *gin.Context) {
	catalog, err := h.shopCatalog(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, catalogResponse{Catalog: *catalog, Count: catalog.Len()})
}

// GetFacets returns the filterable values of the shop catalog
func (h *Handler) GetFacets(c *gin.Context) {
	catalog, err := h.catalogs.Current(c.Request.Context(), domain.ViewShop)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, facetsResponse{
		Categories: catalog.Categories,
		Styles:     catalog.Styles,
		Sizes:      catalog.Sizes,
		Colors:     catalog.Colors,
		MaxPrice:   catalog.MaxPrice,
		Defaults:   domain.DefaultFilterState(catalog),
	})
}

// GetProduct returns one product of the shop catalog
func (h *Handler) GetProduct(c *gin.Context) {
	catalog, err := h.catalogs.Current(c.Request.Context(), domain.ViewShop)
	if err != nil {
		h.respondError(c, err)
		return
	}

	product, ok := catalog.FindByID(c.Param("id"))
	if !ok {
		h.respondError(c, domain.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, product)
}

// FilterCatalog applies a filter state to today's shop catalog. Fields missing
// from the body keep their unrestricted defaults.
func (h *Handler) FilterCatalog(c *gin.Context) {
	catalog, err := h.shopCatalog(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	state, ok := h.bindFilterState(c, catalog)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, usecase.ApplyFilters(catalog.Products, state))
}

// RefreshCatalog drops every cached view so the next request reloads the CSV
func (h *Handler) RefreshCatalog(c *gin.Context) {
	ctx := c.Request.Context()
	for _, view := range []domain.CatalogView{domain.ViewShop, domain.ViewProfile, domain.ViewRetail} {
		if err := h.catalogs.Invalidate(ctx, view); err != nil {
			h.respondError(c, err)
			return
		}
	}
	h.logger.Info("catalog views invalidated")
	c.Status(http.StatusNoContent)
}

// Search handles text and image search requests over the shop catalog.
// Filter fields missing from the body keep their unrestricted defaults.
func (h *Handler) Search(c *gin.Context) {
	ctx := c.Request.Context()
	catalog, err := h.catalogs.Current(ctx, domain.ViewShop)
	if err != nil {
		h.respondError(c, err)
		return
	}

	defaults := domain.DefaultFilterState(catalog)
	req := domain.SearchRequest{Filters: &defaults}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.Filters != nil && !req.Filters.SortBy.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown sort order: " + string(req.Filters.SortBy)})
		return
	}

	result, err := h.search.Search(ctx, catalog, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetWishlist lists the shopper's wishlist with match counts
func (h *Handler) GetWishlist(c *gin.Context) {
	filter := domain.WishlistFilter(c.DefaultQuery("filter", string(domain.WishlistFilterAll)))
	order := domain.WishlistSort(c.DefaultQuery("sort", string(domain.WishlistSortDateDesc)))

	view, err := h.profile.Wishlist(c.Request.Context(), filter, order)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetMatches returns the current matches for the wishlist
func (h *Handler) GetMatches(c *gin.Context) {
	matches, err := h.profile.Matches(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches, "count": len(matches)})
}

// DeleteMatch hides a match
func (h *Handler) DeleteMatch(c *gin.Context) {
	if err := h.profile.DeleteMatch(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetInventory returns the retailer's inventory
func (h *Handler) GetInventory(c *gin.Context) {
	catalog, err := h.inventory.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogResponse{Catalog: *catalog, Count: catalog.Len()})
}

// FilterInventory applies a filter state to the retailer's inventory
func (h *Handler) FilterInventory(c *gin.Context) {
	ctx := c.Request.Context()
	catalog, err := h.inventory.List(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}

	state, ok := h.bindFilterState(c, catalog)
	if !ok {
		return
	}

	result, err := h.inventory.Filter(ctx, state)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AddInventoryItem adds an item from the retailer form
func (h *Handler) AddInventoryItem(c *gin.Context) {
	var item domain.NewInventoryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	product, err := h.inventory.Add(c.Request.Context(), item)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// DeleteInventoryItem removes an item from the inventory
func (h *Handler) DeleteInventoryItem(c *gin.Context) {
	if err := h.inventory.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DetectAttributes runs the simulated attribute detection for an image URL
func (h *Handler) DetectAttributes(c *gin.Context) {
	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	detection, err := h.inventory.Detect(c.Request.Context(), req.ImageURL)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detection)
}

// shopCatalog returns a copy of the shop catalog rotated for today
func (h *Handler) shopCatalog(ctx context.Context) (*domain.Catalog, error) {
	catalog, err := h.catalogs.Current(ctx, domain.ViewShop)
	if err != nil {
		return nil, err
	}

	daily := *catalog
	daily.Products = usecase.DailyOrder(catalog.ProductsCopy(), h.now())
	return &daily, nil
}

// bindFilterState decodes a filter body over the catalog's default state
func (h *Handler) bindFilterState(c *gin.Context, catalog *domain.Catalog) (domain.FilterState, bool) {
	state := domain.DefaultFilterState(catalog)
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&state); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return state, false
		}
	}

	if !state.SortBy.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown sort order: " + string(state.SortBy)})
		return state, false
	}
	if state.PriceRange.Min > state.PriceRange.Max {
		state.SetPriceMin(state.PriceRange.Min)
	}
	return state, true
}

// respondError maps domain errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrCategoryUndetected):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrCatalogLoad), errors.Is(err, domain.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		// client went away
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}

	c.JSON(status, gin.H{"error": errorMessage(status, err)})
}

func errorMessage(status int, err error) string {
	if status == http.StatusInternalServerError {
		return "Internal server error"
	}
	msg := err.Error()
	if i := strings.Index(msg, ": "); i > 0 && status == http.StatusServiceUnavailable {
		// keep upstream detail out of responses
		return msg[:i]
	}
	return msg
}
