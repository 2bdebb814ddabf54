package domain

import "errors"

var (
	// ErrCatalogLoad is returned when the CSV source cannot be fetched or parsed
	ErrCatalogLoad = errors.New("catalog load failed")

	// ErrRowRejected marks a CSV row that failed validation; rejected rows are dropped, not surfaced
	ErrRowRejected = errors.New("row rejected")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrNotFound is returned when a product, match or wishlist entry does not exist
	ErrNotFound = errors.New("not found")

	// ErrCategoryUndetected is returned when a new inventory item's image cannot be matched to a category
	ErrCategoryUndetected = errors.New("cannot detect product category")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrStoreUnavailable is returned when the key-value store cannot be reached
	ErrStoreUnavailable = errors.New("key-value store unavailable")
)
