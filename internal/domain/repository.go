package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching serialized values
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// RowSource yields the already-split rows of the product CSV export
type RowSource interface {
	Rows(ctx context.Context) ([]RawRow, error)
}

// KeyValueStore is the opaque persistence collaborator (the browser's local storage
// in the original app). Get reports ok=false for an absent key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// DeletedIDRepository persists sets of identifiers the user chose to hide
type DeletedIDRepository interface {
	Load(ctx context.Context, key string) (map[string]bool, error)
	Append(ctx context.Context, key, id string) error
}

// WishlistRepository supplies the shopper's wishlist entries
type WishlistRepository interface {
	List(ctx context.Context) ([]WishlistEntry, error)
}

// ColorDetector assigns a colour to a product. The placeholder implementation
// derives it from the product ID; a real detector can replace it.
type ColorDetector interface {
	DetectColor(product Product) string
}

// EventPublisher publishes domain events to interested consumers
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
	Close()
}

// Event subjects
const (
	SubjectInventoryAdded   = "preloved.inventory.added"
	SubjectInventoryDeleted = "preloved.inventory.deleted"
	SubjectMatchDeleted     = "preloved.match.deleted"
)

// Keys used in the key-value store for deleted identifiers
const (
	KeyDeletedMatchIDs       = "deletedMatchIds"
	KeyDeletedInventoryItems = "deletedInventoryItems"
)
