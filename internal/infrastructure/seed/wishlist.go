package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/prelovedguru/backend/internal/domain"
)

const imageDir = "/Preloved Guru Hack Images/"

// WishlistRepository serves a fixed list of wishlist entries
type WishlistRepository struct {
	entries []domain.WishlistEntry
}

// NewWishlistRepository creates a repository over entries
func NewWishlistRepository(entries []domain.WishlistEntry) *WishlistRepository {
	return &WishlistRepository{entries: entries}
}

// List returns a copy of the entries
func (r *WishlistRepository) List(ctx context.Context) ([]domain.WishlistEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.WishlistEntry, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

// LoadWishlistFile reads entries from a JSON array on disk
func LoadWishlistFile(path string) (*WishlistRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wishlist %s: %w", path, err)
	}

	var entries []domain.WishlistEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode wishlist %s: %w", path, err)
	}
	return NewWishlistRepository(entries), nil
}

// DefaultWishlist returns the demo shopper's wishlist
func DefaultWishlist() []domain.WishlistEntry {
	return []domain.WishlistEntry{
		{
			ID:        "wish1",
			Title:     "Pink Stripe Floral Top",
			AddedDate: day(2024, time.March, 1),
			ImageURL:  imageDir + "IMG_8836.jpeg",
			Status:    domain.WishlistMatchFound,
			Keywords:  []string{"Pink", "top", "white", "casual", "modern"},
		},
		{
			ID:        "wish2",
			Title:     "Red Asymetrical dress",
			AddedDate: day(2024, time.January, 20),
			ImageURL:  imageDir + "1167.jpg",
			Status:    domain.WishlistWatching,
			Keywords:  []string{"red", "dress", "formal", "modern"},
		},
		{
			ID:        "wish3",
			Title:     "Black Evening Dress",
			AddedDate: day(2024, time.January, 10),
			ImageURL:  imageDir + "8989.jpg",
			Status:    domain.WishlistMatchFound,
			Keywords:  []string{"black", "dress", "evening", "formal"},
		},
		{
			ID:        "wish4",
			Title:     "Sherpa Jacket",
			AddedDate: day(2024, time.March, 5),
			ImageURL:  imageDir + "7777.jpg",
			Status:    domain.WishlistWatching,
			Keywords:  []string{"brown", "outerwear", "jacket", "casual"},
		},
		{
			ID:        "wish5",
			Title:     "Beige Skirt",
			AddedDate: day(2024, time.January, 25),
			ImageURL:  imageDir + "2467.jpg",
			Status:    domain.WishlistMatchFound,
			Keywords:  []string{"skirt", "modern", "beige", "bottom"},
		},
		{
			ID:        "wish6",
			Title:     "Patterned Blouse",
			AddedDate: day(2024, time.March, 10),
			ImageURL:  imageDir + "9090.jpg",
			Status:    domain.WishlistWatching,
			Keywords:  []string{"pattern", "blouse", "vintage", "top", "white"},
		},
	}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
