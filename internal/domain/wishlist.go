package domain

import "time"

// WishlistStatus is the watch state of a wishlist entry
type WishlistStatus string

const (
	WishlistWatching   WishlistStatus = "watching"
	WishlistMatchFound WishlistStatus = "match_found"
)

// WishlistEntry is an item a shopper is looking for. Entries are supplied externally
// and are read-only to the matching code.
type WishlistEntry struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	AddedDate time.Time      `json:"addedDate"`
	ImageURL  string         `json:"image"`
	Status    WishlistStatus `json:"status"`
	Keywords  []string       `json:"keywords"`
}

// Match associates a wishlist entry with a catalog product
type Match struct {
	ID            string    `json:"id"`
	WishlistID    string    `json:"wishlistId"`
	WishlistTitle string    `json:"wishlistTitle"`
	Product       Product   `json:"matchedItem"`
	MatchScore    string    `json:"matchScore"` // "NN%"
	MatchDate     time.Time `json:"matchDate"`
}

// WishlistFilter narrows the wishlist listing
type WishlistFilter string

const (
	WishlistFilterAll         WishlistFilter = "all"
	WishlistFilterWithMatches WishlistFilter = "with-matches"
	WishlistFilterWatching    WishlistFilter = "watching"
)

// WishlistSort orders the wishlist listing
type WishlistSort string

const (
	WishlistSortDateDesc     WishlistSort = "date-desc"
	WishlistSortDateAsc      WishlistSort = "date-asc"
	WishlistSortMatches      WishlistSort = "matches"
	WishlistSortAlphabetical WishlistSort = "alphabetical"
)

// WishlistView is a filtered, sorted wishlist listing with match counts
type WishlistView struct {
	Items      []WishlistItemView `json:"items"`
	Count      int                `json:"count"`
	TotalCount int                `json:"totalCount"`
}

// WishlistItemView is one wishlist entry plus the number of live matches for it
type WishlistItemView struct {
	WishlistEntry
	MatchCount int `json:"matchCount"`
}

// NewInventoryItem is the retailer form for adding an item
type NewInventoryItem struct {
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl" binding:"required"`
	Size     string `json:"size,omitempty"`
	Price    string `json:"price,omitempty"`
	Style    string `json:"style,omitempty"`
	Color    string `json:"color,omitempty"`
	Pattern  string `json:"pattern,omitempty"`
	Occasion string `json:"occasion,omitempty"`
}
