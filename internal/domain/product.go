package domain

// RawRow is a single CSV data row keyed by column header.
// Position is 1-based over data rows (the header is not counted).
type RawRow struct {
	Position int
	Fields   map[string]string
}

// Get returns the value of a column, or "" when the column is absent
func (r RawRow) Get(column string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[column]
}

// Product represents a normalized catalog entry
type Product struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ImageURL  string `json:"image"`
	Price     string `json:"price"` // always "$<number>"
	Category  string `json:"category"`
	Size      string `json:"size"`
	Style     string `json:"style,omitempty"`
	Color     string `json:"color,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
	Occasion  string `json:"occasion,omitempty"`
	Condition string `json:"condition,omitempty"`
}

// Catalog is an immutable snapshot of the products available for display,
// together with the facet values derived from them.
type Catalog struct {
	Products   []Product `json:"products"`
	Categories []string  `json:"categories"`
	Styles     []string  `json:"styles"`
	Sizes      []string  `json:"sizes"`
	Colors     []string  `json:"colors"`
	MaxPrice   float64   `json:"maxPrice"`
}

// Len returns the number of products in the catalog
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Products)
}

// ProductsCopy returns a copy of the product list so callers can reorder it freely
func (c *Catalog) ProductsCopy() []Product {
	if c == nil {
		return []Product{}
	}
	out := make([]Product, len(c.Products))
	copy(out, c.Products)
	return out
}

// FindByID returns the product with the given ID
func (c *Catalog) FindByID(id string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// ImageDescriptor carries the file metadata used by the simulated image search
type ImageDescriptor struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// SearchMode identifies which search path produced a result
type SearchMode string

const (
	SearchModeText  SearchMode = "text"
	SearchModeImage SearchMode = "image"
)

// SearchRequest represents a catalog search request.
// Image takes precedence over Query when both are set.
type SearchRequest struct {
	Query   string           `json:"query,omitempty"`
	Image   *ImageDescriptor `json:"image,omitempty"`
	Filters *FilterState     `json:"filters,omitempty"`
}

// SearchResult is returned as a whole; Completed and MatchFound are set together with Results.
type SearchResult struct {
	Mode        SearchMode `json:"mode"`
	Results     []Product  `json:"results"`
	Count       int        `json:"count"`
	MatchFound  bool       `json:"matchFound"`
	Completed   bool       `json:"completed"`
	Simulated   bool       `json:"simulated"`
	Suggestions []string   `json:"suggestions,omitempty"`
}

// AttributeDetection is the output of the simulated attribute detector.
// Simulated is always true: attributes come from URL matching, not image content.
type AttributeDetection struct {
	Matched   bool     `json:"matched"`
	Simulated bool     `json:"simulated"`
	SourceURL string   `json:"sourceUrl"`
	Product   *Product `json:"product,omitempty"`
}

// CatalogView names a configured slice of the product export
type CatalogView string

const (
	ViewShop    CatalogView = "shop"
	ViewProfile CatalogView = "profile"
	ViewRetail  CatalogView = "retail"
)
