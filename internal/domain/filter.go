package domain

// SortOrder selects the ordering applied after filtering
type SortOrder string

const (
	SortNone      SortOrder = ""
	SortNameAsc   SortOrder = "name_asc"
	SortNameDesc  SortOrder = "name_desc"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	// SortNewest reverses the current order; products carry no timestamp.
	SortNewest SortOrder = "newest"
)

// Valid reports whether s is a known sort order
func (s SortOrder) Valid() bool {
	switch s {
	case SortNone, SortNameAsc, SortNameDesc, SortPriceAsc, SortPriceDesc, SortNewest:
		return true
	}
	return false
}

// PriceRange is an inclusive numeric price window
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FilterState holds the facet selections and sort order of a catalog view.
// Empty sets do not restrict anything.
type FilterState struct {
	Size        []string   `json:"size"`
	ProductType []string   `json:"productType"`
	Style       []string   `json:"style"`
	Pattern     []string   `json:"pattern"`
	Color       []string   `json:"color"`
	Condition   []string   `json:"condition"`
	SortBy      SortOrder  `json:"sortBy"`
	PriceRange  PriceRange `json:"priceRange"`
}

// DefaultFilterState returns an unrestricted filter state for the catalog
func DefaultFilterState(catalog *Catalog) FilterState {
	maxPrice := 0.0
	if catalog != nil {
		maxPrice = catalog.MaxPrice
	}
	return FilterState{
		Size:        []string{},
		ProductType: []string{},
		Style:       []string{},
		Pattern:     []string{},
		Color:       []string{},
		Condition:   []string{},
		PriceRange:  PriceRange{Min: 0, Max: maxPrice},
	}
}

// SetPriceMin moves the lower bound, clamping it so it never passes the upper bound
func (f *FilterState) SetPriceMin(v float64) {
	if v > f.PriceRange.Max {
		v = f.PriceRange.Max
	}
	f.PriceRange.Min = v
}

// SetPriceMax moves the upper bound, clamping it so it never passes the lower bound
func (f *FilterState) SetPriceMax(v float64) {
	if v < f.PriceRange.Min {
		v = f.PriceRange.Min
	}
	f.PriceRange.Max = v
}

// FilterResult is the output of the filter/sort pipeline
type FilterResult struct {
	Products []Product `json:"products"`
	Count    int       `json:"count"`
}
