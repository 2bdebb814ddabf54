package usecase

import (
	"sort"

	"github.com/prelovedguru/backend/internal/domain"
)

// facetStage narrows candidates to products whose field value is in the selected set
type facetStage struct {
	selected []string
	field    func(domain.Product) string
}

// ApplyFilters runs the facet stages in order (category, size, style, pattern,
// colour, condition, price) and then sorts. Empty selections are no-ops.
// The candidate slice is not modified.
func ApplyFilters(candidates []domain.Product, state domain.FilterState) domain.FilterResult {
	stages := []facetStage{
		{state.ProductType, func(p domain.Product) string { return p.Category }},
		{state.Size, func(p domain.Product) string { return p.Size }},
		{state.Style, func(p domain.Product) string { return p.Style }},
		{state.Pattern, func(p domain.Product) string { return p.Pattern }},
		{state.Color, func(p domain.Product) string { return p.Color }},
		{state.Condition, func(p domain.Product) string { return p.Condition }},
	}

	results := make([]domain.Product, 0, len(candidates))
	for _, p := range candidates {
		if passesFacets(p, stages) && inPriceRange(p, state.PriceRange) {
			results = append(results, p)
		}
	}

	sortProducts(results, state.SortBy)

	return domain.FilterResult{Products: results, Count: len(results)}
}

func passesFacets(p domain.Product, stages []facetStage) bool {
	for _, stage := range stages {
		if len(stage.selected) == 0 {
			continue
		}
		if !contains(stage.selected, stage.field(p)) {
			return false
		}
	}
	return true
}

func inPriceRange(p domain.Product, r domain.PriceRange) bool {
	price := ParsePrice(p.Price)
	return price >= r.Min && price <= r.Max
}

// sortProducts orders products in place. SortNewest reverses the filtered order
// because products carry no timestamp.
func sortProducts(products []domain.Product, order domain.SortOrder) {
	switch order {
	case domain.SortNameAsc, domain.SortNameDesc:
		collator := newCollator()
		desc := order == domain.SortNameDesc
		sort.SliceStable(products, func(i, j int) bool {
			cmp := collator.CompareString(products[i].Title, products[j].Title)
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
	case domain.SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return ParsePrice(products[i].Price) < ParsePrice(products[j].Price)
		})
	case domain.SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return ParsePrice(products[i].Price) > ParsePrice(products[j].Price)
		})
	case domain.SortNewest:
		for i, j := 0, len(products)-1; i < j; i, j = i+1, j-1 {
			products[i], products[j] = products[j], products[i]
		}
	}
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
