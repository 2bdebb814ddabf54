package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/prelovedguru/backend/internal/domain"
)

// sizeRank orders the standard size vocabulary
var sizeRank = map[string]int{
	"Extra Small": 1,
	"Small":       2,
	"Medium":      3,
	"Large":       4,
	"Extra Large": 5,
	"2X Large":    6,
	"3X Large":    7,
}

// RowRange is an inclusive range of 1-based data row positions
type RowRange struct {
	From int
	To   int
}

// Contains reports whether position lies in the range
func (r RowRange) Contains(position int) bool {
	return position >= r.From && position <= r.To
}

// ParseRowRange parses "81-95" or a single position such as "79"
func ParseRowRange(s string) (RowRange, error) {
	s = strings.TrimSpace(s)
	from, to, found := strings.Cut(s, "-")
	start, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return RowRange{}, fmt.Errorf("invalid row range %q: %w", s, err)
	}
	end := start
	if found {
		end, err = strconv.Atoi(strings.TrimSpace(to))
		if err != nil {
			return RowRange{}, fmt.Errorf("invalid row range %q: %w", s, err)
		}
	}
	if start < 1 || end < start {
		return RowRange{}, fmt.Errorf("invalid row range %q", s)
	}
	return RowRange{From: start, To: end}, nil
}

// ParseRowRanges parses a list of row range expressions
func ParseRowRanges(values []string) ([]RowRange, error) {
	ranges := make([]RowRange, 0, len(values))
	for _, v := range values {
		r, err := ParseRowRange(v)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

// LoadOptions configures which rows make it into a catalog
type LoadOptions struct {
	Normalizer *RowNormalizer
	// AllowList restricts the catalog to these IDs and orders it by list position
	AllowList    []string
	ExcludedRows []RowRange
	ExcludedIDs  []string
	DeletedIDs   map[string]bool
}

// LoadReport summarizes what happened to the source rows
type LoadReport struct {
	TotalRows int
	Excluded  int
	Rejected  []*RowRejection
}

// LoadFromSource reads rows from the source and builds a catalog.
// Source failures are wrapped with domain.ErrCatalogLoad and no catalog is returned.
func LoadFromSource(ctx context.Context, source domain.RowSource, opts LoadOptions) (*domain.Catalog, LoadReport, error) {
	rows, err := source.Rows(ctx)
	if err != nil {
		return nil, LoadReport{}, fmt.Errorf("%w: %v", domain.ErrCatalogLoad, err)
	}
	catalog, report := LoadCatalog(rows, opts)
	return catalog, report, nil
}

// LoadCatalog normalizes rows, applies exclusions and derives the facet sets.
// Source order is preserved unless an allow-list is given.
func LoadCatalog(rows []domain.RawRow, opts LoadOptions) (*domain.Catalog, LoadReport) {
	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = NewRowNormalizer(NormalizerConfig{})
	}

	allowed := indexOf(opts.AllowList)
	excludedIDs := indexOf(opts.ExcludedIDs)

	report := LoadReport{TotalRows: len(rows)}
	products := make([]domain.Product, 0, len(rows))

	for _, row := range rows {
		id := row.Get(ColumnStyleID)

		if isExcluded(row.Position, id, opts, allowed, excludedIDs) {
			report.Excluded++
			continue
		}

		product, err := normalizer.Normalize(row)
		if err != nil {
			if rejection, ok := err.(*RowRejection); ok {
				report.Rejected = append(report.Rejected, rejection)
			}
			continue
		}
		products = append(products, *product)
	}

	if allowed != nil {
		sort.SliceStable(products, func(i, j int) bool {
			return allowed[products[i].ID] < allowed[products[j].ID]
		})
	}

	return BuildCatalog(products), report
}

// isExcluded applies the allow-list and every exclusion rule to a row
func isExcluded(position int, id string, opts LoadOptions, allowed, excludedIDs map[string]int) bool {
	if allowed != nil {
		if _, ok := allowed[id]; !ok {
			return true
		}
	}
	for _, r := range opts.ExcludedRows {
		if r.Contains(position) {
			return true
		}
	}
	if _, ok := excludedIDs[id]; ok && id != "" {
		return true
	}
	return opts.DeletedIDs[id]
}

// indexOf maps each value to its first position; nil for an empty list
func indexOf(values []string) map[string]int {
	if len(values) == 0 {
		return nil
	}
	index := make(map[string]int, len(values))
	for i, v := range values {
		if _, ok := index[v]; !ok {
			index[v] = i
		}
	}
	return index
}

// BuildCatalog wraps products in a catalog snapshot with derived facets
func BuildCatalog(products []domain.Product) *domain.Catalog {
	if products == nil {
		products = []domain.Product{}
	}

	catalog := &domain.Catalog{
		Products:   products,
		Categories: distinct(products, func(p domain.Product) string { return p.Category }),
		Styles:     distinct(products, func(p domain.Product) string { return p.Style }),
		Colors:     distinct(products, func(p domain.Product) string { return p.Color }),
		Sizes:      SortSizes(distinct(products, func(p domain.Product) string { return p.Size })),
	}

	highest := 0.0
	for _, p := range products {
		if price := ParsePrice(p.Price); price > highest {
			highest = price
		}
	}
	catalog.MaxPrice = math.Ceil(highest)

	return catalog
}

// distinct collects non-empty values in first-appearance order
func distinct(products []domain.Product, field func(domain.Product) string) []string {
	seen := make(map[string]bool)
	values := []string{}
	for _, p := range products {
		v := field(p)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	return values
}

// SortSizes orders sizes: standard sizes by rank, then numeric sizes ascending,
// then anything else alphabetically, with "One Size" last.
func SortSizes(sizes []string) []string {
	sorted := make([]string, len(sizes))
	copy(sorted, sizes)

	collator := newCollator()
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		ta, tb := sizeTier(a), sizeTier(b)
		if ta != tb {
			return ta < tb
		}
		switch ta {
		case 0:
			return sizeRank[a] < sizeRank[b]
		case 1:
			na, _ := leadingInt(a)
			nb, _ := leadingInt(b)
			if na != nb {
				return na < nb
			}
		}
		return collator.CompareString(a, b) < 0
	})
	return sorted
}

func sizeTier(size string) int {
	if _, ok := sizeRank[size]; ok {
		return 0
	}
	if size == defaultSize {
		return 3
	}
	if _, ok := leadingInt(size); ok {
		return 1
	}
	return 2
}

// leadingInt reads an optionally signed integer prefix, like parseInt in a browser
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
