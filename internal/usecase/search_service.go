package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"

	"github.com/prelovedguru/backend/internal/domain"
)

const (
	defaultMaxSuggestions     = 3
	defaultSuggestionDistance = 2
	minSuggestionTermLength   = 3
)

// SearchConfig holds configuration for the search service
type SearchConfig struct {
	// SimulatedLatency delays every search, mimicking a recognition backend
	SimulatedLatency   time.Duration
	MaxSuggestions     int
	SuggestionDistance int
}

// SearchService answers text and simulated image searches over a catalog
type SearchService struct {
	latency            time.Duration
	maxSuggestions     int
	suggestionDistance int
	logger             *zap.Logger
	metrics            MetricsRecorder
}

// NewSearchService creates a new search service with the given configuration
func NewSearchService(config SearchConfig, logger *zap.Logger, metrics MetricsRecorder) *SearchService {
	maxSuggestions := config.MaxSuggestions
	if maxSuggestions <= 0 {
		maxSuggestions = defaultMaxSuggestions
	}

	distance := config.SuggestionDistance
	if distance <= 0 {
		distance = defaultSuggestionDistance
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &SearchService{
		latency:            config.SimulatedLatency,
		maxSuggestions:     maxSuggestions,
		suggestionDistance: distance,
		logger:             logger,
		metrics:            recorderOrNoop(metrics),
	}
}

// Search dispatches a request to image mode when an image descriptor is present,
// otherwise to text mode. Optional filters narrow the search results.
// A cancelled context abandons the search before any result is produced.
func (s *SearchService) Search(ctx context.Context, catalog *domain.Catalog, req *domain.SearchRequest) (*domain.SearchResult, error) {
	if req == nil {
		return nil, domain.ErrInvalidRequest
	}

	query := strings.TrimSpace(req.Query)
	if req.Image == nil && query == "" {
		return nil, fmt.Errorf("%w: query or image is required", domain.ErrInvalidRequest)
	}
	if req.Image != nil && req.Image.Size < 0 {
		return nil, fmt.Errorf("%w: image size must not be negative", domain.ErrInvalidRequest)
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	products := catalog.ProductsCopy()

	var result domain.SearchResult
	if req.Image != nil {
		result = SearchImage(products, *req.Image)
	} else {
		result = SearchText(products, query)
		if result.Count == 0 {
			result.Suggestions = s.Suggest(catalog, query)
		}
	}

	if req.Filters != nil {
		filtered := ApplyFilters(result.Results, *req.Filters)
		result = newSearchResult(result.Mode, filtered.Products, result.Suggestions)
	}

	s.logger.Debug("search completed",
		zap.String("mode", string(result.Mode)),
		zap.String("query", query),
		zap.Int("results", result.Count),
	)
	s.metrics.SearchPerformed(string(result.Mode), result.Count)

	return &result, nil
}

// wait applies the simulated latency, giving up when the context ends
func (s *SearchService) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SearchText returns products whose title, category, style or size contains the
// query, ignoring case. Source order is kept.
func SearchText(products []domain.Product, query string) domain.SearchResult {
	q := strings.ToLower(query)

	results := make([]domain.Product, 0)
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Category), q) ||
			strings.Contains(strings.ToLower(p.Style), q) ||
			strings.Contains(strings.ToLower(p.Size), q) {
			results = append(results, p)
		}
	}

	return newSearchResult(domain.SearchModeText, results, nil)
}

// SearchImage simulates an image recognition match. The result window depends only
// on the file name length and byte size, never on image content.
func SearchImage(products []domain.Product, image domain.ImageDescriptor) domain.SearchResult {
	n := len(products)
	if n == 0 {
		return newSearchResult(domain.SearchModeImage, []domain.Product{}, nil)
	}

	hash := (int64(utf8.RuneCountInString(image.Name))*13 + image.Size) % int64(n)
	if hash < 0 {
		hash += int64(n)
	}

	sampleSize := min(int(hash%5)+5, n)
	start := int(hash)

	results := make([]domain.Product, 0, sampleSize)
	for i := 0; i < sampleSize; i++ {
		results = append(results, products[(start+i)%n])
	}

	return newSearchResult(domain.SearchModeImage, results, nil)
}

// newSearchResult builds a finished result in one step
func newSearchResult(mode domain.SearchMode, results []domain.Product, suggestions []string) domain.SearchResult {
	return domain.SearchResult{
		Mode:        mode,
		Results:     results,
		Count:       len(results),
		MatchFound:  len(results) > 0,
		Completed:   true,
		Simulated:   mode == domain.SearchModeImage,
		Suggestions: suggestions,
	}
}

type suggestion struct {
	term     string
	distance int
}

// Suggest proposes catalog terms close to a query that found nothing
func (s *SearchService) Suggest(catalog *domain.Catalog, query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || catalog == nil {
		return nil
	}

	var candidates []suggestion
	for term := range suggestionTerms(catalog) {
		d := levenshtein.ComputeDistance(q, term)
		if d > 0 && d <= s.suggestionDistance {
			candidates = append(candidates, suggestion{term: term, distance: d})
		}
	}

	collator := newCollator()
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return collator.CompareString(candidates[i].term, candidates[j].term) < 0
	})

	out := make([]string, 0, s.maxSuggestions)
	for _, c := range candidates {
		if len(out) == s.maxSuggestions {
			break
		}
		out = append(out, c.term)
	}
	return out
}

// suggestionTerms collects lower-cased facet values and title words
func suggestionTerms(catalog *domain.Catalog) map[string]struct{} {
	terms := make(map[string]struct{})
	add := func(v string) {
		v = strings.ToLower(strings.TrimSpace(v))
		if utf8.RuneCountInString(v) >= minSuggestionTermLength {
			terms[v] = struct{}{}
		}
	}

	for _, values := range [][]string{catalog.Categories, catalog.Styles, catalog.Sizes, catalog.Colors} {
		for _, v := range values {
			add(v)
		}
	}
	for _, p := range catalog.Products {
		for _, word := range strings.Fields(punctuationRegex.ReplaceAllString(p.Title, " ")) {
			add(word)
		}
	}
	return terms
}
