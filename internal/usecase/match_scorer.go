package usecase

import (
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prelovedguru/backend/internal/domain"
)

// Keyword weights per product field
const (
	weightTitle    = 10
	weightCategory = 5
	weightStyle    = 3
	backfillScore  = 1
)

// Selection and normalization bounds
const (
	defaultTopMatches  = 3
	defaultMinMatches  = 2
	maxMatchPercent    = 98
	minMatchPercent    = 75
	defaultMatchWindow = 30
	matchIDFormat      = "match-%s-%d"
	matchPercentFormat = "%d%%"
)

// MatchDater assigns the date of a match from its ID
type MatchDater func(matchID string) time.Time

// MatchConfig holds configuration for the match scorer
type MatchConfig struct {
	TopMatches         int
	MinMatches         int
	EnableDebugLogging bool
}

// MatchScorer ranks catalog products against wishlist keywords
type MatchScorer struct {
	topMatches         int
	minMatches         int
	enableDebugLogging bool
	logger             *zap.Logger
}

// ScoredProduct is a product with its keyword overlap score
type ScoredProduct struct {
	Product domain.Product
	Score   int
}

// NewMatchScorer creates a new match scorer with the given configuration
func NewMatchScorer(config MatchConfig, logger *zap.Logger) *MatchScorer {
	top := config.TopMatches
	if top <= 0 {
		top = defaultTopMatches
	}

	minMatches := config.MinMatches
	if minMatches <= 0 {
		minMatches = defaultMinMatches
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &MatchScorer{
		topMatches:         top,
		minMatches:         minMatches,
		enableDebugLogging: config.EnableDebugLogging,
		logger:             logger,
	}
}

// EntryKeywords returns the normalized keywords of an entry, falling back to the
// longer words of its title when none are set.
func EntryKeywords(entry domain.WishlistEntry) []string {
	if keywords := NormalizeKeywords(entry.Keywords); len(keywords) > 0 {
		return keywords
	}
	return TitleKeywords(entry.Title)
}

// ScoreProduct sums the keyword weights found in the lower-cased title, category and style
func ScoreProduct(product domain.Product, keywords []string) int {
	title := strings.ToLower(product.Title)
	category := strings.ToLower(product.Category)
	style := strings.ToLower(product.Style)

	score := 0
	for _, k := range keywords {
		if strings.Contains(title, k) {
			score += weightTitle
		}
		if strings.Contains(category, k) {
			score += weightCategory
		}
		if style != "" && strings.Contains(style, k) {
			score += weightStyle
		}
	}
	return score
}

// SelectProducts picks the top scoring products for the keywords and backfills
// with category matches when too few products score.
func (s *MatchScorer) SelectProducts(products []domain.Product, keywords []string) []ScoredProduct {
	selected := make([]ScoredProduct, 0, s.topMatches)
	for _, p := range products {
		if score := ScoreProduct(p, keywords); score > 0 {
			selected = append(selected, ScoredProduct{Product: p, Score: score})
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Score > selected[j].Score
	})
	if len(selected) > s.topMatches {
		selected = selected[:s.topMatches]
	}

	if len(selected) < s.minMatches {
		taken := make(map[string]bool, len(selected))
		for _, sp := range selected {
			taken[sp.Product.ID] = true
		}
		for _, p := range products {
			if len(selected) >= s.minMatches {
				break
			}
			if taken[p.ID] || !categoryMatchesAny(p.Category, keywords) {
				continue
			}
			taken[p.ID] = true
			selected = append(selected, ScoredProduct{Product: p, Score: backfillScore})
		}
	}

	return selected
}

func categoryMatchesAny(category string, keywords []string) bool {
	category = strings.ToLower(category)
	for _, k := range keywords {
		if strings.Contains(category, k) {
			return true
		}
	}
	return false
}

// MatchPercent scales a score against the best score of its selection into [75, 98]
func MatchPercent(score, maxScore int) int {
	if maxScore <= 0 {
		return minMatchPercent
	}
	percent := int(math.Round(float64(score) / float64(maxScore) * maxMatchPercent))
	return min(maxMatchPercent, max(minMatchPercent, percent))
}

// ScoreEntry produces the matches of one wishlist entry, minus deleted match IDs
func (s *MatchScorer) ScoreEntry(entry domain.WishlistEntry, products []domain.Product, deleted map[string]bool, dater MatchDater) []domain.Match {
	keywords := EntryKeywords(entry)
	if len(keywords) == 0 {
		return nil
	}
	if dater == nil {
		dater = StableMatchDater(time.Now())
	}

	selected := s.SelectProducts(products, keywords)
	if len(selected) == 0 {
		if s.enableDebugLogging {
			s.logger.Debug("no matches", zap.String("wishlist_id", entry.ID), zap.Strings("keywords", keywords))
		}
		return nil
	}

	maxScore := 0
	for _, sp := range selected {
		maxScore = max(maxScore, sp.Score)
	}

	matches := make([]domain.Match, 0, len(selected))
	for i, sp := range selected {
		id := fmt.Sprintf(matchIDFormat, entry.ID, i)
		percent := MatchPercent(sp.Score, maxScore)

		if s.enableDebugLogging {
			s.logger.Debug("match",
				zap.String("wishlist_id", entry.ID),
				zap.String("product_id", sp.Product.ID),
				zap.Int("score", sp.Score),
				zap.Int("percent", percent),
			)
		}

		if deleted[id] {
			continue
		}

		matches = append(matches, domain.Match{
			ID:            id,
			WishlistID:    entry.ID,
			WishlistTitle: entry.Title,
			Product:       sp.Product,
			MatchScore:    fmt.Sprintf(matchPercentFormat, percent),
			MatchDate:     dater(id),
		})
	}
	return matches
}

// GenerateMatches scores every entry whose status is match_found. Matches are
// rebuilt from scratch on each call.
func (s *MatchScorer) GenerateMatches(entries []domain.WishlistEntry, catalog *domain.Catalog, deleted map[string]bool, dater MatchDater) []domain.Match {
	if dater == nil {
		dater = StableMatchDater(time.Now())
	}

	products := catalog.ProductsCopy()
	matches := make([]domain.Match, 0)
	for _, entry := range entries {
		if entry.Status != domain.WishlistMatchFound {
			continue
		}
		matches = append(matches, s.ScoreEntry(entry, products, deleted, dater)...)
	}
	return matches
}

// StableMatchDater dates each match within the 30 days before reference.
// The offset is a hash of the match ID, so the same ID always gets the same date.
func StableMatchDater(reference time.Time) MatchDater {
	day := time.Date(reference.Year(), reference.Month(), reference.Day(), 0, 0, 0, 0, time.UTC)
	return func(matchID string) time.Time {
		h := fnv.New32a()
		_, _ = h.Write([]byte(matchID))
		offset := int(h.Sum32() % defaultMatchWindow)
		return day.AddDate(0, 0, -offset)
	}
}
