package usecase

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prelovedguru/backend/internal/domain"
)

func scorerCatalog() *domain.Catalog {
	return BuildCatalog([]domain.Product{
		product("A", "Red Dress", "Dresses", "$10"),
		product("B", "Blue Top", "Tops", "$10"),
		product("C", "Red Top", "Tops", "$10"),
	})
}

var fixedDate = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func fixedDater(string) time.Time { return fixedDate }

func TestNewMatchScorer(t *testing.T) {
	s := NewMatchScorer(MatchConfig{}, nil)
	if s.topMatches != 3 {
		t.Errorf("topMatches = %d, want 3", s.topMatches)
	}
	if s.minMatches != 2 {
		t.Errorf("minMatches = %d, want 2", s.minMatches)
	}
	if s.logger == nil {
		t.Error("logger should default to a no-op logger")
	}
}

func TestScoreProduct(t *testing.T) {
	keywords := []string{"red", "top"}

	tests := []struct {
		name    string
		product domain.Product
		want    int
	}{
		{"title and category", product("C", "Red Top", "Tops", "$1"), 25},
		{"title only", product("A", "Red Dress", "Dresses", "$1"), 10},
		{"style match", domain.Product{Title: "Coat", Category: "Outerwear", Style: "Redux"}, 3},
		{"absent style", domain.Product{Title: "Coat", Category: "Outerwear"}, 0},
		{"case insensitive", domain.Product{Title: "RED", Category: "TOPS"}, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreProduct(tt.product, keywords))
		})
	}
}

func TestScoreEntryExample(t *testing.T) {
	s := NewMatchScorer(MatchConfig{}, nil)
	entry := domain.WishlistEntry{ID: "w1", Title: "Red top", Status: domain.WishlistMatchFound, Keywords: []string{"red", "top"}}

	matches := s.ScoreEntry(entry, scorerCatalog().Products, nil, fixedDater)
	require.Len(t, matches, 3)

	assert.Equal(t, "C", matches[0].Product.ID)
	assert.Equal(t, "B", matches[1].Product.ID)
	assert.Equal(t, "A", matches[2].Product.ID)

	assert.Equal(t, "98%", matches[0].MatchScore)
	assert.Equal(t, "75%", matches[1].MatchScore)
	assert.Equal(t, "75%", matches[2].MatchScore)

	for i, m := range matches {
		assert.Equal(t, "match-w1-"+strconv.Itoa(i), m.ID)
		assert.Equal(t, "w1", m.WishlistID)
		assert.Equal(t, "Red top", m.WishlistTitle)
		assert.Equal(t, fixedDate, m.MatchDate)
	}
}

func TestScoreEntry(t *testing.T) {
	s := NewMatchScorer(MatchConfig{}, nil)
	products := scorerCatalog().Products

	t.Run("keywords are lower-cased", func(t *testing.T) {
		entry := domain.WishlistEntry{ID: "w", Keywords: []string{"RED"}}
		matches := s.ScoreEntry(entry, products, nil, fixedDater)
		require.Len(t, matches, 2)
		assert.Equal(t, "98%", matches[0].MatchScore)
		assert.Equal(t, "98%", matches[1].MatchScore)
	})

	t.Run("falls back to title words longer than three characters", func(t *testing.T) {
		entry := domain.WishlistEntry{ID: "w", Title: "The Blue Top Dress"}
		matches := s.ScoreEntry(entry, products, nil, fixedDater)
		require.Len(t, matches, 2)
		assert.Equal(t, "A", matches[0].Product.ID)
		assert.Equal(t, "B", matches[1].Product.ID)
	})

	t.Run("no positive score yields no matches", func(t *testing.T) {
		entry := domain.WishlistEntry{ID: "w", Keywords: []string{"sequin"}}
		assert.Empty(t, s.ScoreEntry(entry, products, nil, fixedDater))
	})

	t.Run("takes at most the top three", func(t *testing.T) {
		many := []domain.Product{
			product("1", "Top", "Tops", "$1"),
			product("2", "Top", "Tops", "$1"),
			product("3", "Top", "Tops", "$1"),
			product("4", "Top", "Tops", "$1"),
		}
		entry := domain.WishlistEntry{ID: "w", Keywords: []string{"top"}}
		matches := s.ScoreEntry(entry, many, nil, fixedDater)
		assert.Equal(t, []string{"1", "2", "3"}, []string{matches[0].Product.ID, matches[1].Product.ID, matches[2].Product.ID})
	})

	t.Run("drops deleted match ids only", func(t *testing.T) {
		entry := domain.WishlistEntry{ID: "w1", Keywords: []string{"red", "top"}}
		matches := s.ScoreEntry(entry, products, map[string]bool{"match-w1-1": true}, fixedDater)

		require.Len(t, matches, 2)
		assert.Equal(t, "match-w1-0", matches[0].ID)
		assert.Equal(t, "match-w1-2", matches[1].ID)
	})

	t.Run("uses a stable date when no dater is given", func(t *testing.T) {
		entry := domain.WishlistEntry{ID: "w", Keywords: []string{"red"}}
		matches := s.ScoreEntry(entry, products, nil, nil)
		require.NotEmpty(t, matches)
		assert.False(t, matches[0].MatchDate.IsZero())
	})
}

func TestSelectProductsBackfill(t *testing.T) {
	s := NewMatchScorer(MatchConfig{TopMatches: 1, MinMatches: 2}, nil)
	products := []domain.Product{
		product("1", "Coat", "Coats", "$1"),
		product("2", "Parka", "Coats", "$1"),
		product("3", "Jacket", "Outerwear", "$1"),
	}

	selected := s.SelectProducts(products, []string{"coat"})

	require.Len(t, selected, 2)
	assert.Equal(t, "1", selected[0].Product.ID)
	assert.Equal(t, 15, selected[0].Score)
	assert.Equal(t, "2", selected[1].Product.ID)
	assert.Equal(t, 1, selected[1].Score)
}

func TestMatchPercent(t *testing.T) {
	tests := []struct {
		score, max, want int
	}{
		{25, 25, 98},
		{15, 25, 75},
		{24, 25, 94},
		{1, 1, 98},
		{1, 15, 75},
		{5, 0, 75},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchPercent(tt.score, tt.max), "MatchPercent(%d, %d)", tt.score, tt.max)
	}
}

func TestGenerateMatches(t *testing.T) {
	s := NewMatchScorer(MatchConfig{}, nil)
	catalog := scorerCatalog()
	entries := []domain.WishlistEntry{
		{ID: "w1", Title: "Red things", Status: domain.WishlistMatchFound, Keywords: []string{"red"}},
		{ID: "w2", Title: "Tops", Status: domain.WishlistWatching, Keywords: []string{"top"}},
		{ID: "w3", Title: "Tops", Status: domain.WishlistMatchFound, Keywords: []string{"top"}},
	}

	matches := s.GenerateMatches(entries, catalog, nil, fixedDater)

	seen := make(map[string]bool)
	for _, m := range matches {
		assert.NotEqual(t, "w2", m.WishlistID, "watching entries must not produce matches")
		assert.False(t, seen[m.ID], "duplicate match id %s", m.ID)
		seen[m.ID] = true

		percent, err := strconv.Atoi(strings.TrimSuffix(m.MatchScore, "%"))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, percent, 75)
		assert.LessOrEqual(t, percent, 98)
	}
	assert.Len(t, matches, 4)

	t.Run("deleting one match removes exactly that id", func(t *testing.T) {
		after := s.GenerateMatches(entries, catalog, map[string]bool{"match-w3-0": true}, fixedDater)
		require.Len(t, after, len(matches)-1)
		for _, m := range after {
			assert.NotEqual(t, "match-w3-0", m.ID)
		}
	})
}

func TestStableMatchDater(t *testing.T) {
	ref := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)
	dater := StableMatchDater(ref)

	first := dater("match-wish1-0")
	assert.Equal(t, first, dater("match-wish1-0"))
	assert.Equal(t, first, StableMatchDater(ref.Add(2*time.Hour))("match-wish1-0"))

	for _, id := range []string{"match-wish1-0", "match-wish3-2", "match-wish5-1"} {
		d := dater(id)
		assert.False(t, d.After(ref))
		assert.True(t, d.After(ref.AddDate(0, 0, -31)))
	}
}
