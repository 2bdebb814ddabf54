package usecase

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prelovedguru/backend/internal/domain"
)

func TestNewRowNormalizer(t *testing.T) {
	t.Run("uses defaults", func(t *testing.T) {
		n := NewRowNormalizer(NormalizerConfig{})
		if n.vintageMarker != "m" {
			t.Errorf("vintageMarker = %q, want %q", n.vintageMarker, "m")
		}
		if n.usePredictions {
			t.Error("usePredictions should default to false")
		}
		if _, ok := n.colorDetector.(PlaceholderColorDetector); !ok {
			t.Errorf("colorDetector = %T, want PlaceholderColorDetector", n.colorDetector)
		}
	})

	t.Run("uses custom values", func(t *testing.T) {
		n := NewRowNormalizer(NormalizerConfig{VintageMarker: "v", UsePredictions: true})
		if n.vintageMarker != "v" {
			t.Errorf("vintageMarker = %q, want %q", n.vintageMarker, "v")
		}
		if !n.usePredictions {
			t.Error("usePredictions should be true")
		}
	})
}

func TestNormalize(t *testing.T) {
	n := NewRowNormalizer(NormalizerConfig{})

	t.Run("normalizes a complete row", func(t *testing.T) {
		p, err := n.Normalize(row(1, map[string]string{
			ColumnStyleID:           "m1114",
			ColumnTitle:             "Floral Midi Dress",
			ColumnImageSrc:          "https://cdn.shopify.com/s/files/dress.jpg?v=1",
			ColumnPrice:             "$$45",
			ColumnProductCategory:   "Dresses",
			ColumnSize:              " XL ",
			ColumnPatternPrediction: "Floral",
			ColumnCondition:         "Good",
		}))
		require.NoError(t, err)

		assert.Equal(t, "m1114", p.ID)
		assert.Equal(t, "Floral Midi Dress", p.Title)
		assert.Equal(t, "$45", p.Price)
		assert.Equal(t, "Dresses", p.Category)
		assert.Equal(t, "Extra Large", p.Size)
		assert.Equal(t, "Vintage", p.Style)
		assert.Equal(t, PlaceholderColor("m1114"), p.Color)
		assert.Equal(t, "Floral", p.Pattern)
		assert.Equal(t, "Good", p.Condition)
	})

	t.Run("applies defaults", func(t *testing.T) {
		p, err := n.Normalize(row(2, map[string]string{
			ColumnStyleID:  "4448",
			ColumnTitle:    "Plain Tee",
			ColumnImageSrc: "https://example.com/tee.png",
		}))
		require.NoError(t, err)

		assert.Equal(t, "$0", p.Price)
		assert.Equal(t, "Uncategorized", p.Category)
		assert.Equal(t, "One Size", p.Size)
		assert.Equal(t, "Modern", p.Style)
	})

	t.Run("prefers predictions when enabled", func(t *testing.T) {
		withPredictions := NewRowNormalizer(NormalizerConfig{UsePredictions: true})
		fields := map[string]string{
			ColumnStyleID:            "8455",
			ColumnTitle:              "Wool Coat",
			ColumnImageSrc:           "https://example.com/coat.jpg",
			ColumnProductCategory:    "Jackets",
			ColumnCategoryPrediction: "Outerwear",
			ColumnColorPrediction:    "Camel",
		}

		p, err := withPredictions.Normalize(row(3, fields))
		require.NoError(t, err)
		assert.Equal(t, "Outerwear", p.Category)
		assert.Equal(t, "Camel", p.Color)

		p, err = n.Normalize(row(3, fields))
		require.NoError(t, err)
		assert.Equal(t, "Jackets", p.Category)
		assert.Equal(t, PlaceholderColor("8455"), p.Color)
	})

	rejected := []struct {
		name   string
		fields map[string]string
	}{
		{"missing id", map[string]string{ColumnTitle: "T", ColumnImageSrc: "https://x.com/a.jpg"}},
		{"missing title", map[string]string{ColumnStyleID: "1", ColumnImageSrc: "https://x.com/a.jpg"}},
		{"missing image", map[string]string{ColumnStyleID: "1", ColumnTitle: "T"}},
		{"placeholder image", map[string]string{ColumnStyleID: "1", ColumnTitle: "T", ColumnImageSrc: "https://x.com/placeholder.jpg"}},
		{"undefined image", map[string]string{ColumnStyleID: "1", ColumnTitle: "T", ColumnImageSrc: "undefined"}},
		{"not an image", map[string]string{ColumnStyleID: "1", ColumnTitle: "T", ColumnImageSrc: "https://example.com/page.html"}},
	}

	for _, tt := range rejected {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			p, err := n.Normalize(row(7, tt.fields))
			if p != nil {
				t.Errorf("expected no product, got %+v", p)
			}
			if !errors.Is(err, domain.ErrRowRejected) {
				t.Fatalf("error = %v, want ErrRowRejected", err)
			}
			var rejection *RowRejection
			if !errors.As(err, &rejection) {
				t.Fatalf("error = %T, want *RowRejection", err)
			}
			if rejection.Position != 7 {
				t.Errorf("Position = %d, want 7", rejection.Position)
			}
		})
	}
}

func TestNormalizePriceShape(t *testing.T) {
	n := NewRowNormalizer(NormalizerConfig{})
	pricePattern := regexp.MustCompile(`^\$\d`)

	for _, raw := range []string{"", "0", "12", "$12", "$$12.50", "12$", "$1$2$"} {
		p, err := n.Normalize(row(1, map[string]string{
			ColumnStyleID:  "1111",
			ColumnTitle:    "Skirt",
			ColumnImageSrc: "https://example.com/skirt.jpg",
			ColumnPrice:    raw,
		}))
		require.NoError(t, err)

		if !pricePattern.MatchString(p.Price) {
			t.Errorf("price %q from %q does not start with $<digit>", p.Price, raw)
		}
		if strings.Count(p.Price, "$") != 1 {
			t.Errorf("price %q from %q has %d dollar signs", p.Price, raw, strings.Count(p.Price, "$"))
		}
	}
}

func TestIsValidImageURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/a.jpg", true},
		{"https://example.com/a.JPEG?width=200", true},
		{"https://example.com/a.webp", true},
		{"https://example.com/icon.svg", true},
		{"https://cdn.shopify.com/s/files/1/abc", true},
		{"https://d1234.cloudfront.net/item", true},
		{"https://bucket.s3.amazonaws.com/item", true},
		{"https://res.cloudinary.com/demo/upload/sample", true},
		{"https://images.example.com/item", true},
		{"data:image/png;base64,AAAA", true},
		{"https://example.com/placeholder.jpg", false},
		{"undefined", false},
		{"", false},
		{"   ", false},
		{"https://example.com/page", false},
		{"https://example.com/a.jpgx", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsValidImageURL(tt.url); got != tt.want {
				t.Errorf("IsValidImageURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"$$45", "$45"},
		{"", "$0"},
		{"45", "$45"},
		{"$45.99", "$45.99"},
		{"4$5", "$45"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPrice(tt.input))
		})
	}
}

func TestStandardizeSize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"XS", "Extra Small"},
		{"S", "Small"},
		{"M", "Medium"},
		{"L", "Large"},
		{"XL", "Extra Large"},
		{"XXL", "2X Large"},
		{"XXXL", "3X Large"},
		{"OS", "One Size"},
		{"  M  ", "Medium"},
		{"", "One Size"},
		{"   ", "One Size"},
		{"Custom-Fit", "Custom-Fit"},
		{"10", "10"},
		{"xs", "xs"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := StandardizeSize(tt.input); got != tt.want {
				t.Errorf("StandardizeSize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPlaceholderColor(t *testing.T) {
	t.Run("sums character codes modulo palette size", func(t *testing.T) {
		// 'A' = 65, 65 % 15 = 5
		assert.Equal(t, "Yellow", PlaceholderColor("A"))
		// 109+49+49+49+52 = 308, 308 % 15 = 8
		assert.Equal(t, "Brown", PlaceholderColor("m1114"))
	})

	t.Run("is deterministic", func(t *testing.T) {
		assert.Equal(t, PlaceholderColor("2467"), PlaceholderColor("2467"))
	})

	t.Run("detector reads the product id", func(t *testing.T) {
		got := PlaceholderColorDetector{}.DetectColor(domain.Product{ID: "A"})
		assert.Equal(t, "Yellow", got)
	})
}

type fixedColorDetector string

func (f fixedColorDetector) DetectColor(domain.Product) string { return string(f) }

func TestNormalizeWithCustomDetector(t *testing.T) {
	n := NewRowNormalizer(NormalizerConfig{ColorDetector: fixedColorDetector("Olive")})

	p, err := n.Normalize(validRow(1, "1149", "Linen Shirt"))
	require.NoError(t, err)
	assert.Equal(t, "Olive", p.Color)
}
