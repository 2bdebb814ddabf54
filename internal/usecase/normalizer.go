package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/prelovedguru/backend/internal/domain"
)

// CSV column headers of the product export
const (
	ColumnStyleID            = "Style ID"
	ColumnTitle              = "Title"
	ColumnProductCategory    = "Product Category"
	ColumnSize               = "Size"
	ColumnImageSrc           = "Image Src"
	ColumnPrice              = "Price"
	ColumnCategoryPrediction = "category_prediction"
	ColumnColorPrediction    = "color_prediction"
	ColumnPatternPrediction  = "pattern_prediction"
	ColumnOccasionPrediction = "occasion_prediction"
	ColumnCondition          = "condition"
)

const (
	defaultCategory      = "Uncategorized"
	defaultSize          = "One Size"
	defaultVintageMarker = "m"
	styleVintage         = "Vintage"
	styleModern          = "Modern"
)

// Package-level compiled regex patterns for performance
var imageExtensionRegex = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp|svg)($|\?)`)

// imageHostPatterns are substrings of asset-hosting URLs that serve images without an extension
var imageHostPatterns = []string{
	"cdn.shopify.com",
	"images.",
	".cloudfront.net",
	".s3.amazonaws.com",
	"img.",
	"cloudinary.com",
	"assets.",
	"media.",
}

// sizeAbbreviations maps common size abbreviations to their display names
var sizeAbbreviations = map[string]string{
	"XS":   "Extra Small",
	"S":    "Small",
	"M":    "Medium",
	"L":    "Large",
	"XL":   "Extra Large",
	"XXL":  "2X Large",
	"XXXL": "3X Large",
	"OS":   "One Size",
}

// placeholderPalette is indexed by the character-code sum of a product ID
var placeholderPalette = []string{
	"Black", "White", "Red", "Blue", "Green",
	"Yellow", "Purple", "Pink", "Brown", "Grey",
	"Navy", "Beige", "Cream", "Orange", "Teal",
}

// RowRejection explains why a CSV row was dropped
type RowRejection struct {
	Position int
	ID       string
	Reason   string
}

func (r *RowRejection) Error() string {
	return fmt.Sprintf("row %d (%q): %s", r.Position, r.ID, r.Reason)
}

func (r *RowRejection) Unwrap() error {
	return domain.ErrRowRejected
}

// NormalizerConfig holds configuration for the row normalizer
type NormalizerConfig struct {
	// VintageMarker is the ID prefix that tags a product as Vintage
	VintageMarker string
	// UsePredictions prefers the *_prediction columns for category and colour
	UsePredictions bool
	ColorDetector  domain.ColorDetector
}

// RowNormalizer converts raw CSV rows into canonical products
type RowNormalizer struct {
	vintageMarker  string
	usePredictions bool
	colorDetector  domain.ColorDetector
}

// NewRowNormalizer creates a new row normalizer with the given configuration
func NewRowNormalizer(config NormalizerConfig) *RowNormalizer {
	marker := config.VintageMarker
	if marker == "" {
		marker = defaultVintageMarker
	}

	detector := config.ColorDetector
	if detector == nil {
		detector = PlaceholderColorDetector{}
	}

	return &RowNormalizer{
		vintageMarker:  marker,
		usePredictions: config.UsePredictions,
		colorDetector:  detector,
	}
}

// Normalize validates a row and derives a Product from it.
// A rejected row returns a *RowRejection wrapping domain.ErrRowRejected.
func (n *RowNormalizer) Normalize(row domain.RawRow) (*domain.Product, error) {
	id := row.Get(ColumnStyleID)
	title := row.Get(ColumnTitle)
	image := row.Get(ColumnImageSrc)

	if id == "" || title == "" || image == "" {
		return nil, &RowRejection{Position: row.Position, ID: id, Reason: "missing required fields"}
	}

	if !IsValidImageURL(image) {
		return nil, &RowRejection{Position: row.Position, ID: id, Reason: fmt.Sprintf("invalid image URL %q", image)}
	}

	category := row.Get(ColumnProductCategory)
	if n.usePredictions {
		if predicted := row.Get(ColumnCategoryPrediction); predicted != "" {
			category = predicted
		}
	}
	if category == "" {
		category = defaultCategory
	}

	product := &domain.Product{
		ID:        id,
		Title:     title,
		ImageURL:  image,
		Price:     FormatPrice(row.Get(ColumnPrice)),
		Category:  category,
		Size:      StandardizeSize(row.Get(ColumnSize)),
		Style:     n.deriveStyle(id),
		Pattern:   row.Get(ColumnPatternPrediction),
		Occasion:  row.Get(ColumnOccasionPrediction),
		Condition: row.Get(ColumnCondition),
	}

	if n.usePredictions && row.Get(ColumnColorPrediction) != "" {
		product.Color = row.Get(ColumnColorPrediction)
	} else {
		product.Color = n.colorDetector.DetectColor(*product)
	}

	return product, nil
}

// deriveStyle tags products whose ID starts with the vintage marker
func (n *RowNormalizer) deriveStyle(id string) string {
	if strings.HasPrefix(id, n.vintageMarker) {
		return styleVintage
	}
	return styleModern
}

// IsValidImageURL accepts image-extension URLs, known asset hosts and data:image URIs,
// and rejects placeholders.
func IsValidImageURL(url string) bool {
	if strings.TrimSpace(url) == "" || url == "undefined" {
		return false
	}
	if strings.Contains(url, "placeholder") {
		return false
	}

	if imageExtensionRegex.MatchString(url) || strings.HasPrefix(url, "data:image/") {
		return true
	}
	for _, host := range imageHostPatterns {
		if strings.Contains(url, host) {
			return true
		}
	}
	return false
}

// FormatPrice strips every "$" from the raw price and prefixes exactly one.
// An empty price becomes "$0".
func FormatPrice(price string) string {
	if price == "" {
		return "$0"
	}
	return "$" + strings.ReplaceAll(price, "$", "")
}

// StandardizeSize maps size abbreviations to display names; unknown values pass through
func StandardizeSize(size string) string {
	normalized := strings.TrimSpace(size)
	if normalized == "" {
		return defaultSize
	}
	if mapped, ok := sizeAbbreviations[normalized]; ok {
		return mapped
	}
	return normalized
}

// PlaceholderColorDetector stands in for real colour recognition: it picks a palette
// entry from the sum of the ID's character codes.
type PlaceholderColorDetector struct{}

// DetectColor returns the placeholder colour for a product
func (PlaceholderColorDetector) DetectColor(product domain.Product) string {
	return PlaceholderColor(product.ID)
}

// PlaceholderColor returns the palette colour for an ID
func PlaceholderColor(id string) string {
	sum := 0
	for _, r := range id {
		sum += int(r)
	}
	return placeholderPalette[sum%len(placeholderPalette)]
}
