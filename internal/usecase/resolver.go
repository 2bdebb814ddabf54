package usecase

import (
	"regexp"
	"strings"

	"github.com/prelovedguru/backend/internal/domain"
)

var schemeRegex = regexp.MustCompile(`(?i)^https?://`)

const (
	signatureLength         = 20
	minSignatureLength      = 10
	minIdentifierFileLength = 6
)

// NormalizeImageURL drops the query string, a trailing slash and the http(s)
// scheme, then lower-cases what is left.
func NormalizeImageURL(url string) string {
	url, _, _ = strings.Cut(url, "?")
	url = strings.TrimSuffix(url, "/")
	url = schemeRegex.ReplaceAllString(url, "")
	return strings.ToLower(url)
}

// ResolveByURL finds the catalog product behind a pasted image URL. Rules are
// tried from strictest to loosest and the first hit wins: exact normalized URL,
// same filename, shared 20-character suffix, then filename stem against product ID.
// Loose rules can return false positives; results must be labelled as simulated.
func ResolveByURL(url string, products []domain.Product) (domain.Product, bool) {
	if url == "" || len(products) == 0 {
		return domain.Product{}, false
	}

	normalized := NormalizeImageURL(url)
	candidates := make([]string, len(products))
	for i, p := range products {
		candidates[i] = NormalizeImageURL(p.ImageURL)
	}

	for i, c := range candidates {
		if products[i].ImageURL != "" && c == normalized {
			return products[i], true
		}
	}

	if filename := lastSegment(normalized); filename != "" {
		for i, c := range candidates {
			if products[i].ImageURL != "" && lastSegment(c) == filename {
				return products[i], true
			}
		}
	}

	if signature := urlSignature(normalized); len([]rune(signature)) >= minSignatureLength {
		for i, c := range candidates {
			if products[i].ImageURL == "" {
				continue
			}
			if strings.Contains(c, signature) || strings.Contains(signature, c) {
				return products[i], true
			}
		}
	}

	if strings.Contains(url, "/") {
		filename := lastSegment(url)
		if len([]rune(filename)) >= minIdentifierFileLength {
			stem, _, _ := strings.Cut(filename, ".")
			if stem != "" {
				for _, p := range products {
					if strings.Contains(p.ID, stem) || (p.ID != "" && strings.Contains(stem, p.ID)) {
						return p, true
					}
				}
			}
		}
	}

	return domain.Product{}, false
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// urlSignature is the last 20 characters of a normalized URL, or all of it when shorter
func urlSignature(normalized string) string {
	r := []rune(normalized)
	if len(r) > signatureLength {
		return string(r[len(r)-signatureLength:])
	}
	return normalized
}

// DetectAttributes simulates attribute recognition for a pasted image URL by
// resolving it against the catalog. A missing scheme defaults to https.
func DetectAttributes(url string, catalog *domain.Catalog) domain.AttributeDetection {
	processed := strings.TrimSpace(url)
	if processed != "" && !schemeRegex.MatchString(processed) {
		processed = "https://" + processed
	}

	detection := domain.AttributeDetection{Simulated: true, SourceURL: processed}
	if processed == "" {
		return detection
	}

	if product, ok := ResolveByURL(processed, catalog.ProductsCopy()); ok {
		detection.Matched = true
		detection.Product = &product
	}
	return detection
}
