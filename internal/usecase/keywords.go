package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Package-level compiled regex pattern for performance
var punctuationRegex = regexp.MustCompile(`[^\w\s]`)

// minFallbackKeywordLength is the shortest title word used when an entry has no keywords
const minFallbackKeywordLength = 4

// NormalizeKeywords lower-cases and trims keywords, dropping blanks and repeats
// while keeping their order.
func NormalizeKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// TitleKeywords splits a title into lower-case words longer than three characters
func TitleKeywords(title string) []string {
	words := strings.Fields(strings.ToLower(title))

	keywords := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) >= minFallbackKeywordLength {
			keywords = append(keywords, w)
		}
	}
	return NormalizeKeywords(keywords)
}
