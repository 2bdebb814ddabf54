package usecase

import (
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ParsePrice reads the numeric value of a display price such as "$45.50".
// Everything but digits and dots is dropped, then the longest leading decimal
// number is parsed. Prices that yield no number count as 0.
func ParsePrice(price string) float64 {
	var b strings.Builder
	for _, r := range price {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	end := 0
	seenDot := false
	for end < len(cleaned) {
		c := cleaned[end]
		if c == '.' {
			if seenDot {
				break
			}
			seenDot = true
		}
		end++
	}

	value, err := strconv.ParseFloat(strings.TrimSuffix(cleaned[:end], "."), 64)
	if err != nil {
		return 0
	}
	return value
}

// newCollator returns an English collator. Collators are not safe for concurrent
// use, so callers create one per operation.
func newCollator() *collate.Collator {
	return collate.New(language.English)
}
