// internal/models/intent.go
package models

import (
	"math"
	"strings"
	"unicode"
)

// SearchIntent is the structured form of an utterance. Search is never nil
// (empty means no term); MaxPrice is nil or a finite value >= 0.
type SearchIntent struct {
	Search   string   `json:"search"`
	MaxPrice *float64 `json:"max_price"`
}

// NeutralIntent is the intent used whenever extraction or parsing fails.
func NeutralIntent() SearchIntent {
	return SearchIntent{Search: "", MaxPrice: nil}
}

// NewSearchIntent cleans and trims search and drops a price that is
// negative or not finite. A price of -0 becomes 0.
func NewSearchIntent(search string, maxPrice *float64) SearchIntent {
	intent := SearchIntent{Search: strings.TrimSpace(stripControl(search))}
	if maxPrice != nil && ValidPrice(*maxPrice) {
		p := *maxPrice
		if p == 0 {
			p = 0
		}
		intent.MaxPrice = &p
	}
	return intent
}

// stripControl turns control whitespace into spaces and drops every other
// control character. Postgres rejects NUL in text arguments.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t', r == '\n', r == '\r':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}

// ValidPrice reports whether v may be bound as a price ceiling.
func ValidPrice(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// HasSearch reports whether a term filter applies.
func (i SearchIntent) HasSearch() bool {
	return strings.TrimSpace(i.Search) != ""
}

// HasMaxPrice reports whether a price ceiling applies.
func (i SearchIntent) HasMaxPrice() bool {
	return i.MaxPrice != nil && ValidPrice(*i.MaxPrice)
}

// IsNeutral reports whether no filter applies.
func (i SearchIntent) IsNeutral() bool {
	return !i.HasSearch() && !i.HasMaxPrice()
}
