package domain

import (
	"strings"
	"unicode"
)

// Listing text limits enforced by the marketplace.
const (
	// TitleMaxLength is the hard ceiling for listing titles.
	TitleMaxLength = 80

	// BrandSentinel is the placeholder used when no valid brand exists.
	BrandSentinel = "Generic"

	// BrandMinLength is the shortest acceptable brand name.
	// Anything shorter is almost always an article or filler word.
	BrandMinLength = 3
)

// rejectedBrands are filler tokens the marketplace rejects as brand names.
var rejectedBrands = map[string]struct{}{
	"custom":       {},
	"personalized": {},
	"handmade":     {},
	"vintage":      {},
	"unique":       {},
	"new":          {},
	"brand":        {},
	"the":          {},
	"a":            {},
	"an":           {},
	"with":         {},
	"for":          {},
	"and":          {},
	"n/a":          {},
	"none":         {},
	"unknown":      {},
	"generic":      {},
}

// ListingDraft is the final disambiguation decision for one product:
// the selected category, an optimized title, a brand, and the retrieval
// similarity of the selected candidate.
type ListingDraft struct {
	// CategoryID is the selected category. Always drawn from the
	// candidate set the retriever surfaced.
	CategoryID string

	// CategoryName is the selected category's display name.
	CategoryName string

	// OptimizedTitle is the listing title, at most TitleMaxLength chars.
	OptimizedTitle string

	// Brand is the extracted brand, or BrandSentinel when unknown.
	Brand string

	// Confidence is the retrieval similarity of the selected candidate.
	// Not a self-reported model confidence.
	Confidence float64

	// Reasoning is the completion's free-text explanation. Logged only.
	Reasoning string

	// Degraded is true when the draft was produced without a completion
	// (pure-retrieval fallback).
	Degraded bool
}

// TruncateTitle clamps a title to max characters, breaking at the last
// word boundary at or before the ceiling. Hard-truncates only when no
// space exists before the ceiling.
func TruncateTitle(title string, max int) string {
	title = strings.TrimSpace(title)
	runes := []rune(title)
	if len(runes) <= max {
		return title
	}

	// Cut in runes so a multibyte character is never split.
	cut := string(runes[:max])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		return strings.TrimSpace(cut[:idx])
	}
	return strings.TrimSpace(cut)
}

// ValidateBrand cleans a brand string, substituting BrandSentinel for
// empty, too-short, or rejected filler values.
func ValidateBrand(brand string) string {
	brand = strings.TrimSpace(brand)
	if len(brand) < BrandMinLength {
		return BrandSentinel
	}
	if _, rejected := rejectedBrands[strings.ToLower(brand)]; rejected {
		return BrandSentinel
	}
	return brand
}

// ExtractBrandSimple is the no-completion brand source for the degraded
// path: explicit specification fields first, then a capitalized first
// word of the title.
func ExtractBrandSimple(p ProductSignal) string {
	if brand := p.Specification("Brand", "Brand Name", "BrandName", "Manufacturer"); brand != "" {
		return ValidateBrand(brand)
	}

	fields := strings.Fields(p.Title)
	if len(fields) > 0 {
		first := fields[0]
		runes := []rune(first)
		if len(first) >= BrandMinLength && unicode.IsUpper(runes[0]) {
			return ValidateBrand(first)
		}
	}

	return BrandSentinel
}
