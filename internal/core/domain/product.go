package domain

import "strings"

// Query construction limits. The title carries the most signal, so it
// always leads the query; description and bullets add context only.
const (
	// QueryDescriptionLimit clamps how much description enters the query.
	QueryDescriptionLimit = 200

	// QueryBulletLimit is how many bullet features enter the query.
	QueryBulletLimit = 3
)

// ProductSignal is the free-text product context for one listing attempt.
// Only Title is required; every other field may be empty without failing
// downstream steps. Never persisted beyond the run.
type ProductSignal struct {
	// Title is the scraped product title (required).
	Title string

	// Description is the scraped long description.
	Description string

	// BulletFeatures are the scraped bullet-point features, in order.
	BulletFeatures []string

	// Specifications maps attribute names to free-text values
	// (e.g. "Brand" -> "Rain-X").
	Specifications map[string]string
}

// Validate checks that the signal carries a usable title.
func (p ProductSignal) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrInvalidInput
	}
	return nil
}

// QueryText builds the retrieval query: title first (priority by
// position), then clamped description, then the first few bullets.
func (p ProductSignal) QueryText() string {
	parts := []string{strings.TrimSpace(p.Title)}

	if desc := strings.TrimSpace(p.Description); desc != "" {
		if runes := []rune(desc); len(runes) > QueryDescriptionLimit {
			desc = string(runes[:QueryDescriptionLimit])
		}
		parts = append(parts, desc)
	}

	bullets := p.BulletFeatures
	if len(bullets) > QueryBulletLimit {
		bullets = bullets[:QueryBulletLimit]
	}
	for _, b := range bullets {
		if b = strings.TrimSpace(b); b != "" {
			parts = append(parts, b)
		}
	}

	return strings.Join(parts, " ")
}

// Specification looks up a specification value by name, trying the given
// keys in order. Lookup is case-insensitive on the key.
func (p ProductSignal) Specification(keys ...string) string {
	if len(p.Specifications) == 0 {
		return ""
	}
	for _, key := range keys {
		for name, value := range p.Specifications {
			if strings.EqualFold(name, key) && strings.TrimSpace(value) != "" {
				return strings.TrimSpace(value)
			}
		}
	}
	return ""
}
