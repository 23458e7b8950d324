package domain

import (
	"strings"
	"unicode/utf8"
)

// AspectValueMaxLength is the hard per-value ceiling the marketplace
// enforces for aspect values.
const AspectValueMaxLength = 65

// AspectCardinality describes how many values an aspect accepts.
type AspectCardinality string

// Aspect cardinalities.
const (
	// CardinalitySingle accepts exactly one value.
	CardinalitySingle AspectCardinality = "SINGLE"

	// CardinalityMulti accepts a list of values.
	CardinalityMulti AspectCardinality = "MULTI"
)

// AspectMode describes how aspect values are constrained.
type AspectMode string

// Aspect modes.
const (
	// ModeFreeText accepts any extracted text value.
	ModeFreeText AspectMode = "FREE_TEXT"

	// ModeSelectionOnly requires an exact (case-sensitive) match against
	// AllowedValues.
	ModeSelectionOnly AspectMode = "SELECTION_ONLY"
)

// AspectRequirement is one schema element of a category's listing fields.
type AspectRequirement struct {
	// Name is the aspect name (e.g. "Color", "Material").
	Name string

	// Required is true when the marketplace demands a value.
	Required bool

	// Recommended is true for optional aspects the marketplace suggests.
	Recommended bool

	// Cardinality is SINGLE or MULTI.
	Cardinality AspectCardinality

	// Mode is FREE_TEXT or SELECTION_ONLY.
	Mode AspectMode

	// AllowedValues holds the closed value list for SELECTION_ONLY mode.
	AllowedValues []string
}

// AspectSchema is a category's full aspect requirement set.
type AspectSchema struct {
	// CategoryID the schema belongs to.
	CategoryID string

	// Aspects holds required, recommended and optional requirements.
	Aspects []AspectRequirement
}

// Required returns only the required aspects.
func (s AspectSchema) Required() []AspectRequirement {
	var out []AspectRequirement
	for _, a := range s.Aspects {
		if a.Required {
			out = append(out, a)
		}
	}
	return out
}

// Recommended returns only the recommended (non-required) aspects.
func (s AspectSchema) Recommended() []AspectRequirement {
	var out []AspectRequirement
	for _, a := range s.Aspects {
		if !a.Required && a.Recommended {
			out = append(out, a)
		}
	}
	return out
}

// FilledAspects maps aspect names to their values. SINGLE-cardinality
// aspects carry exactly one element. Every value respects
// AspectValueMaxLength after clamping.
type FilledAspects map[string][]string

// MissingRequired returns the required aspect names the fill did not
// cover. A non-empty result is reportable, not fatal.
func (f FilledAspects) MissingRequired(schema AspectSchema) []string {
	var missing []string
	for _, req := range schema.Required() {
		values, ok := f[req.Name]
		if !ok || len(values) == 0 {
			missing = append(missing, req.Name)
		}
	}
	return missing
}

// aspectDelimiters are clause boundaries preferred when truncating, in
// priority order.
var aspectDelimiters = []string{". ", ": ", "; ", ", "}

// TruncateAspectValue clamps a value to max characters with a three-tier
// strategy: clause delimiter past the midpoint, then word boundary with
// an ellipsis, then a hard cut with an ellipsis.
func TruncateAspectValue(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}

	// Cut in runes so a multibyte character is never split. The
	// delimiters and the space are ASCII, so byte positions inside the
	// cut are rune boundaries.
	cut := string(runes[:max-3]) // room for "..."

	for _, delim := range aspectDelimiters {
		if pos := strings.LastIndex(cut, delim); pos > 0 &&
			utf8.RuneCountInString(cut[:pos]) > max/2 {
			return strings.TrimSpace(cut[:pos])
		}
	}

	if idx := strings.LastIndex(cut, " "); idx > 0 {
		return strings.TrimSpace(cut[:idx]) + "..."
	}

	return strings.TrimSpace(cut) + "..."
}

// ClampAspects applies TruncateAspectValue to every value, scalar or
// element of a sequence, and drops empty entries.
func ClampAspects(aspects FilledAspects) FilledAspects {
	clamped := make(FilledAspects, len(aspects))
	for name, values := range aspects {
		var out []string
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			out = append(out, TruncateAspectValue(v, AspectValueMaxLength))
		}
		if len(out) > 0 {
			clamped[name] = out
		}
	}
	return clamped
}
