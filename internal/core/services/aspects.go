package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/relist-labs/relist-cli/internal/core/domain"
	"github.com/relist-labs/relist-cli/internal/core/ports/driven"
	"github.com/relist-labs/relist-cli/internal/logger"
)

// Ensure AspectFiller can receive custom prompts.
var _ driven.PromptStoreAware = (*AspectFiller)(nil)

// aspectMaxTokens bounds the fill completion.
const aspectMaxTokens = 2048

// defaultAspectFillPrompt is used when no PromptStore is configured.
// Placeholders: title, description, bullets, schema JSON.
const defaultAspectFillPrompt = `Extract marketplace listing aspect values for this product.

Product title: %s
Description: %s
Bullet features: %s

Aspect schema (JSON array; "mode" SELECTION_ONLY means the value MUST be
copied exactly from "allowed_values", "cardinality" MULTI means a list of
values is expected):
%s

Instructions:
1. Provide a best-effort value for every required aspect.
2. Provide recommended aspects only when the product data clearly
   supports a value; omit them otherwise.
3. Never guess a SELECTION_ONLY value that is not in allowed_values.
4. Keep every value concise.

Respond with a single JSON object mapping aspect names to a string (or a
list of strings for MULTI aspects) and nothing else.`

// AspectFiller extracts category aspect values from product data with a
// single batched completion call. The LLM is optional; without it the
// fill yields nothing, which is reportable downstream, not fatal.
type AspectFiller struct {
	llm       driven.LLMService
	prompts   driven.PromptStore
	protected map[string]struct{}

	// includeRecommended asks for recommended aspects as well as required.
	includeRecommended bool
}

// NewAspectFiller creates an aspect filler.
// The llm parameter is optional (can be nil).
func NewAspectFiller(llm driven.LLMService, settings domain.PipelineSettings) *AspectFiller {
	protected := make(map[string]struct{}, len(settings.ProtectedAspects))
	for _, name := range settings.ProtectedAspects {
		protected[strings.ToLower(name)] = struct{}{}
	}
	return &AspectFiller{
		llm:                llm,
		protected:          protected,
		includeRecommended: settings.IncludeRecommended,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (f *AspectFiller) SetPromptStore(store driven.PromptStore) {
	f.prompts = store
}

// Fill extracts values for the schema's aspects. The result is always
// usable: failures and unparseable output yield an empty fill, never an
// error that would sink the product.
func (f *AspectFiller) Fill(
	ctx context.Context, product domain.ProductSignal, schema domain.AspectSchema,
) (domain.FilledAspects, error) {
	wanted := f.wantedAspects(schema)
	if len(wanted) == 0 {
		logger.Debug("Category %s has no fillable aspects", schema.CategoryID)
		return domain.FilledAspects{}, nil
	}
	if f.llm == nil {
		logger.Debug("No LLM configured, skipping aspect fill")
		return domain.FilledAspects{}, nil
	}

	prompt, err := f.buildPrompt(product, wanted)
	if err != nil {
		logger.Warn("Aspect prompt build failed: %v", err)
		return domain.FilledAspects{}, nil
	}

	raw, err := f.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   aspectMaxTokens,
		Temperature: 0,
	})
	if err != nil {
		logger.Warn("Aspect fill completion failed: %v", err)
		return domain.FilledAspects{}, nil
	}

	filled := f.sanitize(parseAspectOutput(raw), wanted)
	logger.Debug("Filled %d/%d aspects for category %s", len(filled), len(wanted), schema.CategoryID)
	return filled, nil
}

// wantedAspects selects the schema entries the fill should cover:
// required aspects always, recommended when configured, protected never.
func (f *AspectFiller) wantedAspects(schema domain.AspectSchema) []domain.AspectRequirement {
	var wanted []domain.AspectRequirement
	for _, a := range schema.Aspects {
		if _, skip := f.protected[strings.ToLower(a.Name)]; skip {
			logger.Debug("Skipping protected aspect %q", a.Name)
			continue
		}
		if a.Required || (f.includeRecommended && a.Recommended) {
			wanted = append(wanted, a)
		}
	}
	return wanted
}

// buildPrompt renders the aspect fill prompt from the template.
func (f *AspectFiller) buildPrompt(product domain.ProductSignal, wanted []domain.AspectRequirement) (string, error) {
	template := defaultAspectFillPrompt
	if f.prompts != nil {
		if custom, err := f.prompts.Load(driven.PromptAspectFill); err == nil && custom != "" {
			template = custom
		}
	}

	type promptAspect struct {
		Name          string   `json:"name"`
		Required      bool     `json:"required"`
		Cardinality   string   `json:"cardinality"`
		Mode          string   `json:"mode"`
		AllowedValues []string `json:"allowed_values,omitempty"`
	}
	list := make([]promptAspect, len(wanted))
	for i, a := range wanted {
		list[i] = promptAspect{
			Name:          a.Name,
			Required:      a.Required,
			Cardinality:   string(a.Cardinality),
			Mode:          string(a.Mode),
			AllowedValues: a.AllowedValues,
		}
	}
	schemaJSON, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("marshal aspect schema: %w", err)
	}

	return fmt.Sprintf(template,
		product.Title,
		product.Description,
		strings.Join(product.BulletFeatures, "; "),
		string(schemaJSON),
	), nil
}

// sanitize validates the raw fill against the schema: unknown names are
// dropped, SELECTION_ONLY values must match the allowed list exactly,
// SINGLE aspects keep one value, and everything is length-clamped.
func (f *AspectFiller) sanitize(
	raw domain.FilledAspects, wanted []domain.AspectRequirement,
) domain.FilledAspects {
	out := make(domain.FilledAspects, len(raw))

	for _, req := range wanted {
		values, ok := raw[req.Name]
		if !ok || len(values) == 0 {
			continue
		}

		if req.Mode == domain.ModeSelectionOnly {
			values = filterAllowed(values, req.AllowedValues)
			if len(values) == 0 {
				logger.Warn("Aspect %q: no value matched the allowed list", req.Name)
				continue
			}
		}

		if req.Cardinality == domain.CardinalitySingle && len(values) > 1 {
			values = values[:1]
		}

		out[req.Name] = values
	}

	return domain.ClampAspects(out)
}

// filterAllowed keeps only values that match the allowed list exactly.
// Matching is case-sensitive; the marketplace rejects near-misses.
func filterAllowed(values, allowed []string) []string {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		allowedSet[a] = struct{}{}
	}
	var out []string
	for _, v := range values {
		if _, ok := allowedSet[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

// parseAspectOutput decodes the fill completion, tolerating markdown
// fences and both scalar and list values. Unparseable output yields an
// empty result.
func parseAspectOutput(raw string) domain.FilledAspects {
	var values map[string]any
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		if err := json.Unmarshal([]byte(StripJSONFences(raw)), &values); err != nil {
			logger.Warn("Unparseable aspect fill output: %v", err)
			return domain.FilledAspects{}
		}
	}

	out := make(domain.FilledAspects, len(values))
	for name, v := range values {
		switch value := v.(type) {
		case string:
			out[name] = []string{value}
		case []any:
			var list []string
			for _, item := range value {
				if s, ok := item.(string); ok {
					list = append(list, s)
				}
			}
			if len(list) > 0 {
				out[name] = list
			}
		default:
			// Numbers and booleans occasionally show up; stringify them.
			out[name] = []string{fmt.Sprintf("%v", value)}
		}
	}
	return out
}
