package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/relist-labs/relist-cli/internal/core/domain"
	"github.com/relist-labs/relist-cli/internal/core/ports/driven"
	"github.com/relist-labs/relist-cli/internal/logger"
)

// Ensure Disambiguator can receive custom prompts.
var _ driven.PromptStoreAware = (*Disambiguator)(nil)

// decisionMaxTokens bounds the completion; the decision JSON is small.
const decisionMaxTokens = 1024

// defaultDisambiguationPrompt is used when no PromptStore is configured.
// Placeholders: title, description, bullets, specifications, candidates.
const defaultDisambiguationPrompt = `You are listing a product on an online marketplace. Pick the single best
category for it from the candidates below.

Product title: %s
Description: %s
Bullet features: %s
Specifications: %s

Candidate categories (JSON array, each with category_id, name and the full
path from the taxonomy root):
%s

Instructions:
1. Infer the product's target domain from the title and specifications
   (e.g. a baby care item is not a pet grooming item).
2. Eliminate candidates whose path root contradicts that domain.
3. Select the best remaining candidate. You must pick one of the given
   category_id values; never invent a new one.
4. Extract the brand. Prefer an explicit Brand/Manufacturer specification;
   use "Generic" when there is no real brand.
5. Write an optimized listing title of at most 80 characters, keeping the
   brand and key attributes.

Respond with a single JSON object and nothing else:
{"brand": "...", "optimized_title": "...", "category_id": "...", "reasoning": "..."}`

// decision is the completion's output contract.
type decision struct {
	Brand          string `json:"brand"`
	OptimizedTitle string `json:"optimized_title"`
	CategoryID     string `json:"category_id"`
	Reasoning      string `json:"reasoning"`
}

// Disambiguator selects one category from the retrieved candidates and
// produces the listing draft: category, optimized title, brand. The LLM
// is optional; without it every decision takes the degraded path.
type Disambiguator struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewDisambiguator creates a disambiguator.
// The llm parameter is optional (can be nil).
func NewDisambiguator(llm driven.LLMService) *Disambiguator {
	return &Disambiguator{llm: llm}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (d *Disambiguator) SetPromptStore(store driven.PromptStore) {
	d.prompts = store
}

// Decide selects a category for the product from the candidate set.
// Every failure mode past an empty candidate set degrades instead of
// failing: the caller always gets a complete draft.
func (d *Disambiguator) Decide(
	ctx context.Context, product domain.ProductSignal, candidates domain.CandidateSet,
) (domain.ListingDraft, error) {
	if candidates.IsEmpty() {
		return domain.ListingDraft{}, domain.ErrEmptyCandidateSet
	}

	if d.llm == nil {
		logger.Debug("No LLM configured, using retrieval-only decision")
		return FallbackDraft(product, candidates), nil
	}

	prompt, err := d.buildPrompt(product, candidates)
	if err != nil {
		logger.Warn("Disambiguation prompt build failed: %v", err)
		return FallbackDraft(product, candidates), nil
	}

	raw, err := d.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   decisionMaxTokens,
		Temperature: 0,
	})
	if err != nil {
		logger.Warn("Disambiguation completion failed: %v (degrading to retrieval)", err)
		return FallbackDraft(product, candidates), nil
	}

	return DecideFromCompletion(raw, product, candidates), nil
}

// buildPrompt renders the disambiguation prompt from the template.
func (d *Disambiguator) buildPrompt(product domain.ProductSignal, candidates domain.CandidateSet) (string, error) {
	template := defaultDisambiguationPrompt
	if d.prompts != nil {
		if custom, err := d.prompts.Load(driven.PromptDisambiguate); err == nil && custom != "" {
			template = custom
		}
	}

	type promptCandidate struct {
		CategoryID string `json:"category_id"`
		Name       string `json:"name"`
		Path       string `json:"path"`
	}
	list := make([]promptCandidate, len(candidates))
	for i, c := range candidates {
		list[i] = promptCandidate{CategoryID: c.CategoryID, Name: c.Name, Path: c.PathString()}
	}
	candidatesJSON, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("marshal candidates: %w", err)
	}

	specs := make([]string, 0, len(product.Specifications))
	for name, value := range product.Specifications {
		specs = append(specs, name+": "+value)
	}

	return fmt.Sprintf(template,
		product.Title,
		product.Description,
		strings.Join(product.BulletFeatures, "; "),
		strings.Join(specs, "; "),
		string(candidatesJSON),
	), nil
}

// DecideFromCompletion turns a raw completion into a validated draft.
// It never fails: unparseable output degrades to the retrieval fallback,
// and every field the completion got wrong is corrected in place.
func DecideFromCompletion(
	raw string, product domain.ProductSignal, candidates domain.CandidateSet,
) domain.ListingDraft {
	dec, err := parseDecision(raw)
	if err != nil {
		logger.Warn("Unparseable disambiguation output: %v (degrading to retrieval)", err)
		return FallbackDraft(product, candidates)
	}

	selected, ok := candidates.Find(dec.CategoryID)
	if !ok {
		// The completion invented a category id. The top candidate is
		// the best evidence we have.
		logger.Warn("Completion selected out-of-set category %q, substituting top candidate %s",
			dec.CategoryID, candidates.Top().CategoryID)
		selected = candidates.Top()
	}

	title := strings.TrimSpace(dec.OptimizedTitle)
	if title == "" {
		title = product.Title
	}
	if n := utf8.RuneCountInString(title); n > domain.TitleMaxLength {
		logger.Warn("Completion title is %d chars, truncating to %d", n, domain.TitleMaxLength)
		title = domain.TruncateTitle(title, domain.TitleMaxLength)
	}

	brand := domain.ValidateBrand(dec.Brand)

	return domain.ListingDraft{
		CategoryID:     selected.CategoryID,
		CategoryName:   selected.Name,
		OptimizedTitle: title,
		Brand:          brand,
		Confidence:     selected.Similarity,
		Reasoning:      dec.Reasoning,
	}
}

// FallbackDraft is the no-completion decision: top candidate by
// similarity, naive title truncation, specification-derived brand.
func FallbackDraft(product domain.ProductSignal, candidates domain.CandidateSet) domain.ListingDraft {
	top := candidates.Top()
	return domain.ListingDraft{
		CategoryID:     top.CategoryID,
		CategoryName:   top.Name,
		OptimizedTitle: domain.TruncateTitle(product.Title, domain.TitleMaxLength),
		Brand:          domain.ExtractBrandSimple(product),
		Confidence:     top.Similarity,
		Reasoning:      "selected by retrieval similarity",
		Degraded:       true,
	}
}

// parseDecision decodes the completion output: strict JSON first, then a
// fence-stripped retry for models that wrap JSON in markdown.
func parseDecision(raw string) (decision, error) {
	var dec decision
	if err := json.Unmarshal([]byte(raw), &dec); err == nil {
		return dec, validateDecisionShape(dec)
	}

	stripped := StripJSONFences(raw)
	if err := json.Unmarshal([]byte(stripped), &dec); err != nil {
		return decision{}, fmt.Errorf("decode decision JSON: %w", err)
	}
	return dec, validateDecisionShape(dec)
}

// validateDecisionShape rejects output that decoded but carries none of
// the contract fields (e.g. an unrelated JSON object).
func validateDecisionShape(dec decision) error {
	if dec.CategoryID == "" && dec.OptimizedTitle == "" && dec.Brand == "" {
		return fmt.Errorf("decision JSON missing contract fields: %w", domain.ErrInvalidInput)
	}
	return nil
}

// StripJSONFences recovers a JSON object from markdown-fenced or chatty
// completion output by cutting from the first '{' to the last '}'.
func StripJSONFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
