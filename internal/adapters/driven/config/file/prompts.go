package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/relist-labs/relist-cli/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content
// for new files. The templates must keep the same Go fmt placeholders
// in the same order as the pipeline's built-in prompts.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptDisambiguate: `You are listing a product on an online marketplace. Pick the single best
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
{"brand": "...", "optimized_title": "...", "category_id": "...", "reasoning": "..."}`,

	driven.PromptAspectFill: `Extract marketplace listing aspect values for this product.

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
list of strings for MULTI aspects) and nothing else.`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.relist/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".relist", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Relist Prompts

This directory contains customisable prompts used by Relist's pipeline.

## Files

- ` + "`category_disambiguation.txt`" + ` - Picks a category from the retrieved candidates, extracts the brand and optimizes the title
- ` + "`aspect_fill.txt`" + ` - Fills category aspect values from product data

## Customisation

Edit any file to customise LLM behaviour. Changes take effect on the next
command.

## Format Placeholders

The prompts use Go fmt ` + "`%s`" + ` placeholders. The pipeline substitutes
product fields and JSON blocks positionally, so customised prompts must keep
every placeholder in its original order.
`
	return os.WriteFile(path, []byte(content), 0600)
}
