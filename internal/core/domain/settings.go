package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds completion provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// DefaultMarketplaceID is the regional site listings default to.
const DefaultMarketplaceID = "EBAY_US"

// MarketplaceSettings holds the marketplace application credentials used
// by the taxonomy client.
type MarketplaceSettings struct {
	// ClientID is the application client id.
	ClientID string

	// ClientSecret is the application client secret.
	ClientSecret string

	// MarketplaceID selects the regional site (e.g. "EBAY_US").
	MarketplaceID string

	// Sandbox targets the sandbox environment instead of production.
	Sandbox bool
}

// IsConfigured returns true when application credentials are present.
func (m MarketplaceSettings) IsConfigured() bool {
	return m.ClientID != "" && m.ClientSecret != ""
}

// Corpus builder defaults.
const (
	// DefaultDepthMin excludes categories too shallow to be useful.
	DefaultDepthMin = 2

	// DefaultDepthMax excludes categories too deep to be populated.
	DefaultDepthMax = 4

	// DefaultEmbedBatchSize is how many texts are embedded per call.
	DefaultEmbedBatchSize = 32

	// DefaultCorpusMaxAge matches the marketplace's quarterly taxonomy
	// update cadence.
	DefaultCorpusMaxAge = 90 * 24 * time.Hour
)

// CorpusSettings configures the category corpus builder.
type CorpusSettings struct {
	// DepthMin is the shallowest included category depth (inclusive).
	DepthMin int

	// DepthMax is the deepest included category depth (inclusive).
	DepthMax int

	// EmbedBatchSize is the embedding call batch size.
	EmbedBatchSize int

	// MaxAge is how old the corpus may grow before it is stale.
	MaxAge time.Duration
}

// DefaultCorpusSettings returns the documented corpus defaults.
func DefaultCorpusSettings() CorpusSettings {
	return CorpusSettings{
		DepthMin:       DefaultDepthMin,
		DepthMax:       DefaultDepthMax,
		EmbedBatchSize: DefaultEmbedBatchSize,
		MaxAge:         DefaultCorpusMaxAge,
	}
}

// Includes reports whether a category belongs in the corpus: leaves
// only, within the configured depth band.
func (s CorpusSettings) Includes(c Category) bool {
	if !c.Leaf {
		return false
	}
	return c.Depth >= s.DepthMin && c.Depth <= s.DepthMax
}

// Pipeline defaults.
const (
	// DefaultTopK is the candidate set size handed to disambiguation.
	DefaultTopK = 3

	// DefaultWorkers is the batch worker pool width.
	DefaultWorkers = 10

	// DefaultProductTimeout bounds one product's pipeline run.
	DefaultProductTimeout = 90 * time.Second
)

// PipelineSettings configures retrieval and the batch driver.
type PipelineSettings struct {
	// TopK is the number of candidates retrieval surfaces.
	TopK int

	// Workers is the batch worker pool width.
	Workers int

	// ProductTimeout is the wall-clock budget per product.
	ProductTimeout time.Duration

	// IncludeRecommended fills recommended aspects as well as required.
	IncludeRecommended bool

	// ProtectedAspects are field names the filler must never overwrite
	// because the caller sets them authoritatively.
	ProtectedAspects []string
}

// DefaultPipelineSettings returns the documented pipeline defaults.
func DefaultPipelineSettings() PipelineSettings {
	return PipelineSettings{
		TopK:               DefaultTopK,
		Workers:            DefaultWorkers,
		ProductTimeout:     DefaultProductTimeout,
		IncludeRecommended: true,
		ProtectedAspects:   []string{"Brand", "MPN", "Condition"},
	}
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds completion provider settings.
	LLM LLMSettings

	// Marketplace holds marketplace API credentials.
	Marketplace MarketplaceSettings

	// Corpus holds corpus builder settings.
	Corpus CorpusSettings

	// Pipeline holds retrieval and batch driver settings.
	Pipeline PipelineSettings
}

// DefaultAppSettings returns application defaults. AI providers and
// marketplace credentials are left unconfigured; the auth and config
// commands set them up.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{},
		LLM:       LLMSettings{},
		Marketplace: MarketplaceSettings{
			MarketplaceID: DefaultMarketplaceID,
		},
		Corpus:   DefaultCorpusSettings(),
		Pipeline: DefaultPipelineSettings(),
	}
}
