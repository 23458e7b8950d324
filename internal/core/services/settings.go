package services

import (
	"fmt"
	"time"

	"github.com/relist-labs/relist-cli/internal/core/domain"
	"github.com/relist-labs/relist-cli/internal/core/ports/driven"
	"github.com/relist-labs/relist-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyMktClientID     = "marketplace.client_id"
	keyMktClientSecret = "marketplace.client_secret"
	keyMktMarketplace  = "marketplace.marketplace_id"
	keyMktSandbox      = "marketplace.sandbox"
	keyCorpusDepthMin  = "corpus.depth_min"
	keyCorpusDepthMax  = "corpus.depth_max"
	keyCorpusBatchSize = "corpus.embed_batch_size"
	keyCorpusMaxAge    = "corpus.max_age_days"
	keyPipeTopK        = "pipeline.top_k"
	keyPipeWorkers     = "pipeline.workers"
	keyPipeTimeout     = "pipeline.product_timeout_seconds"
	keyPipeRecommended = "pipeline.include_recommended"
	keyPipeProtected   = "pipeline.protected_aspects"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings. Absent keys fall back to
// documented defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.configStore.GetString(keyEmbedModel),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.configStore.GetString(keyLLMModel),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Marketplace: domain.MarketplaceSettings{
			ClientID:      s.configStore.GetString(keyMktClientID),
			ClientSecret:  s.configStore.GetString(keyMktClientSecret),
			MarketplaceID: s.getString(keyMktMarketplace, defaults.Marketplace.MarketplaceID),
			Sandbox:       s.configStore.GetBool(keyMktSandbox),
		},
		Corpus: domain.CorpusSettings{
			DepthMin:       s.getInt(keyCorpusDepthMin, defaults.Corpus.DepthMin),
			DepthMax:       s.getInt(keyCorpusDepthMax, defaults.Corpus.DepthMax),
			EmbedBatchSize: s.getInt(keyCorpusBatchSize, defaults.Corpus.EmbedBatchSize),
			MaxAge:         s.getDays(keyCorpusMaxAge, defaults.Corpus.MaxAge),
		},
		Pipeline: domain.PipelineSettings{
			TopK:               s.getInt(keyPipeTopK, defaults.Pipeline.TopK),
			Workers:            s.getInt(keyPipeWorkers, defaults.Pipeline.Workers),
			ProductTimeout:     s.getSeconds(keyPipeTimeout, defaults.Pipeline.ProductTimeout),
			IncludeRecommended: s.getBool(keyPipeRecommended, defaults.Pipeline.IncludeRecommended),
			ProtectedAspects:   s.getStringSlice(keyPipeProtected, defaults.Pipeline.ProtectedAspects),
		},
	}

	return settings, nil
}

// Save persists application settings. Secrets are only written when
// set, so saving loaded settings never blanks stored credentials.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}

	if err := s.configStore.Set(keyLLMProvider, settings.LLM.Provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, settings.LLM.Model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if err := s.configStore.Set(keyLLMBaseURL, settings.LLM.BaseURL); err != nil {
		return fmt.Errorf("save llm base_url: %w", err)
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	if settings.Marketplace.ClientID != "" {
		if err := s.configStore.Set(keyMktClientID, settings.Marketplace.ClientID); err != nil {
			return fmt.Errorf("save marketplace client_id: %w", err)
		}
	}
	if settings.Marketplace.ClientSecret != "" {
		if err := s.configStore.Set(keyMktClientSecret, settings.Marketplace.ClientSecret); err != nil {
			return fmt.Errorf("save marketplace client_secret: %w", err)
		}
	}
	if err := s.configStore.Set(keyMktMarketplace, settings.Marketplace.MarketplaceID); err != nil {
		return fmt.Errorf("save marketplace_id: %w", err)
	}
	if err := s.configStore.Set(keyMktSandbox, settings.Marketplace.Sandbox); err != nil {
		return fmt.Errorf("save marketplace sandbox: %w", err)
	}

	if err := s.configStore.Set(keyCorpusDepthMin, settings.Corpus.DepthMin); err != nil {
		return fmt.Errorf("save corpus depth_min: %w", err)
	}
	if err := s.configStore.Set(keyCorpusDepthMax, settings.Corpus.DepthMax); err != nil {
		return fmt.Errorf("save corpus depth_max: %w", err)
	}
	if err := s.configStore.Set(keyCorpusBatchSize, settings.Corpus.EmbedBatchSize); err != nil {
		return fmt.Errorf("save corpus embed_batch_size: %w", err)
	}
	if err := s.configStore.Set(keyCorpusMaxAge, int(settings.Corpus.MaxAge.Hours()/24)); err != nil {
		return fmt.Errorf("save corpus max_age_days: %w", err)
	}

	if err := s.configStore.Set(keyPipeTopK, settings.Pipeline.TopK); err != nil {
		return fmt.Errorf("save pipeline top_k: %w", err)
	}
	if err := s.configStore.Set(keyPipeWorkers, settings.Pipeline.Workers); err != nil {
		return fmt.Errorf("save pipeline workers: %w", err)
	}
	if err := s.configStore.Set(keyPipeTimeout, int(settings.Pipeline.ProductTimeout.Seconds())); err != nil {
		return fmt.Errorf("save pipeline product_timeout_seconds: %w", err)
	}
	if err := s.configStore.Set(keyPipeRecommended, settings.Pipeline.IncludeRecommended); err != nil {
		return fmt.Errorf("save pipeline include_recommended: %w", err)
	}
	if err := s.configStore.Set(keyPipeProtected, settings.Pipeline.ProtectedAspects); err != nil {
		return fmt.Errorf("save pipeline protected_aspects: %w", err)
	}

	return s.configStore.Save()
}

// SetMarketplaceCredentials stores the marketplace application
// credentials.
func (s *SettingsService) SetMarketplaceCredentials(clientID, clientSecret string) error {
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("client id and secret are required: %w", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(keyMktClientID, clientID); err != nil {
		return fmt.Errorf("save marketplace client_id: %w", err)
	}
	if err := s.configStore.Set(keyMktClientSecret, clientSecret); err != nil {
		return fmt.Errorf("save marketplace client_secret: %w", err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("unknown provider %q: %w", provider, domain.ErrInvalidInput)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("provider %s requires an api key: %w", provider, domain.ErrAuthRequired)
	}

	if err := s.configStore.Set(keyEmbedProvider, provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if apiKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, apiKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	return nil
}

// SetLLMProvider configures the completion provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("unknown provider %q: %w", provider, domain.ErrInvalidInput)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("provider %s requires an api key: %w", provider, domain.ErrAuthRequired)
	}

	if err := s.configStore.Set(keyLLMProvider, provider.String()); err != nil {
		return fmt.Errorf("save llm provider: %w", err)
	}
	if err := s.configStore.Set(keyLLMModel, model); err != nil {
		return fmt.Errorf("save llm model: %w", err)
	}
	if apiKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, apiKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	return nil
}

func (s *SettingsService) getString(key, fallback string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return fallback
}

func (s *SettingsService) getInt(key string, fallback int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return fallback
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, fallback bool) bool {
	if _, ok := s.configStore.Get(key); !ok {
		return fallback
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getStringSlice(key string, fallback []string) []string {
	if v := s.configStore.GetStringSlice(key); v != nil {
		return v
	}
	return fallback
}

func (s *SettingsService) getProvider(key string, fallback domain.AIProvider) domain.AIProvider {
	v := s.configStore.GetString(key)
	if v == "" {
		return fallback
	}
	p := domain.AIProvider(v)
	if !p.IsValid() {
		return fallback
	}
	return p
}

func (s *SettingsService) getDays(key string, fallback time.Duration) time.Duration {
	if _, ok := s.configStore.Get(key); !ok {
		return fallback
	}
	return time.Duration(s.configStore.GetInt(key)) * 24 * time.Hour
}

func (s *SettingsService) getSeconds(key string, fallback time.Duration) time.Duration {
	if _, ok := s.configStore.Get(key); !ok {
		return fallback
	}
	return time.Duration(s.configStore.GetInt(key)) * time.Second
}
