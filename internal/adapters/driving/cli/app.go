package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/relist-labs/relist-cli/internal/adapters/driven/ai"
	"github.com/relist-labs/relist-cli/internal/adapters/driven/config/file"
	"github.com/relist-labs/relist-cli/internal/adapters/driven/storage/sqlite"
	"github.com/relist-labs/relist-cli/internal/adapters/driven/taxonomy/ebay"
	"github.com/relist-labs/relist-cli/internal/adapters/driven/vector/flat"
	"github.com/relist-labs/relist-cli/internal/core/domain"
	"github.com/relist-labs/relist-cli/internal/core/ports/driven"
	"github.com/relist-labs/relist-cli/internal/core/ports/driving"
	"github.com/relist-labs/relist-cli/internal/core/services"
	"github.com/relist-labs/relist-cli/internal/logger"
)

// Services used by commands. Wired lazily so cheap commands (version,
// auth, settings) never touch the AI providers or the marketplace API.
// Tests swap these directly.
var (
	settingsService driving.SettingsService
	corpusManager   driving.CorpusManager
	resolverService driving.ListingResolver

	closers []io.Closer
)

// ensureSettings wires the config-backed settings service.
func ensureSettings() error {
	if settingsService != nil {
		return nil
	}

	store, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config store: %w", err)
	}
	settingsService = services.NewSettingsService(store)
	return nil
}

// ensurePipeline wires the full resolution stack: catalog storage, AI
// services, vector index, taxonomy client, corpus builder and resolver.
func ensurePipeline(ctx context.Context) error {
	if resolverService != nil && corpusManager != nil {
		return nil
	}
	if err := ensureSettings(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf(
			"embedding provider not configured, run 'relist settings embedding': %w",
			domain.ErrEmbeddingUnavailable,
		)
	}
	if !settings.Marketplace.IsConfigured() {
		return fmt.Errorf(
			"marketplace credentials not set, run 'relist auth': %w",
			domain.ErrAuthRequired,
		)
	}

	catalog, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("open catalog store: %w", err)
	}
	closers = append(closers, catalog)

	embedding, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		return err
	}
	closers = append(closers, embedding)

	// The LLM is optional: without it every decision takes the
	// retrieval-only path.
	var llm driven.LLMService
	if settings.LLM.IsConfigured() {
		llm, err = ai.CreateAndValidateLLMService(&settings.LLM)
		if err != nil {
			logger.Warn("LLM unavailable, decisions degrade to retrieval only: %v", err)
			llm = nil
		} else {
			closers = append(closers, llm)
		}
	} else {
		logger.Info("No LLM configured, decisions degrade to retrieval only")
	}

	index, err := flat.New(embedding.Dimensions())
	if err != nil {
		return fmt.Errorf("create vector index: %w", err)
	}

	taxonomy, err := ebay.NewClientForSettings(ctx, settings.Marketplace)
	if err != nil {
		return fmt.Errorf("create taxonomy client: %w", err)
	}

	corpusManager = services.NewCorpusBuilder(taxonomy, catalog, embedding, index, settings.Corpus)

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("open prompt store: %w", err)
	}

	retriever := services.NewRetriever(embedding, index, catalog, settings.Pipeline.TopK)
	disambiguator := services.NewDisambiguator(llm)
	disambiguator.SetPromptStore(prompts)
	filler := services.NewAspectFiller(llm, settings.Pipeline)
	filler.SetPromptStore(prompts)
	requirements := services.NewRequirementsCache(taxonomy)

	resolverService = services.NewResolver(retriever, disambiguator, filler, requirements, settings.Pipeline)
	return nil
}

// closeServices releases everything ensurePipeline opened.
func closeServices() {
	for _, c := range closers {
		_ = c.Close()
	}
	closers = nil
}
