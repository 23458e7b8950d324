package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relist-labs/relist-cli/internal/core/domain"
)

var (
	settingsModel  string
	settingsAPIKey string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the AI providers and pipeline options.

Settings are stored in ~/.relist/config.toml and can also be edited
there directly.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding [provider]",
	Short: "Configure the embedding provider",
	Long: `Configure the embedding provider used for retrieval.

Changing the embedding model invalidates the corpus; the next
'relist corpus build' rebuilds it with the new model.

  relist settings embedding ollama --model all-minilm
  relist settings embedding openai --model text-embedding-3-small --api-key sk-...`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm [provider]",
	Short: "Configure the completion provider",
	Long: `Configure the completion provider used for disambiguation and aspect
filling. Optional: without one, decisions degrade to retrieval only.

  relist settings llm anthropic --model claude-3-5-haiku-latest --api-key sk-ant-...
  relist settings llm ollama --model llama3.2`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsLLM,
}

func init() {
	for _, c := range []*cobra.Command{settingsEmbeddingCmd, settingsLLMCmd} {
		c.Flags().StringVar(&settingsModel, "model", "", "model name")
		c.Flags().StringVar(&settingsAPIKey, "api-key", "", "api key (cloud providers)")
	}
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	cmd.Println("Embedding:")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model, settings.Embedding.APIKey)
	cmd.Println("LLM:")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model, settings.LLM.APIKey)

	cmd.Println("Marketplace:")
	if settings.Marketplace.IsConfigured() {
		env := "production"
		if settings.Marketplace.Sandbox {
			env = "sandbox"
		}
		cmd.Printf("  Credentials: %s (%s, %s)\n",
			maskSecret(settings.Marketplace.ClientID), settings.Marketplace.MarketplaceID, env)
	} else {
		cmd.Println("  Credentials: not set (run 'relist auth')")
	}

	cmd.Println("Pipeline:")
	cmd.Printf("  Candidates:  %d\n", settings.Pipeline.TopK)
	cmd.Printf("  Workers:     %d\n", settings.Pipeline.Workers)
	cmd.Printf("  Timeout:     %s per product\n", settings.Pipeline.ProductTimeout)
	cmd.Printf("  Recommended: %v\n", settings.Pipeline.IncludeRecommended)
	cmd.Printf("  Protected:   %s\n", strings.Join(settings.Pipeline.ProtectedAspects, ", "))

	cmd.Println("Corpus:")
	cmd.Printf("  Depth band:  %d-%d\n", settings.Corpus.DepthMin, settings.Corpus.DepthMax)
	cmd.Printf("  Max age:     %s\n", settings.Corpus.MaxAge)
	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, apiKey string) {
	if !provider.IsValid() {
		cmd.Println("  Provider: not configured")
		return
	}
	cmd.Printf("  Provider: %s\n", provider.Description())
	if model != "" {
		cmd.Printf("  Model:    %s\n", model)
	}
	if apiKey != "" {
		cmd.Printf("  API key:  %s\n", maskSecret(apiKey))
	}
}

func runSettingsEmbedding(cmd *cobra.Command, args []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}

	provider := domain.AIProvider(args[0])
	if err := settingsService.SetEmbeddingProvider(provider, settingsModel, settingsAPIKey); err != nil {
		return err
	}

	cmd.Printf("Embedding provider set to %s.\n", provider)
	cmd.Println("Run 'relist corpus build --force' to rebuild the corpus with the new model.")
	return nil
}

func runSettingsLLM(cmd *cobra.Command, args []string) error {
	if err := ensureSettings(); err != nil {
		return err
	}

	provider := domain.AIProvider(args[0])
	if err := settingsService.SetLLMProvider(provider, settingsModel, settingsAPIKey); err != nil {
		return err
	}

	cmd.Printf("LLM provider set to %s.\n", provider)
	return nil
}

func maskSecret(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
