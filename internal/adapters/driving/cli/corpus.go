package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/relist-labs/relist-cli/internal/core/domain"
)

var corpusForce bool

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the category embedding corpus",
	Long: `Build and inspect the category embedding corpus.

The corpus holds one embedding per marketplace leaf category (within the
configured depth band). Retrieval searches it for every product, so it
must be built before anything can be resolved. The corpus is stamped
with the embedding model that built it and expires after the configured
maximum age.`,
}

var corpusBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build or refresh the corpus",
	Long: `Fetches the category tree, embeds the leaf categories and persists the
corpus. Without --force an existing fresh corpus is reused as-is.`,
	RunE: runCorpusBuild,
}

var corpusStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show corpus metadata",
	RunE:  runCorpusStatus,
}

func init() {
	corpusBuildCmd.Flags().BoolVar(&corpusForce, "force", false, "rebuild even when the corpus is fresh")
	corpusCmd.AddCommand(corpusBuildCmd)
	corpusCmd.AddCommand(corpusStatusCmd)
	rootCmd.AddCommand(corpusCmd)
}

func runCorpusBuild(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	if err := ensurePipeline(ctx); err != nil {
		return err
	}

	started := time.Now()
	info, err := corpusManager.Ensure(ctx, corpusForce)
	if err != nil {
		return fmt.Errorf("build corpus: %w", err)
	}

	cmd.Printf("Corpus ready in %s\n", time.Since(started).Round(time.Millisecond))
	printCorpusInfo(cmd, info)
	return nil
}

func runCorpusStatus(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	if err := ensurePipeline(ctx); err != nil {
		return err
	}

	info, err := corpusManager.Status(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			cmd.Println("No corpus built yet. Run 'relist corpus build'.")
			return nil
		}
		return fmt.Errorf("corpus status: %w", err)
	}

	printCorpusInfo(cmd, info)
	return nil
}

func printCorpusInfo(cmd *cobra.Command, info domain.CorpusInfo) {
	cmd.Printf("  Model:        %s (%d dimensions)\n", info.ModelName, info.Dimensions)
	cmd.Printf("  Tree version: %s\n", info.TreeVersion)
	cmd.Printf("  Categories:   %d\n", info.Size)
	cmd.Printf("  Built:        %s\n", info.BuiltAt.Format(time.RFC3339))
}
