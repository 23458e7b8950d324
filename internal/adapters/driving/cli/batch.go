package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relist-labs/relist-cli/internal/adapters/driving/watch"
	"github.com/relist-labs/relist-cli/internal/core/domain"
)

var (
	batchJSON bool
	batchOut  string
)

var batchCmd = &cobra.Command{
	Use:   "batch [dir|file...]",
	Short: "Resolve a batch of product files",
	Long: `Resolves every product in the given JSON files, or in every JSON file
of a directory, using the configured worker pool. Each product gets a
per-product timeout; one slow or failing product never stalls the rest.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "output the report as JSON")
	batchCmd.Flags().StringVar(&batchOut, "out", "", "also write the JSON report to a file")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	products, err := batchInput(args)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		cmd.Println("No products found.")
		return nil
	}

	ctx := context.Background()
	if err := ensurePipeline(ctx); err != nil {
		return err
	}
	if _, err := corpusManager.Ensure(ctx, false); err != nil {
		return fmt.Errorf("ensure corpus: %w", err)
	}

	report := resolverService.ResolveBatch(ctx, products)

	if batchOut != "" {
		if err := writeReportFile(batchOut, report); err != nil {
			return err
		}
	}
	if batchJSON {
		return outputReportJSON(cmd, report)
	}
	outputReport(cmd, report)
	return nil
}

// batchInput collects products from the arguments: each argument is a
// product JSON file or a directory of them.
func batchInput(args []string) ([]domain.ProductSignal, error) {
	var products []domain.ProductSignal
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}

		if info.IsDir() {
			loaded, err := watch.LoadProductsDir(arg)
			if err != nil {
				return nil, err
			}
			products = append(products, loaded...)
			continue
		}

		loaded, err := watch.LoadProducts(arg)
		if err != nil {
			return nil, err
		}
		products = append(products, loaded...)
	}
	return products, nil
}

// reportOutput is the JSON shape of a batch report.
type reportOutput struct {
	RunID     string              `json:"run_id"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Results   []reportEntryOutput `json:"results"`
}

type reportEntryOutput struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Error      string            `json:"error,omitempty"`
	ElapsedMS  int64             `json:"elapsed_ms"`
	Resolution *resolutionOutput `json:"resolution,omitempty"`
}

func toReportOutput(report domain.BatchReport) reportOutput {
	out := reportOutput{
		RunID:     report.RunID,
		Succeeded: report.Succeeded(),
		Failed:    report.Failed(),
		Results:   make([]reportEntryOutput, 0, len(report.Results)),
	}
	for _, r := range report.Results {
		entry := reportEntryOutput{
			ID:        r.ID,
			Title:     r.Title,
			Error:     r.Err,
			ElapsedMS: r.Elapsed.Milliseconds(),
		}
		if r.Resolution != nil {
			resolved := toResolutionOutput(r.Resolution)
			entry.Resolution = &resolved
		}
		out.Results = append(out.Results, entry)
	}
	return out
}

func outputReportJSON(cmd *cobra.Command, report domain.BatchReport) error {
	data, err := json.MarshalIndent(toReportOutput(report), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputReport(cmd *cobra.Command, report domain.BatchReport) {
	cmd.Printf("Run %s: %d resolved, %d failed\n", report.RunID, report.Succeeded(), report.Failed())
	cmd.Println()

	for _, r := range report.Results {
		if r.Failed() {
			cmd.Printf("  [%s] FAILED %s: %s\n", r.ID, r.Title, r.Err)
			continue
		}
		out := toResolutionOutput(r.Resolution)
		cmd.Printf("  [%s] %s\n", r.ID, out.OptimizedTitle)
		cmd.Printf("        -> %s (%s, %.3f)\n", out.CategoryPath, out.CategoryID, out.Confidence)
		if len(out.MissingRequired) > 0 {
			cmd.Printf("        missing required aspects: %v\n", out.MissingRequired)
		}
	}
}

func writeReportFile(path string, report domain.BatchReport) error {
	data, err := json.MarshalIndent(toReportOutput(report), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
