package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relist-labs/relist-cli/internal/adapters/driving/watch"
	"github.com/relist-labs/relist-cli/internal/core/domain"
)

var (
	resolveTitle       string
	resolveDescription string
	resolveBullets     []string
	resolveSpecs       []string
	resolveJSON        bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [product.json]",
	Short: "Resolve one product to a category and listing draft",
	Long: `Runs the full pipeline for a single product: retrieval over the
category corpus, LLM disambiguation, and aspect filling.

The product comes from a scraped JSON file, or from flags:

  relist resolve product.json
  relist resolve --title "Rain-X Latitude Wiper Blade 26in" --spec Brand=Rain-X`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveTitle, "title", "", "product title")
	resolveCmd.Flags().StringVar(&resolveDescription, "description", "", "product description")
	resolveCmd.Flags().StringArrayVar(&resolveBullets, "bullet", nil, "bullet feature (repeatable)")
	resolveCmd.Flags().StringArrayVar(&resolveSpecs, "spec", nil, "specification as name=value (repeatable)")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	product, err := resolveInput(args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := ensurePipeline(ctx); err != nil {
		return err
	}
	if _, err := corpusManager.Ensure(ctx, false); err != nil {
		return fmt.Errorf("ensure corpus: %w", err)
	}

	resolution, err := resolverService.Resolve(ctx, product)
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}

	if resolveJSON {
		return outputResolutionJSON(cmd, resolution)
	}
	outputResolution(cmd, resolution)
	return nil
}

// resolveInput builds the product signal from the file argument or the
// flags. Exactly one source must be used.
func resolveInput(args []string) (domain.ProductSignal, error) {
	if len(args) == 1 {
		if resolveTitle != "" {
			return domain.ProductSignal{}, errors.New("pass either a product file or --title, not both")
		}
		products, err := watch.LoadProducts(args[0])
		if err != nil {
			return domain.ProductSignal{}, err
		}
		if len(products) != 1 {
			return domain.ProductSignal{}, fmt.Errorf(
				"%s holds %d products, use 'relist batch' for more than one", args[0], len(products))
		}
		return products[0], nil
	}

	if resolveTitle == "" {
		return domain.ProductSignal{}, errors.New("pass a product file or --title")
	}

	specs := make(map[string]string, len(resolveSpecs))
	for _, s := range resolveSpecs {
		name, value, ok := strings.Cut(s, "=")
		if !ok {
			return domain.ProductSignal{}, fmt.Errorf("invalid --spec %q, want name=value", s)
		}
		specs[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	return domain.ProductSignal{
		Title:          resolveTitle,
		Description:    resolveDescription,
		BulletFeatures: resolveBullets,
		Specifications: specs,
	}, nil
}

// resolutionOutput is the JSON shape of one resolved product.
type resolutionOutput struct {
	CategoryID      string               `json:"category_id"`
	CategoryPath    string               `json:"category_path"`
	OptimizedTitle  string               `json:"optimized_title"`
	Brand           string               `json:"brand"`
	Confidence      float64              `json:"confidence"`
	Degraded        bool                 `json:"degraded"`
	Aspects         domain.FilledAspects `json:"aspects"`
	MissingRequired []string             `json:"missing_required,omitempty"`
}

func toResolutionOutput(r *domain.Resolution) resolutionOutput {
	path := r.Draft.CategoryName
	if candidate, ok := r.Candidates.Find(r.Draft.CategoryID); ok {
		path = candidate.PathString()
	}

	return resolutionOutput{
		CategoryID:      r.Draft.CategoryID,
		CategoryPath:    path,
		OptimizedTitle:  r.Draft.OptimizedTitle,
		Brand:           r.Draft.Brand,
		Confidence:      r.Draft.Confidence,
		Degraded:        r.Draft.Degraded,
		Aspects:         r.Aspects,
		MissingRequired: r.MissingRequired,
	}
}

func outputResolutionJSON(cmd *cobra.Command, r *domain.Resolution) error {
	data, err := json.MarshalIndent(toResolutionOutput(r), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputResolution(cmd *cobra.Command, r *domain.Resolution) {
	out := toResolutionOutput(r)

	cmd.Printf("Category:   %s (%s)\n", out.CategoryPath, out.CategoryID)
	cmd.Printf("Title:      %s\n", out.OptimizedTitle)
	cmd.Printf("Brand:      %s\n", out.Brand)
	cmd.Printf("Similarity: %.3f\n", out.Confidence)
	if out.Degraded {
		cmd.Println("Note:       degraded decision (retrieval only, no LLM)")
	}

	if len(out.Aspects) > 0 {
		cmd.Println("Aspects:")
		names := make([]string, 0, len(out.Aspects))
		for name := range out.Aspects {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cmd.Printf("  %s: %s\n", name, strings.Join(out.Aspects[name], ", "))
		}
	}
	if len(out.MissingRequired) > 0 {
		cmd.Printf("Missing required aspects: %s\n", strings.Join(out.MissingRequired, ", "))
	}
}
