// Package cli implements the command-line interface.
// It wires the resolution pipeline services to cobra commands.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/relist-labs/relist-cli/internal/logger"
)

// version is set from main via Execute.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "relist",
	Short: "Resolve marketplace categories for scraped products",
	Long: `Relist maps scraped product data onto the marketplace category taxonomy.

The pipeline embeds the product text, retrieves the closest leaf
categories from a prebuilt corpus, has an LLM pick one candidate while
optimizing the title and extracting the brand, and fills the category's
required aspects. The output is a complete listing draft per product,
ready for the publishing step.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command. The version string is stamped by the
// build and shown by the version command.
func Execute(v string) error {
	version = v
	defer closeServices()
	return rootCmd.Execute()
}
