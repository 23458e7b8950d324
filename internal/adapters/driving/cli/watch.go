package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/relist-labs/relist-cli/internal/adapters/driving/watch"
	"github.com/relist-labs/relist-cli/internal/core/domain"
	"github.com/relist-labs/relist-cli/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a drop folder for product files",
	Long: `Watches a directory for scraped product JSON files. Each file that
appears is resolved as a batch; a JSON report is written next to it and
the input moves to a processed subdirectory. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := ensurePipeline(ctx); err != nil {
		return err
	}
	if _, err := corpusManager.Ensure(ctx, false); err != nil {
		return fmt.Errorf("ensure corpus: %w", err)
	}

	watcher, err := watch.New(args[0], resolverService, func(path string, report domain.BatchReport) {
		cmd.Printf("%s: %d resolved, %d failed (run %s)\n",
			filepath.Base(path), report.Succeeded(), report.Failed(), report.RunID)

		reportPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".report.json"
		if err := writeReportFile(reportPath, report); err != nil {
			logger.Warn("Could not write report for %s: %v", filepath.Base(path), err)
		}
	})
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", args[0])
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
