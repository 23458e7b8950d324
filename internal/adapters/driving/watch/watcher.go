// Package watch implements the drop-folder ingestion surface: scraped
// product JSON files appear in a directory, get resolved as a batch,
// and move to a processed subdirectory.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/relist-labs/relist-cli/internal/core/domain"
	"github.com/relist-labs/relist-cli/internal/core/ports/driving"
	"github.com/relist-labs/relist-cli/internal/logger"
)

const (
	// DefaultSettle is how long a file must sit unchanged before it is
	// picked up. Scrapers write files incrementally; processing on the
	// first event would read partial JSON.
	DefaultSettle = 2 * time.Second

	// ProcessedDirName is the subdirectory finished files move to.
	ProcessedDirName = "processed"
)

// ReportFunc receives the batch report for one processed file.
type ReportFunc func(path string, report domain.BatchReport)

// Watcher resolves product files dropped into a directory.
type Watcher struct {
	dir      string
	settle   time.Duration
	resolver driving.ListingResolver
	onReport ReportFunc
}

// New creates a watcher over a drop directory.
func New(dir string, resolver driving.ListingResolver, onReport ReportFunc) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch path %s is not a directory: %w", dir, domain.ErrInvalidInput)
	}

	return &Watcher{
		dir:      dir,
		settle:   DefaultSettle,
		resolver: resolver,
		onReport: onReport,
	}, nil
}

// SetSettle overrides the settle delay. Used by tests.
func (w *Watcher) SetSettle(d time.Duration) {
	w.settle = d
}

// Run processes files already present in the directory, then blocks
// watching for new ones until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Join(w.dir, ProcessedDirName), 0700); err != nil {
		return fmt.Errorf("create processed directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	logger.Info("Watching %s for product files", w.dir)
	w.sweep(ctx)

	// pending maps file paths to their last write time; a file is
	// processed once it sits unchanged for the settle window.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !isProductFile(filepath.Base(event.Name)) {
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.settle {
					continue
				}
				delete(pending, path)
				w.process(ctx, path)
			}
		}
	}
}

// sweep processes files that were already in the drop directory when
// the watcher started.
func (w *Watcher) sweep(ctx context.Context) {
	paths, err := ProductFiles(w.dir)
	if err != nil {
		logger.Warn("Sweep failed: %v", err)
		return
	}
	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		w.process(ctx, path)
	}
}

// process resolves one product file and moves it to the processed
// directory. A file that fails to parse stays in place so the problem
// is visible.
func (w *Watcher) process(ctx context.Context, path string) {
	products, err := LoadProducts(path)
	if err != nil {
		logger.Warn("Skipping %s: %v", filepath.Base(path), err)
		return
	}

	logger.Section(fmt.Sprintf("Processing %s (%d products)", filepath.Base(path), len(products)))
	report := w.resolver.ResolveBatch(ctx, products)

	if w.onReport != nil {
		w.onReport(path, report)
	}

	dest := filepath.Join(w.dir, ProcessedDirName, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		logger.Warn("Could not move %s to processed: %v", filepath.Base(path), err)
	}
}
