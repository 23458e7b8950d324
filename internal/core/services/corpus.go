package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/relist-labs/relist-cli/internal/core/domain"
	"github.com/relist-labs/relist-cli/internal/core/ports/driven"
	"github.com/relist-labs/relist-cli/internal/core/ports/driving"
	"github.com/relist-labs/relist-cli/internal/logger"
)

// Ensure CorpusBuilder implements the interface.
var _ driving.CorpusManager = (*CorpusBuilder)(nil)

// CorpusBuilder turns the marketplace category taxonomy into a searchable
// embedding corpus: filter leaves, embed their path text, index the
// vectors, persist everything alongside a model-version stamp.
type CorpusBuilder struct {
	taxonomy  driven.TaxonomySource
	catalog   driven.CatalogStore
	embedding driven.EmbeddingService
	index     driven.VectorIndex
	settings  domain.CorpusSettings
}

// NewCorpusBuilder creates a corpus builder. All dependencies are
// required; the corpus cannot be built or loaded without them.
func NewCorpusBuilder(
	taxonomy driven.TaxonomySource,
	catalog driven.CatalogStore,
	embedding driven.EmbeddingService,
	index driven.VectorIndex,
	settings domain.CorpusSettings,
) *CorpusBuilder {
	return &CorpusBuilder{
		taxonomy:  taxonomy,
		catalog:   catalog,
		embedding: embedding,
		index:     index,
		settings:  settings,
	}
}

// Ensure loads the persisted corpus when it is present, fresh, and built
// with the configured embedding model; otherwise it rebuilds from the
// taxonomy. With force, the corpus is always rebuilt.
func (b *CorpusBuilder) Ensure(ctx context.Context, force bool) (domain.CorpusInfo, error) {
	if !force {
		info, err := b.loadPersisted(ctx)
		if err == nil {
			return info, nil
		}
		if !errors.Is(err, domain.ErrNotFound) &&
			!errors.Is(err, domain.ErrModelMismatch) &&
			!errors.Is(err, domain.ErrCorpusStale) {
			return domain.CorpusInfo{}, err
		}
		logger.Info("Corpus rebuild needed: %v", err)
	}

	return b.rebuild(ctx)
}

// Status returns the persisted corpus metadata without loading vectors.
func (b *CorpusBuilder) Status(ctx context.Context) (domain.CorpusInfo, error) {
	info, err := b.catalog.CorpusInfo(ctx)
	if err != nil {
		return domain.CorpusInfo{}, fmt.Errorf("corpus info: %w", err)
	}
	return info, nil
}

// loadPersisted restores the persisted corpus into the vector index.
// The model stamp and age are checked before any vector is touched.
func (b *CorpusBuilder) loadPersisted(ctx context.Context) (domain.CorpusInfo, error) {
	info, records, err := b.catalog.LoadCorpus(ctx)
	if err != nil {
		return domain.CorpusInfo{}, fmt.Errorf("load corpus: %w", err)
	}

	if info.ModelName != b.embedding.ModelName() {
		return domain.CorpusInfo{}, fmt.Errorf(
			"corpus built with %q, configured model is %q: %w",
			info.ModelName, b.embedding.ModelName(), domain.ErrModelMismatch)
	}
	if info.IsStale(b.settings.MaxAge) {
		return domain.CorpusInfo{}, fmt.Errorf(
			"corpus built at %s: %w", info.BuiltAt.Format(time.RFC3339), domain.ErrCorpusStale)
	}

	logger.Section("Corpus Load")
	logger.Debug("Restoring %d vectors (model=%s, tree=%s)", len(records), info.ModelName, info.TreeVersion)

	if err := b.index.Reset(ctx); err != nil {
		return domain.CorpusInfo{}, fmt.Errorf("reset index: %w", err)
	}
	for _, rec := range records {
		if err := b.index.Add(ctx, rec.CategoryID, rec.Vector); err != nil {
			return domain.CorpusInfo{}, fmt.Errorf("add vector for %s: %w", rec.CategoryID, err)
		}
	}

	logger.Info("Corpus loaded: %d categories", b.index.Size())
	return info, nil
}

// rebuild fetches the taxonomy and builds the corpus from scratch.
func (b *CorpusBuilder) rebuild(ctx context.Context) (domain.CorpusInfo, error) {
	logger.Section("Corpus Build")

	categories, treeVersion, err := b.taxonomy.FetchCategoryTree(ctx)
	if err != nil {
		return domain.CorpusInfo{}, fmt.Errorf("fetch category tree: %w", err)
	}
	logger.Debug("Fetched %d categories (tree version %s)", len(categories), treeVersion)

	if err := b.catalog.ReplaceTree(ctx, categories, treeVersion); err != nil {
		return domain.CorpusInfo{}, fmt.Errorf("cache category tree: %w", err)
	}

	leaves := b.filterLeaves(categories)
	if len(leaves) == 0 {
		return domain.CorpusInfo{}, fmt.Errorf(
			"no leaf categories in depth band [%d,%d]: %w",
			b.settings.DepthMin, b.settings.DepthMax, domain.ErrEmptyTaxonomy)
	}
	logger.Info("Indexing %d leaf categories (of %d total)", len(leaves), len(categories))

	records, err := b.embedLeaves(ctx, leaves)
	if err != nil {
		return domain.CorpusInfo{}, err
	}

	if err := b.index.Reset(ctx); err != nil {
		return domain.CorpusInfo{}, fmt.Errorf("reset index: %w", err)
	}
	for _, rec := range records {
		if err := b.index.Add(ctx, rec.CategoryID, rec.Vector); err != nil {
			return domain.CorpusInfo{}, fmt.Errorf("add vector for %s: %w", rec.CategoryID, err)
		}
	}

	info := domain.CorpusInfo{
		ModelName:   b.embedding.ModelName(),
		Dimensions:  b.embedding.Dimensions(),
		TreeVersion: treeVersion,
		Size:        len(records),
		BuiltAt:     time.Now(),
	}
	if err := b.catalog.SaveCorpus(ctx, info, records); err != nil {
		return domain.CorpusInfo{}, fmt.Errorf("persist corpus: %w", err)
	}

	logger.Info("Corpus built: %d categories, %d dimensions", info.Size, info.Dimensions)
	return info, nil
}

// filterLeaves keeps leaf categories within the configured depth band.
func (b *CorpusBuilder) filterLeaves(categories []domain.Category) []domain.Category {
	var leaves []domain.Category
	for _, c := range categories {
		if b.settings.Includes(c) {
			leaves = append(leaves, c)
		}
	}
	return leaves
}

// embedLeaves embeds the corpus text of every leaf in batches.
func (b *CorpusBuilder) embedLeaves(
	ctx context.Context, leaves []domain.Category,
) ([]domain.EmbeddingRecord, error) {
	batchSize := b.settings.EmbedBatchSize
	if batchSize <= 0 {
		batchSize = domain.DefaultEmbedBatchSize
	}

	records := make([]domain.EmbeddingRecord, 0, len(leaves))

	for start := 0; start < len(leaves); start += batchSize {
		end := start + batchSize
		if end > len(leaves) {
			end = len(leaves)
		}
		batch := leaves[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.CorpusText()
		}

		vectors, err := b.embedding.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embed batch [%d:%d]: got %d vectors for %d texts",
				start, end, len(vectors), len(batch))
		}

		for i, c := range batch {
			records = append(records, domain.EmbeddingRecord{
				CategoryID: c.ID,
				Vector:     NormalizeVector(vectors[i]),
				SourceText: texts[i],
			})
		}

		logger.Debug("Embedded %d/%d categories", len(records), len(leaves))
	}

	return records, nil
}

// NormalizeVector returns the L2-normalized copy of v. Normalized
// vectors make inner product equal cosine similarity, which is what the
// flat index computes. A zero vector is returned unchanged.
func NormalizeVector(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return v
	}

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
