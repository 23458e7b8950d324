package watch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/relist-labs/relist-cli/internal/core/domain"
)

// productFile is the scraped product JSON shape dropped by the scraper.
type productFile struct {
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	BulletFeatures []string          `json:"bullet_features"`
	Specifications map[string]string `json:"specifications"`
}

func (p productFile) toSignal() domain.ProductSignal {
	return domain.ProductSignal{
		Title:          p.Title,
		Description:    p.Description,
		BulletFeatures: p.BulletFeatures,
		Specifications: p.Specifications,
	}
}

// LoadProducts reads product signals from one JSON file. The file may
// hold a single product object or an array of them.
func LoadProducts(path string) ([]domain.ProductSignal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read product file: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("product file %s: %w", path, domain.ErrInvalidInput)
	}

	var files []productFile
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &files); err != nil {
			return nil, fmt.Errorf("parse product file %s: %w", path, err)
		}
	} else {
		var one productFile
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, fmt.Errorf("parse product file %s: %w", path, err)
		}
		files = []productFile{one}
	}

	products := make([]domain.ProductSignal, 0, len(files))
	for _, f := range files {
		products = append(products, f.toSignal())
	}
	return products, nil
}

// LoadProductsDir reads every product JSON file in a directory, in name
// order. Subdirectories and non-JSON files are skipped.
func LoadProductsDir(dir string) ([]domain.ProductSignal, error) {
	paths, err := ProductFiles(dir)
	if err != nil {
		return nil, err
	}

	var products []domain.ProductSignal
	for _, path := range paths {
		loaded, err := LoadProducts(path)
		if err != nil {
			return nil, err
		}
		products = append(products, loaded...)
	}
	return products, nil
}

// ProductFiles lists the product JSON files in a directory, sorted.
func ProductFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read product directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !isProductFile(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// isProductFile matches product JSON files. Report files the watch
// command writes into the same directory are excluded.
func isProductFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".json") && !strings.HasSuffix(lower, ".report.json")
}
