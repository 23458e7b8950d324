package watch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadProducts_SingleObject(t *testing.T) {
	path := writeFile(t, t.TempDir(), "product.json", `{
		"title": "Rain-X Latitude Wiper Blade 26in",
		"description": "Water repellent wiper blade",
		"bullet_features": ["All-weather", "Easy install"],
		"specifications": {"Brand": "Rain-X", "Size": "26 in"}
	}`)

	products, err := LoadProducts(path)

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Rain-X Latitude Wiper Blade 26in", products[0].Title)
	assert.Equal(t, []string{"All-weather", "Easy install"}, products[0].BulletFeatures)
	assert.Equal(t, "Rain-X", products[0].Specifications["Brand"])
}

func TestLoadProducts_Array(t *testing.T) {
	path := writeFile(t, t.TempDir(), "products.json",
		`[{"title":"one"},{"title":"two"},{"title":"three"}]`)

	products, err := LoadProducts(path)

	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "two", products[1].Title)
}

func TestLoadProducts_EmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.json", "  \n")

	_, err := LoadProducts(path)

	require.Error(t, err)
}

func TestLoadProducts_InvalidJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.json", `{"title": `)

	_, err := LoadProducts(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse product file")
}

func TestLoadProducts_MissingFile(t *testing.T) {
	_, err := LoadProducts(filepath.Join(t.TempDir(), "missing.json"))

	require.Error(t, err)
}

func TestLoadProductsDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.json", `{"title":"second"}`)
	writeFile(t, dir, "a.json", `[{"title":"first"}]`)
	writeFile(t, dir, "notes.txt", "not a product")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "processed"), 0700))

	products, err := LoadProductsDir(dir)

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "first", products[0].Title)
	assert.Equal(t, "second", products[1].Title)
}

func TestProductFiles_SkipsReports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "blades.json", `{"title":"x"}`)
	writeFile(t, dir, "blades.report.json", `{"run_id":"r1"}`)

	paths, err := ProductFiles(dir)

	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(dir, "blades.json"), paths[0])
}

func TestIsProductFile(t *testing.T) {
	assert.True(t, isProductFile("product.json"))
	assert.True(t, isProductFile("PRODUCT.JSON"))
	assert.False(t, isProductFile("product.report.json"))
	assert.False(t, isProductFile("product.txt"))
}
