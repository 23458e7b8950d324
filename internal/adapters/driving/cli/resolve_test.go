package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetResolveFlags() {
	resolveTitle = ""
	resolveDescription = ""
	resolveBullets = nil
	resolveSpecs = nil
	resolveJSON = false
}

func TestResolveCmd_Use(t *testing.T) {
	assert.Equal(t, "resolve [product.json]", resolveCmd.Use)
}

func TestResolveCmd_WithTitleFlag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetResolveFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"resolve", "--title", "Rain-X Latitude Wiper Blade 26in"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Wiper Blades")
	assert.Contains(t, buf.String(), "Rain-X")
	assert.Contains(t, buf.String(), "257")
}

func TestResolveCmd_EnsuresCorpus(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetResolveFlags()

	manager := corpusManager.(*mockCorpusManager)

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"resolve", "--title", "something"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, 1, manager.ensureCalls)
	assert.False(t, manager.lastForce)
}

func TestResolveCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetResolveFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"resolve", "--json", "--title", "Rain-X Latitude Wiper Blade 26in"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"category_id": "257"`)
	assert.Contains(t, buf.String(), `"category_path": "Vehicle Parts & Accessories > Car Parts > Wiper Blades"`)
	assert.Contains(t, buf.String(), `"brand": "Rain-X"`)
}

func TestResolveCmd_FromFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetResolveFlags()

	path := filepath.Join(t.TempDir(), "product.json")
	content := `{"title":"Rain-X Latitude Wiper Blade 26in","specifications":{"Brand":"Rain-X"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"resolve", path})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Wiper Blades")
}

func TestResolveCmd_FileWithManyProductsRejected(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetResolveFlags()

	path := filepath.Join(t.TempDir(), "products.json")
	content := `[{"title":"one"},{"title":"two"}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"resolve", path})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch")
}

func TestResolveCmd_NoInput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetResolveFlags()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"resolve"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--title")
}

func TestResolveCmd_InvalidSpecFlag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetResolveFlags()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"resolve", "--title", "x", "--spec", "noequals"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "name=value")
}
