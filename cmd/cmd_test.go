package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/payhawk-bundle-converter/internal/archive"
	"github.com/ginjaninja78/payhawk-bundle-converter/internal/fixtures"
	"github.com/ginjaninja78/payhawk-bundle-converter/internal/validation"
)

// workspace lays out a config file, a schema template and an input directory
// under a temp dir and returns the config path.
func workspace(t *testing.T, columns ...string) (dir, cfgPath string) {
	t.Helper()

	dir = t.TempDir()
	for _, sub := range []string{"templates", "input"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, sub), 0755))
	}

	schema, err := fixtures.Schema(columns...)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "templates", "destination.xlsx"), schema, 0644))

	cfg := fmt.Sprintf(`input_dir: %[1]s/input
output_dir: %[1]s/output
input_archive_dir: %[1]s/input_archive
output_archive_dir: %[1]s/output_archive
templates_dir: %[1]s/templates
schema_template: destination.xlsx
log_level: error
`, dir)
	cfgPath = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))
	return dir, cfgPath
}

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidateCommand_ValidBundle(t *testing.T) {
	dir, cfgPath := workspace(t, fixtures.PayhawkColumns()...)

	bundle, err := fixtures.StandardBundle()
	require.NoError(t, err)
	bundlePath := filepath.Join(dir, "march.zip")
	require.NoError(t, os.WriteFile(bundlePath, bundle, 0644))

	out, err := execute("validate", "--config", cfgPath, "--archive", bundlePath, "--schema", "")
	require.NoError(t, err)

	assert.Contains(t, out, "Bundle march.zip is valid.")
	assert.Contains(t, out, "Rows:        3")
	assert.Contains(t, out, "EXP-001.pdf (1 page(s))")
	assert.Contains(t, out, "Mapping warnings")
}

func TestValidateCommand_ReportsEveryProblem(t *testing.T) {
	dir, cfgPath := workspace(t, "SOCIEDAD")

	bundle, err := fixtures.Bundle(archive.File{Name: "readme.txt", Data: []byte("nothing here")})
	require.NoError(t, err)
	bundlePath := filepath.Join(dir, "empty.zip")
	require.NoError(t, os.WriteFile(bundlePath, bundle, 0644))

	out, err := execute("validate", "--config", cfgPath, "--archive", bundlePath, "--schema", "")
	require.Error(t, err)

	assert.Contains(t, out, validation.MissingTabularMessage)
	assert.Contains(t, out, validation.MissingDocumentsMessage)
	assert.Contains(t, out, "ETAPA")
}

func TestProcessCommand_ConvertsInputDirectory(t *testing.T) {
	dir, cfgPath := workspace(t, fixtures.PayhawkColumns()...)

	bundle, err := fixtures.StandardBundle()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "input", "march.zip"), bundle, 0644))

	out, err := execute("process", "--config", cfgPath, "--dry-run=false", "--single=false", "--file", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Successful:      1")

	outputs, err := filepath.Glob(filepath.Join(dir, "output", "march_*.zip"))
	require.NoError(t, err)
	assert.Len(t, outputs, 1)

	remaining, err := filepath.Glob(filepath.Join(dir, "input", "*.zip"))
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestProcessCommand_FailedBundleExitsWithError(t *testing.T) {
	dir, cfgPath := workspace(t, fixtures.PayhawkColumns()...)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "input", "broken.zip"), []byte("not a zip"), 0644))

	out, err := execute("process", "--config", cfgPath, "--dry-run=false", "--single=false", "--file", "")
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.zip")
	assert.FileExists(t, filepath.Join(dir, "input", "broken.zip"))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute("version")
	require.NoError(t, err)
	assert.Contains(t, out, "Payhawk Bundle Converter")
	assert.Contains(t, out, "Version:    "+Version)
}
