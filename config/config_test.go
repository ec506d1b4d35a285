package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/retail-dashboard/config"
	"github.com/warp/retail-dashboard/dataset"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, dataset.DefaultProductOptions, cfg.Data.Products.Spec().Options)
	assert.Equal(t, dataset.DefaultSaleOptions, cfg.Data.Sales.Spec().Options)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	// GIVEN: A file setting a subset of fields
	path := writeConfig(t, `
server:
  port: 9090
data:
  source: sqlite
  sales:
    path: /data/pdv.csv
store:
  path: /data/dashboard.db
watch:
  enabled: true
  debounce: 500ms
`)

	// WHEN: Loaded
	cfg, err := config.Load(path)

	// THEN: Set fields win, the rest keep their defaults
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, config.SourceSQLite, cfg.Data.Source)
	assert.Equal(t, "/data/pdv.csv", cfg.Data.Sales.Path)
	assert.Equal(t, ",", cfg.Data.Sales.Delimiter)
	assert.Equal(t, 5, cfg.Data.Sales.HeaderLine)
	assert.Equal(t, "./data/produits-tous.csv", cfg.Data.Products.Path)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 70000
data:
  source: parquet
  products:
    delimiter: ";;"
`)

	_, err := config.Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "data.source")
	assert.Contains(t, err.Error(), "data.products.delimiter")
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "server: [")

	_, err := config.Load(path)

	assert.ErrorContains(t, err, "failed to parse config")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate_WatchNeedsDebounce(t *testing.T) {
	cfg := config.Default()
	cfg.Watch.Enabled = true
	cfg.Watch.Debounce = 0

	assert.ErrorContains(t, cfg.Validate(), "watch.debounce")
}

func TestFileConfig_Spec(t *testing.T) {
	fc := config.FileConfig{Path: "x.csv", Delimiter: "\t", HeaderLine: 0}

	spec := fc.Spec()

	assert.Equal(t, "x.csv", spec.Path)
	assert.Equal(t, '\t', spec.Options.Delimiter)
	assert.Equal(t, 0, spec.Options.HeaderLine)
}

func TestFileConfig_Spec_EmptyDelimiter(t *testing.T) {
	// GIVEN: A sales file configured with an empty delimiter
	path := writeConfig(t, `
data:
  sales: {path: x.csv, delimiter: "", header_line: -1}
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	// WHEN: Converting it for the reader
	spec := cfg.Data.Sales.Spec()

	// THEN: The reader falls back to its default comma
	assert.Equal(t, rune(0), spec.Options.Delimiter)
	rows, err := dataset.ReadSales(strings.NewReader("20240105,1,10,100,7\n"), spec.Options)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, dataset.ID("7"), rows[0].Store)
}
