/*
Package config holds the service configuration.

SOURCES (later wins):
  1. Default()
  2. YAML file given with --config
  3. Command-line flags

EXAMPLE FILE:
  server:
    port: 8080
    allowed_origins: ["http://localhost:5173"]
  data:
    products: {path: ./data/produits-tous.csv, delimiter: ";", header_line: -1}
    sales:    {path: ./data/pointsDeVente-tous.csv, delimiter: ",", header_line: 5}
  store:
    path: dashboard.db
  watch:
    enabled: true
    debounce: 2s
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/warp/retail-dashboard/dataset"
	"gopkg.in/yaml.v3"
)

// Source kinds for the dataset cache.
const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

// Config is the full service configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Data   DataConfig   `yaml:"data"`
	Store  StoreConfig  `yaml:"store"`
	Watch  WatchConfig  `yaml:"watch"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// DataConfig locates the CSV exports and names the cache source.
type DataConfig struct {
	Source   string     `yaml:"source"`
	Products FileConfig `yaml:"products"`
	Sales    FileConfig `yaml:"sales"`
}

// FileConfig locates one CSV export and describes its layout.
type FileConfig struct {
	Path       string `yaml:"path"`
	Delimiter  string `yaml:"delimiter"`
	HeaderLine int    `yaml:"header_line"`
}

// Spec converts the file config for the dataset reader.
func (fc FileConfig) Spec() dataset.FileSpec {
	opts := dataset.CSVOptions{HeaderLine: fc.HeaderLine}
	// An empty delimiter leaves the reader default.
	if fc.Delimiter != "" {
		opts.Delimiter, _ = utf8.DecodeRuneInString(fc.Delimiter)
	}
	return dataset.FileSpec{Path: fc.Path, Options: opts}
}

// StoreConfig locates the SQLite import snapshot.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// WatchConfig controls reloading when the CSV files change.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns the configuration matching the original data exports.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:           8080,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
			IdleTimeout:    60 * time.Second,
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		},
		Data: DataConfig{
			Source:   SourceCSV,
			Products: FileConfig{Path: "./data/produits-tous.csv", Delimiter: ";", HeaderLine: -1},
			Sales:    FileConfig{Path: "./data/pointsDeVente-tous.csv", Delimiter: ",", HeaderLine: 5},
		},
		Store: StoreConfig{Path: "dashboard.db"},
		Watch: WatchConfig{Enabled: false, Debounce: 2 * time.Second},
	}
}

// Load reads a YAML file over the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Data.Source {
	case SourceCSV, SourceSQLite:
	default:
		errs = append(errs, fmt.Errorf("data.source must be %q or %q, got %q", SourceCSV, SourceSQLite, c.Data.Source))
	}
	for name, fc := range map[string]FileConfig{"products": c.Data.Products, "sales": c.Data.Sales} {
		if c.Data.Source == SourceCSV && fc.Path == "" {
			errs = append(errs, fmt.Errorf("data.%s.path is required", name))
		}
		if utf8.RuneCountInString(fc.Delimiter) > 1 {
			errs = append(errs, fmt.Errorf("data.%s.delimiter must be a single character", name))
		}
	}
	if c.Data.Source == SourceSQLite && c.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required for the sqlite source"))
	}
	if c.Watch.Enabled && c.Watch.Debounce <= 0 {
		errs = append(errs, errors.New("watch.debounce must be positive"))
	}
	return errors.Join(errs...)
}
