/*
main.go - Application entry point

PURPOSE:
  Command-line entry for the retail dashboards. Builds the configuration,
  the zap logger and the dataset cache shared by every subcommand.

COMMANDS:
  serve     Start the HTTP server (default)
  import    Parse the CSV exports and store them in SQLite
  imports   List recent import runs
  render    Render one demo page as JSON on stdout
  demos     List boards and demos

GLOBAL FLAGS:
  --config    YAML config file (see config package)
  --verbose   Debug logging
  --source    csv | sqlite
  --products  Products CSV path
  --sales     Points-of-sale CSV path
  --db        SQLite database path (":memory:" for in-memory)
  --port      HTTP server port

EXAMPLES:
  # Serve straight from the CSV exports
  ./server serve --products data/produits-tous.csv --sales data/pointsDeVente-tous.csv

  # Import once, then serve from SQLite
  ./server import --db data/dashboard.db
  ./server serve --source sqlite --db data/dashboard.db

  # Render a page without a server
  ./server render competitive-intensity category=12

SEE ALSO:
  - serve.go, import.go, render.go: Subcommands
  - config/config.go: Configuration file
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/retail-dashboard/config"
	"github.com/warp/retail-dashboard/dataset"
	"github.com/warp/retail-dashboard/store/sqlite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath   string
	verbose      bool
	sourceFlag   string
	productsFlag string
	salesFlag    string
	dbFlag       string
	portFlag     int

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Retail market dashboards",
	Long: `Aggregates product-listing and point-of-sale exports into chart-ready
pages: catalog sizes, store reach, market concentration and growth.

Run without a subcommand to start the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		applyFlags(cmd)
		return cfg.Validate()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML configuration file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&sourceFlag, "source", "", "Dataset source: csv or sqlite")
	pf.StringVar(&productsFlag, "products", "", "Products CSV path")
	pf.StringVar(&salesFlag, "sales", "", "Points-of-sale CSV path")
	pf.StringVar(&dbFlag, "db", "", "SQLite database path")
	pf.IntVar(&portFlag, "port", 0, "HTTP server port")

	rootCmd.AddCommand(serveCmd, importCmd, importsCmd, renderCmd, demosCmd)
}

// applyFlags overrides the loaded configuration with flags set explicitly.
func applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Data.Source = sourceFlag
	}
	if flags.Changed("products") {
		cfg.Data.Products.Path = productsFlag
	}
	if flags.Changed("sales") {
		cfg.Data.Sales.Path = salesFlag
	}
	if flags.Changed("db") {
		cfg.Store.Path = dbFlag
	}
	if flags.Changed("port") {
		cfg.Server.Port = portFlag
	}
}

// fileSource builds the CSV source from the configuration.
func fileSource() *dataset.FileSource {
	return &dataset.FileSource{
		Products: cfg.Data.Products.Spec(),
		Sales:    cfg.Data.Sales.Spec(),
	}
}

// openSource returns the configured dataset source and, when one is opened,
// the SQLite store. The caller closes the store.
func openSource() (dataset.Source, *sqlite.Store, error) {
	if cfg.Data.Source == config.SourceSQLite {
		store, err := sqlite.New(cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return store, store, nil
	}
	return fileSource(), nil, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
