package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/warp/retail-dashboard/store/sqlite"
	"go.uber.org/zap"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Parse the CSV exports and store them in SQLite",
	Long: `Reads the products and points-of-sale CSV files and replaces the
snapshot held in the SQLite database (--db). The run is recorded in the
imports table and printed as JSON.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

var importsLimit int

var importsCmd = &cobra.Command{
	Use:   "imports",
	Short: "List recent import runs",
	Args:  cobra.NoArgs,
	RunE:  runImports,
}

func init() {
	importsCmd.Flags().IntVarP(&importsLimit, "limit", "n", 20, "Number of runs to show (0 for all)")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	src := fileSource()
	tables, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to read exports: %w", err)
	}
	logger.Info("exports parsed",
		zap.Strings("files", src.Paths()),
		zap.Int("products", len(tables.Products)),
		zap.Int("sales", len(tables.Sales)))

	store, err := sqlite.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	run, err := store.ImportTables(ctx, tables, tables.Source)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	logger.Info("import completed", zap.String("run", run.ID), zap.String("db", cfg.Store.Path))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

func runImports(cmd *cobra.Command, args []string) error {
	store, err := sqlite.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	runs, err := store.ListImports(cmd.Context(), importsLimit)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"ID", "Source", "Status", "Products", "Sales", "Started", "Error"})
	for _, r := range runs {
		table.Append([]string{
			r.ID,
			r.Source,
			r.Status,
			strconv.Itoa(r.Products),
			strconv.Itoa(r.Sales),
			r.StartedAt.Local().Format(time.DateTime),
			r.Error,
		})
	}
	table.Render()
	return nil
}
