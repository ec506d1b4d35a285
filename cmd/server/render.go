package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/warp/retail-dashboard/dataset"
	"github.com/warp/retail-dashboard/demos"
)

var renderCmd = &cobra.Command{
	Use:   "render <demo> [name=value...]",
	Short: "Render one demo page as JSON",
	Long: `Loads the dataset, renders the demo with the given widget values and
prints the page (chart options, metrics, table) as JSON.

Example:
  server render agreement-ratio category=12 from=2023-01-01 to=2023-12-31`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

var demosCmd = &cobra.Command{
	Use:   "demos",
	Short: "List boards and demos",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := demos.NewRegistry(dataset.NewCache(nil, logger))
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Board", "Demo", "Name", "Widgets"})
		for _, b := range registry.Boards() {
			for _, d := range b.Demos {
				names := make([]string, len(d.Params))
				for i, p := range d.Params {
					names[i] = p.Name
				}
				table.Append([]string{b.ID, d.ID, d.Name, strings.Join(names, ", ")})
			}
		}
		table.Render()
		return nil
	},
}

func runRender(cmd *cobra.Command, args []string) error {
	raw, err := parseAssignments(args[1:])
	if err != nil {
		return err
	}

	source, store, err := openSource()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	cache := dataset.NewCache(source, logger.Named("dataset"))
	registry := demos.NewRegistry(cache, demos.WithLogger(logger.Named("demos")))
	page, err := registry.Render(cmd.Context(), args[0], raw)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(page)
}

// parseAssignments turns name=value arguments into widget values.
func parseAssignments(args []string) (url.Values, error) {
	raw := url.Values{}
	for _, a := range args {
		name, value, ok := strings.Cut(a, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("expected name=value, got %q", a)
		}
		raw.Set(name, value)
	}
	return raw, nil
}
