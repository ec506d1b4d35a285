package demos

import (
	"fmt"

	"github.com/warp/retail-dashboard/aggregate"
	"github.com/warp/retail-dashboard/chart"
	"github.com/warp/retail-dashboard/dataset"
)

// TopManufacturers is the ranking size of the overview manufacturer pages.
const TopManufacturers = 20

// FullCollabBoard is the overview of the point-of-sale dataset.
func FullCollabBoard() *Board {
	return &Board{
		ID:   "fullcollab",
		Name: "Overview",
		Demos: []*Demo{
			{
				ID:          "products-by-category",
				Name:        "Products by Category",
				Description: "Distinct products per category",
				Height:      "500px",
				Render:      renderProductsByCategory,
			},
			{
				ID:          "products-by-manufacturer",
				Name:        "Products by Manufacturer",
				Description: fmt.Sprintf("Top %d manufacturers by number of products", TopManufacturers),
				Height:      "500px",
				Render:      renderProductsByManufacturer,
			},
			{
				ID:          "stores-by-category",
				Name:        "Stores by Category",
				Description: "Distinct stores per category",
				Height:      "500px",
				Render:      renderStoresByCategory,
			},
			{
				ID:          "stores-by-manufacturer",
				Name:        "Stores by Manufacturer",
				Description: fmt.Sprintf("Top %d manufacturers by number of stores", TopManufacturers),
				Height:      "500px",
				Render:      renderStoresByManufacturer,
			},
			{
				ID:          "monthly-trend",
				Name:        "Monthly Trend",
				Description: "Distinct products per month",
				Height:      "500px",
				Render:      renderMonthlyTrend,
			},
			{
				ID:          "sankey",
				Name:        "Sankey Diagram",
				Description: "Flow Store → Categories → Suppliers",
				Height:      "700px",
				Params: []Param{
					{Name: "store", Label: "Store", Kind: KindSelect, Options: busiestFirst},
				},
				Render: renderSankey,
			},
		},
	}
}

// busiestFirst lists stores with the busiest one first so it is the default.
func busiestFirst(t *dataset.Tables, _ Values) []dataset.ID {
	counts := aggregate.ValueCounts(t.Sales, dataset.ColStore)
	out := make([]dataset.ID, len(counts))
	for i, p := range counts {
		out[i] = p.Key
	}
	return out
}

func renderProductsByCategory(t *dataset.Tables, _ Values) (*Page, error) {
	s := aggregate.UniqueProductsByCategory(t.Sales)
	return &Page{Chart: chart.CountBar("Distinct products per category", s.Keys(), s.Values(), "Products", chart.Blue)}, nil
}

func renderProductsByManufacturer(t *dataset.Tables, _ Values) (*Page, error) {
	s := aggregate.TopManufacturersByProducts(t.Sales, TopManufacturers)
	title := fmt.Sprintf("Top %d manufacturers by distinct products", TopManufacturers)
	return &Page{Chart: chart.CountBar(title, s.Keys(), s.Values(), "Products", chart.Green)}, nil
}

func renderStoresByCategory(t *dataset.Tables, _ Values) (*Page, error) {
	s := aggregate.UniqueStoresByCategory(t.Sales)
	return &Page{Chart: chart.CountBar("Distinct stores per category", s.Keys(), s.Values(), "Stores", chart.Yellow)}, nil
}

func renderStoresByManufacturer(t *dataset.Tables, _ Values) (*Page, error) {
	s := aggregate.TopManufacturersByStores(t.Sales, TopManufacturers)
	title := fmt.Sprintf("Top %d manufacturers by distinct stores", TopManufacturers)
	return &Page{Chart: chart.CountBar(title, s.Keys(), s.Values(), "Stores", chart.Red)}, nil
}

func renderMonthlyTrend(t *dataset.Tables, _ Values) (*Page, error) {
	ms := aggregate.MonthlyUniqueProducts(t.Sales)
	if len(ms) == 0 {
		return nil, aggregate.ErrEmptySelection
	}
	return &Page{Chart: chart.Line("Distinct products per month", ms.Labels(), ms.Values(), "Products")}, nil
}

func renderSankey(t *dataset.Tables, v Values) (*Page, error) {
	opts := aggregate.DefaultFlowOptions
	opts.Store = v.ID("store")
	flow, err := aggregate.SankeyFlow(t.Sales, opts)
	if err != nil {
		return nil, err
	}
	links := make([]chart.Link, len(flow.Links))
	for i, l := range flow.Links {
		links[i] = chart.Link{Source: l.Source, Target: l.Target, Value: l.Value}
	}
	return &Page{
		Chart: chart.Sankey("Flow: Store → Categories → Suppliers", "Weighted by distinct products", flow.Nodes, links),
	}, nil
}
