package demos

import (
	"fmt"

	"github.com/warp/retail-dashboard/aggregate"
	"github.com/warp/retail-dashboard/chart"
	"github.com/warp/retail-dashboard/dataset"
)

// Page limits of the manufacturer board.
const (
	TopStoresPerCategory = 10
	TopRatios            = 30
	TopShares            = 20
	RatioPeriodStart     = "2022-01-01"
)

// Catalog growth scopes as shown in the radio group.
const (
	ScopeWholeCategory  = "Whole category"
	ScopeByManufacturer = "By manufacturer"
)

var (
	salesCategories    = SalesOptions(dataset.ColCategory)
	salesManufacturers = SalesOptions(dataset.ColManufacturer)
	salesStores        = SalesOptions(dataset.ColStore)
)

// FabricantsBoard holds the manufacturer-centric pages.
func FabricantsBoard() *Board {
	return &Board{
		ID:   "fabricants",
		Name: "Manufacturers",
		Demos: []*Demo{
			{
				ID:          "top-stores-category",
				Name:        "Top Stores by Category",
				Description: fmt.Sprintf("Top %d stores by agreements in a category", TopStoresPerCategory),
				Height:      "500px",
				Params: []Param{
					{Name: "category", Label: "Category", Kind: KindSelect, Options: salesCategories},
				},
				Render: renderTopStoresCategory,
			},
			{
				ID:          "health-score",
				Name:        "Manufacturer Health Score",
				Description: "Share of a category's products owned by a manufacturer",
				Height:      "400px",
				Params: []Param{
					{Name: "category", Label: "Category", Kind: KindSelect, Options: salesCategories},
					{Name: "manufacturer", Label: "Manufacturer", Kind: KindSelect, Options: salesManufacturers},
				},
				Render: renderHealthScore,
			},
			{
				ID:          "market-presence",
				Name:        "Market Presence",
				Description: "Manufacturers present in the most stores",
				Height:      "500px",
				Params: []Param{
					{Name: "top", Label: "Manufacturers to show", Kind: KindSlider, Min: 5, Max: 20, Step: 5, DefaultInt: 10},
				},
				Render: renderMarketPresence,
			},
			{
				ID:          "store-availability",
				Name:        "Store Availability",
				Description: "Manufacturer availability per category in two stores",
				Height:      "600px",
				Params: []Param{
					{Name: "store_a", Label: "Store A", Kind: KindSelect, Options: salesStores},
					{Name: "store_b", Label: "Store B", Kind: KindSelect, Options: salesStores, DefaultIndex: 1},
					{Name: "manufacturer", Label: "Manufacturer", Kind: KindSelect, Options: salesManufacturers},
				},
				Render: renderStoreAvailability,
			},
			{
				ID:          "agreement-ratio",
				Name:        "Agreements/Products Ratio",
				Description: "Agreements per distinct product by manufacturer",
				Height:      "650px",
				Params: []Param{
					{Name: "category", Label: "Category", Kind: KindSelect, Options: salesCategories},
					{Name: "from", Label: "Start date", Kind: KindDate, Default: RatioPeriodStart},
					{Name: "to", Label: "End date", Kind: KindDate, Today: true},
				},
				Render: renderAgreementRatio,
			},
			{
				ID:          "competitive-intensity",
				Name:        "Competitive Intensity",
				Description: "Market shares and Herfindahl-Hirschman index of a category",
				Height:      "500px",
				Params: []Param{
					{Name: "category", Label: "Category", Kind: KindSelect, Options: salesCategories},
				},
				Render: renderCompetitiveIntensity,
			},
			{
				ID:          "catalog-growth",
				Name:        "Catalog Growth",
				Description: "New products per month",
				Height:      "500px",
				Params: []Param{
					{Name: "category", Label: "Category", Kind: KindSelect, Options: ProductOptions(dataset.ColCategory)},
					{Name: "scope", Label: "View", Kind: KindRadio, Choices: []string{ScopeWholeCategory, ScopeByManufacturer}},
					{
						Name:    "manufacturer",
						Label:   "Manufacturer",
						Kind:    KindSelect,
						Options: categoryManufacturers,
						When:    func(v Values) bool { return v.String("scope") == ScopeByManufacturer },
					},
				},
				Render: renderCatalogGrowth,
			},
		},
	}
}

// categoryManufacturers lists the manufacturers listed in the selected
// category of the product table.
func categoryManufacturers(t *dataset.Tables, v Values) []dataset.ID {
	category := v.ID("category")
	rows := t.FilterProducts(func(p dataset.Product) bool { return p.Category == category })
	seen := make(map[dataset.ID]struct{})
	var out []dataset.ID
	for _, p := range rows {
		if _, ok := seen[p.Manufacturer]; !ok {
			seen[p.Manufacturer] = struct{}{}
			out = append(out, p.Manufacturer)
		}
	}
	dataset.SortIDs(out)
	return out
}

func renderTopStoresCategory(t *dataset.Tables, v Values) (*Page, error) {
	cat := v.ID("category")
	res := aggregate.TopStoresForCategory(t.Sales, cat, TopStoresPerCategory)
	return &Page{
		Chart: chart.HorizontalBar(
			fmt.Sprintf("Top %d stores for category %s", TopStoresPerCategory, cat),
			res.Stores.Keys(), res.Stores.Values(), "Products", "Store ID", chart.Blue),
		Metrics: []Metric{
			{Label: "Manufacturers in this category", Value: fmt.Sprint(res.Manufacturers)},
		},
	}, nil
}

func renderHealthScore(t *dataset.Tables, v Values) (*Page, error) {
	cat, fab := v.ID("category"), v.ID("manufacturer")
	h := aggregate.HealthScore(t.Sales, cat, fab)
	return &Page{
		Chart: chart.Gauge(fmt.Sprintf("Health score Fab %s - Cat %s", fab, cat), h.Score.InexactFloat64(), "Score"),
		Metrics: []Metric{
			{Label: fmt.Sprintf("Mean products of category %s per manufacturer", cat), Value: h.MeanPerFab.StringFixed(1)},
		},
	}, nil
}

func renderMarketPresence(t *dataset.Tables, v Values) (*Page, error) {
	n := v.Int("top")
	s := aggregate.MarketPresence(t.Sales, n)
	slices := make([]chart.NamedValue, len(s))
	for i, p := range s {
		slices[i] = chart.NamedValue{Name: string(p.Key), Value: float64(p.Value)}
	}
	return &Page{Chart: chart.Pie(fmt.Sprintf("Top %d manufacturers present in the most stores", n), slices)}, nil
}

func renderStoreAvailability(t *dataset.Tables, v Values) (*Page, error) {
	a, b, fab := v.ID("store_a"), v.ID("store_b"), v.ID("manufacturer")
	d := aggregate.CompareStores(t.Sales, fab, a, b)
	rows := make([]chart.DumbbellRow, len(d.Rows))
	for i, r := range d.Rows {
		rows[i] = chart.DumbbellRow{Label: string(r.Category), A: r.A, B: r.B}
	}
	return &Page{
		Chart: chart.Dumbbell(
			fmt.Sprintf("Availability of manufacturer %s: %s vs %s", fab, a, b),
			fmt.Sprintf("Store %s", a), fmt.Sprintf("Store %s", b),
			rows, "Available products", "Category"),
	}, nil
}

func renderAgreementRatio(t *dataset.Tables, v Values) (*Page, error) {
	cat := v.ID("category")
	period := aggregate.Period{From: v.Date("from"), To: v.Date("to")}
	res, err := aggregate.AgreementRatio(t.Sales, cat, period, TopRatios)
	if err != nil {
		return nil, err
	}
	points := make([]chart.Bubble, len(res.Rows))
	for i, r := range res.Rows {
		points[i] = chart.Bubble{
			Label:      string(r.Manufacturer),
			Ratio:      r.Ratio.InexactFloat64(),
			Agreements: r.Agreements,
			Products:   r.Products,
		}
	}
	return &Page{
		Chart: chart.RatioBubbles(fmt.Sprintf("Agreements/products ratio (cat %s)", cat), points,
			res.Min.InexactFloat64(), res.Max.InexactFloat64(), "Agreements per product", "Manufacturer"),
	}, nil
}

func renderCompetitiveIntensity(t *dataset.Tables, v Values) (*Page, error) {
	cat := v.ID("category")
	c, err := aggregate.MarketConcentration(t.Sales, cat, TopShares)
	if err != nil {
		return nil, err
	}

	labels := make([]string, len(c.Shares))
	shares := make([]float64, len(c.Shares))
	table := &Table{Columns: []string{"manufacturer", "share_frac", "nb_products"}}
	for i, s := range c.Shares {
		labels[i] = string(s.Manufacturer)
		shares[i] = s.Share.InexactFloat64()
		table.Rows = append(table.Rows, []any{labels[i], shares[i], s.Products})
	}
	return &Page{
		Chart: chart.Bar(fmt.Sprintf("Market shares - Category %s", cat), labels, shares, "Market share", chart.Red),
		Table: table,
		Metrics: []Metric{
			{Label: fmt.Sprintf("HHI for category %s", cat), Value: c.HHI.StringFixed(4)},
			{Label: "Interpretation", Value: string(c.Level) + " concentration"},
		},
	}, nil
}

func renderCatalogGrowth(t *dataset.Tables, v Values) (*Page, error) {
	cat, scope := v.ID("category"), v.String("scope")
	fab := dataset.ID("")
	if scope == ScopeByManufacturer {
		fab = v.ID("manufacturer")
		if fab == "" {
			return nil, aggregate.ErrEmptySelection
		}
	}
	ms, err := aggregate.CatalogGrowth(t.Products, cat, fab)
	if err != nil {
		return nil, err
	}
	return &Page{
		Chart: chart.Line(fmt.Sprintf("New products per month - %s (cat %s)", scope, cat), ms.Labels(), ms.Values(), "New products"),
	}, nil
}
