package aggregate

import (
	"github.com/shopspring/decimal"
	"github.com/warp/retail-dashboard/dataset"
)

// =============================================================================
// OVERVIEW COUNTS
// =============================================================================

// UniqueProductsByCategory counts distinct products per category.
func UniqueProductsByCategory(sales []dataset.Sale) Series {
	return NUniqueBy(sales, dataset.ColCategory, dataset.ColProduct)
}

// UniqueStoresByCategory counts distinct stores per category.
func UniqueStoresByCategory(sales []dataset.Sale) Series {
	return NUniqueBy(sales, dataset.ColCategory, dataset.ColStore)
}

// TopManufacturersByProducts returns the n manufacturers with the most
// distinct products.
func TopManufacturersByProducts(sales []dataset.Sale, n int) Series {
	return NLargest(NUniqueBy(sales, dataset.ColManufacturer, dataset.ColProduct), n)
}

// TopManufacturersByStores returns the n manufacturers present in the most
// distinct stores.
func TopManufacturersByStores(sales []dataset.Sale, n int) Series {
	return NLargest(NUniqueBy(sales, dataset.ColManufacturer, dataset.ColStore), n)
}

// MarketPresence is TopManufacturersByStores under the name the
// manufacturer board uses.
func MarketPresence(sales []dataset.Sale, n int) Series {
	return TopManufacturersByStores(sales, n)
}

// =============================================================================
// CATEGORY VIEWS
// =============================================================================

// CategoryStores is the store ranking for one category.
type CategoryStores struct {
	Category      dataset.ID
	Stores        Series // ascending, for horizontal bars
	Manufacturers int    // distinct manufacturers in the category
}

// TopStoresForCategory ranks stores by number of agreements in category,
// keeping the n largest and returning them smallest first.
func TopStoresForCategory(sales []dataset.Sale, category dataset.ID, n int) CategoryStores {
	subset := filterCategory(sales, category)
	return CategoryStores{
		Category:      category,
		Stores:        SortAscending(NLargest(CountBy(subset, dataset.ColStore), n)),
		Manufacturers: NUnique(subset, dataset.ColManufacturer),
	}
}

// Health is a manufacturer's weight inside one category.
type Health struct {
	Category     dataset.ID
	Manufacturer dataset.ID
	Score        decimal.Decimal // percent, 0..100
	CategoryProd int
	FabProd      int
	MeanPerFab   decimal.Decimal // mean distinct products per manufacturer
}

// HealthScore computes the share of the category's distinct products that
// belong to manufacturer, as a percentage. An empty category scores 0.
func HealthScore(sales []dataset.Sale, category, manufacturer dataset.ID) Health {
	subset := filterCategory(sales, category)
	h := Health{
		Category:     category,
		Manufacturer: manufacturer,
		CategoryProd: NUnique(subset, dataset.ColProduct),
		Score:        decimal.Zero,
	}

	var fabRows []dataset.Sale
	for _, s := range subset {
		if s.Manufacturer == manufacturer {
			fabRows = append(fabRows, s)
		}
	}
	if len(fabRows) > 0 {
		h.FabProd = NUnique(fabRows, dataset.ColProduct)
	}
	if h.CategoryProd > 0 {
		h.Score = decimal.NewFromInt(int64(h.FabProd)).
			Div(decimal.NewFromInt(int64(h.CategoryProd))).
			Mul(decimal.NewFromInt(100))
	}
	h.MeanPerFab = Mean(NUniqueBy(subset, dataset.ColManufacturer, dataset.ColProduct))
	return h
}

// =============================================================================
// CONCENTRATION (HHI)
// =============================================================================

// Level classifies a Herfindahl-Hirschman index.
type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
)

var (
	hhiLowBound      = decimal.RequireFromString("0.01")
	hhiModerateBound = decimal.RequireFromString("0.03")
)

// ClassifyHHI maps an index to its concentration level.
func ClassifyHHI(hhi decimal.Decimal) Level {
	switch {
	case hhi.LessThan(hhiLowBound):
		return LevelLow
	case hhi.LessThan(hhiModerateBound):
		return LevelModerate
	}
	return LevelHigh
}

// Share is one manufacturer's market share in a category.
type Share struct {
	Manufacturer dataset.ID      `json:"manufacturer"`
	Products     int             `json:"products"`
	Share        decimal.Decimal `json:"share"`
}

// Concentration is the market structure of one category.
type Concentration struct {
	Category dataset.ID
	Total    int // sum of per-manufacturer distinct products
	HHI      decimal.Decimal
	Level    Level
	Shares   []Share // largest first, truncated
}

// MarketConcentration computes per-manufacturer shares of distinct products
// in category and their HHI (sum of squared fractional shares). Shares are
// truncated to limit after sorting; the index uses every manufacturer.
func MarketConcentration(sales []dataset.Sale, category dataset.ID, limit int) (*Concentration, error) {
	counts := NUniqueBy(filterCategory(sales, category), dataset.ColManufacturer, dataset.ColProduct)
	total := counts.Sum()
	if total == 0 {
		return nil, ErrEmptySelection
	}

	totalDec := decimal.NewFromInt(int64(total))
	c := &Concentration{Category: category, Total: total, HHI: decimal.Zero}
	for _, p := range NLargest(counts, 0) {
		share := decimal.NewFromInt(int64(p.Value)).Div(totalDec)
		c.HHI = c.HHI.Add(share.Mul(share))
		c.Shares = append(c.Shares, Share{Manufacturer: p.Key, Products: p.Value, Share: share})
	}
	c.Level = ClassifyHHI(c.HHI)
	if limit > 0 && len(c.Shares) > limit {
		c.Shares = c.Shares[:limit]
	}
	return c, nil
}

func filterCategory(sales []dataset.Sale, category dataset.ID) []dataset.Sale {
	var out []dataset.Sale
	for _, s := range sales {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}
