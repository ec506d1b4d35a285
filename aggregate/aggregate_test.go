package aggregate_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/retail-dashboard/aggregate"
	"github.com/warp/retail-dashboard/dataset"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// fixtureSales: category 10 has manufacturers 100 (products 1,2,6), 101 (3)
// and 102 (4); category 11 has manufacturer 100 (product 5). Store 7 is the
// busiest.
func fixtureSales() []dataset.Sale {
	return []dataset.Sale{
		dataset.NewSale("20240105", "1", "10", "100", "7"),
		dataset.NewSale("20240110", "2", "10", "100", "7"),
		dataset.NewSale("20240201", "3", "10", "101", "7"),
		dataset.NewSale("20240115", "1", "10", "100", "8"),
		dataset.NewSale("20240301", "4", "10", "102", "8"),
		dataset.NewSale("20240120", "5", "11", "100", "7"),
		dataset.NewSale("bad", "6", "10", "100", "7"),
	}
}

func fixtureProducts() []dataset.Product {
	return []dataset.Product{
		dataset.NewProduct("20240105", "1", "10", "100"),
		dataset.NewProduct("20240301", "1", "10", "100"),
		dataset.NewProduct("20240210", "2", "10", "100"),
		dataset.NewProduct("20240215", "3", "10", "101"),
		dataset.NewProduct("bad", "4", "10", "100"),
		dataset.NewProduct("20240101", "5", "11", "100"),
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// =============================================================================
// SERIES BUILDING BLOCKS
// =============================================================================

func TestCountBy_NaturalKeyOrder(t *testing.T) {
	got := aggregate.CountBy(fixtureSales(), dataset.ColStore)

	assert.Equal(t, []string{"7", "8"}, got.Keys())
	assert.Equal(t, []int{5, 2}, got.Values())
	assert.Equal(t, 7, got.Sum())
}

func TestNLargest_TiesKeepOrder(t *testing.T) {
	// GIVEN: Three keys, two of them tied
	s := aggregate.Series{{Key: "1", Value: 2}, {Key: "2", Value: 5}, {Key: "3", Value: 2}}

	// WHEN: Taking the top 2
	got := aggregate.NLargest(s, 2)

	// THEN: Largest first, then the earlier of the tied keys
	assert.Equal(t, []string{"2", "1"}, got.Keys())
	assert.Len(t, s, 3, "input is not modified")
}

func TestNLargest_AllWhenNonPositive(t *testing.T) {
	s := aggregate.Series{{Key: "1", Value: 1}, {Key: "2", Value: 3}}
	assert.Equal(t, []int{3, 1}, aggregate.NLargest(s, 0).Values())
	assert.Len(t, aggregate.NLargest(s, 10), 2)
}

func TestSortAscending(t *testing.T) {
	s := aggregate.Series{{Key: "1", Value: 4}, {Key: "2", Value: 1}, {Key: "3", Value: 4}}
	assert.Equal(t, []string{"2", "1", "3"}, aggregate.SortAscending(s).Keys())
}

func TestMean(t *testing.T) {
	assert.True(t, aggregate.Mean(nil).IsZero())
	s := aggregate.Series{{Key: "1", Value: 1}, {Key: "2", Value: 2}}
	assert.True(t, dec("1.5").Equal(aggregate.Mean(s)))
}

func TestValueCounts(t *testing.T) {
	got := aggregate.ValueCounts(fixtureSales(), dataset.ColManufacturer)
	assert.Equal(t, []string{"100", "101", "102"}, got.Keys())
	assert.Equal(t, []int{5, 1, 1}, got.Values())
}

// =============================================================================
// OVERVIEW COUNTS
// =============================================================================

func TestUniqueProductsByCategory(t *testing.T) {
	got := aggregate.UniqueProductsByCategory(fixtureSales())

	v, ok := got.Get("10")
	require.True(t, ok)
	assert.Equal(t, 5, v)
	v, _ = got.Get("11")
	assert.Equal(t, 1, v)
}

func TestUniqueStoresByCategory(t *testing.T) {
	got := aggregate.UniqueStoresByCategory(fixtureSales())
	assert.Equal(t, []int{2, 1}, got.Values())
}

func TestTopManufacturers(t *testing.T) {
	byProducts := aggregate.TopManufacturersByProducts(fixtureSales(), 2)
	assert.Equal(t, []string{"100", "101"}, byProducts.Keys())
	assert.Equal(t, []int{4, 1}, byProducts.Values())

	byStores := aggregate.TopManufacturersByStores(fixtureSales(), 20)
	assert.Equal(t, []int{2, 1, 1}, byStores.Values())
	assert.Equal(t, byStores, aggregate.MarketPresence(fixtureSales(), 20))
}

// =============================================================================
// CATEGORY VIEWS
// =============================================================================

func TestTopStoresForCategory(t *testing.T) {
	// GIVEN: Category 10 with 4 agreements in store 7 and 2 in store 8
	// WHEN: Ranking its stores
	got := aggregate.TopStoresForCategory(fixtureSales(), "10", 10)

	// THEN: Stores come smallest first for the horizontal bar
	assert.Equal(t, []string{"8", "7"}, got.Stores.Keys())
	assert.Equal(t, []int{2, 4}, got.Stores.Values())
	assert.Equal(t, 3, got.Manufacturers)
}

func TestTopStoresForCategory_KeepsLargest(t *testing.T) {
	got := aggregate.TopStoresForCategory(fixtureSales(), "10", 1)
	assert.Equal(t, []string{"7"}, got.Stores.Keys())
}

func TestHealthScore(t *testing.T) {
	// GIVEN: Manufacturer 101 owns 1 of the 5 products of category 10
	h := aggregate.HealthScore(fixtureSales(), "10", "101")

	// THEN: It scores 20% and the category mean is 5/3 products
	assert.True(t, dec("20").Equal(h.Score), "score %s", h.Score)
	assert.Equal(t, 5, h.CategoryProd)
	assert.Equal(t, 1, h.FabProd)
	assert.Equal(t, "1.7", h.MeanPerFab.StringFixed(1))
}

func TestHealthScore_AbsentManufacturer(t *testing.T) {
	h := aggregate.HealthScore(fixtureSales(), "11", "101")
	assert.True(t, h.Score.IsZero())
	assert.Equal(t, 0, h.FabProd)
}

func TestHealthScore_EmptyCategory(t *testing.T) {
	h := aggregate.HealthScore(fixtureSales(), "99", "100")
	assert.True(t, h.Score.IsZero())
	assert.True(t, h.MeanPerFab.IsZero())
}

// =============================================================================
// CONCENTRATION
// =============================================================================

func TestClassifyHHI(t *testing.T) {
	assert.Equal(t, aggregate.LevelLow, aggregate.ClassifyHHI(dec("0.0099")))
	assert.Equal(t, aggregate.LevelModerate, aggregate.ClassifyHHI(dec("0.01")))
	assert.Equal(t, aggregate.LevelModerate, aggregate.ClassifyHHI(dec("0.0299")))
	assert.Equal(t, aggregate.LevelHigh, aggregate.ClassifyHHI(dec("0.03")))
}

func TestMarketConcentration(t *testing.T) {
	// GIVEN: Shares 3/5, 1/5, 1/5 in category 10
	c, err := aggregate.MarketConcentration(fixtureSales(), "10", 20)
	require.NoError(t, err)

	// THEN: HHI = 0.36 + 0.04 + 0.04
	assert.Equal(t, 5, c.Total)
	assert.True(t, dec("0.44").Equal(c.HHI), "hhi %s", c.HHI)
	assert.Equal(t, aggregate.LevelHigh, c.Level)
	require.Len(t, c.Shares, 3)
	assert.Equal(t, dataset.ID("100"), c.Shares[0].Manufacturer)
	assert.True(t, dec("0.6").Equal(c.Shares[0].Share))
}

func TestMarketConcentration_LimitKeepsIndex(t *testing.T) {
	c, err := aggregate.MarketConcentration(fixtureSales(), "10", 1)
	require.NoError(t, err)

	assert.Len(t, c.Shares, 1)
	assert.True(t, dec("0.44").Equal(c.HHI), "index covers every manufacturer")
}

func TestMarketConcentration_Empty(t *testing.T) {
	_, err := aggregate.MarketConcentration(fixtureSales(), "99", 20)
	assert.True(t, errors.Is(err, aggregate.ErrEmptySelection))
}

// =============================================================================
// GROWTH
// =============================================================================

func TestMonthlyUniqueProducts(t *testing.T) {
	got := aggregate.MonthlyUniqueProducts(fixtureSales())

	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, got.Labels())
	assert.Equal(t, []int{3, 1, 1}, got.Values())
}

func TestCatalogGrowth_WholeCategory(t *testing.T) {
	// GIVEN: Product 1 listed in January and again in March
	// WHEN: Computing new products per month for category 10
	got, err := aggregate.CatalogGrowth(fixtureProducts(), "10", "")

	// THEN: Product 1 counts once, in January; undated rows are ignored
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01", "2024-02"}, got.Labels())
	assert.Equal(t, []int{1, 2}, got.Values())
}

func TestCatalogGrowth_ByManufacturer(t *testing.T) {
	got, err := aggregate.CatalogGrowth(fixtureProducts(), "10", "101")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02"}, got.Labels())
	assert.Equal(t, []int{1}, got.Values())
}

func TestCatalogGrowth_Empty(t *testing.T) {
	_, err := aggregate.CatalogGrowth(fixtureProducts(), "99", "")
	assert.ErrorIs(t, err, aggregate.ErrEmptySelection)
}
