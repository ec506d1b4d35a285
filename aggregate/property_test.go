package aggregate_test

import (
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/warp/retail-dashboard/aggregate"
	"github.com/warp/retail-dashboard/dataset"
)

// salesFrom turns generated codes into one-category sales: code%20 is the
// product, code/20 the manufacturer.
func salesFrom(codes []int) []dataset.Sale {
	out := make([]dataset.Sale, len(codes))
	for i, c := range codes {
		out[i] = dataset.NewSale("20240101", strconv.Itoa(c%20), "1", strconv.Itoa(c/20), strconv.Itoa(i%3))
	}
	return out
}

func TestProperty_MarketConcentration(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	tolerance := decimal.New(1, -12)

	properties.Property("shares of every manufacturer sum to 1", prop.ForAll(
		func(codes []int) bool {
			c, err := aggregate.MarketConcentration(salesFrom(codes), "1", 0)
			if err != nil {
				return false
			}
			sum := decimal.Zero
			for _, s := range c.Shares {
				sum = sum.Add(s.Share)
			}
			return sum.Sub(decimal.NewFromInt(1)).Abs().LessThan(tolerance)
		},
		gen.SliceOfN(30, gen.IntRange(0, 99)),
	))

	properties.Property("HHI lies in (0, 1]", prop.ForAll(
		func(codes []int) bool {
			c, err := aggregate.MarketConcentration(salesFrom(codes), "1", 0)
			if err != nil {
				return false
			}
			return c.HHI.IsPositive() && c.HHI.LessThanOrEqual(decimal.NewFromInt(1).Add(tolerance))
		},
		gen.SliceOfN(30, gen.IntRange(0, 99)),
	))

	properties.Property("single manufacturer has HHI 1 and high level", prop.ForAll(
		func(codes []int) bool {
			for i := range codes {
				codes[i] %= 20
			}
			c, err := aggregate.MarketConcentration(salesFrom(codes), "1", 0)
			if err != nil {
				return false
			}
			return c.HHI.Equal(decimal.NewFromInt(1)) && c.Level == aggregate.LevelHigh
		},
		gen.SliceOfN(10, gen.IntRange(0, 99)),
	))

	properties.TestingRun(t)
}

func TestProperty_NLargest(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("keeps min(n, len) points in descending order", prop.ForAll(
		func(codes []int, n int) bool {
			s := aggregate.CountBy(salesFrom(codes), dataset.ColManufacturer)
			got := aggregate.NLargest(s, n)

			want := len(s)
			if n > 0 && n < want {
				want = n
			}
			if len(got) != want {
				return false
			}
			for i := 1; i < len(got); i++ {
				if got[i].Value > got[i-1].Value {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 99)),
		gen.IntRange(-2, 8),
	))

	properties.Property("count totals match row totals", prop.ForAll(
		func(codes []int) bool {
			sales := salesFrom(codes)
			return aggregate.CountBy(sales, dataset.ColStore).Sum() == len(sales)
		},
		gen.SliceOf(gen.IntRange(0, 99)),
	))

	properties.Property("distinct counts per key never exceed the global distinct count", prop.ForAll(
		func(codes []int) bool {
			sales := salesFrom(codes)
			total := aggregate.NUnique(sales, dataset.ColProduct)
			for _, p := range aggregate.NUniqueBy(sales, dataset.ColStore, dataset.ColProduct) {
				if p.Value > total {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 99)),
	))

	properties.TestingRun(t)
}
