/*
Package aggregate implements the relational arithmetic behind the dashboards.

PURPOSE:
  Every dashboard page filters the shared tables and reduces the rows to a
  keyed series: a count, a distinct count, a ratio or a share per key. The
  functions here are pure; they never touch the cache or the charting layer.

BUILDING BLOCKS (series.go):
  CountBy       rows per key                     (groupby().count())
  NUniqueBy     distinct values per key          (groupby().nunique())
  NLargest      top n by value, stable on ties   (nlargest())
  SortAscending value-ascending, stable          (sort_values())
  ValueCounts   CountBy ordered by frequency     (value_counts())

ORDERING:
  Group keys come out in natural ID order (numeric when keys are integers).
  NLargest keeps that order among equal values.

PRECISION:
  Ratios, shares and means use decimal.Decimal. Conversion to float64
  happens only where chart options are built.

SEE ALSO:
  - market.go: Shares, HHI, health score, presence
  - growth.go: Monthly trends and catalog growth
  - compare.go: Store-vs-store dumbbell and agreement ratio
  - sankey.go: Store -> category -> supplier flow
*/
package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/retail-dashboard/dataset"
)

// Point is one keyed value of a Series.
type Point struct {
	Key   dataset.ID `json:"key"`
	Value int        `json:"value"`
}

// Series is an ordered list of keyed values.
type Series []Point

// Keys returns the keys as strings, in order.
func (s Series) Keys() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = string(p.Key)
	}
	return out
}

// Values returns the values, in order.
func (s Series) Values() []int {
	out := make([]int, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Sum returns the sum of all values.
func (s Series) Sum() int {
	total := 0
	for _, p := range s {
		total += p.Value
	}
	return total
}

// Get returns the value for key and whether it is present.
func (s Series) Get(key dataset.ID) (int, bool) {
	for _, p := range s {
		if p.Key == key {
			return p.Value, true
		}
	}
	return 0, false
}

// CountBy counts rows per key.
func CountBy[R dataset.Row](rows []R, key dataset.Column) Series {
	counts := make(map[dataset.ID]int)
	for _, r := range rows {
		counts[r.Key(key)]++
	}
	return fromMap(counts)
}

// NUniqueBy counts distinct values of value per key.
func NUniqueBy[R dataset.Row](rows []R, key, value dataset.Column) Series {
	sets := make(map[dataset.ID]map[dataset.ID]struct{})
	for _, r := range rows {
		k := r.Key(key)
		set, ok := sets[k]
		if !ok {
			set = make(map[dataset.ID]struct{})
			sets[k] = set
		}
		set[r.Key(value)] = struct{}{}
	}
	counts := make(map[dataset.ID]int, len(sets))
	for k, set := range sets {
		counts[k] = len(set)
	}
	return fromMap(counts)
}

// NUnique counts distinct values of col.
func NUnique[R dataset.Row](rows []R, col dataset.Column) int {
	seen := make(map[dataset.ID]struct{})
	for _, r := range rows {
		seen[r.Key(col)] = struct{}{}
	}
	return len(seen)
}

// ValueCounts counts rows per key, most frequent first. Ties keep natural
// key order.
func ValueCounts[R dataset.Row](rows []R, key dataset.Column) Series {
	return NLargest(CountBy(rows, key), 0)
}

// NLargest returns the n largest points, largest first. Ties keep their
// current order. n <= 0 keeps every point.
func NLargest(s Series, n int) Series {
	out := make(Series, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// SortAscending returns s sorted by value, smallest first.
func SortAscending(s Series) Series {
	out := make(Series, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

// Mean returns the arithmetic mean of the values, zero for an empty series.
func Mean(s Series) decimal.Decimal {
	if len(s) == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(s.Sum())).Div(decimal.NewFromInt(int64(len(s))))
}

func fromMap(m map[dataset.ID]int) Series {
	keys := make([]dataset.ID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	dataset.SortIDs(keys)
	out := make(Series, len(keys))
	for i, k := range keys {
		out[i] = Point{Key: k, Value: m[k]}
	}
	return out
}
