package aggregate

import (
	"sort"
	"time"

	"github.com/warp/retail-dashboard/dataset"
)

// MonthLayout formats month labels.
const MonthLayout = "2006-01"

// MonthPoint is one month of a time series.
type MonthPoint struct {
	Month time.Time `json:"month"` // first day of the month, UTC
	Value int       `json:"value"`
}

// Label returns the month as YYYY-MM.
func (m MonthPoint) Label() string { return m.Month.Format(MonthLayout) }

// MonthSeries is ordered by month, oldest first.
type MonthSeries []MonthPoint

// Labels returns the YYYY-MM labels in order.
func (ms MonthSeries) Labels() []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Label()
	}
	return out
}

// Values returns the values in order.
func (ms MonthSeries) Values() []int {
	out := make([]int, len(ms))
	for i, m := range ms {
		out[i] = m.Value
	}
	return out
}

func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthlyUniqueProducts counts distinct products per calendar month. Rows
// without a valid date are ignored.
func MonthlyUniqueProducts[R dataset.Row](rows []R) MonthSeries {
	sets := make(map[time.Time]map[dataset.ID]struct{})
	for _, r := range rows {
		if !r.HasDate() {
			continue
		}
		m := monthOf(r.At())
		set, ok := sets[m]
		if !ok {
			set = make(map[dataset.ID]struct{})
			sets[m] = set
		}
		set[r.Key(dataset.ColProduct)] = struct{}{}
	}
	counts := make(map[time.Time]int, len(sets))
	for m, set := range sets {
		counts[m] = len(set)
	}
	return monthSeries(counts)
}

// GrowthScope selects which products a catalog growth curve covers.
type GrowthScope string

const (
	ScopeCategory     GrowthScope = "category"
	ScopeManufacturer GrowthScope = "manufacturer"
)

// CatalogGrowth counts new products per month: each product is attributed
// to the month of its earliest valid date. When manufacturer is non-empty
// only that manufacturer's listings are considered.
func CatalogGrowth(products []dataset.Product, category, manufacturer dataset.ID) (MonthSeries, error) {
	firstSeen := make(map[dataset.ID]time.Time)
	for _, p := range products {
		if p.Category != category || !p.HasDate() {
			continue
		}
		if manufacturer != "" && p.Manufacturer != manufacturer {
			continue
		}
		if seen, ok := firstSeen[p.Product]; !ok || p.Date.Before(seen) {
			firstSeen[p.Product] = p.Date
		}
	}
	if len(firstSeen) == 0 {
		return nil, ErrEmptySelection
	}

	counts := make(map[time.Time]int)
	for _, d := range firstSeen {
		counts[monthOf(d)]++
	}
	return monthSeries(counts), nil
}

func monthSeries(counts map[time.Time]int) MonthSeries {
	out := make(MonthSeries, 0, len(counts))
	for m, v := range counts {
		out = append(out, MonthPoint{Month: m, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}
