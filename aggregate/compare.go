package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/retail-dashboard/dataset"
)

// =============================================================================
// DUMBBELL - Manufacturer availability in two stores
// =============================================================================

// DumbbellRow compares one category across the two stores.
type DumbbellRow struct {
	Category dataset.ID
	A        int
	B        int
}

// Dumbbell is the per-category availability of a manufacturer in two stores.
type Dumbbell struct {
	Manufacturer dataset.ID
	StoreA       dataset.ID
	StoreB       dataset.ID
	Rows         []DumbbellRow // natural category order
}

// CompareStores counts the manufacturer's distinct products per category in
// storeA and storeB. Categories present in either store are listed; the
// missing side counts 0.
func CompareStores(sales []dataset.Sale, manufacturer, storeA, storeB dataset.ID) Dumbbell {
	var rowsA, rowsB []dataset.Sale
	for _, s := range sales {
		if s.Manufacturer != manufacturer {
			continue
		}
		if s.Store == storeA {
			rowsA = append(rowsA, s)
		}
		if s.Store == storeB {
			rowsB = append(rowsB, s)
		}
	}
	a := NUniqueBy(rowsA, dataset.ColCategory, dataset.ColProduct)
	b := NUniqueBy(rowsB, dataset.ColCategory, dataset.ColProduct)

	cats := make(map[dataset.ID]struct{})
	for _, p := range a {
		cats[p.Key] = struct{}{}
	}
	for _, p := range b {
		cats[p.Key] = struct{}{}
	}
	keys := make([]dataset.ID, 0, len(cats))
	for k := range cats {
		keys = append(keys, k)
	}
	dataset.SortIDs(keys)

	d := Dumbbell{Manufacturer: manufacturer, StoreA: storeA, StoreB: storeB}
	for _, k := range keys {
		va, _ := a.Get(k)
		vb, _ := b.Get(k)
		d.Rows = append(d.Rows, DumbbellRow{Category: k, A: va, B: vb})
	}
	return d
}

// =============================================================================
// AGREEMENT RATIO - Agreements per distinct product
// =============================================================================

// RatioRow is one manufacturer's agreement ratio.
type RatioRow struct {
	Manufacturer dataset.ID
	Agreements   int
	Products     int
	Ratio        decimal.Decimal
}

// AgreementRatios is the ranked ratio table for a category and period.
type AgreementRatios struct {
	Category dataset.ID
	From     time.Time
	To       time.Time
	Rows     []RatioRow // highest ratio first
	Min      decimal.Decimal
	Max      decimal.Decimal
}

// Period bounds an inclusive date range. The upper bound admits rows up to
// and including midnight of the day after To.
type Period struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	end := p.To.AddDate(0, 0, 1)
	return !t.Before(p.From) && !t.After(end)
}

// AgreementRatio ranks manufacturers of category by agreements (rows) per
// distinct product over rows dated inside period. Rows without a valid date
// never match. The result keeps the top limit manufacturers.
func AgreementRatio(sales []dataset.Sale, category dataset.ID, period Period, limit int) (*AgreementRatios, error) {
	var subset []dataset.Sale
	for _, s := range sales {
		if s.Category == category && s.HasDate() && period.Contains(s.Date) {
			subset = append(subset, s)
		}
	}
	if len(subset) == 0 {
		return nil, ErrEmptySelection
	}

	agreements := CountBy(subset, dataset.ColManufacturer)
	products := NUniqueBy(subset, dataset.ColManufacturer, dataset.ColProduct)

	out := &AgreementRatios{Category: category, From: period.From, To: period.To}
	for _, p := range agreements {
		n, _ := products.Get(p.Key)
		ratio := decimal.Zero
		if n > 0 {
			ratio = decimal.NewFromInt(int64(p.Value)).Div(decimal.NewFromInt(int64(n)))
		}
		out.Rows = append(out.Rows, RatioRow{Manufacturer: p.Key, Agreements: p.Value, Products: n, Ratio: ratio})
	}
	sort.SliceStable(out.Rows, func(i, j int) bool { return out.Rows[i].Ratio.GreaterThan(out.Rows[j].Ratio) })
	if limit > 0 && len(out.Rows) > limit {
		out.Rows = out.Rows[:limit]
	}

	out.Min, out.Max = out.Rows[0].Ratio, out.Rows[0].Ratio
	for _, r := range out.Rows[1:] {
		if r.Ratio.LessThan(out.Min) {
			out.Min = r.Ratio
		}
		if r.Ratio.GreaterThan(out.Max) {
			out.Max = r.Ratio
		}
	}
	return out, nil
}
