/*
Package dataset loads and caches the two tables behind every dashboard page.

PURPOSE:
  The dashboards read two flat files:
  - Product listings: one row per (date, product, category, manufacturer)
  - Point-of-sale records: the same columns plus the store that lists the
    product. A point-of-sale row is called an "agreement" (accord).

  Both are read once, coerced into typed rows and kept in memory until the
  source changes or a reload is requested.

KEY CONCEPTS IN THIS FILE (types.go):
  - ID: Natural-ordered key (numeric when both sides are integers)
  - Product / Sale: Typed rows
  - Tables: The loaded pair, shared read-only by all pages

SEE ALSO:
  - csv.go: File parsing with date coercion
  - cache.go: Process-local cache of the last-loaded Tables
  - summary.go: Dataset summary and option lists
*/
package dataset

import (
	"sort"
	"strconv"
	"time"
)

// DateLayout is the layout of the dateID column (YYYYMMDD).
const DateLayout = "20060102"

// ID identifies a product, category, manufacturer or store.
type ID string

// Less orders IDs numerically when both parse as integers, otherwise
// lexicographically. Integers sort before non-integers.
func (id ID) Less(other ID) bool {
	a, aErr := strconv.ParseInt(string(id), 10, 64)
	b, bErr := strconv.ParseInt(string(other), 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		return a < b
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	}
	return id < other
}

func (id ID) String() string { return string(id) }

// SortIDs sorts ids in natural order in place.
func SortIDs(ids []ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
}

// Column names a key column shared by both tables.
type Column string

const (
	ColProduct      Column = "product"
	ColCategory     Column = "category"
	ColManufacturer Column = "manufacturer"
	ColStore        Column = "store"
)

// Columns lists the key columns in file order.
var Columns = []Column{ColProduct, ColCategory, ColManufacturer, ColStore}

// ParseColumn validates a column name.
func ParseColumn(s string) (Column, error) {
	for _, c := range Columns {
		if string(c) == s {
			return c, nil
		}
	}
	return "", &ColumnError{Name: s}
}

// =============================================================================
// ROWS
// =============================================================================

// Product is one row of the product listings file.
type Product struct {
	DateID       string
	Date         time.Time // zero when DateID does not parse
	Product      ID
	Category     ID
	Manufacturer ID
}

// NewProduct builds a product row, coercing dateID.
func NewProduct(dateID, product, category, manufacturer string) Product {
	return Product{
		DateID:       dateID,
		Date:         parseDate(dateID),
		Product:      ID(product),
		Category:     ID(category),
		Manufacturer: ID(manufacturer),
	}
}

// HasDate reports whether the row carries a valid date.
func (p Product) HasDate() bool { return !p.Date.IsZero() }

// At returns the row date.
func (p Product) At() time.Time { return p.Date }

// Sale is one row of the point-of-sale file.
type Sale struct {
	DateID       string
	Date         time.Time
	Product      ID
	Category     ID
	Manufacturer ID
	Store        ID
}

// NewSale builds a point-of-sale row, coercing dateID.
func NewSale(dateID, product, category, manufacturer, store string) Sale {
	return Sale{
		DateID:       dateID,
		Date:         parseDate(dateID),
		Product:      ID(product),
		Category:     ID(category),
		Manufacturer: ID(manufacturer),
		Store:        ID(store),
	}
}

// HasDate reports whether the row carries a valid date.
func (s Sale) HasDate() bool { return !s.Date.IsZero() }

// At returns the row date.
func (s Sale) At() time.Time { return s.Date }

// Key returns the value of a key column. Products have no store column.
func (p Product) Key(c Column) ID {
	switch c {
	case ColProduct:
		return p.Product
	case ColCategory:
		return p.Category
	case ColManufacturer:
		return p.Manufacturer
	}
	return ""
}

// Key returns the value of a key column.
func (s Sale) Key(c Column) ID {
	switch c {
	case ColProduct:
		return s.Product
	case ColCategory:
		return s.Category
	case ColManufacturer:
		return s.Manufacturer
	case ColStore:
		return s.Store
	}
	return ""
}

// Tables is the loaded dataset. It is never mutated after loading.
type Tables struct {
	Products []Product
	Sales    []Sale
	LoadedAt time.Time
	Source   string
}

// FilterSales returns the sales rows matching keep.
func (t *Tables) FilterSales(keep func(Sale) bool) []Sale {
	var out []Sale
	for _, s := range t.Sales {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// FilterProducts returns the product rows matching keep.
func (t *Tables) FilterProducts(keep func(Product) bool) []Product {
	var out []Product
	for _, p := range t.Products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// parseDate coerces a dateID, returning the zero time on failure.
func parseDate(dateID string) time.Time {
	t, err := time.Parse(DateLayout, dateID)
	if err != nil {
		return time.Time{}
	}
	return t
}
