package dataset

import "time"

// TableSummary describes one loaded table.
type TableSummary struct {
	Rows        int            `json:"rows"`
	InvalidDate int            `json:"invalid_dates"`
	FirstDate   *time.Time     `json:"first_date,omitempty"`
	LastDate    *time.Time     `json:"last_date,omitempty"`
	Distinct    map[Column]int `json:"distinct"`
}

// Summary describes the loaded dataset.
type Summary struct {
	Source   string       `json:"source"`
	LoadedAt time.Time    `json:"loaded_at"`
	Products TableSummary `json:"products"`
	Sales    TableSummary `json:"sales"`
}

// Row is implemented by Product and Sale.
type Row interface {
	Key(Column) ID
	HasDate() bool
	At() time.Time
}

// Summarize computes row, date and distinct-key statistics for both tables.
func Summarize(t *Tables) Summary {
	return Summary{
		Source:   t.Source,
		LoadedAt: t.LoadedAt,
		Products: summarizeRows(t.Products, []Column{ColProduct, ColCategory, ColManufacturer}),
		Sales:    summarizeRows(t.Sales, Columns),
	}
}

func summarizeRows[R Row](rows []R, cols []Column) TableSummary {
	ts := TableSummary{Rows: len(rows), Distinct: make(map[Column]int, len(cols))}
	seen := make(map[Column]map[ID]struct{}, len(cols))
	for _, c := range cols {
		seen[c] = make(map[ID]struct{})
	}

	var first, last time.Time
	for _, r := range rows {
		for _, c := range cols {
			seen[c][r.Key(c)] = struct{}{}
		}
		if !r.HasDate() {
			ts.InvalidDate++
			continue
		}
		d := r.At()
		if first.IsZero() || d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}
	for c, ids := range seen {
		ts.Distinct[c] = len(ids)
	}
	if !first.IsZero() {
		ts.FirstDate, ts.LastDate = &first, &last
	}
	return ts
}

// Options returns the sorted distinct values of col in the sales table.
func (t *Tables) Options(col Column) []ID {
	return distinct(t.Sales, col)
}

// ProductOptions returns the sorted distinct values of col in the product
// table.
func (t *Tables) ProductOptions(col Column) []ID {
	return distinct(t.Products, col)
}

func distinct[R Row](rows []R, col Column) []ID {
	seen := make(map[ID]struct{})
	var out []ID
	for _, r := range rows {
		id := r.Key(col)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	SortIDs(out)
	return out
}
