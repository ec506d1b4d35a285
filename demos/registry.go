/*
Package demos defines the dashboard boards and the pages they contain.

PURPOSE:
  A board is a named set of pages shown in a sidebar. A page ("demo")
  declares its widgets, reads their values, filters the shared tables,
  computes one aggregate and returns chart options plus any metrics, table
  and warning to display under the chart.

BOARDS:
  fullcollab:  Overview of the point-of-sale dataset (six pages)
  fabricants:  Manufacturer-centric analyses (seven pages)

RENDER FLOW:
  1. Look up the demo
  2. Get the tables from the cache (loads once)
  3. Resolve widget values against the data
  4. Run the page's computation
  5. Empty selections become a warning on the page, not an error

ADDING A PAGE:
  1. Write a render function: func(t *dataset.Tables, v Values) (*Page, error)
  2. Declare a Demo with its Params in the board's constructor

SEE ALSO:
  - params.go: Widget resolution
  - fullcollab.go, fabricants.go: Page definitions
*/
package demos

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/warp/retail-dashboard/aggregate"
	"github.com/warp/retail-dashboard/chart"
	"github.com/warp/retail-dashboard/dataset"
	"go.uber.org/zap"
)

// =============================================================================
// PAGE OUTPUT
// =============================================================================

// Metric is a labelled headline value.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Table is tabular output shown under the chart.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Page is a rendered demo.
type Page struct {
	Demo    string          `json:"demo"`
	Title   string          `json:"title"`
	Height  string          `json:"height"`
	Params  []ResolvedParam `json:"params"`
	Chart   chart.Options   `json:"chart,omitempty"`
	Metrics []Metric        `json:"metrics,omitempty"`
	Table   *Table          `json:"table,omitempty"`
	Warning string          `json:"warning,omitempty"`
}

// =============================================================================
// DEFINITIONS
// =============================================================================

// RenderFunc computes a page from the tables and resolved widget values.
type RenderFunc func(t *dataset.Tables, v Values) (*Page, error)

// Demo is one dashboard page.
type Demo struct {
	ID          string
	Name        string
	Description string
	Height      string
	Params      []Param
	Render      RenderFunc
}

// Board groups pages under a sidebar heading.
type Board struct {
	ID    string
	Name  string
	Demos []*Demo
}

// Registry resolves boards and demos and renders pages from a cache.
type Registry struct {
	Title  string
	cache  *dataset.Cache
	logger *zap.Logger
	now    func() time.Time

	boards []*Board
	index  map[string]*Demo
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the clock used for "today" defaults.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithLogger sets the registry logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// NewRegistry registers the standard boards over cache.
func NewRegistry(cache *dataset.Cache, opts ...Option) *Registry {
	r := &Registry{
		Title:  "Retail Dashboards",
		cache:  cache,
		logger: zap.NewNop(),
		now:    time.Now,
		index:  make(map[string]*Demo),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.Register(FullCollabBoard())
	r.Register(FabricantsBoard())
	return r
}

// Register adds a board. Demo IDs must be unique across boards.
func (r *Registry) Register(b *Board) {
	for _, d := range b.Demos {
		if _, dup := r.index[d.ID]; dup {
			panic(fmt.Sprintf("demos: duplicate demo id %q", d.ID))
		}
		r.index[d.ID] = d
	}
	r.boards = append(r.boards, b)
}

// Boards returns the registered boards in registration order.
func (r *Registry) Boards() []*Board {
	return r.boards
}

// Board looks up a board by ID.
func (r *Registry) Board(id string) (*Board, error) {
	for _, b := range r.boards {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownBoard, id)
}

// Demo looks up a demo by ID.
func (r *Registry) Demo(id string) (*Demo, error) {
	d, ok := r.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDemo, id)
	}
	return d, nil
}

// Describe resolves a demo's widgets without rendering it.
func (r *Registry) Describe(ctx context.Context, id string, raw url.Values) (*Demo, []ResolvedParam, error) {
	d, err := r.Demo(id)
	if err != nil {
		return nil, nil, err
	}
	t, err := r.cache.Get(ctx)
	if err != nil {
		return nil, nil, err
	}
	params, _, err := Resolve(d.Params, t, raw, r.now())
	if err != nil {
		return nil, nil, err
	}
	return d, params, nil
}

// Render renders a demo for the raw widget values.
func (r *Registry) Render(ctx context.Context, id string, raw url.Values) (*Page, error) {
	d, err := r.Demo(id)
	if err != nil {
		return nil, err
	}
	t, err := r.cache.Get(ctx)
	if err != nil {
		return nil, err
	}
	params, vals, err := Resolve(d.Params, t, raw, r.now())
	if err != nil {
		return nil, err
	}

	page, err := d.Render(t, vals)
	if errors.Is(err, aggregate.ErrEmptySelection) {
		page, err = &Page{Warning: "No data for this selection."}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", id, err)
	}

	page.Demo = d.ID
	page.Params = params
	if page.Height == "" {
		page.Height = d.Height
	}
	if page.Title == "" {
		page.Title = d.Name
	}
	r.logger.Debug("demo rendered", zap.String("demo", id), zap.Any("values", vals), zap.Bool("warning", page.Warning != ""))
	return page, nil
}
