package dataset_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/retail-dashboard/dataset"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func sampleTables() *dataset.Tables {
	return &dataset.Tables{
		Products: []dataset.Product{
			dataset.NewProduct("20240105", "1", "10", "100"),
			dataset.NewProduct("20240301", "2", "10", "101"),
			dataset.NewProduct("bad", "3", "2", "100"),
		},
		Sales: []dataset.Sale{
			dataset.NewSale("20240105", "1", "10", "100", "7"),
			dataset.NewSale("20240106", "1", "10", "100", "12"),
			dataset.NewSale("", "2", "10", "101", "7"),
		},
		Source: "test",
	}
}

// fakeSource returns tables (or err) and counts loads.
type fakeSource struct {
	tables *dataset.Tables
	err    error
	loads  int
}

func (f *fakeSource) Load(ctx context.Context) (*dataset.Tables, error) {
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	return f.tables, nil
}

// blockingSource holds every Load until release is closed.
type blockingSource struct {
	tables  *dataset.Tables
	started chan struct{}
	release chan struct{}
	loads   atomic.Int32
}

func (b *blockingSource) Load(ctx context.Context) (*dataset.Tables, error) {
	if b.loads.Add(1) == 1 {
		close(b.started)
	}
	<-b.release
	return b.tables, nil
}

// =============================================================================
// ID ORDERING
// =============================================================================

func TestID_Less_Numeric(t *testing.T) {
	assert.True(t, dataset.ID("2").Less("10"))
	assert.False(t, dataset.ID("10").Less("2"))
}

func TestID_Less_MixedAndText(t *testing.T) {
	assert.True(t, dataset.ID("99").Less("a"), "integers sort first")
	assert.False(t, dataset.ID("a").Less("99"))
	assert.True(t, dataset.ID("a").Less("b"))
}

func TestSortIDs(t *testing.T) {
	ids := []dataset.ID{"10", "b", "2", "a", "1"}
	dataset.SortIDs(ids)
	assert.Equal(t, []dataset.ID{"1", "2", "10", "a", "b"}, ids)
}

func TestParseColumn(t *testing.T) {
	col, err := dataset.ParseColumn("store")
	require.NoError(t, err)
	assert.Equal(t, dataset.ColStore, col)

	_, err = dataset.ParseColumn("price")
	assert.ErrorIs(t, err, dataset.ErrUnknownColumn)
}

// =============================================================================
// SUMMARY AND OPTIONS
// =============================================================================

func TestSummarize(t *testing.T) {
	// GIVEN: Tables with one undated row in each table
	// WHEN: Summarized
	s := dataset.Summarize(sampleTables())

	// THEN: Counts, date range and distinct keys are reported
	assert.Equal(t, 3, s.Products.Rows)
	assert.Equal(t, 1, s.Products.InvalidDate)
	require.NotNil(t, s.Products.FirstDate)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), *s.Products.FirstDate)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *s.Products.LastDate)
	assert.Equal(t, 2, s.Products.Distinct[dataset.ColCategory])
	_, hasStore := s.Products.Distinct[dataset.ColStore]
	assert.False(t, hasStore)

	assert.Equal(t, 2, s.Sales.Distinct[dataset.ColStore])
	assert.Equal(t, 1, s.Sales.InvalidDate)
}

func TestSummarize_NoDates(t *testing.T) {
	s := dataset.Summarize(&dataset.Tables{})
	assert.Nil(t, s.Sales.FirstDate)
	assert.Zero(t, s.Sales.Rows)
}

func TestOptions_SortedNaturally(t *testing.T) {
	tables := sampleTables()

	assert.Equal(t, []dataset.ID{"7", "12"}, tables.Options(dataset.ColStore))
	assert.Equal(t, []dataset.ID{"2", "10"}, tables.ProductOptions(dataset.ColCategory))
	assert.Equal(t, []dataset.ID{"10"}, tables.Options(dataset.ColCategory))
}

func TestFilterSales(t *testing.T) {
	tables := sampleTables()
	got := tables.FilterSales(func(s dataset.Sale) bool { return s.Store == "7" })
	assert.Len(t, got, 2)
}

// =============================================================================
// CACHE
// =============================================================================

func TestCache_LoadsOnce(t *testing.T) {
	// GIVEN: A cache over a working source
	src := &fakeSource{tables: sampleTables()}
	cache := dataset.NewCache(src, nil)
	ctx := context.Background()
	assert.False(t, cache.Loaded())

	// WHEN: Get is called twice
	first, err := cache.Get(ctx)
	require.NoError(t, err)
	second, err := cache.Get(ctx)
	require.NoError(t, err)

	// THEN: The source is read once and the same tables are served
	assert.Equal(t, 1, src.loads)
	assert.Same(t, first, second)
	assert.True(t, cache.Loaded())
}

func TestCache_ConcurrentFirstGetsShareOneLoad(t *testing.T) {
	// GIVEN: A source that blocks inside Load
	src := &blockingSource{
		tables:  sampleTables(),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	cache := dataset.NewCache(src, nil)
	ctx := context.Background()

	// WHEN: Several callers ask for the tables while the first load runs
	const callers = 8
	results := make([]*dataset.Tables, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.Get(ctx)
		}(i)
	}
	<-src.started
	time.Sleep(20 * time.Millisecond)
	close(src.release)
	wg.Wait()

	// THEN: The source is read once and every caller gets the same tables
	assert.Equal(t, int32(1), src.loads.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, src.tables, results[i])
	}
}

func TestCache_ReloadFailureKeepsPrevious(t *testing.T) {
	// GIVEN: A loaded cache
	src := &fakeSource{tables: sampleTables()}
	cache := dataset.NewCache(src, nil)
	ctx := context.Background()
	loaded, err := cache.Get(ctx)
	require.NoError(t, err)

	// WHEN: The source starts failing and a reload is requested
	src.err = errors.New("disk gone")
	_, err = cache.Reload(ctx)

	// THEN: The error is returned but the previous tables are still served
	require.Error(t, err)
	current, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, loaded, current)
}

func TestCache_Invalidate(t *testing.T) {
	src := &fakeSource{tables: sampleTables()}
	cache := dataset.NewCache(src, nil)
	ctx := context.Background()

	_, err := cache.Get(ctx)
	require.NoError(t, err)
	cache.Invalidate()
	_, err = cache.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, src.loads)
}

func TestCache_NoSource(t *testing.T) {
	_, err := dataset.NewCache(nil, nil).Get(context.Background())
	assert.ErrorIs(t, err, dataset.ErrNoSource)
}

// =============================================================================
// FILE SOURCE
// =============================================================================

func TestFileSource_Load(t *testing.T) {
	// GIVEN: Both exports on disk
	dir := t.TempDir()
	products := filepath.Join(dir, "produits.csv")
	sales := filepath.Join(dir, "pdv.csv")
	require.NoError(t, os.WriteFile(products, []byte("20240105;1;10;100\n"), 0o644))
	require.NoError(t, os.WriteFile(sales, []byte(salesExport), 0o644))

	// WHEN: Loaded
	tables, err := dataset.NewFileSource(products, sales).Load(context.Background())

	// THEN: Both tables are parsed
	require.NoError(t, err)
	assert.Len(t, tables.Products, 1)
	assert.Len(t, tables.Sales, 3)
	assert.Equal(t, "csv", tables.Source)
	assert.False(t, tables.LoadedAt.IsZero())
}

func TestFileSource_MissingFile(t *testing.T) {
	dir := t.TempDir()
	products := filepath.Join(dir, "produits.csv")
	require.NoError(t, os.WriteFile(products, []byte("20240105;1;10;100\n"), 0o644))

	_, err := dataset.NewFileSource(products, filepath.Join(dir, "missing.csv")).Load(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileSource_RowErrorNamesFile(t *testing.T) {
	dir := t.TempDir()
	products := filepath.Join(dir, "produits.csv")
	sales := filepath.Join(dir, "pdv.csv")
	require.NoError(t, os.WriteFile(products, []byte("20240105;1;10\n"), 0o644))
	require.NoError(t, os.WriteFile(sales, []byte(salesExport), 0o644))

	_, err := dataset.NewFileSource(products, sales).Load(context.Background())

	var rowErr *dataset.RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, products, rowErr.File)
	assert.Equal(t, 1, rowErr.Line)
}
